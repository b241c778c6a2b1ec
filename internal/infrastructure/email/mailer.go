// Package email carries the outbound-delivery boundary. The wire format and
// templating live in an external collaborator; LogMailer is the in-process
// implementation used in development and tests, emitting structured log lines
// instead of SMTP traffic.
package email

import (
	"context"

	"github.com/rs/zerolog"
)

// LogMailer implements ports.Mailer against the structured log.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendVerification(_ context.Context, email, displayName, code string) error {
	m.log.Info().
		Str("to", email).
		Str("display_name", displayName).
		Str("purpose", "email_verification").
		Str("code", code).
		Msg("outbound mail")
	return nil
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, displayName, code string) error {
	m.log.Info().
		Str("to", email).
		Str("display_name", displayName).
		Str("purpose", "password_reset").
		Str("code", code).
		Msg("outbound mail")
	return nil
}
