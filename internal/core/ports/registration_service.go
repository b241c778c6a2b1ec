package ports

import (
	"context"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

// RegisterInput carries the self-service registration payload plus request
// provenance.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Provenance  domain.Provenance
}

// RegistrationService creates accounts and issues single-use codes.
type RegistrationService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// ResendVerification issues a fresh verification token. It reports
	// domain.ErrCooldownActive when rate-gated, and nil even when the email is
	// unknown (anti-enumeration).
	ResendVerification(ctx context.Context, email string, prov domain.Provenance) error
	// RequestPasswordReset issues a reset token under the same cooldown and
	// anti-enumeration rules as ResendVerification.
	RequestPasswordReset(ctx context.Context, email string, prov domain.Provenance) error
}
