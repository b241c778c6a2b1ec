package ports

import "context"

// Mailer delivers single-use codes out of band. The wire format and
// templating are external collaborators; implementations only need to get the
// raw code to the recipient.
type Mailer interface {
	SendVerification(ctx context.Context, email, displayName, code string) error
	SendPasswordReset(ctx context.Context, email, displayName, code string) error
}
