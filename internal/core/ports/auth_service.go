package ports

import (
	"context"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

// AuthService exchanges credentials for a verified account snapshot and
// serves the authenticated profile surface.
type AuthService interface {
	Login(ctx context.Context, email, password string, prov domain.Provenance) (*domain.User, error)
	// Logout best-effort revokes the authority's server-side sessions; it
	// never fails the caller.
	Logout(ctx context.Context, subjectID string, prov domain.Provenance)
	Profile(ctx context.Context, subjectID string) (*domain.User, error)
	// Refresh re-checks account state before a session is re-minted; a
	// suspended or deleted account must not outlive its refresh cookie.
	Refresh(ctx context.Context, subjectID string) (*domain.User, error)
	// DeleteAccount removes the external identity and both store records.
	DeleteAccount(ctx context.Context, subjectID string, prov domain.Provenance) error
}
