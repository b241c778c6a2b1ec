package ports

import (
	"context"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

// VerifyResult reports the outcome of a token consumption.
type VerifyResult struct {
	Status domain.Status
	// AlreadyVerified marks the idempotent replay path: the account was
	// verified before this call and no transition was applied.
	AlreadyVerified bool
}

// VerificationService consumes single-use tokens and advances account state.
type VerificationService interface {
	Verify(ctx context.Context, rawToken, subjectID, email string, prov domain.Provenance) (*VerifyResult, error)
	ResetPassword(ctx context.Context, rawToken, subjectID, newPassword string, prov domain.Provenance) error
}
