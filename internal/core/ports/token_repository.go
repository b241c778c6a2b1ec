package ports

import (
	"context"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

// TokenRepository persists single-use verification and reset tokens. Tokens
// are looked up by hash; raw codes never reach storage.
type TokenRepository interface {
	Create(ctx context.Context, token *domain.VerificationToken) error
	FindByHash(ctx context.Context, hash string, purpose domain.TokenPurpose) (*domain.VerificationToken, error)
	// MarkConsumed flips the consumed flag exactly once; a second call for the
	// same token returns domain.ErrTokenConsumed.
	MarkConsumed(ctx context.Context, id string) error
	// DeleteForUser removes outstanding tokens of one purpose, used when a
	// fresh token supersedes earlier deliveries.
	DeleteForUser(ctx context.Context, userID string, purpose domain.TokenPurpose) error
}
