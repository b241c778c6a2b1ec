package ports

import (
	"context"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

// UserRepository is the credential store: a write-through composition of the
// document store (rich queries, audit joins) and the hot key-value store.
//
// Consistency contract: writes land in both stores but are only guaranteed
// read-your-own-write on the key-value side, which is authoritative for
// permission decisions. Callers must never assume strong cross-store
// consistency.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	// Permissions reads the authoritative permission set for an account.
	Permissions(ctx context.Context, id string) (domain.Permissions, error)
}
