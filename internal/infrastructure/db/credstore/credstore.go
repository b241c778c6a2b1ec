// Package credstore composes the two credential-store backends: the MongoDB
// document side for rich queries and the Redis key-value side, authoritative
// for permission decisions. Cross-store writes are not transactional; the
// store documents read-your-own-write for the authoritative side only and
// accepts eventual-consistency windows on the document side.
package credstore

import (
	"context"
	"errors"

	"github.com/quotable/quotes-platform/internal/core/domain"

	mongodb "github.com/quotable/quotes-platform/internal/infrastructure/db/mongo"
	redisdb "github.com/quotable/quotes-platform/internal/infrastructure/db/redis"
)

// Store implements ports.UserRepository as a write-through over both backends.
type Store struct {
	docs  *mongodb.UserRepository
	perms *redisdb.PermissionStore
}

func New(docs *mongodb.UserRepository, perms *redisdb.PermissionStore) *Store {
	return &Store{docs: docs, perms: perms}
}

// Create writes the document record first, then the authoritative permission
// set. A failure on either side surfaces to the caller; compensation (removal
// of the partial record) belongs to the registration rollback path.
func (s *Store) Create(ctx context.Context, user *domain.User) error {
	if err := s.docs.Create(ctx, user); err != nil {
		return err
	}
	return s.perms.Put(ctx, user.ID, user.Permissions)
}

func (s *Store) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.docs.FindByID(ctx, id)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.docs.FindByEmail(ctx, email)
}

// Update writes through both sides. The authoritative permission write comes
// last and its failure fails the call, so a caller that sees success can rely
// on subsequent permission reads observing the new grants.
func (s *Store) Update(ctx context.Context, user *domain.User) error {
	if err := s.docs.Update(ctx, user); err != nil {
		return err
	}
	return s.perms.Put(ctx, user.ID, user.Permissions)
}

// Delete removes the authoritative permission set first so no grant can
// outlive the account record.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.perms.Delete(ctx, id); err != nil {
		return err
	}
	return s.docs.Delete(ctx, id)
}

// Permissions reads from the authoritative store. A cache miss falls back to
// the document record and backfills the key-value side, repairing any
// eventual-consistency gap.
func (s *Store) Permissions(ctx context.Context, id string) (domain.Permissions, error) {
	perms, err := s.perms.Get(ctx, id)
	if err == nil {
		return perms, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.perms.Put(ctx, id, user.Permissions); err != nil {
		return nil, err
	}
	return user.Permissions, nil
}
