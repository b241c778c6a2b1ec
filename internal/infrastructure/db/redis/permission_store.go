package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

// Key format: perms:<subject_id>
const permKeyPrefix = "perms:"

// PermissionStore is the hot key-value side of the credential store. It is
// authoritative for permission decisions: every privileged request reads from
// here, never from the document store.
type PermissionStore struct {
	client *redis.Client
}

func NewPermissionStore(client *redis.Client) *PermissionStore {
	return &PermissionStore{client: client}
}

// Put replaces the stored permission set for a subject. Entries have no TTL;
// they live until the account is deleted.
func (s *PermissionStore) Put(ctx context.Context, subjectID string, perms domain.Permissions) error {
	encoded, err := json.Marshal(perms)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}
	if err := s.client.Set(ctx, s.key(subjectID), encoded, 0).Err(); err != nil {
		return fmt.Errorf("store permissions: %w", err)
	}
	return nil
}

// Get reads the permission set for a subject. A missing key maps to
// domain.ErrUserNotFound so callers can distinguish "no account" from an
// infrastructure failure.
func (s *PermissionStore) Get(ctx context.Context, subjectID string) (domain.Permissions, error) {
	raw, err := s.client.Get(ctx, s.key(subjectID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read permissions: %w", err)
	}

	var perms domain.Permissions
	if err := json.Unmarshal([]byte(raw), &perms); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}
	return perms, nil
}

func (s *PermissionStore) Delete(ctx context.Context, subjectID string) error {
	if err := s.client.Del(ctx, s.key(subjectID)).Err(); err != nil {
		return fmt.Errorf("delete permissions: %w", err)
	}
	return nil
}

func (s *PermissionStore) key(subjectID string) string {
	return permKeyPrefix + subjectID
}
