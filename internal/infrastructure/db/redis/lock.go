package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key formats:
//
//	lock:<subject>:<token_hash>
//	cooldown:<operation>:<email>
const (
	lockKeyPrefix     = "lock:"
	cooldownKeyPrefix = "cooldown:"
)

// LockRegistry implements short-lived mutual exclusion as an atomic
// insert-if-absent (SET NX) with a TTL, so abandoned attempts expire without
// a sweeper.
type LockRegistry struct {
	client *redis.Client
}

func NewLockRegistry(client *redis.Client) *LockRegistry {
	return &LockRegistry{client: client}
}

func (r *LockRegistry) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKeyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	return ok, nil
}

func (r *LockRegistry) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, lockKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// CooldownRegistry rate-gates outbound-email-triggering operations. Reserve
// reports false while a previous reservation is still live.
type CooldownRegistry struct {
	client *redis.Client
}

func NewCooldownRegistry(client *redis.Client) *CooldownRegistry {
	return &CooldownRegistry{client: client}
}

func (r *CooldownRegistry) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, cooldownKeyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve cooldown: %w", err)
	}
	return ok, nil
}
