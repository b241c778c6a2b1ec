package ports

import (
	"context"
	"time"
)

// LockRegistry provides short-lived mutual exclusion keyed by verification
// attempt. Acquire is an atomic insert-if-absent: it returns false when the
// key is already held, guaranteeing two concurrent attempts for the same key
// cannot both proceed. Entries expire after ttl even if never released.
type LockRegistry interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// CooldownRegistry gates outbound-email-triggering operations per identifier.
// Reserve returns false while a previous reservation is still cooling down.
type CooldownRegistry interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
