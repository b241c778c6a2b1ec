// Package registry provides process-local implementations of the lock and
// cooldown registries: a mutex-guarded map of expiring entries with a
// fixed-interval sweeper bounding memory growth from abandoned attempts.
// Suitable for single-node deployments and tests; multi-node deployments use
// the Redis-backed registries instead.
package registry

import (
	"context"
	"sync"
	"time"
)

const defaultSweepInterval = time.Minute

// Memory is a TTL keyed store implementing both ports.LockRegistry and
// ports.CooldownRegistry.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
	done    chan struct{}
	stop    sync.Once
	now     func() time.Time
}

// NewMemory creates a registry and starts its sweeper. The sweep runs on a
// fixed interval independent of traffic; pass 0 for the default.
func NewMemory(sweepInterval time.Duration) *Memory {
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}
	m := &Memory{
		entries: make(map[string]time.Time),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go m.sweep(sweepInterval)
	return m
}

// Acquire is an atomic insert-if-absent: it returns false while the key is
// held and unexpired.
func (m *Memory) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if deadline, held := m.entries[key]; held && m.now().Before(deadline) {
		return false, nil
	}
	m.entries[key] = m.now().Add(ttl)
	return true, nil
}

func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Reserve has the same insert-if-absent semantics as Acquire; cooldown
// entries are simply never released early.
func (m *Memory) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return m.Acquire(ctx, key, ttl)
}

// Stop terminates the sweeper. Safe to call more than once.
func (m *Memory) Stop() {
	m.stop.Do(func() { close(m.done) })
}

func (m *Memory) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.evictExpired()
		}
	}
}

func (m *Memory) evictExpired() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, deadline := range m.entries {
		if now.After(deadline) {
			delete(m.entries, key)
		}
	}
}
