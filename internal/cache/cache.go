// Package cache is a small in-process TTL cache with an injected clock, so
// staleness behavior is testable without waiting on wall-clock time.
package cache

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type entry[V any] struct {
	value     V
	fetchedAt time.Time
}

// TTL caches values by key with per-call time-to-live. A fetch failure falls
// back to the stale value when one exists, so a flaky upstream degrades to
// stale data instead of errors.
type TTL[V any] struct {
	clock Clock

	mu      sync.Mutex
	entries map[string]entry[V]
}

func New[V any](clock Clock) *TTL[V] {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TTL[V]{
		clock:   clock,
		entries: make(map[string]entry[V]),
	}
}

// GetOrFetch returns the cached value for key if it is younger than ttl,
// otherwise calls fetch and caches the result. On fetch error a stale entry
// is returned with a nil error; with no stale entry the error propagates.
func (c *TTL[V]) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (V, error)) (V, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	now := c.clock.Now()
	c.mu.Unlock()

	if ok && now.Sub(e.fetchedAt) < ttl {
		return e.value, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		if ok {
			return e.value, nil
		}
		var zero V
		return zero, err
	}

	c.mu.Lock()
	c.entries[key] = entry[V]{value: v, fetchedAt: c.clock.Now()}
	c.mu.Unlock()
	return v, nil
}

// Invalidate drops a key.
func (c *TTL[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
