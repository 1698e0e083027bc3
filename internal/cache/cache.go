// Package cache provides a single-value TTL cache for the public form
// schema read path. Admin mutations that change publicly displayed data
// call Invalidate so the next read observes the change immediately
// instead of waiting out the TTL.
package cache

import (
	"context"
	"sync"
	"time"
)

type TTL[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	value   T
	loaded  bool
	expires time.Time
	now     func() time.Time
}

func New[T any](ttl time.Duration) *TTL[T] {
	return &TTL[T]{ttl: ttl, now: time.Now}
}

// Get returns the cached value, loading it when absent or stale. A load
// failure is returned to the caller and nothing is cached.
func (c *TTL[T]) Get(ctx context.Context, load func(context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded && c.now().Before(c.expires) {
		return c.value, nil
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.value = value
	c.loaded = true
	c.expires = c.now().Add(c.ttl)
	return value, nil
}

func (c *TTL[T]) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}
