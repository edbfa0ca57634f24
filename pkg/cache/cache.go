// Package cache provides a small single-value TTL cache. The clock is
// injected so tests can control expiry without sleeping.
package cache

import (
	"sync"
	"time"
)

type Option[T any] func(*Cache[T])

// WithClock overrides the time source. Used by tests.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Cache[T]) {
		c.now = now
	}
}

type Cache[T any] struct {
	mu      sync.Mutex
	value   T
	set     bool
	expires time.Time
	ttl     time.Duration
	now     func() time.Time
}

func New[T any](ttl time.Duration, opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the cached value and true while the entry is fresh.
func (c *Cache[T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.set || c.now().After(c.expires) {
		var zero T
		return zero, false
	}
	return c.value, true
}

func (c *Cache[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
	c.set = true
	c.expires = c.now().Add(c.ttl)
}

func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.set = false
}
