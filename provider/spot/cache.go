package spot

import (
	"sync"
	"time"
)

// Cache is a single-value expiring cache. Expired values are kept
// around so callers can fall back to a stale read when a refresh fails
type Cache[T any] struct {
	mu sync.RWMutex

	value     T
	populated bool
	fetchedAt time.Time
	ttl       time.Duration
}

// NewCache creates a new cache with the given lifetime per value
func NewCache[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		ttl: ttl,
	}
}

// Get returns the cached value if it is still fresh
func (c *Cache[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.populated || time.Since(c.fetchedAt) > c.ttl {
		var zero T

		return zero, false
	}

	return c.value, true
}

// GetStale returns the cached value regardless of freshness
func (c *Cache[T]) GetStale() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.populated {
		var zero T

		return zero, false
	}

	return c.value, true
}

// Set stores a fresh value
func (c *Cache[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
	c.populated = true
	c.fetchedAt = time.Now()
}
