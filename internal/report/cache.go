package report

import (
	"context"
	"sync"
	"time"
)

// Cache is a TTL map. Entries expire unconditionally after the TTL and are
// never invalidated early; Set replaces any existing entry.
type Cache[T any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]cacheItem[T]
}

type cacheItem[T any] struct {
	data      T
	expiresAt time.Time
}

// NewCache creates a cache. A nil now means time.Now.
func NewCache[T any](ttl time.Duration, now func() time.Time) *Cache[T] {
	if now == nil {
		now = time.Now
	}
	return &Cache[T]{
		ttl:   ttl,
		now:   now,
		items: make(map[string]cacheItem[T]),
	}
}

// Get returns the live value for key.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero T
	item, ok := c.items[key]
	if !ok || !c.now().Before(item.expiresAt) {
		return zero, false
	}
	return item.data, true
}

// Set stores data under key for one TTL.
func (c *Cache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheItem[T]{data: data, expiresAt: c.now().Add(c.ttl)}
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache[T]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, item := range c.items {
		if !now.Before(item.expiresAt) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// RunJanitor purges expired entries every interval until ctx is done.
func (c *Cache[T]) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Purge()
		}
	}
}
