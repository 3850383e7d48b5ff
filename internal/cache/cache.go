// Package cache provides a small in-process TTL cache.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
	addedAt   time.Time
}

// TTL is a concurrency-safe map whose entries expire after a fixed duration.
// When full, the oldest entry is evicted. A zero ttl disables caching.
type TTL[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	entries map[K]entry[V]
	now     func() time.Time
}

// New creates a TTL cache. maxSize <= 0 means unbounded.
func New[K comparable, V any](ttl time.Duration, maxSize int) *TTL[K, V] {
	return &TTL[K, V]{
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[K]entry[V]),
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (c *TTL[K, V]) WithClock(now func() time.Time) *TTL[K, V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Get returns the value for key if present and not expired.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key.
func (c *TTL[K, V]) Set(key K, value V) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictLocked(now)
	}
	c.entries[key] = entry[V]{value: value, expiresAt: now.Add(c.ttl), addedAt: now}
}

// evictLocked drops expired entries, or the oldest one if none expired.
func (c *TTL[K, V]) evictLocked(now time.Time) {
	var (
		oldestKey K
		oldestAt  time.Time
		found     bool
		expired   bool
	)
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			expired = true
			continue
		}
		if !found || e.addedAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.addedAt, true
		}
	}
	if !expired && found {
		delete(c.entries, oldestKey)
	}
}

// Invalidate removes key.
func (c *TTL[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateAll removes every entry.
func (c *TTL[K, V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}

// Len returns the number of stored entries, expired ones included.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
