// Package cache is a small in-process response cache with one slot per
// key and no eviction. Stale entries stay readable so handlers can serve
// them when a refresh fails.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is how long an entry counts as fresh.
const DefaultTTL = 5 * time.Minute

type entry struct {
	value    any
	storedAt time.Time
}

type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry

	// now is replaceable for tests.
	now func() time.Time
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key when it is still fresh, along
// with its age.
func (c *Cache) Get(key string) (any, time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, 0, false
	}
	age := c.now().Sub(e.storedAt)
	if age >= c.ttl {
		return nil, 0, false
	}
	return e.value, age, true
}

// GetStale returns whatever is stored for key regardless of age.
func (c *Cache) GetStale(key string) (any, time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, 0, false
	}
	return e.value, c.now().Sub(e.storedAt), true
}

// Put stores value under key, replacing any previous entry.
func (c *Cache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, storedAt: c.now()}
}
