package pricing

import (
	"sync"
	"time"
)

// Cache holds one fetched price table for a bounded time. It is an
// explicitly constructed and injected object; expiry is driven by the
// injected clock so tests stay deterministic.
type Cache struct {
	mu        sync.Mutex
	table     Table
	fetchedAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewCache creates a price table cache with the given TTL. A zero TTL
// disables caching entirely.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock sets a custom clock for deterministic tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Get returns the cached table if it is still fresh.
func (c *Cache) Get() (Table, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.table == nil || c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return c.table.clone(), true
}

// Put stores a freshly fetched table.
func (c *Cache) Put(t Table) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = t.clone()
	c.fetchedAt = c.now()
}
