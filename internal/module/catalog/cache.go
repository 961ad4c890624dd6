package catalog

import (
	"sync"
	"sync/atomic"
	"time"
)

type entry struct {
	value    any
	storedAt time.Time
}

// CacheStats is a snapshot of the cache for the admin surface.
type CacheStats struct {
	Size       int    `json:"cacheSize"`
	TTLSeconds int    `json:"cacheTTL"`
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	Evictions  uint64 `json:"evictions"`
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// WithEvictHook registers fn to run after an expired entry is removed on lookup.
func WithEvictHook(fn func(key string)) CacheOption {
	return func(c *Cache) {
		c.onEvict = fn
	}
}

// Cache is an unbounded in-memory TTL cache. Expired entries are removed
// lazily, on the first lookup past their expiry.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
	onEvict func(key string)

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewCache creates a cache whose entries live for ttl.
func NewCache(ttl time.Duration, opts ...CacheOption) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value stored under key. The boolean is false when the key
// is absent or expired, so cached zero values still count as hits.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	if c.fresh(e) {
		c.hits.Add(1)
		return e.value, true
	}

	c.mu.Lock()
	cur, ok := c.entries[key]
	if ok && cur != e && c.fresh(cur) {
		// Replaced by a concurrent Set since the read above.
		c.mu.Unlock()
		c.hits.Add(1)
		return cur.value, true
	}
	evicted := ok && cur == e
	if evicted {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	c.misses.Add(1)
	if evicted {
		c.evictions.Add(1)
		if c.onEvict != nil {
			c.onEvict(key)
		}
	}
	return nil, false
}

func (c *Cache) fresh(e *entry) bool {
	return c.now().Sub(e.storedAt) <= c.ttl
}

// Set stores value under key, replacing any existing entry.
func (c *Cache) Set(key string, value any) {
	e := &entry{value: value, storedAt: c.now()}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Size:       c.Len(),
		TTLSeconds: int(c.ttl / time.Second),
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Evictions:  c.evictions.Load(),
	}
}
