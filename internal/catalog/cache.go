package catalog

import "sync"

// DetailCache stores Detail entries keyed by entry name.
// Entries are never overwritten or evicted; the cache stops accepting new
// names once it holds capacity entries. It is safe for concurrent use:
// detail batches write to it from their own goroutines.
type DetailCache struct {
	mu       sync.RWMutex
	entries  map[string]Detail
	capacity int
}

// NewDetailCache creates an empty cache bounded to capacity entries.
// A non-positive capacity means unbounded.
func NewDetailCache(capacity int) *DetailCache {
	return &DetailCache{
		entries:  make(map[string]Detail),
		capacity: capacity,
	}
}

// Get returns the cached detail for name, or false on miss.
func (c *DetailCache) Get(name string) (Detail, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.entries[name]
	return d, ok
}

// Has reports whether name is cached.
func (c *DetailCache) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Lookup returns the cached detail for name, or the unknown placeholder
// (no types, zero stats) when it has not been loaded yet. It never blocks
// on a fetch.
func (c *DetailCache) Lookup(name string) Detail {
	d, _ := c.Get(name)
	return d
}

// Add stores d under d.Name. It reports false when the name is already
// cached (the existing entry is kept) or the cache is full.
func (c *DetailCache) Add(d Detail) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[d.Name]; ok {
		return false
	}
	if c.capacity > 0 && len(c.entries) >= c.capacity {
		return false
	}
	c.entries[d.Name] = d
	return true
}

// Len returns the number of cached entries.
func (c *DetailCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Capacity returns the configured bound (0 when unbounded).
func (c *DetailCache) Capacity() int {
	return c.capacity
}
