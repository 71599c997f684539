package cache

import (
	"sync"

	"github.com/rxtech-lab/argo-strategy/internal/indicator"
)

// Key identifies the full series of one indicator node over one data set.
// Version changes whenever the bars the series was computed from change.
type Key struct {
	NodeID  string
	Version uint64
}

type Cache interface {
	Get(key Key) (indicator.Output, bool)
	Set(key Key, output indicator.Output)
	// Invalidate drops every entry of version.
	Invalidate(version uint64)
	Reset()
	Len() int
}

// CacheV1 keeps indicator series in memory for the lifetime of a run.
type CacheV1 struct {
	mu      sync.RWMutex
	entries map[Key]indicator.Output
	hits    int
	misses  int
}

func NewCacheV1() Cache {
	return &CacheV1{
		entries: make(map[Key]indicator.Output),
	}
}

// Get implements cache.Cache.
func (c *CacheV1) Get(key Key) (indicator.Output, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	output, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}

	return output, ok
}

// Set implements cache.Cache.
func (c *CacheV1) Set(key Key, output indicator.Output) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = output
}

// Invalidate implements cache.Cache.
func (c *CacheV1) Invalidate(version uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if key.Version == version {
			delete(c.entries, key)
		}
	}
}

// Reset implements cache.Cache.
func (c *CacheV1) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]indicator.Output)
	c.hits = 0
	c.misses = 0
}

// Len implements cache.Cache.
func (c *CacheV1) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Stats returns the hit and miss counts since the last Reset.
func (c *CacheV1) Stats() (hits int, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.hits, c.misses
}
