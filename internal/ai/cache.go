package ai

import "sync"

// Cache deduplicates model calls for the life of the process. Entries never
// expire on their own; a full-analysis run clears the cache up front so a
// stale competitor-discovery result cannot leak into a fresh run.
type Cache struct {
	mu      sync.Mutex
	entries map[string]string
	// insertion order, for stable stats output
	keys []string
}

// CacheStats is a snapshot for the stats endpoint.
type CacheStats struct {
	Count      int      `json:"cached_prompts"`
	SampleKeys []string `json:"cache_keys"`
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Get returns the cached value for key, if present.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put stores value under key, overwriting any existing entry.
func (c *Cache) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.entries[key] = value
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string)
	c.keys = nil
}

// Stats reports the entry count and up to 10 sample keys.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	sample := c.keys
	if len(sample) > 10 {
		sample = sample[:10]
	}
	out := make([]string, len(sample))
	copy(out, sample)

	return CacheStats{Count: len(c.entries), SampleKeys: out}
}
