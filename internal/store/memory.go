package store

// MemoryCache is an in-memory IDCache for tests and for runs that opt out of
// persistence.
type MemoryCache struct {
	entries map[string]string
	Flushes int
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func (c *MemoryCache) Get(key string) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *MemoryCache) Put(key, value string) {
	if _, ok := c.entries[key]; ok {
		return
	}
	c.entries[key] = value
}

func (c *MemoryCache) Flush() error {
	c.Flushes++
	return nil
}

func (c *MemoryCache) Close() error { return nil }

// Len reports the number of cached entries.
func (c *MemoryCache) Len() int { return len(c.entries) }
