// Package store holds the run's durable state: the identifier cache, the
// harvest list, and the progress checkpoint.
package store

import (
	"github.com/rotisserie/eris"
)

// IDCache maps resolver keys (external ids or name+set composites) to
// resolved storefront product identifiers. Entries are added monotonically
// and never expire: product identifiers are assumed stable, and a negative
// result is deliberately never cached so an unresolvable card can still
// succeed once upstream data improves.
type IDCache interface {
	// Get returns the cached identifier for key.
	Get(key string) (string, bool)

	// Put records key -> value. The first write for a key wins; a
	// conflicting later write within the same process is ignored.
	Put(key, value string)

	// Flush persists the cache to its backing storage.
	Flush() error

	// Close releases the backing storage.
	Close() error
}

// CacheConfig selects and locates the cache backend.
type CacheConfig struct {
	// Driver is "json" (single rewritten file) or "sqlite".
	Driver string
	// Path is the cache file location for either driver.
	Path string
}

// OpenCache opens the configured cache backend. A corrupt or unreadable
// cache file degrades to an empty cache rather than aborting the run.
func OpenCache(cfg CacheConfig) (IDCache, error) {
	switch cfg.Driver {
	case "", "json":
		return OpenFileCache(cfg.Path), nil
	case "sqlite":
		return OpenSQLiteCache(cfg.Path)
	default:
		return nil, eris.Errorf("store: unknown cache driver %q", cfg.Driver)
	}
}
