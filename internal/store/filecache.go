package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FileCache is the JSON-file cache backend: loaded wholesale at open,
// rewritten wholesale on Flush. Single-process, no locking needed.
type FileCache struct {
	path    string
	entries map[string]string
	dirty   bool
}

// OpenFileCache loads the cache at path. A missing file starts empty; a
// corrupt file is logged and discarded rather than aborting the run.
func OpenFileCache(path string) *FileCache {
	c := &FileCache{path: path, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("cache: unreadable file, starting empty",
				zap.String("path", path), zap.Error(err))
		}
		return c
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		zap.L().Warn("cache: corrupt file, starting empty",
			zap.String("path", path), zap.Error(err))
		c.entries = make(map[string]string)
	}
	return c
}

func (c *FileCache) Get(key string) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *FileCache) Put(key, value string) {
	if existing, ok := c.entries[key]; ok {
		if existing != value {
			zap.L().Warn("cache: conflicting value ignored",
				zap.String("key", key),
				zap.String("existing", existing),
				zap.String("ignored", value))
		}
		return
	}
	c.entries[key] = value
	c.dirty = true
}

// Flush rewrites the whole cache file when entries were added since the last
// flush.
func (c *FileCache) Flush() error {
	if !c.dirty {
		return nil
	}

	data, err := json.Marshal(c.entries)
	if err != nil {
		return eris.Wrap(err, "cache: marshal")
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "cache: mkdir")
		}
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return eris.Wrap(err, "cache: write")
	}

	c.dirty = false
	return nil
}

func (c *FileCache) Close() error {
	return c.Flush()
}

// Len reports the number of cached entries.
func (c *FileCache) Len() int { return len(c.entries) }
