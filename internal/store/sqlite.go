package store

import (
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteCache is the sqlite cache backend. Unlike the JSON file it persists
// each resolution as it happens, so a crash mid-run loses nothing.
type SQLiteCache struct {
	db *sql.DB
}

const sqliteCacheSchema = `
CREATE TABLE IF NOT EXISTS id_cache (
	key         TEXT PRIMARY KEY,
	product_id  TEXT NOT NULL,
	resolved_at DATETIME NOT NULL
);
`

// OpenSQLiteCache opens (creating if needed) the cache database at path and
// configures WAL mode.
func OpenSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}
	if _, err := db.Exec(sqliteCacheSchema); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "cache: migrate")
	}
	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Get(key string) (string, bool) {
	var v string
	err := c.db.QueryRow(`SELECT product_id FROM id_cache WHERE key = ?`, key).Scan(&v)
	if err != nil {
		if !eris.Is(err, sql.ErrNoRows) {
			zap.L().Warn("cache: sqlite read failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return v, true
}

func (c *SQLiteCache) Put(key, value string) {
	// INSERT OR IGNORE keeps the first-write-wins contract.
	_, err := c.db.Exec(
		`INSERT OR IGNORE INTO id_cache (key, product_id, resolved_at) VALUES (?, ?, ?)`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		zap.L().Warn("cache: sqlite write failed", zap.String("key", key), zap.Error(err))
	}
}

// Flush is a no-op: every Put is durable immediately.
func (c *SQLiteCache) Flush() error { return nil }

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
