package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardshed/storesync/internal/model"
)

func TestFileCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c := OpenFileCache(path)
	c.Put("scryfall-abc", "614199")
	c.Put("pokemon_Charizard_Base Set", "42382")
	require.NoError(t, c.Flush())

	reopened := OpenFileCache(path)
	v, ok := reopened.Get("scryfall-abc")
	assert.True(t, ok)
	assert.Equal(t, "614199", v)
	assert.Equal(t, 2, reopened.Len())
}

func TestFileCacheFirstWriteWins(t *testing.T) {
	c := OpenFileCache(filepath.Join(t.TempDir(), "cache.json"))
	c.Put("key", "1")
	c.Put("key", "2")

	v, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestFileCacheCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c := OpenFileCache(path)
	assert.Equal(t, 0, c.Len())

	// It must still be writable afterwards.
	c.Put("key", "7")
	require.NoError(t, c.Flush())
}

func TestFileCacheFlushNoopWhenClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cache.json")
	c := OpenFileCache(path)
	require.NoError(t, c.Flush())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "clean cache must not create a file")
}

func TestSQLiteCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := OpenSQLiteCache(path)
	require.NoError(t, err)

	c.Put("scryfall-abc", "614199")
	c.Put("scryfall-abc", "999999") // ignored: first write wins

	v, ok := c.Get("scryfall-abc")
	assert.True(t, ok)
	assert.Equal(t, "614199", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	require.NoError(t, c.Close())

	reopened, err := OpenSQLiteCache(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok = reopened.Get("scryfall-abc")
	assert.True(t, ok)
	assert.Equal(t, "614199", v)
}

func TestOpenCacheDriverSelection(t *testing.T) {
	dir := t.TempDir()

	c, err := OpenCache(CacheConfig{Driver: "json", Path: filepath.Join(dir, "c.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileCache{}, c)

	c, err = OpenCache(CacheConfig{Driver: "sqlite", Path: filepath.Join(dir, "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteCache{}, c)
	require.NoError(t, c.Close())

	_, err = OpenCache(CacheConfig{Driver: "redis"})
	assert.Error(t, err)
}

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")

	cp := model.Checkpoint{
		LastProcessedID: "614344",
		ReportFile:      "output/report.csv",
		Timestamp:       time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, SaveCheckpoint(path, cp))

	got, err := LoadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, cp, got)
}

func TestLoadCheckpointMissing(t *testing.T) {
	_, err := LoadCheckpoint(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestHarvestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harvest.json")

	entries := []model.CatalogEntry{
		{ID: "614199", Name: "Charizard", Set: "Base Set", Category: "Pokemon", Rarity: "Holo Rare", Number: "4"},
		{ID: "614344", Name: "Blastoise", Set: "Base Set", Category: "Pokemon"},
	}
	require.NoError(t, SaveHarvest(path, entries))

	got, err := LoadHarvest(path)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestLoadHarvestLegacyStringEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harvest.json")
	require.NoError(t, os.WriteFile(path, []byte(`["614199", {"id":"614344","name":"Blastoise"}]`), 0o644))

	got, err := LoadHarvest(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.CatalogEntry{ID: "614199"}, got[0])
	assert.Equal(t, "Blastoise", got[1].Name)
}
