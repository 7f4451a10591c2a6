package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9222", cfg.Browser.DevtoolsURL)
	assert.Equal(t, 10, cfg.Browser.AttachTimeoutSecs)
	assert.Equal(t, 30, cfg.Browser.ActionTimeoutSecs)
	assert.Equal(t, "https://store.tcgplayer.com", cfg.Storefront.BaseURL)
	assert.Equal(t, "json", cfg.Cache.Driver)
	assert.Equal(t, "tcg_id_cache.json", cfg.Cache.Path)
	assert.Equal(t, "https://api.scryfall.com", cfg.Scryfall.BaseURL)
	assert.Equal(t, "https://api.pokemontcg.io/v2", cfg.Pokemon.BaseURL)
	assert.Equal(t, "output", cfg.Run.OutputDir)
	assert.Equal(t, 3, cfg.Run.NavRetries)
	assert.Equal(t, 5*time.Second, cfg.Run.NavDelay())
	assert.Equal(t, 2500*time.Millisecond, cfg.Run.SaveSettle())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
cache:
  driver: sqlite
  path: ids.db
pokemon:
  key: test-key
log:
  level: debug
run:
  save_settle_ms: 100
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Cache.Driver)
	assert.Equal(t, "ids.db", cfg.Cache.Path)
	assert.Equal(t, "test-key", cfg.Pokemon.Key)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 100*time.Millisecond, cfg.Run.SaveSettle())
	// Defaults still apply for unset values
	assert.Equal(t, 3, cfg.Run.NavRetries)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
cache:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("STORESYNC_CACHE_DRIVER", "json")
	t.Setenv("STORESYNC_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "json", cfg.Cache.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("STORESYNC_BROWSER_DEVTOOLS_URL", "http://127.0.0.1:9333")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9333", cfg.Browser.DevtoolsURL)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Browser.DevtoolsURL = "http://127.0.0.1:9222"
	cfg.Storefront.BaseURL = "https://store.tcgplayer.com"
	cfg.Cache.Driver = "json"
	cfg.Cache.Path = "tcg_id_cache.json"
	cfg.Scryfall.BaseURL = "https://api.scryfall.com"
	cfg.Run.NavRetries = 3
	return cfg
}

func TestValidateBrowse_AllPresent(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("browse"))
}

func TestValidateBrowse_MissingFields(t *testing.T) {
	cfg := validDefaults()
	cfg.Browser.DevtoolsURL = ""
	cfg.Storefront.BaseURL = ""

	err := cfg.Validate("browse")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "browser.devtools_url is required")
	assert.Contains(t, err.Error(), "storefront.base_url is required")
}

func TestValidateCacheDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Cache.Driver = "redis"

	err := cfg.Validate("browse")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cache.driver must be json or sqlite")

	cfg.Cache.Driver = "sqlite"
	assert.NoError(t, cfg.Validate("browse"))
}

func TestValidateNavRetriesBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Run.NavRetries = 0
	err := cfg.Validate("browse")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nav_retries must be between 1 and 10")

	cfg.Run.NavRetries = 11
	err = cfg.Validate("browse")
	assert.Error(t, err)

	cfg.Run.NavRetries = 10
	assert.NoError(t, cfg.Validate("browse"))
}

func TestValidateResolve(t *testing.T) {
	cfg := validDefaults()
	cfg.Scryfall.BaseURL = ""

	err := cfg.Validate("resolve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "scryfall.base_url is required")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
