package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Browser    BrowserConfig    `yaml:"browser" mapstructure:"browser"`
	Storefront StorefrontConfig `yaml:"storefront" mapstructure:"storefront"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Scryfall   ScryfallConfig   `yaml:"scryfall" mapstructure:"scryfall"`
	Pokemon    PokemonConfig    `yaml:"pokemon" mapstructure:"pokemon"`
	Run        RunConfig        `yaml:"run" mapstructure:"run"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// BrowserConfig locates the already-running browser to attach to. The tool
// never launches its own browser: the operator starts one with remote
// debugging enabled and stays logged in to the seller portal.
type BrowserConfig struct {
	DevtoolsURL        string `yaml:"devtools_url" mapstructure:"devtools_url"`
	AttachTimeoutSecs  int    `yaml:"attach_timeout_secs" mapstructure:"attach_timeout_secs"`
	ActionTimeoutSecs  int    `yaml:"action_timeout_secs" mapstructure:"action_timeout_secs"`
}

// StorefrontConfig holds seller-portal URLs.
type StorefrontConfig struct {
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	CatalogURL string `yaml:"catalog_url" mapstructure:"catalog_url"`
}

// CacheConfig configures the identifier cache backend.
type CacheConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// ScryfallConfig holds Scryfall API settings.
type ScryfallConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PokemonConfig holds Pokemon TCG API settings.
type PokemonConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// RunConfig configures batch processing behavior.
type RunConfig struct {
	OutputDir     string `yaml:"output_dir" mapstructure:"output_dir"`
	NavRetries    int    `yaml:"nav_retries" mapstructure:"nav_retries"`
	NavDelaySecs  int    `yaml:"nav_delay_secs" mapstructure:"nav_delay_secs"`
	SaveSettleMS  int    `yaml:"save_settle_ms" mapstructure:"save_settle_ms"`
}

// SaveSettle returns the post-save settle delay as a duration.
func (c RunConfig) SaveSettle() time.Duration {
	return time.Duration(c.SaveSettleMS) * time.Millisecond
}

// NavDelay returns the delay between navigation retries as a duration.
func (c RunConfig) NavDelay() time.Duration {
	return time.Duration(c.NavDelaySecs) * time.Second
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the fields the given run mode depends on. Modes: browse
// (any flow driving the seller portal), resolve (flows that only need the
// lookup APIs and cache).
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Cache.Driver {
	case "json", "sqlite":
	default:
		problems = append(problems, "cache.driver must be json or sqlite")
	}
	if c.Cache.Path == "" {
		problems = append(problems, "cache.path is required")
	}
	if c.Run.NavRetries < 1 || c.Run.NavRetries > 10 {
		problems = append(problems, "run.nav_retries must be between 1 and 10")
	}

	switch mode {
	case "browse":
		if c.Browser.DevtoolsURL == "" {
			problems = append(problems, "browser.devtools_url is required")
		}
		if c.Storefront.BaseURL == "" {
			problems = append(problems, "storefront.base_url is required")
		}
	case "resolve":
		if c.Scryfall.BaseURL == "" {
			problems = append(problems, "scryfall.base_url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STORESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("browser.devtools_url", "http://127.0.0.1:9222")
	v.SetDefault("browser.attach_timeout_secs", 10)
	v.SetDefault("browser.action_timeout_secs", 30)
	v.SetDefault("storefront.base_url", "https://store.tcgplayer.com")
	v.SetDefault("storefront.catalog_url", "https://store.tcgplayer.com/admin/product/catalog")
	v.SetDefault("cache.driver", "json")
	v.SetDefault("cache.path", "tcg_id_cache.json")
	v.SetDefault("scryfall.base_url", "https://api.scryfall.com")
	v.SetDefault("pokemon.base_url", "https://api.pokemontcg.io/v2")
	v.SetDefault("run.output_dir", "output")
	v.SetDefault("run.nav_retries", 3)
	v.SetDefault("run.nav_delay_secs", 5)
	v.SetDefault("run.save_settle_ms", 2500)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
