package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/cardshed/storesync/internal/browser"
	"github.com/cardshed/storesync/internal/engine"
	"github.com/cardshed/storesync/internal/model"
	"github.com/cardshed/storesync/internal/page"
	"github.com/cardshed/storesync/internal/resilience"
	"github.com/cardshed/storesync/internal/resolve"
	"github.com/cardshed/storesync/internal/store"
	"github.com/cardshed/storesync/pkg/pokemontcg"
	"github.com/cardshed/storesync/pkg/scryfall"
)

// runMode reads the shared --live flag into the engine's mode. Dry run is
// the default everywhere; mutation is always opt-in.
func runMode(live bool) model.RunMode {
	if live {
		return model.Live
	}
	return model.DryRun
}

func attachSession(ctx context.Context) (*browser.Session, error) {
	return browser.Attach(ctx, browser.Config{
		DevtoolsURL:   cfg.Browser.DevtoolsURL,
		BaseURL:       cfg.Storefront.BaseURL,
		CatalogURL:    cfg.Storefront.CatalogURL,
		AttachTimeout: time.Duration(cfg.Browser.AttachTimeoutSecs) * time.Second,
		ActionTimeout: time.Duration(cfg.Browser.ActionTimeoutSecs) * time.Second,
	})
}

func openCache() (store.IDCache, error) {
	return store.OpenCache(store.CacheConfig{
		Driver: cfg.Cache.Driver,
		Path:   cfg.Cache.Path,
	})
}

func newResolver(cache store.IDCache, catalog page.CatalogPage) *resolve.Resolver {
	scry := scryfall.NewClient(scryfall.WithBaseURL(cfg.Scryfall.BaseURL))
	poke := pokemontcg.NewClient(cfg.Pokemon.Key, pokemontcg.WithBaseURL(cfg.Pokemon.BaseURL))
	return resolve.New(cache, scry, poke, catalog)
}

func engineOptions(prompter engine.Prompter) engine.Options {
	return engine.Options{
		NavRetry: resilience.Fixed(cfg.Run.NavRetries, cfg.Run.NavDelay()),
		Settle:   cfg.Run.SaveSettle(),
		Prompter: prompter,
	}
}

// newReportPath names a fresh report file. The timestamp keeps runs sortable
// and the uuid suffix keeps two runs started the same second apart.
func newReportPath() string {
	stamp := time.Now().Format("20060102_150405")
	return filepath.Join(cfg.Run.OutputDir,
		fmt.Sprintf("inventory_report_%s_%s.csv", stamp, uuid.NewString()[:8]))
}

func harvestPath() string {
	return filepath.Join(cfg.Run.OutputDir, "harvest_latest.json")
}

func progressPath() string {
	return filepath.Join(cfg.Run.OutputDir, "progress_latest.json")
}
