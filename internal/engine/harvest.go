package engine

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cardshed/storesync/internal/model"
)

// Harvest paginates the seller's catalog and collects every product's
// identifier and metadata, deduplicated by identifier. The operator gets a
// verification pause after the filters are applied: if the automated filter
// setup missed, they can fix it in the browser before harvesting starts.
func (e *Engine) Harvest(ctx context.Context) ([]model.CatalogEntry, error) {
	if err := e.session.OpenCatalog(ctx); err != nil {
		return nil, eris.Wrap(err, "harvest: open catalog")
	}

	if err := e.session.ApplyInventoryFilter(ctx); err != nil {
		zap.L().Warn("could not apply inventory filter automatically, set it manually", zap.Error(err))
	}

	e.prompter.Pause("VERIFICATION REQUIRED:\n" +
		"Check the browser window.\n" +
		"1. Is 'My Inventory Only' checked?\n" +
		"2. Did the search results load?\n" +
		"If not, fix the filters and search manually before continuing.")

	var entries []model.CatalogEntry
	seen := make(map[string]bool)

	for pageNum := 1; ; pageNum++ {
		if err := ctx.Err(); err != nil {
			return entries, err
		}

		batch, err := e.session.CatalogEntries(ctx)
		if err != nil {
			return nil, eris.Wrapf(err, "harvest: read catalog page %d", pageNum)
		}

		fresh := 0
		for _, entry := range batch {
			if entry.ID == "" || seen[entry.ID] {
				continue
			}
			seen[entry.ID] = true
			entries = append(entries, entry)
			fresh++
		}
		zap.L().Info("scanned catalog page",
			zap.Int("page", pageNum),
			zap.Int("new_products", fresh),
			zap.Int("total", len(entries)),
		)

		more, err := e.session.NextCatalogPage(ctx)
		if err != nil {
			zap.L().Warn("pagination stopped early", zap.Error(err))
			break
		}
		if !more {
			zap.L().Info("end of catalog")
			break
		}
	}

	return entries, nil
}
