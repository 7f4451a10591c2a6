package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/cardshed/storesync/internal/model"
	"github.com/cardshed/storesync/internal/page"
)

// SyncHarvested walks the harvested catalog from startIndex, refreshing the
// price of every stocked variant row against market. The checkpoint advances
// after every product regardless of outcome, so a resumed run never retries
// a product that keeps failing.
func (e *Engine) SyncHarvested(ctx context.Context, entries []model.CatalogEntry, startIndex int, mode model.RunMode) (*Stats, error) {
	stats := &Stats{}
	for i := startIndex; i < len(entries); i++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		entry := entries[i]
		zap.L().Info("processing product",
			zap.Int("index", i+1),
			zap.Int("total", len(entries)),
			zap.String("product_id", entry.ID),
		)
		e.syncProduct(ctx, entry, mode, stats)
		stats.Processed++
		e.progress.Checkpoint(entry.ID)
	}
	stats.LogSummary()
	return stats, nil
}

func (e *Engine) syncProduct(ctx context.Context, entry model.CatalogEntry, mode model.RunMode, stats *Stats) {
	log := zap.L().With(zap.String("product_id", entry.ID))

	if err := e.navigate(ctx, entry.ID); err != nil {
		log.Warn("skipping: navigation failed after retries", zap.Error(err))
		stats.Skipped++
		return
	}

	name, set, category := e.productIdentity(ctx, entry)
	log.Info("product",
		zap.String("name", name),
		zap.String("set", set),
		zap.String("category", category),
	)

	rows, err := e.session.Rows(ctx)
	if err != nil {
		log.Warn("skipping: could not read listing rows", zap.Error(err))
		stats.Skipped++
		return
	}
	log.Debug("variant rows found", zap.Int("rows", len(rows)))

	mutated := false
	for i, row := range rows {
		qty := parseQty(row.Quantity)
		if qty <= 0 {
			continue
		}

		status := model.StatusDryRun
		newPrice := ""
		if !row.HasMatch {
			log.Warn("no market match control", zap.String("row", row.Label))
			status = model.StatusNoMatchButton
		} else if mode.IsLive() {
			if err := e.session.MatchMarketPrice(ctx, i); err != nil {
				log.Warn("market match failed", zap.String("row", row.Label), zap.Error(err))
				status = model.StatusNoMatchButton
			} else {
				mutated = true
				status = model.StatusUpdated
				if p, err := e.session.PriceValue(ctx, i); err == nil {
					newPrice = p
				}
			}
		}

		log.Info("variant",
			zap.String("row", row.Label),
			zap.Int("qty", qty),
			zap.String("old_price", row.Price),
			zap.String("new_price", newPrice),
		)

		e.appendReport(model.ReportRow{
			ProductID: entry.ID,
			Name:      name,
			Set:       set,
			Category:  category,
			Number:    entry.Number,
			Rarity:    entry.Rarity,
			Variant:   row.Label,
			Qty:       qty,
			OldPrice:  row.Price,
			NewPrice:  newPrice,
			Status:    status,
		}, stats)
	}

	if mutated && mode.IsLive() {
		e.save(ctx, log)
		stats.Updated++
	}
}

// productIdentity prefers harvested catalog metadata and falls back to
// extracting what the detail page itself exposes.
func (e *Engine) productIdentity(ctx context.Context, entry model.CatalogEntry) (name, set, category string) {
	name = entry.Name
	if name == "" {
		if n, err := e.session.ProductName(ctx); err == nil {
			name = n
		} else if !page.IsNotPresent(err) {
			zap.L().Debug("product name extraction failed", zap.Error(err))
		}
	}
	if name == "" {
		name = "Unknown"
	}

	set = entry.Set
	if set == "" {
		if s, err := e.session.ProductSet(ctx); err == nil {
			set = s
		}
	}

	category = entry.Category
	if category == "" {
		if c, err := e.session.ProductCategory(ctx); err == nil {
			category = c
		}
	}
	return name, set, category
}
