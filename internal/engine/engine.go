// Package engine drives reconciliation runs: resolve each inventory record
// to a listing, match its variant row, compare and update quantity, refresh
// the price against market, and checkpoint after every record. Processing is
// strictly sequential — the remote browsing session is a singleton resource
// and concurrent navigation would corrupt in-flight page state.
package engine

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/cardshed/storesync/internal/model"
	"github.com/cardshed/storesync/internal/page"
	"github.com/cardshed/storesync/internal/resilience"
	"github.com/cardshed/storesync/internal/resolve"
	"github.com/cardshed/storesync/internal/variant"
)

// Engine orchestrates per-record processing against a single page session.
type Engine struct {
	session  page.Session
	resolver *resolve.Resolver
	report   *ReportWriter
	progress *Progress
	navRetry resilience.RetryConfig
	settle   time.Duration
	prompter Prompter
}

// Options tunes engine behavior; zero values select the defaults.
type Options struct {
	// NavRetry is the page-navigation retry policy. Default: 3 attempts,
	// 5s fixed delay.
	NavRetry resilience.RetryConfig

	// Settle is how long to wait after clicking save. The page gives no
	// completion signal beyond settling down, so this is a fixed delay,
	// not an event wait. Default: 2.5s.
	Settle time.Duration

	// Prompter handles the interactive moments. Default: never prompts,
	// always declines.
	Prompter Prompter
}

// New builds an engine over the given session and collaborators. report and
// progress may be nil for flows that do not produce them.
func New(session page.Session, resolver *resolve.Resolver, report *ReportWriter, progress *Progress, opts Options) *Engine {
	if opts.NavRetry.MaxAttempts == 0 {
		opts.NavRetry = resilience.Fixed(3, 5*time.Second)
	}
	if opts.Settle == 0 {
		opts.Settle = 2500 * time.Millisecond
	}
	if opts.Prompter == nil {
		opts.Prompter = silentPrompter{}
	}
	return &Engine{
		session:  session,
		resolver: resolver,
		report:   report,
		progress: progress,
		navRetry: opts.NavRetry,
		settle:   opts.Settle,
		prompter: opts.Prompter,
	}
}

// Stats summarizes a run.
type Stats struct {
	Processed    int
	Skipped      int
	NoVariant    int
	Updated      int
	Items        int
	PriceChanges int
	ValueDelta   float64
}

// LogSummary writes the end-of-run summary.
func (s *Stats) LogSummary() {
	zap.L().Info("run complete",
		zap.Int("processed", s.Processed),
		zap.Int("skipped", s.Skipped),
		zap.Int("variant_not_found", s.NoVariant),
		zap.Int("updated", s.Updated),
		zap.Int("report_rows", s.Items),
		zap.Int("price_changes", s.PriceChanges),
		zap.Float64("value_delta", s.ValueDelta),
	)
}

// Reconcile processes the master list sequentially, overwriting each matched
// row's quantity with the record's target and refreshing its price. Every
// per-record failure is isolated: one bad record never aborts the batch.
func (e *Engine) Reconcile(ctx context.Context, records []model.InventoryRecord, mode model.RunMode) (*Stats, error) {
	stats := &Stats{}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		zap.L().Info("reconciling",
			zap.Int("index", i+1),
			zap.Int("total", len(records)),
			zap.String("name", rec.Name),
			zap.String("variant", rec.Variant),
			zap.Int("target_qty", rec.Quantity),
		)
		id := e.reconcileRecord(ctx, rec, mode, stats)
		stats.Processed++
		if id != "" {
			e.progress.Checkpoint(id)
		}
	}
	stats.LogSummary()
	return stats, nil
}

// reconcileRecord runs one record through the state machine. It returns the
// resolved identifier ("" when resolution failed) so the caller can advance
// the checkpoint.
func (e *Engine) reconcileRecord(ctx context.Context, rec model.InventoryRecord, mode model.RunMode, stats *Stats) string {
	log := zap.L().With(zap.String("name", rec.Name))

	// Resolving.
	id, err := e.resolver.Resolve(ctx, rec)
	if err != nil {
		log.Warn("skipping: no product identifier found", zap.Error(err))
		stats.Skipped++
		return ""
	}
	log = log.With(zap.String("product_id", id))

	// Navigating.
	if err := e.navigate(ctx, id); err != nil {
		log.Warn("skipping: navigation failed after retries", zap.Error(err))
		stats.Skipped++
		return id
	}

	// RowMatching.
	rows, err := e.session.Rows(ctx)
	if err != nil {
		log.Warn("skipping: could not read listing rows", zap.Error(err))
		stats.Skipped++
		return id
	}
	idx := variant.Match(rec.Variant, labelsOf(rows))
	if idx < 0 {
		log.Warn("variant row not found", zap.String("variant", rec.Variant))
		stats.NoVariant++
		return id
	}
	row := rows[idx]

	// Comparing.
	current := parseQty(row.Quantity)
	mutated := false
	if current != rec.Quantity {
		log.Info("quantity mismatch",
			zap.Int("store", current),
			zap.Int("master", rec.Quantity),
		)
		if mode.IsLive() {
			if err := e.session.SetQuantity(ctx, idx, strconv.Itoa(rec.Quantity)); err != nil {
				log.Error("quantity update failed", zap.Error(err))
			} else {
				mutated = true
			}
		}
	} else {
		log.Info("quantity already in sync", zap.Int("qty", current))
	}

	// Updating: the price refresh runs on every visit regardless of the
	// quantity delta, keeping prices fresh even when stock is unchanged.
	status, newPrice := e.refreshPrice(ctx, idx, row, mode, &mutated)

	// Saving.
	if mutated && mode.IsLive() {
		e.save(ctx, log)
		stats.Updated++
	}

	e.appendReport(model.ReportRow{
		ProductID: id,
		Name:      rec.Name,
		Set:       rec.SetName,
		Category:  rec.Category,
		Variant:   row.Label,
		Qty:       rec.Quantity,
		OldPrice:  row.Price,
		NewPrice:  newPrice,
		Status:    status,
	}, stats)
	return id
}

// Upload processes an additive stocking list: quantities are added to the
// matched row rather than overwritten, every stocked row on the page gets a
// price refresh, and Near-Mint records are checked for the
// Lightly-Played-above-Near-Mint pricing inversion.
func (e *Engine) Upload(ctx context.Context, records []model.InventoryRecord, mode model.RunMode) (*Stats, error) {
	stats := &Stats{}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		zap.L().Info("uploading",
			zap.Int("index", i+1),
			zap.Int("total", len(records)),
			zap.String("name", rec.Name),
			zap.String("variant", rec.Variant),
			zap.Int("add_qty", rec.Quantity),
		)
		id := e.uploadRecord(ctx, rec, mode, stats)
		stats.Processed++
		if id != "" {
			e.progress.Checkpoint(id)
		}
	}
	stats.LogSummary()
	return stats, nil
}

func (e *Engine) uploadRecord(ctx context.Context, rec model.InventoryRecord, mode model.RunMode, stats *Stats) string {
	log := zap.L().With(zap.String("name", rec.Name))

	id, err := e.resolver.Resolve(ctx, rec)
	if err != nil {
		log.Warn("skipping: no product identifier found", zap.Error(err))
		stats.Skipped++
		return ""
	}
	log = log.With(zap.String("product_id", id))

	if err := e.navigate(ctx, id); err != nil {
		log.Warn("skipping: navigation failed after retries", zap.Error(err))
		stats.Skipped++
		return id
	}

	rows, err := e.session.Rows(ctx)
	if err != nil {
		log.Warn("skipping: could not read listing rows", zap.Error(err))
		stats.Skipped++
		return id
	}

	// The anomaly check may retarget a Near-Mint record to Lightly Played.
	target := checkPriceAnomaly(rows, rec.Name, rec.Variant, mode, e.prompter)
	idx := variant.Match(target, labelsOf(rows))

	// Refresh prices across the whole listing: every stocked row, plus the
	// target row even when it currently has no stock.
	mutated := false
	for i, row := range rows {
		if parseQty(row.Quantity) <= 0 && i != idx {
			continue
		}
		if !row.HasMatch {
			log.Warn("no market match control", zap.String("row", row.Label))
			continue
		}
		if mode.IsLive() {
			if err := e.session.MatchMarketPrice(ctx, i); err != nil {
				log.Warn("market match failed", zap.String("row", row.Label), zap.Error(err))
			} else {
				mutated = true
			}
		}
	}

	if idx < 0 {
		log.Warn("variant row not found", zap.String("variant", target))
		stats.NoVariant++
		return id
	}
	row := rows[idx]

	current := parseQty(row.Quantity)
	newQty := current + rec.Quantity
	log.Info("adding stock",
		zap.String("row", row.Label),
		zap.Int("current", current),
		zap.Int("new", newQty),
	)

	status := model.StatusDryRun
	newPrice := ""
	if mode.IsLive() {
		if err := e.session.SetQuantity(ctx, idx, strconv.Itoa(newQty)); err != nil {
			log.Error("quantity update failed", zap.Error(err))
		} else {
			mutated = true
			status = model.StatusUpdated
		}
		if p, err := e.session.PriceValue(ctx, idx); err == nil {
			newPrice = p
		}
	}

	if mutated && mode.IsLive() {
		e.save(ctx, log)
		stats.Updated++
	}

	e.appendReport(model.ReportRow{
		ProductID: id,
		Name:      rec.Name,
		Set:       rec.SetName,
		Category:  rec.Category,
		Variant:   row.Label,
		Qty:       newQty,
		OldPrice:  row.Price,
		NewPrice:  newPrice,
		Status:    status,
	}, stats)
	return id
}

// navigate opens the listing-management view under the retry policy.
func (e *Engine) navigate(ctx context.Context, id string) error {
	cfg := e.navRetry
	cfg.OnRetry = resilience.RetryLogger("storefront", "open product "+id)
	return resilience.Do(ctx, cfg, func(ctx context.Context) error {
		return e.session.OpenProduct(ctx, id)
	})
}

// refreshPrice triggers the market-price match for the row at idx and
// re-reads the resulting price. Reports which terminal status the row earned.
func (e *Engine) refreshPrice(ctx context.Context, idx int, row page.Row, mode model.RunMode, mutated *bool) (model.RowStatus, string) {
	if !row.HasMatch {
		zap.L().Warn("no market match control", zap.String("row", row.Label))
		return model.StatusNoMatchButton, ""
	}
	if !mode.IsLive() {
		return model.StatusDryRun, ""
	}

	if err := e.session.MatchMarketPrice(ctx, idx); err != nil {
		if page.IsNotPresent(err) {
			return model.StatusNoMatchButton, ""
		}
		zap.L().Warn("market match failed", zap.String("row", row.Label), zap.Error(err))
		return model.StatusNoMatchButton, ""
	}
	*mutated = true

	newPrice := ""
	if p, err := e.session.PriceValue(ctx, idx); err == nil {
		newPrice = p
	}
	return model.StatusUpdated, newPrice
}

// save clicks the page's save control and waits out the settle delay. A
// missing or unresponsive control is an error worth shouting about — no
// silent partial save is assumed.
func (e *Engine) save(ctx context.Context, log *zap.Logger) {
	if err := e.session.Save(ctx); err != nil {
		log.Error("save failed", zap.Error(err))
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(e.settle):
	}
	log.Info("saved")
}

func (e *Engine) appendReport(row model.ReportRow, stats *Stats) {
	if e.report == nil {
		return
	}
	if err := e.report.Append(row); err != nil {
		zap.L().Error("report append failed", zap.Error(err))
		return
	}
	stats.Items++
	if oldP, ok := parsePrice(row.OldPrice); ok {
		if newP, ok := parsePrice(row.NewPrice); ok && abs(newP-oldP) > 0.001 {
			stats.PriceChanges++
			stats.ValueDelta += (newP - oldP) * float64(row.Qty)
		}
	}
}

func labelsOf(rows []page.Row) []string {
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.Label
	}
	return labels
}

// parseQty reads a quantity input value; anything non-numeric counts as 0.
func parseQty(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
