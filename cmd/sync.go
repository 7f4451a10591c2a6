package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cardshed/storesync/internal/engine"
	"github.com/cardshed/storesync/internal/model"
	"github.com/cardshed/storesync/internal/store"
)

var (
	syncLive   bool
	syncResume bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Harvest the whole storefront and refresh every stocked price",
	Long: `Walks the seller's full catalog in two phases: harvest every product id
with its metadata, then visit each listing and match every stocked variant's
price to market.

With --resume the run continues from the last checkpoint using the previous
harvest list and keeps appending to the same report file.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("browse"); err != nil {
			return err
		}

		mode := runMode(syncLive)
		if !mode.IsLive() {
			zap.L().Info("dry run mode, no changes will be made")
		}

		session, err := attachSession(ctx)
		if err != nil {
			return err
		}
		defer session.Close()

		var (
			entries    []model.CatalogEntry
			startIndex int
			report     *engine.ReportWriter
		)

		if syncResume {
			entries, startIndex, report, err = resumeState()
			if err != nil {
				return err
			}
		}

		if report == nil {
			// Fresh run: harvest the catalog, persist the list, start a new
			// report.
			prompter := engine.StdinPrompter{}
			harvester := engine.New(session, nil, nil, nil, engineOptions(prompter))
			entries, err = harvester.Harvest(ctx)
			if err != nil {
				return eris.Wrap(err, "sync: harvest catalog")
			}
			if err := store.SaveHarvest(harvestPath(), entries); err != nil {
				return err
			}
			zap.L().Info("harvest complete", zap.Int("products", len(entries)))

			report = engine.NewReportWriter(newReportPath())
			if err := report.Init(); err != nil {
				return err
			}
			startIndex = 0
		}

		progress := engine.NewProgress(progressPath(), report.Path())
		eng := engine.New(session, nil, report, progress, engineOptions(nil))

		stats, err := eng.SyncHarvested(ctx, entries, startIndex, mode)
		if err != nil {
			return eris.Wrap(err, "sync: run")
		}

		zap.L().Info("report written",
			zap.String("file", report.Path()),
			zap.Int("rows", stats.Items),
		)
		return nil
	},
}

// resumeState rebuilds the entries, start index, and report target from the
// previous run's files. A missing or unreadable checkpoint falls back to a
// fresh run rather than failing.
func resumeState() ([]model.CatalogEntry, int, *engine.ReportWriter, error) {
	cp, err := store.LoadCheckpoint(progressPath())
	if err != nil {
		zap.L().Warn("no usable checkpoint, starting fresh", zap.Error(err))
		return nil, 0, nil, nil
	}
	entries, err := store.LoadHarvest(harvestPath())
	if err != nil {
		zap.L().Warn("no usable harvest list, starting fresh", zap.Error(err))
		return nil, 0, nil, nil
	}

	startIndex := engine.ResumeIndex(entries, cp)
	zap.L().Info("resuming",
		zap.String("last_processed_id", cp.LastProcessedID),
		zap.Int("start_index", startIndex),
		zap.Int("total", len(entries)),
		zap.String("report", cp.ReportFile),
	)
	return entries, startIndex, engine.NewReportWriter(cp.ReportFile), nil
}

func init() {
	syncCmd.Flags().BoolVar(&syncLive, "live", false, "actually update the storefront (default is dry run)")
	syncCmd.Flags().BoolVar(&syncResume, "resume", false, "continue from the last checkpoint")
	rootCmd.AddCommand(syncCmd)
}
