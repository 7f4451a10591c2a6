package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cardshed/storesync/internal/engine"
	"github.com/cardshed/storesync/internal/inventory"
)

var (
	reconcileLive    bool
	reconcileCharset string
	reconcileSheet   string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <master-file>",
	Short: "Reconcile storefront quantities against a master inventory list",
	Long: `Reads a master CSV or XLSX inventory list, resolves each record to its
storefront listing, overwrites the matched variant row's quantity with the
master value, and refreshes its price against market.

Dry run by default: without --live nothing on the storefront changes and the
report records what would have happened.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("browse"); err != nil {
			return err
		}

		records, err := inventory.Load(args[0], inventory.Options{
			Charset: reconcileCharset,
			Sheet:   reconcileSheet,
		})
		if err != nil {
			return eris.Wrap(err, "reconcile: load master list")
		}
		zap.L().Info("loaded master list", zap.Int("records", len(records)), zap.String("file", args[0]))

		mode := runMode(reconcileLive)
		if !mode.IsLive() {
			zap.L().Info("dry run mode, no changes will be made")
		}

		session, err := attachSession(ctx)
		if err != nil {
			return err
		}
		defer session.Close()

		cache, err := openCache()
		if err != nil {
			return err
		}
		defer cache.Close()

		report := engine.NewReportWriter(newReportPath())
		if err := report.Init(); err != nil {
			return err
		}
		progress := engine.NewProgress(progressPath(), report.Path())

		eng := engine.New(session, newResolver(cache, session), report, progress, engineOptions(nil))
		stats, err := eng.Reconcile(ctx, records, mode)
		if err != nil {
			return eris.Wrap(err, "reconcile: run")
		}

		zap.L().Info("report written",
			zap.String("file", report.Path()),
			zap.Int("rows", stats.Items),
		)
		return nil
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileLive, "live", false, "actually update the storefront (default is dry run)")
	reconcileCmd.Flags().StringVar(&reconcileCharset, "charset", "", "input encoding when not UTF-8 (e.g. windows-1252)")
	reconcileCmd.Flags().StringVar(&reconcileSheet, "sheet", "", "XLSX sheet name (default is the first sheet)")
	rootCmd.AddCommand(reconcileCmd)
}
