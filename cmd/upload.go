package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cardshed/storesync/internal/engine"
	"github.com/cardshed/storesync/internal/inventory"
)

var (
	uploadLive    bool
	uploadCharset string
	uploadSheet   string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <stocking-file>",
	Short: "Add new stock from a purchase list",
	Long: `Reads a stocking list and adds each record's quantity on top of the
storefront's current stock for the matched variant row, refreshing prices
across the listing while there.

Near-Mint records are checked for the Lightly-Played-above-Near-Mint market
inversion; in live mode the operator may retarget such listings.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("browse"); err != nil {
			return err
		}

		records, err := inventory.Load(args[0], inventory.Options{
			Charset: uploadCharset,
			Sheet:   uploadSheet,
		})
		if err != nil {
			return eris.Wrap(err, "upload: load stocking list")
		}
		zap.L().Info("loaded stocking list", zap.Int("records", len(records)), zap.String("file", args[0]))

		mode := runMode(uploadLive)
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

		// The anomaly retarget decision needs a human; uploads run with a
		// real prompter.
		eng := engine.New(session, newResolver(cache, session), report, progress,
			engineOptions(engine.StdinPrompter{}))
		stats, err := eng.Upload(ctx, records, mode)
		if err != nil {
			return eris.Wrap(err, "upload: run")
		}

		zap.L().Info("report written",
			zap.String("file", report.Path()),
			zap.Int("rows", stats.Items),
		)
		return nil
	},
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadLive, "live", false, "actually update the storefront (default is dry run)")
	uploadCmd.Flags().StringVar(&uploadCharset, "charset", "", "input encoding when not UTF-8 (e.g. windows-1252)")
	uploadCmd.Flags().StringVar(&uploadSheet, "sheet", "", "XLSX sheet name (default is the first sheet)")
	rootCmd.AddCommand(uploadCmd)
}
