package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cardshed/storesync/internal/engine"
	"github.com/cardshed/storesync/internal/model"
)

var downloadOut string

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Export the storefront catalog to CSV",
	Long: `Harvests every product in the seller's inventory and writes the catalog
metadata to a CSV export. Read-only: nothing on the storefront changes.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("browse"); err != nil {
			return err
		}

		session, err := attachSession(ctx)
		if err != nil {
			return err
		}
		defer session.Close()

		eng := engine.New(session, nil, nil, nil, engineOptions(engine.StdinPrompter{}))
		entries, err := eng.Harvest(ctx)
		if err != nil {
			return eris.Wrap(err, "download: harvest catalog")
		}

		out := downloadOut
		if out == "" {
			stamp := time.Now().Format("20060102_150405")
			out = filepath.Join(cfg.Run.OutputDir, fmt.Sprintf("tcg_inventory_export_%s.csv", stamp))
		}
		if err := writeCatalogCSV(out, entries); err != nil {
			return err
		}

		zap.L().Info("export written", zap.String("file", out), zap.Int("products", len(entries)))
		return nil
	},
}

func writeCatalogCSV(path string, entries []model.CatalogEntry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "download: mkdir")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "download: create export")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Product ID", "Name", "Set", "Category", "Rarity", "Number"}); err != nil {
		return eris.Wrap(err, "download: write header")
	}
	for _, e := range entries {
		if err := w.Write([]string{e.ID, e.Name, e.Set, e.Category, e.Rarity, e.Number}); err != nil {
			return eris.Wrap(err, "download: write row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "download: flush export")
}

func init() {
	downloadCmd.Flags().StringVar(&downloadOut, "out", "", "export file path (default is a timestamped file in the output dir)")
	rootCmd.AddCommand(downloadCmd)
}
