package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cardshed/storesync/internal/model"
)

var (
	resolveScryfallID string
	resolveCategory   string
	resolveSet        string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Resolve a single card to its storefront product id",
	Long: `Runs one card through the identifier resolution chain (Scryfall id
lookup, Pokemon name search) without touching the browser, and prints the
resolved product id. Useful for checking master-list entries before a run;
successful lookups land in the cache like any other.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("resolve"); err != nil {
			return err
		}

		cache, err := openCache()
		if err != nil {
			return err
		}
		defer cache.Close()

		// No browser session here, so the catalog-search fallback is off.
		resolver := newResolver(cache, nil)

		rec := model.InventoryRecord{
			Name:       args[0],
			ExternalID: resolveScryfallID,
			Category:   resolveCategory,
			SetName:    resolveSet,
		}
		id, err := resolver.Resolve(ctx, rec)
		if err != nil {
			return eris.Wrapf(err, "resolve: %q", args[0])
		}

		zap.L().Info("resolved",
			zap.String("name", rec.Name),
			zap.String("product_id", id),
		)
		fmt.Println(id)
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveScryfallID, "scryfall-id", "", "Scryfall card id for the direct lookup strategy")
	resolveCmd.Flags().StringVar(&resolveCategory, "category", "", "game category, e.g. Pokemon (gates the name-search strategy)")
	resolveCmd.Flags().StringVar(&resolveSet, "set", "", "set name for disambiguating name-search results")
	rootCmd.AddCommand(resolveCmd)
}
