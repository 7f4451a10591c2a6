package engine

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cardshed/storesync/internal/model"
	"github.com/cardshed/storesync/internal/page"
	"github.com/cardshed/storesync/internal/variant"
)

// parsePrice converts price text like "$1,234.56" to a float.
func parsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "$", ""), ",", ""))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// checkPriceAnomaly inspects the market prices of the Near-Mint and
// Lightly-Played rows (same foil status as target) and, when Lightly Played
// commands the higher price, surfaces the inversion. In Live mode the
// operator may retarget the update to the Lightly-Played row to capture the
// higher achievable price; the possibly-retargeted variant spec is returned.
// Dry runs alert but never prompt.
func checkPriceAnomaly(rows []page.Row, cardName, target string, mode model.RunMode, prompter Prompter) string {
	if !strings.Contains(variant.Fold(target), variant.Fold(model.ConditionNearMint)) {
		return target
	}

	foil := variant.IsFoil(target)
	nmPrice, nmOK := marketPriceFor(rows, model.ConditionNearMint, foil)
	lpPrice, lpOK := marketPriceFor(rows, model.ConditionLightlyPlayed, foil)
	if !nmOK || !lpOK || lpPrice <= nmPrice {
		return target
	}

	zap.L().Warn("pricing anomaly: lightly played above near mint",
		zap.String("card", cardName),
		zap.Float64("near_mint", nmPrice),
		zap.Float64("lightly_played", lpPrice),
	)
	fmt.Println()
	fmt.Println("  !!! PRICING ANOMALY DETECTED !!!")
	fmt.Printf("  Card: %s\n", cardName)
	fmt.Printf("  Near Mint:      $%.2f\n", nmPrice)
	fmt.Printf("  Lightly Played: $%.2f\n", lpPrice)
	fmt.Printf("  Currently listing as: %s\n", target)

	if !mode.IsLive() {
		return target
	}

	if prompter.Confirm("  >>> Switch listing to 'Lightly Played' to capture the higher price?") {
		retarget := model.ConditionLightlyPlayed
		if foil {
			retarget += " Foil"
		}
		zap.L().Info("anomaly retarget accepted", zap.String("card", cardName), zap.String("variant", retarget))
		return retarget
	}
	return target
}

// marketPriceFor finds the market price of the row whose label names the
// given condition with the given foil status.
func marketPriceFor(rows []page.Row, condition string, foil bool) (float64, bool) {
	for _, row := range rows {
		if variant.IsFoil(row.Label) != foil {
			continue
		}
		if !strings.Contains(variant.Fold(row.Label), variant.Fold(condition)) {
			continue
		}
		return parsePrice(row.MarketPrice)
	}
	return 0, false
}
