// Package variant maps a loosely-specified condition/foil target onto a
// specific listing-table row.
package variant

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lower-cases s and strips diacritics, so "Pokémon" and "pokemon"
// compare equal. Used for set-name and category comparisons where upstream
// sources disagree on accents.
func Fold(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// IsFoil reports whether a variant label or target spec names a foil
// printing.
func IsFoil(s string) bool {
	return strings.Contains(strings.ToLower(s), "foil")
}

// baseCondition strips the foil marker from a lower-cased label, leaving the
// condition text ("near mint (foil) - direct" -> "near mint () - direct").
func baseCondition(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(s), "foil", ""))
}

// Match selects the row whose label satisfies target and returns its index
// in labels, or -1 when no row qualifies.
//
// Foil status must match exactly: a foil target never selects a non-foil row
// and vice versa. Among rows with matching foil status, the foil-stripped
// target must be a substring of the foil-stripped label — row labels may
// carry extra qualifier text ("Near Mint (Foil) - Direct") while the
// condition vocabulary itself is small and well known, so substring
// containment is the deliberate tolerance. The first qualifying row in
// encounter order wins.
func Match(target string, labels []string) int {
	targetFoil := IsFoil(target)
	targetBase := baseCondition(target)

	for i, label := range labels {
		if IsFoil(label) != targetFoil {
			continue
		}
		if strings.Contains(baseCondition(label), targetBase) {
			return i
		}
	}
	return -1
}
