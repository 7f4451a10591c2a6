package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		target string
		labels []string
		want   int
	}{
		{
			name:   "foil target prefers foil row over plain row",
			target: "Near Mint Foil",
			labels: []string{"Near Mint Foil - Direct", "Near Mint"},
			want:   0,
		},
		{
			name:   "plain target skips foil row",
			target: "Near Mint",
			labels: []string{"Near Mint Foil", "Near Mint"},
			want:   1,
		},
		{
			name:   "no row with matching foil status",
			target: "Near Mint",
			labels: []string{"Near Mint Foil"},
			want:   -1,
		},
		{
			name:   "foil target with only plain rows",
			target: "Lightly Played Foil",
			labels: []string{"Lightly Played", "Near Mint"},
			want:   -1,
		},
		{
			name:   "label carries extra qualifier text",
			target: "Near Mint Foil",
			labels: []string{"Near Mint (Foil) - Direct"},
			want:   0,
		},
		{
			name:   "case insensitive",
			target: "near mint",
			labels: []string{"NEAR MINT"},
			want:   0,
		},
		{
			name:   "condition mismatch",
			target: "Heavily Played",
			labels: []string{"Near Mint", "Lightly Played", "Damaged"},
			want:   -1,
		},
		{
			name:   "first qualifying row in encounter order",
			target: "Played",
			labels: []string{"Near Mint", "Lightly Played", "Moderately Played"},
			want:   1,
		},
		{
			name:   "empty label set",
			target: "Near Mint",
			labels: nil,
			want:   -1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Match(tc.target, tc.labels))
		})
	}
}

func TestIsFoil(t *testing.T) {
	assert.True(t, IsFoil("Near Mint Foil"))
	assert.True(t, IsFoil("FOIL lightly played"))
	assert.False(t, IsFoil("Near Mint"))
	assert.False(t, IsFoil(""))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "pokemon", Fold("Pokémon"))
	assert.Equal(t, "base set", Fold("Base Set"))
	assert.Equal(t, Fold("Évolution Céleste"), Fold("Evolution Celeste"))
}
