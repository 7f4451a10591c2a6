package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardshed/storesync/internal/model"
	"github.com/cardshed/storesync/internal/page"
	"github.com/cardshed/storesync/internal/store"
)

func TestSyncHarvestedRefreshesStockedRows(t *testing.T) {
	session := newFakeSession()
	session.products["100"] = &fakeProduct{
		name: "Pikachu", set: "Jungle", category: "Pokemon",
		rows: []page.Row{
			{Index: 0, Label: "Near Mint", Quantity: "3", Price: "1.00", HasMatch: true},
			{Index: 1, Label: "Lightly Played", Quantity: "0", Price: "0.80", HasMatch: true},
			{Index: 2, Label: "Near Mint Foil", Quantity: "1", Price: "5.00", HasMatch: true},
		},
		priceAfterMatch: map[int]string{0: "1.10", 2: "5.50"},
	}
	eng, report, _ := newTestEngine(t, session, store.NewMemoryCache(), nil)

	entries := []model.CatalogEntry{{ID: "100", Number: "60", Rarity: "Common"}}
	stats, err := eng.SyncHarvested(context.Background(), entries, 0, model.Live)
	require.NoError(t, err)

	// Only the two stocked rows get touched.
	assert.Equal(t, []int{0, 2}, session.products["100"].matched)
	assert.Equal(t, 1, session.saves)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 2, stats.Items)
	assert.Equal(t, 2, stats.PriceChanges)

	content := readReport(t, report.Path())
	assert.Contains(t, content, "100,Pikachu,Jungle,Pokemon,60,Common,Near Mint,3,1.00,1.10,Updated")
	assert.Contains(t, content, "Near Mint Foil,1,5.00,5.50,Updated")
	assert.NotContains(t, content, "Lightly Played")
}

func TestSyncHarvestedIdentityFallsBackToPage(t *testing.T) {
	session := newFakeSession()
	session.products["200"] = &fakeProduct{
		name: "Blastoise", set: "Base Set", category: "Pokemon",
		rows: []page.Row{{Index: 0, Label: "Near Mint", Quantity: "1", Price: "9.00", HasMatch: true}},
	}
	eng, report, _ := newTestEngine(t, session, store.NewMemoryCache(), nil)

	// Harvest entry carries only the id; identity comes from the page.
	_, err := eng.SyncHarvested(context.Background(), []model.CatalogEntry{{ID: "200"}}, 0, model.DryRun)
	require.NoError(t, err)

	assert.Contains(t, readReport(t, report.Path()), "200,Blastoise,Base Set,Pokemon")
}

func TestSyncHarvestedUnknownNameDefault(t *testing.T) {
	session := newFakeSession()
	session.products["300"] = &fakeProduct{
		rows: []page.Row{{Index: 0, Label: "Near Mint", Quantity: "2", Price: "1.00", HasMatch: true}},
	}
	eng, report, _ := newTestEngine(t, session, store.NewMemoryCache(), nil)

	_, err := eng.SyncHarvested(context.Background(), []model.CatalogEntry{{ID: "300"}}, 0, model.DryRun)
	require.NoError(t, err)

	assert.Contains(t, readReport(t, report.Path()), "300,Unknown")
}

func TestSyncHarvestedCheckpointAdvancesOnFailure(t *testing.T) {
	session := newFakeSession()
	session.products["400"] = &fakeProduct{
		rows: []page.Row{{Index: 0, Label: "Near Mint", Quantity: "1", Price: "1.00", HasMatch: true}},
	}
	// id 399 never loads.
	session.navFailures["399"] = 10

	eng, _, dir := newTestEngine(t, session, store.NewMemoryCache(), nil)

	entries := []model.CatalogEntry{{ID: "399"}, {ID: "400"}}
	stats, err := eng.SyncHarvested(context.Background(), entries, 0, model.DryRun)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)

	// The final checkpoint points past the failed product.
	cp, err := store.LoadCheckpoint(filepath.Join(dir, "progress.json"))
	require.NoError(t, err)
	assert.Equal(t, "400", cp.LastProcessedID)
}

func TestSyncHarvestedStartIndexSkipsProcessed(t *testing.T) {
	session := newFakeSession()
	session.products["500"] = &fakeProduct{
		rows: []page.Row{{Index: 0, Label: "Near Mint", Quantity: "1", Price: "1.00", HasMatch: true}},
	}
	session.products["501"] = &fakeProduct{
		rows: []page.Row{{Index: 0, Label: "Near Mint", Quantity: "1", Price: "1.00", HasMatch: true}},
	}
	eng, _, _ := newTestEngine(t, session, store.NewMemoryCache(), nil)

	entries := []model.CatalogEntry{{ID: "500"}, {ID: "501"}}
	stats, err := eng.SyncHarvested(context.Background(), entries, 1, model.DryRun)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, session.navCalls, "resumed runs must not revisit processed products")
}

func TestResumeIndex(t *testing.T) {
	entries := []model.CatalogEntry{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	tests := []struct {
		name string
		last string
		want int
	}{
		{"after first", "a", 1},
		{"after middle", "b", 2},
		{"after last", "c", 3},
		{"id not in list restarts", "zzz", 0},
		{"empty checkpoint restarts", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResumeIndex(entries, model.Checkpoint{LastProcessedID: tt.last})
			assert.Equal(t, tt.want, got)
		})
	}
}
