package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardshed/storesync/internal/model"
	"github.com/cardshed/storesync/internal/store"
	"github.com/cardshed/storesync/pkg/pokemontcg"
	"github.com/cardshed/storesync/pkg/scryfall"
)

type fakeScryfall struct {
	calls int
	card  *scryfall.Card
	err   error
}

func (f *fakeScryfall) Card(context.Context, string) (*scryfall.Card, error) {
	f.calls++
	return f.card, f.err
}

type fakePokemon struct {
	searchCalls int
	cards       []pokemontcg.Card
	searchErr   error
	resolveErr  error
}

func (f *fakePokemon) SearchCards(context.Context, string) ([]pokemontcg.Card, error) {
	f.searchCalls++
	return f.cards, f.searchErr
}

func (f *fakePokemon) ResolveListingID(_ context.Context, url string) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	// Mimic the real extraction for URLs used in these tests.
	return url[len(url)-5:], nil
}

type fakeCatalog struct {
	searchCalls int
	id          string
	err         error
}

func (f *fakeCatalog) OpenCatalog(context.Context) error            { return nil }
func (f *fakeCatalog) ApplyInventoryFilter(context.Context) error   { return nil }
func (f *fakeCatalog) NextCatalogPage(context.Context) (bool, error) { return false, nil }
func (f *fakeCatalog) CatalogEntries(context.Context) ([]model.CatalogEntry, error) {
	return nil, nil
}
func (f *fakeCatalog) SearchCatalog(context.Context, string) (string, error) {
	f.searchCalls++
	return f.id, f.err
}

func TestDirectStrategySkipsCacheAndNetwork(t *testing.T) {
	cache := store.NewMemoryCache()
	scry := &fakeScryfall{}
	r := New(cache, scry, nil, nil)

	id, err := r.Resolve(context.Background(), model.InventoryRecord{
		ProductID:  "614199",
		ExternalID: "some-scryfall-id",
		Name:       "Lightning Bolt",
	})
	require.NoError(t, err)
	assert.Equal(t, "614199", id)
	assert.Equal(t, 0, scry.calls)
	assert.Equal(t, 0, cache.Len(), "direct resolution must not touch the cache")
}

func TestScryfallLookupCachesResult(t *testing.T) {
	cache := store.NewMemoryCache()
	scry := &fakeScryfall{card: &scryfall.Card{Name: "Lightning Bolt", TCGPlayerID: 161480}}
	r := New(cache, scry, nil, nil)

	rec := model.InventoryRecord{ExternalID: "abc-123", Name: "Lightning Bolt"}

	id, err := r.Resolve(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "161480", id)
	assert.Equal(t, 1, scry.calls)
	assert.GreaterOrEqual(t, cache.Flushes, 1, "fresh resolution must be persisted")

	// Second resolution is a cache hit: same value, no second network call.
	id2, err := r.Resolve(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, id, id2)
	assert.Equal(t, 1, scry.calls)
}

func TestScryfallFailureFallsThrough(t *testing.T) {
	cache := store.NewMemoryCache()
	scry := &fakeScryfall{err: errors.New("timeout")}
	catalog := &fakeCatalog{id: "777"}
	r := New(cache, scry, nil, catalog)

	id, err := r.Resolve(context.Background(), model.InventoryRecord{
		ExternalID: "abc-123",
		Name:       "Lightning Bolt",
	})
	require.NoError(t, err)
	assert.Equal(t, "777", id)
	assert.Equal(t, 0, cache.Len(), "failed lookups are never cached")
}

func TestPokemonLookupSelectsBestSetMatch(t *testing.T) {
	cache := store.NewMemoryCache()
	poke := &fakePokemon{cards: []pokemontcg.Card{
		{Name: "Charizard", Set: pokemontcg.SetInfo{Name: "Dragon"},
			TCGPlayer: &pokemontcg.MarketData{URL: "https://prices.example/tcgplayer/11111"}},
		{Name: "Charizard", Set: pokemontcg.SetInfo{Name: "Base Set"},
			TCGPlayer: &pokemontcg.MarketData{URL: "https://prices.example/tcgplayer/42382"}},
	}}
	r := New(cache, nil, poke, nil)

	rec := model.InventoryRecord{Name: "Charizard", Category: "Pokemon", SetName: "Base"}

	id, err := r.Resolve(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "42382", id)

	cached, ok := cache.Get("pokemon_Charizard_Base")
	assert.True(t, ok)
	assert.Equal(t, "42382", cached)

	// Cache hit on the second pass.
	_, err = r.Resolve(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, 1, poke.searchCalls)
}

func TestPokemonLookupFallsBackToFirstResult(t *testing.T) {
	cache := store.NewMemoryCache()
	poke := &fakePokemon{cards: []pokemontcg.Card{
		{Name: "Charizard", Set: pokemontcg.SetInfo{Name: "Obsidian Flames"},
			TCGPlayer: &pokemontcg.MarketData{URL: "https://prices.example/tcgplayer/11111"}},
	}}
	r := New(cache, nil, poke, nil)

	id, err := r.Resolve(context.Background(), model.InventoryRecord{
		Name: "Charizard", Category: "Pokemon", SetName: "Base Set",
	})
	require.NoError(t, err)
	assert.Equal(t, "11111", id)
}

func TestPokemonLookupGatedByCategory(t *testing.T) {
	poke := &fakePokemon{cards: []pokemontcg.Card{{Name: "Counterspell"}}}
	r := New(store.NewMemoryCache(), nil, poke, nil)

	_, err := r.Resolve(context.Background(), model.InventoryRecord{
		Name: "Counterspell", Category: "Magic: The Gathering",
	})
	assert.ErrorIs(t, err, ErrUnresolved)
	assert.Equal(t, 0, poke.searchCalls)
}

func TestCatalogSearchIsNotCached(t *testing.T) {
	cache := store.NewMemoryCache()
	catalog := &fakeCatalog{id: "88123"}
	r := New(cache, nil, nil, catalog)

	rec := model.InventoryRecord{Name: "Obscure Promo Card"}

	id, err := r.Resolve(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "88123", id)
	assert.Equal(t, 0, cache.Len())

	_, err = r.Resolve(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.searchCalls, "name-only results must be re-searched, not cached")
}

func TestAllStrategiesExhausted(t *testing.T) {
	r := New(store.NewMemoryCache(), &fakeScryfall{err: errors.New("down")}, nil, &fakeCatalog{err: errors.New("no results")})

	_, err := r.Resolve(context.Background(), model.InventoryRecord{
		ExternalID: "abc", Name: "Mystery Card",
	})
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestBestSetMatchAccentFolded(t *testing.T) {
	cards := []pokemontcg.Card{
		{Set: pokemontcg.SetInfo{Name: "Évolutions"},
			TCGPlayer: &pokemontcg.MarketData{URL: "https://prices.example/tcgplayer/22222"}},
	}
	got := bestSetMatch(cards, "Evolutions")
	require.NotNil(t, got)
	assert.Equal(t, "Évolutions", got.Set.Name)
}
