// Package resolve maps inventory records lacking a direct storefront
// identifier to the numeric id of their listing, via an ordered chain of
// resolution strategies backed by a persistent cache.
package resolve

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cardshed/storesync/internal/model"
	"github.com/cardshed/storesync/internal/page"
	"github.com/cardshed/storesync/internal/store"
	"github.com/cardshed/storesync/internal/variant"
	"github.com/cardshed/storesync/pkg/pokemontcg"
	"github.com/cardshed/storesync/pkg/scryfall"
)

// ErrUnresolved is returned when every strategy in the chain has failed.
// Non-fatal: the caller skips the record and moves on.
var ErrUnresolved = eris.New("resolve: no strategy produced an identifier")

// Resolver tries strategies in fixed order; the first success wins and no
// further strategies run. Failed lookups are never cached, so a record that
// is unresolvable today is retried on the next run — upstream card databases
// backfill product links over time.
type Resolver struct {
	cache      store.IDCache
	strategies []strategy
}

type strategy struct {
	name string
	fn   func(ctx context.Context, rec model.InventoryRecord) (string, bool)
}

// New builds the resolver chain. The catalog session may be nil, in which
// case the page-search fallback is skipped.
func New(cache store.IDCache, scry scryfall.Client, poke pokemontcg.Client, catalog page.CatalogPage) *Resolver {
	r := &Resolver{cache: cache}
	r.strategies = []strategy{
		{"direct", r.direct},
		{"scryfall", func(ctx context.Context, rec model.InventoryRecord) (string, bool) {
			return r.scryfallLookup(ctx, scry, rec)
		}},
		{"pokemon-api", func(ctx context.Context, rec model.InventoryRecord) (string, bool) {
			return r.pokemonLookup(ctx, poke, rec)
		}},
		{"catalog-search", func(ctx context.Context, rec model.InventoryRecord) (string, bool) {
			return r.catalogSearch(ctx, catalog, rec)
		}},
	}
	return r
}

// Resolve runs the strategy chain for rec.
func (r *Resolver) Resolve(ctx context.Context, rec model.InventoryRecord) (string, error) {
	for _, s := range r.strategies {
		if id, ok := s.fn(ctx, rec); ok {
			zap.L().Debug("resolved identifier",
				zap.String("name", rec.Name),
				zap.String("strategy", s.name),
				zap.String("product_id", id),
			)
			return id, nil
		}
	}
	return "", ErrUnresolved
}

// direct returns an already-present identifier unchanged, without touching
// the cache.
func (r *Resolver) direct(_ context.Context, rec model.InventoryRecord) (string, bool) {
	if rec.ProductID == "" {
		return "", false
	}
	return rec.ProductID, true
}

// scryfallLookup cross-references an external card-database id. Any network
// or parse failure is treated as a miss and the chain falls through.
func (r *Resolver) scryfallLookup(ctx context.Context, client scryfall.Client, rec model.InventoryRecord) (string, bool) {
	if rec.ExternalID == "" || client == nil {
		return "", false
	}

	if id, ok := r.cache.Get(rec.ExternalID); ok {
		return id, true
	}

	card, err := client.Card(ctx, rec.ExternalID)
	if err != nil {
		zap.L().Warn("scryfall lookup failed",
			zap.String("name", rec.Name),
			zap.String("external_id", rec.ExternalID),
			zap.Error(err),
		)
		return "", false
	}
	if card.TCGPlayerID <= 0 {
		return "", false
	}

	id := strconv.FormatInt(card.TCGPlayerID, 10)
	r.put(rec.ExternalID, id)
	return id, true
}

// pokemonLookup searches the Pokemon TCG API by name, disambiguates by set,
// and extracts the listing id from the best match's market-data URL. Only
// runs for records in the Pokemon game family.
func (r *Resolver) pokemonLookup(ctx context.Context, client pokemontcg.Client, rec model.InventoryRecord) (string, bool) {
	if client == nil || rec.Name == "" || !isPokemon(rec.Category) {
		return "", false
	}

	key := pokemonCacheKey(rec)
	if id, ok := r.cache.Get(key); ok {
		return id, true
	}

	cards, err := client.SearchCards(ctx, rec.Name)
	if err != nil {
		zap.L().Warn("pokemon api lookup failed", zap.String("name", rec.Name), zap.Error(err))
		return "", false
	}

	card := bestSetMatch(cards, rec.SetName)
	if card == nil {
		return "", false
	}

	id, err := client.ResolveListingID(ctx, card.TCGPlayer.URL)
	if err != nil {
		zap.L().Warn("pokemon listing id extraction failed",
			zap.String("name", rec.Name),
			zap.String("url", card.TCGPlayer.URL),
			zap.Error(err),
		)
		return "", false
	}

	r.put(key, id)
	return id, true
}

// catalogSearch drives the storefront's own catalog search as a last resort.
// Results are deliberately not cached: a key on name alone would collide
// across game categories.
func (r *Resolver) catalogSearch(ctx context.Context, catalog page.CatalogPage, rec model.InventoryRecord) (string, bool) {
	if catalog == nil || rec.Name == "" {
		return "", false
	}

	id, err := catalog.SearchCatalog(ctx, rec.Name)
	if err != nil {
		zap.L().Warn("catalog search failed", zap.String("name", rec.Name), zap.Error(err))
		return "", false
	}
	return id, id != ""
}

// put caches a fresh resolution and persists it immediately, so an
// interrupted run keeps every lookup it paid for.
func (r *Resolver) put(key, id string) {
	r.cache.Put(key, id)
	if err := r.cache.Flush(); err != nil {
		zap.L().Warn("cache flush failed", zap.Error(err))
	}
}

func isPokemon(category string) bool {
	return strings.Contains(variant.Fold(category), "pokemon")
}

func pokemonCacheKey(rec model.InventoryRecord) string {
	key := "pokemon_" + rec.Name
	if rec.SetName != "" {
		key += "_" + rec.SetName
	}
	return key
}

// bestSetMatch picks the candidate whose set name fuzzy-matches wantSet:
// case-insensitive, accent-folded substring containment in either direction.
// Without a set to match (or without any match) the first candidate carrying
// market data wins. Returns nil when no candidate has market data at all.
func bestSetMatch(cards []pokemontcg.Card, wantSet string) *pokemontcg.Card {
	var first *pokemontcg.Card
	want := variant.Fold(wantSet)

	for i := range cards {
		c := &cards[i]
		if c.TCGPlayer == nil || c.TCGPlayer.URL == "" {
			continue
		}
		if first == nil {
			first = c
		}
		if want == "" {
			break
		}
		have := variant.Fold(c.Set.Name)
		if have != "" && (strings.Contains(have, want) || strings.Contains(want, have)) {
			return c
		}
	}
	return first
}
