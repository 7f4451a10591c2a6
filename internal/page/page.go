// Package page declares the remote-page capabilities the engine depends on.
// The storefront's management interface is treated as an abstract queryable
// table of rows and cells; the concrete driver lives in internal/browser.
package page

import (
	"context"
	"errors"

	"github.com/cardshed/storesync/internal/model"
)

// ErrNotPresent is returned by accessors when the element they address does
// not exist on the current page. Absence is an ordinary outcome the caller
// decides about, not a swallowed failure.
var ErrNotPresent = errors.New("page: element not present")

// IsNotPresent reports whether err means the addressed element is absent.
func IsNotPresent(err error) bool { return errors.Is(err, ErrNotPresent) }

// Row is a snapshot of one variant row on a listing-management page. It is
// read fresh per visit and never persisted; mutations go back through the
// Session addressed by Index.
type Row struct {
	// Index is the row's position in the listing table, used to address
	// quantity edits and price-match clicks.
	Index int `json:"index"`

	// Label is the variant text of the first cell, e.g. "Near Mint Foil".
	Label string `json:"label"`

	// Quantity is the raw value of the row's quantity input. Non-numeric
	// values mean the row is not stockable.
	Quantity string `json:"quantity"`

	// Price is the current value of the seller's price input.
	Price string `json:"price"`

	// MarketPrice is the text of the reference market-price cell.
	MarketPrice string `json:"marketPrice"`

	// HasMatch reports whether the market-price match control exists for
	// this row.
	HasMatch bool `json:"hasMatch"`
}

// Session is the singleton remote-browsing capability shared by a whole run.
// All navigation is strictly sequential; concurrent calls would corrupt
// in-flight page state.
type Session interface {
	ProductPage
	CatalogPage

	// Close detaches from the remote browser.
	Close() error
}

// ProductPage is the listing-management view for a single product.
type ProductPage interface {
	// OpenProduct navigates to the listing-management view for id.
	OpenProduct(ctx context.Context, id string) error

	// ProductName extracts the product's display name, trying the page's
	// layered sources in order. Returns ErrNotPresent when none yield one.
	ProductName(ctx context.Context) (string, error)

	// ProductSet reads the set name from the product info block.
	ProductSet(ctx context.Context) (string, error)

	// ProductCategory derives the game category from the product detail
	// link, e.g. "Pokemon" or "Magic: The Gathering".
	ProductCategory(ctx context.Context) (string, error)

	// Rows enumerates all variant rows of the listing table.
	Rows(ctx context.Context) ([]Row, error)

	// SetQuantity writes qty into the quantity input of the row at index.
	SetQuantity(ctx context.Context, index int, qty string) error

	// MatchMarketPrice clicks the market-price match control of the row at
	// index. ErrNotPresent when the control is missing.
	MatchMarketPrice(ctx context.Context, index int) error

	// PriceValue re-reads the row's price input, e.g. after a match click.
	PriceValue(ctx context.Context, index int) (string, error)

	// Save clicks the page's save control. ErrNotPresent when the control
	// is missing; the caller decides how loudly to complain.
	Save(ctx context.Context) error
}

// CatalogPage is the paginated product-catalog view used for harvesting and
// free-text identifier search.
type CatalogPage interface {
	// OpenCatalog navigates to the catalog listing.
	OpenCatalog(ctx context.Context) error

	// ApplyInventoryFilter restricts the catalog to the seller's own
	// inventory and submits the search.
	ApplyInventoryFilter(ctx context.Context) error

	// CatalogEntries reads all product rows of the current catalog page.
	CatalogEntries(ctx context.Context) ([]model.CatalogEntry, error)

	// NextCatalogPage advances to the next page. Returns false when the
	// next control is absent or disabled.
	NextCatalogPage(ctx context.Context) (bool, error)

	// SearchCatalog submits name as a free-text catalog query and returns
	// the product identifier embedded in the first result's detail link.
	SearchCatalog(ctx context.Context, name string) (string, error)
}
