package model

// RunMode selects whether page mutations are actually performed.
// The zero value is DryRun so a forgotten flag can never mutate listings.
type RunMode int

const (
	// DryRun observes and reports without touching the storefront.
	DryRun RunMode = iota
	// Live performs quantity edits, price matches, and saves.
	Live
)

func (m RunMode) String() string {
	if m == Live {
		return "live"
	}
	return "dry-run"
}

// IsLive reports whether page mutations are enabled.
func (m RunMode) IsLive() bool { return m == Live }

// Canonical condition grades used by the storefront's variant labels.
const (
	ConditionNearMint         = "Near Mint"
	ConditionLightlyPlayed    = "Lightly Played"
	ConditionModeratelyPlayed = "Moderately Played"
	ConditionHeavilyPlayed    = "Heavily Played"
	ConditionDamaged          = "Damaged"
)

// InventoryRecord is one row of the seller's external master list. It is the
// source of truth for a run and is never mutated while processing.
type InventoryRecord struct {
	// ProductID is the storefront listing identifier, when the master list
	// already carries one. Empty means the resolver chain must find it.
	ProductID string

	// ExternalID is a card-database identifier (e.g. a Scryfall UUID) that
	// can be cross-referenced to a ProductID.
	ExternalID string

	Name     string
	Category string
	SetName  string

	// Variant is the free-text condition/foil spec the listing row must
	// match, e.g. "Near Mint" or "Lightly Played Foil".
	Variant string

	// Quantity is the target (reconcile) or additional (upload) count.
	Quantity int
}
