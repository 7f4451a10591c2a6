package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// CatalogEntry is one harvested product from the storefront catalog table.
type CatalogEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Set      string `json:"set,omitempty"`
	Category string `json:"category,omitempty"`
	Rarity   string `json:"rarity,omitempty"`
	Number   string `json:"number,omitempty"`
}

// UnmarshalJSON accepts either the full object form or a legacy bare
// identifier string. The decision is made once at decode time; downstream
// code only ever sees CatalogEntry values.
func (e *CatalogEntry) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return eris.Wrap(err, "model: decode catalog entry id")
		}
		*e = CatalogEntry{ID: id}
		return nil
	}

	type plain CatalogEntry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return eris.Wrap(err, "model: decode catalog entry")
	}
	*e = CatalogEntry(p)
	return nil
}
