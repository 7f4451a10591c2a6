package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/cardshed/storesync/internal/model"
)

// SaveCheckpoint overwrites the progress file with cp. Called after every
// processed record so a later resume continues forward.
func SaveCheckpoint(path string, cp model.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return eris.Wrap(err, "progress: marshal checkpoint")
	}
	if err := writeFile(path, data); err != nil {
		return eris.Wrap(err, "progress: write checkpoint")
	}
	return nil
}

// LoadCheckpoint reads the progress file. Callers treat any error as "start
// fresh" — a corrupt checkpoint never aborts a run.
func LoadCheckpoint(path string) (model.Checkpoint, error) {
	var cp model.Checkpoint
	data, err := os.ReadFile(path)
	if err != nil {
		return cp, eris.Wrap(err, "progress: read checkpoint")
	}
	if err := json.Unmarshal(data, &cp); err != nil {
		return cp, eris.Wrap(err, "progress: decode checkpoint")
	}
	return cp, nil
}

// SaveHarvest persists the harvested catalog list so a resumed run does not
// re-harvest.
func SaveHarvest(path string, entries []model.CatalogEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return eris.Wrap(err, "progress: marshal harvest")
	}
	if err := writeFile(path, data); err != nil {
		return eris.Wrap(err, "progress: write harvest")
	}
	return nil
}

// LoadHarvest reads a persisted harvest list. Legacy files holding bare id
// strings decode into entries with only the ID set.
func LoadHarvest(path string) ([]model.CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "progress: read harvest")
	}
	var entries []model.CatalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrap(err, "progress: decode harvest")
	}
	return entries, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
