package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/cardshed/storesync/internal/model"
	"github.com/cardshed/storesync/internal/store"
)

// Progress is the resume cursor. The checkpoint advances after every record
// regardless of outcome, so a later resume continues forward instead of
// retrying a poisoned record.
type Progress struct {
	path       string
	reportPath string
}

// NewProgress tracks checkpoints at path, recording reportPath in each one.
func NewProgress(path, reportPath string) *Progress {
	return &Progress{path: path, reportPath: reportPath}
}

// Checkpoint overwrites the progress file with id as the last processed
// record. Checkpoint failures are logged, not fatal: losing a cursor costs a
// re-run, aborting costs the batch.
func (p *Progress) Checkpoint(id string) {
	if p == nil || p.path == "" {
		return
	}
	cp := model.Checkpoint{
		LastProcessedID: id,
		ReportFile:      p.reportPath,
		Timestamp:       time.Now().UTC(),
	}
	if err := store.SaveCheckpoint(p.path, cp); err != nil {
		zap.L().Warn("checkpoint write failed", zap.String("id", id), zap.Error(err))
	}
}

// ResumeIndex computes where processing should restart: the position after
// the checkpointed id. A checkpoint id missing from the harvest list means
// the list changed under us; the safe fallback is full reprocessing from 0,
// logged loudly, never silent data loss.
func ResumeIndex(entries []model.CatalogEntry, cp model.Checkpoint) int {
	for i, e := range entries {
		if e.ID == cp.LastProcessedID {
			return i + 1
		}
	}
	zap.L().Warn("checkpoint id not found in harvest list, restarting from beginning",
		zap.String("last_processed_id", cp.LastProcessedID),
		zap.Int("harvest_size", len(entries)),
	)
	return 0
}
