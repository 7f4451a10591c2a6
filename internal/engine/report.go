package engine

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/cardshed/storesync/internal/model"
)

// ReportWriter appends rows to the run's CSV report. The file is opened,
// appended, and closed per row so a crash mid-run leaves every completed row
// on disk.
type ReportWriter struct {
	path string
}

// NewReportWriter targets the report file at path.
func NewReportWriter(path string) *ReportWriter {
	return &ReportWriter{path: path}
}

// Path returns the report file location, recorded in every checkpoint.
func (w *ReportWriter) Path() string { return w.path }

// Init creates the report file and writes the header once. Resumed runs
// skip Init and keep appending to the existing file.
func (w *ReportWriter) Init() error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "report: mkdir")
		}
	}

	f, err := os.Create(w.path)
	if err != nil {
		return eris.Wrap(err, "report: create")
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(model.ReportColumns); err != nil {
		return eris.Wrap(err, "report: write header")
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush header")
}

// Append writes one row and syncs it to disk.
func (w *ReportWriter) Append(row model.ReportRow) error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrap(err, "report: open for append")
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{
		row.ProductID, row.Name, row.Set, row.Category, row.Number,
		row.Rarity, row.Variant, strconv.Itoa(row.Qty),
		row.OldPrice, row.NewPrice, string(row.Status),
	}); err != nil {
		return eris.Wrap(err, "report: write row")
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush row")
}
