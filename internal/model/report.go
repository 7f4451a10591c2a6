package model

import "time"

// RowStatus describes the outcome of one variant-row visit.
type RowStatus string

const (
	StatusUpdated       RowStatus = "Updated"
	StatusDryRun        RowStatus = "DryRun"
	StatusNoMatchButton RowStatus = "NoMatchButton"
)

// ReportRow is one line of the incremental run report. Rows are append-only
// so an interrupted run still leaves a usable report behind.
type ReportRow struct {
	ProductID string
	Name      string
	Set       string
	Category  string
	Number    string
	Rarity    string
	Variant   string
	Qty       int
	OldPrice  string
	NewPrice  string
	Status    RowStatus
}

// ReportColumns is the fixed header of the report file.
var ReportColumns = []string{
	"Product ID", "Name", "Set", "Category", "Number", "Rarity",
	"Variant", "Qty", "Old Price", "New Price", "Status",
}

// Checkpoint is the resume cursor, overwritten after every processed record.
type Checkpoint struct {
	LastProcessedID string    `json:"last_processed_id"`
	ReportFile      string    `json:"report_file"`
	Timestamp       time.Time `json:"timestamp"`
}
