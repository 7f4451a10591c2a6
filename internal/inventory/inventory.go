// Package inventory loads the seller's master list from CSV or XLSX exports
// into InventoryRecords.
package inventory

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/cardshed/storesync/internal/model"
	"github.com/cardshed/storesync/internal/variant"
)

// Options configures master-list loading.
type Options struct {
	// Charset names the input encoding when the file is not UTF-8
	// (e.g. "windows-1252"). Empty means UTF-8 with optional BOM.
	Charset string

	// Sheet selects the XLSX sheet by name; empty means the first sheet.
	Sheet string
}

// conditionSlugs maps machine-readable condition slugs, as emitted by common
// collection managers, to the storefront's display grades.
var conditionSlugs = map[string]string{
	"near_mint":         model.ConditionNearMint,
	"lightly_played":    model.ConditionLightlyPlayed,
	"moderately_played": model.ConditionModeratelyPlayed,
	"heavily_played":    model.ConditionHeavilyPlayed,
	"damaged":           model.ConditionDamaged,
}

// Load reads the master list at path, dispatching on the file extension.
func Load(path string, opts Options) ([]model.InventoryRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return loadXLSX(path, opts)
	default:
		return loadCSV(path, opts)
	}
}

func loadCSV(path string, opts Options) ([]model.InventoryRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "inventory: open csv")
	}
	defer f.Close()

	r, err := decodeReader(f, opts.Charset)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "inventory: read csv")
	}
	return recordsFromRows(rows)
}

func loadXLSX(path string, opts Options) ([]model.InventoryRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "inventory: open xlsx")
	}

	var sheet *xlsx.Sheet
	if opts.Sheet != "" {
		s, ok := f.Sheet[opts.Sheet]
		if !ok {
			return nil, eris.Errorf("inventory: sheet %q not found", opts.Sheet)
		}
		sheet = s
	} else {
		if len(f.Sheets) == 0 {
			return nil, eris.New("inventory: xlsx has no sheets")
		}
		sheet = f.Sheets[0]
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return recordsFromRows(rows)
}

// decodeReader wraps r with a charset decoder when one is named. UTF-8 input
// passes through with its BOM stripped, matching how spreadsheet tools export
// "CSV UTF-8".
func decodeReader(r io.Reader, charset string) (io.Reader, error) {
	if charset == "" {
		return &bomStripper{r: r}, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "inventory: unknown charset %q", charset)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// bomStripper drops a leading UTF-8 byte order mark. The first three bytes
// are buffered before any data is handed out, so a BOM arriving across
// several short reads is still recognized.
type bomStripper struct {
	r       io.Reader
	started bool
	head    []byte
	err     error
}

func (b *bomStripper) Read(p []byte) (int, error) {
	if !b.started {
		b.started = true
		var buf [3]byte
		n, err := io.ReadFull(b.r, buf[:])
		head := buf[:n]
		if n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
			head = nil
		}
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		b.head = head
		b.err = err
	}
	if len(b.head) > 0 {
		n := copy(p, b.head)
		b.head = b.head[n:]
		return n, nil
	}
	if b.err != nil {
		return 0, b.err
	}
	return b.r.Read(p)
}

func recordsFromRows(rows [][]string) ([]model.InventoryRecord, error) {
	if len(rows) == 0 {
		return nil, eris.New("inventory: empty input")
	}

	idx := headerIndex(rows[0])
	if _, ok := idx["name"]; !ok {
		return nil, eris.New("inventory: input has no Name column")
	}

	records := make([]model.InventoryRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cell := func(keys ...string) string {
			for _, k := range keys {
				if i, ok := idx[k]; ok && i < len(row) {
					if v := strings.TrimSpace(row[i]); v != "" {
						return v
					}
				}
			}
			return ""
		}

		rec := model.InventoryRecord{
			ProductID:  cell("product id", "tcgplayer id"),
			ExternalID: cell("scryfall id"),
			Name:       cell("name"),
			Category:   cell("category"),
			SetName:    cell("set"),
			Variant:    normalizeVariant(cell("variant", "condition"), cell("foil")),
		}
		if rec.Name == "" && rec.ProductID == "" && rec.ExternalID == "" {
			continue // blank line
		}

		if qty := cell("qty", "quantity"); qty != "" {
			n, err := strconv.Atoi(qty)
			if err != nil || n < 0 {
				return nil, eris.Errorf("inventory: bad quantity %q for %q", qty, rec.Name)
			}
			rec.Quantity = n
		}

		records = append(records, rec)
	}
	return records, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

// normalizeVariant converts condition slugs to display grades and folds a
// separate Foil column into the variant spec.
func normalizeVariant(condition, foil string) string {
	if mapped, ok := conditionSlugs[strings.ToLower(condition)]; ok {
		condition = mapped
	}
	if strings.EqualFold(foil, "foil") && !variant.IsFoil(condition) {
		condition += " Foil"
	}
	return strings.TrimSpace(condition)
}
