package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Column kinds inferred from column names during normalization.
const (
	KindText   = "text"
	KindAmount = "amount"
	KindDate   = "date"
)

// Column is a named, typed column of a Dataset.
type Column struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Cell is a normalized value. Which field is meaningful depends on the
// column kind: Num for amounts, Time for dates (zero time = null date),
// Str for text.
type Cell struct {
	Num  float64
	Time time.Time
	Str  string
}

// Dataset is the in-memory table produced by a sync: ordered typed columns
// over normalized rows. It is replaced wholesale on re-sync and never
// mutated in place; per-query work happens on a Clone.
type Dataset struct {
	Columns []Column
	Rows    [][]Cell
}

var amountMarkers = []string{"total", "monto", "previsto", "amount", "importe"}
var dateMarkers = []string{"fecha", "date"}

// FromRecords builds a normalized Dataset from raw upstream records.
// Column order is the sorted union of record keys; missing keys become
// null cells, never errors. Amount columns are coerced to numeric with
// currency symbols and thousands separators stripped (failures become
// zero); date columns are parsed day-first (failures become a null date).
func FromRecords(records []map[string]any) *Dataset {
	seen := make(map[string]bool)
	var names []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)

	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = Column{Name: name, Kind: inferKind(name)}
	}

	rows := make([][]Cell, len(records))
	for r, rec := range records {
		row := make([]Cell, len(cols))
		for c, col := range cols {
			row[c] = normalizeCell(rec[col.Name], col.Kind)
		}
		rows[r] = row
	}

	return &Dataset{Columns: cols, Rows: rows}
}

func inferKind(name string) string {
	lower := strings.ToLower(name)
	for _, m := range amountMarkers {
		if strings.Contains(lower, m) {
			return KindAmount
		}
	}
	for _, m := range dateMarkers {
		if strings.Contains(lower, m) {
			return KindDate
		}
	}
	return KindText
}

func normalizeCell(raw any, kind string) Cell {
	switch kind {
	case KindAmount:
		return Cell{Num: coerceAmount(raw)}
	case KindDate:
		return Cell{Time: parseDayFirst(stringify(raw))}
	default:
		return Cell{Str: stringify(raw)}
	}
}

// coerceAmount strips currency symbols and separators before parsing.
// Anything unparseable is zero.
func coerceAmount(raw any) float64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		return v
	case int:
		return float64(v)
	}
	s := strings.TrimSpace(stringify(raw))
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
	time.RFC3339,
}

func parseDayFirst(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func stringify(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// NumRows returns the row count.
func (d *Dataset) NumRows() int { return len(d.Rows) }

// NumColumns returns the column count.
func (d *Dataset) NumColumns() int { return len(d.Columns) }

// ColumnNames returns the ordered column names.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Index finds a column by name, case-insensitively.
func (d *Dataset) Index(name string) (int, bool) {
	for i, c := range d.Columns {
		if strings.EqualFold(c.Name, name) {
			return i, true
		}
	}
	return 0, false
}

// Clone deep-copies the dataset so a generated program can never mutate
// the cached snapshot.
func (d *Dataset) Clone() *Dataset {
	cols := make([]Column, len(d.Columns))
	copy(cols, d.Columns)
	rows := make([][]Cell, len(d.Rows))
	for i, row := range d.Rows {
		dup := make([]Cell, len(row))
		copy(dup, row)
		rows[i] = dup
	}
	return &Dataset{Columns: cols, Rows: rows}
}

// Display renders a cell of column index c as a display string.
func (d *Dataset) Display(row []Cell, c int) string {
	cell := row[c]
	switch d.Columns[c].Kind {
	case KindAmount:
		return strconv.FormatFloat(cell.Num, 'f', -1, 64)
	case KindDate:
		if cell.Time.IsZero() {
			return ""
		}
		return cell.Time.Format("2006-01-02")
	default:
		return cell.Str
	}
}

// Schema is the derived view handed to the query compiler: ordered column
// names plus a type summary. Built fresh per query, never persisted.
type Schema struct {
	Columns []string
	Types   map[string]string
	Rows    int
}

// Schema derives the schema descriptor for the current snapshot.
func (d *Dataset) Schema() Schema {
	types := make(map[string]string, len(d.Columns))
	for _, c := range d.Columns {
		types[c.Name] = c.Kind
	}
	return Schema{Columns: d.ColumnNames(), Types: types, Rows: len(d.Rows)}
}

// Summary renders the schema as the type-summary string embedded in the
// compiler prompt.
func (s Schema) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d rows, %d columns\n", s.Rows, len(s.Columns))
	for _, name := range s.Columns {
		fmt.Fprintf(&b, "- %s (%s)\n", name, s.Types[name])
	}
	return b.String()
}
