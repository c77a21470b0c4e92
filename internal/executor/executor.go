package executor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"salesight/internal/config"
	"salesight/internal/dataset"
	"salesight/internal/format"
	"salesight/internal/models"
)

// DefaultBreakdown is substituted when a program produces no breakdown.
const DefaultBreakdown = "Analysis complete, no details."

const defaultTableLimit = 50

// Result is the extracted triple of a program run.
type Result struct {
	Primary   models.Primary
	Breakdown string
	Table     *models.Table
}

// Run interprets a generated program against a private copy of the dataset.
// The snapshot passed in is cloned before any work, so the program can
// never mutate shared state. Rows are deduplicated by the rule's
// opportunity identifier and amounts normalized to the canonical currency
// unit before any filtering or aggregation. Faults such as unknown columns
// or type mismatches are returned as errors for the caller to classify;
// they never escape as panics.
func Run(prog *Program, snapshot *dataset.Dataset, rules config.Rules) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("program fault: %v", r)
		}
	}()

	if prog == nil {
		return nil, fmt.Errorf("empty program")
	}

	ds := snapshot.Clone()

	// A zero-row snapshot (empty upstream) yields the defined defaults
	// rather than tripping over column resolution.
	if ds.NumRows() == 0 {
		return &Result{
			Primary:   models.NumberPrimary(0),
			Breakdown: DefaultBreakdown,
		}, nil
	}

	dedupe(ds, rules.DedupColumn)
	normalizeCurrency(ds, rules)

	rows, err := applyFilters(ds, prog.Filters)
	if err != nil {
		return nil, err
	}

	res = &Result{
		Primary:   models.NumberPrimary(0),
		Breakdown: DefaultBreakdown,
	}

	if prog.Metric.Op != "" {
		primary, breakdown, err := computeMetric(ds, rows, prog, rules)
		if err != nil {
			return nil, err
		}
		res.Primary = primary
		if breakdown != "" {
			res.Breakdown = breakdown
		}
	}

	if prog.Table != nil && prog.Table.Include {
		res.Table = buildTable(ds, rows, prog.Table)
	}

	return res, nil
}

// dedupe keeps the first row per opportunity identifier. A missing
// identifier column leaves the rows as-is.
func dedupe(ds *dataset.Dataset, column string) {
	idx, ok := ds.Index(column)
	if !ok {
		return
	}
	seen := make(map[string]bool, len(ds.Rows))
	kept := ds.Rows[:0]
	for _, row := range ds.Rows {
		key := ds.Display(row, idx)
		if key != "" && seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, row)
	}
	ds.Rows = kept
}

// normalizeCurrency converts amounts recorded in the alternate unit to the
// canonical unit by the fixed divisor.
func normalizeCurrency(ds *dataset.Dataset, rules config.Rules) {
	if rules.CurrencyDivisor <= 0 || rules.AlternateUnit == "" {
		return
	}
	curIdx, ok := ds.Index(rules.CurrencyColumn)
	if !ok {
		return
	}
	amtIdx, ok := ds.Index(rules.AmountColumn)
	if !ok {
		return
	}
	for _, row := range ds.Rows {
		if fold(row[curIdx].Str) == fold(rules.AlternateUnit) {
			row[amtIdx].Num /= rules.CurrencyDivisor
			row[curIdx].Str = rules.CanonicalUnit
		}
	}
}

func applyFilters(ds *dataset.Dataset, filters []Filter) ([]int, error) {
	indices := make([]int, 0, len(ds.Rows))
	for i := range ds.Rows {
		indices = append(indices, i)
	}

	for _, f := range filters {
		col, ok := ds.Index(f.Column)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", f.Column)
		}
		kind := ds.Columns[col].Kind

		var from, to time.Time
		if f.From != "" || f.To != "" {
			if kind != dataset.KindDate {
				return nil, fmt.Errorf("column %q is not a date column", f.Column)
			}
			var err error
			if from, err = parseFilterDate(f.From); err != nil {
				return nil, err
			}
			if to, err = parseFilterDate(f.To); err != nil {
				return nil, err
			}
		}
		if (f.Gte != nil || f.Lte != nil) && kind != dataset.KindAmount {
			return nil, fmt.Errorf("column %q is not an amount column", f.Column)
		}

		kept := indices[:0]
		for _, i := range indices {
			row := ds.Rows[i]
			if matches(ds, row, col, f, from, to) {
				kept = append(kept, i)
			}
		}
		indices = kept
	}

	return indices, nil
}

func parseFilterDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q in filter", s)
	}
	return t, nil
}

func matches(ds *dataset.Dataset, row []dataset.Cell, col int, f Filter, from, to time.Time) bool {
	cell := row[col]
	if f.Contains != "" && !foldContains(ds.Display(row, col), f.Contains) {
		return false
	}
	if !from.IsZero() || !to.IsZero() {
		if cell.Time.IsZero() {
			return false
		}
		if !from.IsZero() && cell.Time.Before(from) {
			return false
		}
		if !to.IsZero() && cell.Time.After(to.Add(24*time.Hour-time.Nanosecond)) {
			return false
		}
	}
	if f.Gte != nil && cell.Num < *f.Gte {
		return false
	}
	if f.Lte != nil && cell.Num > *f.Lte {
		return false
	}
	return true
}

func computeMetric(ds *dataset.Dataset, rows []int, prog *Program, rules config.Rules) (models.Primary, string, error) {
	m := prog.Metric

	switch m.Op {
	case OpSum, OpAvg, OpMax, OpMin:
		col, err := amountColumn(ds, m.Column, rules)
		if err != nil {
			return models.Primary{}, "", err
		}
		value := aggregate(ds, rows, col, m.Op)
		breakdown, err := buildBreakdown(ds, rows, prog, col, rules)
		if err != nil {
			return models.Primary{}, "", err
		}
		return models.NumberPrimary(value), breakdown, nil

	case OpCount:
		breakdown, err := buildBreakdown(ds, rows, prog, -1, rules)
		if err != nil {
			return models.Primary{}, "", err
		}
		return models.NumberPrimary(float64(len(rows))), breakdown, nil

	case OpTop:
		groupCol := m.Column
		if groupCol == "" {
			groupCol = prog.GroupBy
		}
		idx, ok := ds.Index(groupCol)
		if !ok {
			return models.Primary{}, "", fmt.Errorf("unknown column %q", groupCol)
		}
		amtIdx := -1
		if i, ok := ds.Index(rules.AmountColumn); ok {
			amtIdx = i
		}
		groups := groupRows(ds, rows, idx, amtIdx)
		if len(groups) == 0 {
			return models.NumberPrimary(0), "No matching opportunities.", nil
		}
		top := groups[0]
		return models.TextPrimary(top.label), renderGroups(groups, amtIdx >= 0), nil

	case OpValue:
		idx, ok := ds.Index(m.Column)
		if !ok {
			return models.Primary{}, "", fmt.Errorf("unknown column %q", m.Column)
		}
		if len(rows) == 0 {
			return models.NumberPrimary(0), "No matching opportunities.", nil
		}
		text := ds.Display(ds.Rows[rows[0]], idx)
		breakdown := fmt.Sprintf("Matched %s opportunities; answer taken from %q.",
			format.Int(len(rows)), ds.Columns[idx].Name)
		return models.TextPrimary(text), breakdown, nil

	default:
		return models.Primary{}, "", fmt.Errorf("unknown metric operation %q", m.Op)
	}
}

// amountColumn resolves a money operation's column, defaulting to the
// canonical amount column from the business rules.
func amountColumn(ds *dataset.Dataset, name string, rules config.Rules) (int, error) {
	if name == "" {
		name = rules.AmountColumn
	}
	idx, ok := ds.Index(name)
	if !ok {
		return 0, fmt.Errorf("unknown column %q", name)
	}
	if ds.Columns[idx].Kind != dataset.KindAmount {
		return 0, fmt.Errorf("column %q is not an amount column", name)
	}
	return idx, nil
}

func aggregate(ds *dataset.Dataset, rows []int, col int, op string) float64 {
	if len(rows) == 0 {
		return 0
	}
	switch op {
	case OpSum:
		var total float64
		for _, i := range rows {
			total += ds.Rows[i][col].Num
		}
		return total
	case OpAvg:
		var total float64
		for _, i := range rows {
			total += ds.Rows[i][col].Num
		}
		return total / float64(len(rows))
	case OpMax:
		m := ds.Rows[rows[0]][col].Num
		for _, i := range rows[1:] {
			if v := ds.Rows[i][col].Num; v > m {
				m = v
			}
		}
		return m
	case OpMin:
		m := ds.Rows[rows[0]][col].Num
		for _, i := range rows[1:] {
			if v := ds.Rows[i][col].Num; v < m {
				m = v
			}
		}
		return m
	}
	return 0
}

type group struct {
	label string
	value float64
	count int
}

// groupRows groups by the display value of groupCol, summing amountCol
// (or counting when amountCol < 0), sorted by value descending.
func groupRows(ds *dataset.Dataset, rows []int, groupCol, amountCol int) []group {
	byLabel := make(map[string]*group)
	var order []string
	for _, i := range rows {
		label := ds.Display(ds.Rows[i], groupCol)
		if label == "" {
			label = "(none)"
		}
		g, ok := byLabel[label]
		if !ok {
			g = &group{label: label}
			byLabel[label] = g
			order = append(order, label)
		}
		g.count++
		if amountCol >= 0 {
			g.value += ds.Rows[i][amountCol].Num
		} else {
			g.value++
		}
	}

	groups := make([]group, 0, len(order))
	for _, label := range order {
		groups = append(groups, *byLabel[label])
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].value > groups[j].value })
	return groups
}

// buildBreakdown renders per-group lines when the program groups the
// metric, or a single summary line otherwise. Money is rendered with
// grouped thousands and two decimals.
func buildBreakdown(ds *dataset.Dataset, rows []int, prog *Program, amountCol int, rules config.Rules) (string, error) {
	if prog.GroupBy != "" {
		idx, ok := ds.Index(prog.GroupBy)
		if !ok {
			return "", fmt.Errorf("unknown column %q", prog.GroupBy)
		}
		groups := groupRows(ds, rows, idx, amountCol)
		if len(groups) == 0 {
			return "No matching opportunities.", nil
		}
		return renderGroups(groups, amountCol >= 0), nil
	}

	switch prog.Metric.Op {
	case OpCount:
		return fmt.Sprintf("COUNT: %s opportunities", format.Int(len(rows))), nil
	case OpAvg:
		return fmt.Sprintf("AVERAGE: %s over %s opportunities",
			format.Currency(aggregate(ds, rows, amountCol, OpAvg)), format.Int(len(rows))), nil
	case OpMax:
		return fmt.Sprintf("MAX: %s", format.Currency(aggregate(ds, rows, amountCol, OpMax))), nil
	case OpMin:
		return fmt.Sprintf("MIN: %s", format.Currency(aggregate(ds, rows, amountCol, OpMin))), nil
	default:
		return fmt.Sprintf("TOTAL: %s (%s opportunities)",
			format.Currency(aggregate(ds, rows, amountCol, OpSum)), format.Int(len(rows))), nil
	}
}

func renderGroups(groups []group, money bool) string {
	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteByte('\n')
		}
		if money {
			fmt.Fprintf(&b, "%s: %s", g.label, format.Currency(g.value))
		} else {
			fmt.Fprintf(&b, "%s: %s", g.label, format.Int(g.count))
		}
	}
	return b.String()
}

// buildTable materializes the optional result table. Requested columns
// missing from the dataset are skipped rather than failing the run; an
// empty selection falls back to every column.
func buildTable(ds *dataset.Dataset, rows []int, spec *TableSpec) *models.Table {
	var cols []int
	for _, name := range spec.Columns {
		if idx, ok := ds.Index(name); ok {
			cols = append(cols, idx)
		}
	}
	if len(cols) == 0 {
		cols = make([]int, len(ds.Columns))
		for i := range ds.Columns {
			cols[i] = i
		}
	}

	limit := spec.Limit
	if limit <= 0 {
		limit = defaultTableLimit
	}
	if len(rows) < limit {
		limit = len(rows)
	}
	if limit == 0 {
		return nil
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = ds.Columns[c].Name
	}

	out := make([][]string, 0, limit)
	for _, i := range rows[:limit] {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = ds.Display(ds.Rows[i], c)
		}
		out = append(out, row)
	}

	return &models.Table{Columns: names, Rows: out}
}
