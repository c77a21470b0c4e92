package executor

// Program is the computation script emitted by the query compiler: a
// declarative filter/aggregate plan over the dataset, interpreted by Run.
// The enumerated operations below are the entire capability surface the
// generated text can reach: no I/O and no general evaluation.
type Program struct {
	// Filters are AND-chained; every condition must hold for a row to pass.
	Filters []Filter `json:"filters,omitempty"`

	// Metric produces the primary result. An absent metric falls back to
	// the defined defaults (zero primary, generic breakdown).
	Metric Metric `json:"metric"`

	// GroupBy names a column to break the metric down by.
	GroupBy string `json:"group_by,omitempty"`

	// Table, when present and included, requests a filtered row listing.
	// Nil when the question asks for a single aggregate.
	Table *TableSpec `json:"table,omitempty"`
}

// Filter is one condition on one column. Exactly the set fields apply:
// Contains for categorical columns (case- and accent-insensitive substring),
// From/To for date columns (ISO dates, inclusive), Gte/Lte for amounts.
type Filter struct {
	Column   string   `json:"column"`
	Contains string   `json:"contains,omitempty"`
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"`
	Gte      *float64 `json:"gte,omitempty"`
	Lte      *float64 `json:"lte,omitempty"`
}

// Metric operations.
const (
	OpSum   = "sum"
	OpCount = "count"
	OpAvg   = "avg"
	OpMax   = "max"
	OpMin   = "min"
	// OpTop answers "which X ..." questions: the label of the group with
	// the largest money total. Produces a textual primary result.
	OpTop = "top"
	// OpValue reads a column of the first matching row. Textual primary.
	OpValue = "value"
)

// Metric selects the aggregation and its column. Money operations default
// to the canonical amount column from the business rules.
type Metric struct {
	Op     string `json:"op"`
	Column string `json:"column,omitempty"`
}

// TableSpec requests the optional result table.
type TableSpec struct {
	Include bool     `json:"include"`
	Columns []string `json:"columns,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}
