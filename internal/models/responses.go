package models

// LoginRequest carries the fixed credential pair guarding the API.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the session token for subsequent requests.
type LoginResponse struct {
	Token string `json:"token"`
}

// SyncResponse is returned after a successful dataset synchronization.
type SyncResponse struct {
	Message     string   `json:"message"`
	Rows        int      `json:"rows"`
	Columns     int      `json:"columns"`
	ColumnNames []string `json:"column_names"`
}

// StatusResponse reports whether the session has a dataset loaded.
type StatusResponse struct {
	Synced  bool `json:"synced"`
	Rows    int  `json:"rows"`
	Columns int  `json:"columns"`
}

// DatasetPreview is returned by the dataset panel endpoint.
type DatasetPreview struct {
	Columns   []string          `json:"columns"`
	Types     map[string]string `json:"types"`
	Rows      [][]string        `json:"rows"`
	TotalRows int               `json:"total_rows"`
}

// AnalyzeRequest is a single natural-language question against the
// session's current dataset snapshot.
type AnalyzeRequest struct {
	Question string `json:"question"`
}

// ErrCalculation labels the error state of the headline panel.
const ErrCalculation = "calculation_error"

// AnalyzeResponse is the full result bundle for one analysis cycle:
// headline figure, breakdown, advisory verdict, optional table, and the
// generated program for the inspector panel. On a computation error the
// Error/ErrorDetail fields are set, Headline carries the error label, and
// Program still holds the failing text for inspection.
type AnalyzeResponse struct {
	Question  string `json:"question"`
	Headline  string `json:"headline"`
	Breakdown string `json:"breakdown"`
	Verdict   string `json:"verdict,omitempty"`
	Table     *Table `json:"table,omitempty"`
	Program   string `json:"program,omitempty"`

	Error       string `json:"error,omitempty"`
	ErrorDetail string `json:"error_detail,omitempty"`

	// VerdictError is advisory only: a failed verdict never invalidates the
	// computed result above.
	VerdictError string `json:"verdict_error,omitempty"`
}

// Table is a display-ready filtered row listing.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Primary is the dual-mode primary result of a generated program: a number
// for aggregates, literal text for answers that are names or labels. A
// textual value is never coerced into a numeric shape.
type Primary struct {
	IsText bool    `json:"is_text"`
	Number float64 `json:"number"`
	Text   string  `json:"text,omitempty"`
}

// NumberPrimary wraps a numeric result.
func NumberPrimary(v float64) Primary { return Primary{Number: v} }

// TextPrimary wraps a textual result.
func TextPrimary(s string) Primary { return Primary{IsText: true, Text: s} }
