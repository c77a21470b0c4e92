package config

// Rules is the declarative business-rule configuration shared by the query
// compiler (prompt building) and the executor (deduplication, currency
// normalization). Keeping the vocabulary here, rather than hardcoded in two
// prompt variants, lets the system follow column renames without code changes.
type Rules struct {
	// DedupColumn uniquely identifies an opportunity. Rows sharing a value in
	// this column are counted once, before any aggregation.
	DedupColumn string `json:"dedup_column"`

	// AmountColumn is the canonical money column for sums and forecasts.
	AmountColumn string `json:"amount_column"`

	// ClosedDateColumn dates won deals, CreatedDateColumn dates new pipeline.
	ClosedDateColumn  string `json:"closed_date_column"`
	CreatedDateColumn string `json:"created_date_column"`

	// StatusColumn holds the opportunity state, restricted to Statuses.
	StatusColumn string   `json:"status_column"`
	Statuses     []string `json:"statuses"`

	// CurrencyColumn marks the unit of AmountColumn per row. Rows in
	// AlternateUnit are divided by CurrencyDivisor to reach CanonicalUnit
	// before aggregation.
	CurrencyColumn  string  `json:"currency_column"`
	CanonicalUnit   string  `json:"canonical_unit"`
	AlternateUnit   string  `json:"alternate_unit"`
	CurrencyDivisor float64 `json:"currency_divisor"`
}

// DefaultRules matches the upstream opportunity export vocabulary.
func DefaultRules() Rules {
	return Rules{
		DedupColumn:       "idOportunidad",
		AmountColumn:      "montoTotalPrevisto",
		ClosedDateColumn:  "fechaCierre",
		CreatedDateColumn: "fechaCreacion",
		StatusColumn:      "estadoOportunidad",
		Statuses: []string{
			"CERRADA",
			"OPORTUNIDAD PERDIDA",
			"OPORTUNIDAD PROCESO",
			"EN NEGOCIACIÓN",
		},
		CurrencyColumn:  "moneda",
		CanonicalUnit:   "USD",
		AlternateUnit:   "CLP",
		CurrencyDivisor: 950,
	}
}
