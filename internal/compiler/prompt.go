package compiler

import (
	"fmt"
	"strings"

	"salesight/internal/config"
	"salesight/internal/dataset"
)

// BuildPrompt generates the system prompt for the compiler call. The model
// only ever sees the schema descriptor and the business rules, never raw
// rows. Business vocabulary (dedup key, money column, statuses, currency)
// is injected from the declarative rule configuration.
func BuildPrompt(schema dataset.Schema, rules config.Rules) string {
	var b strings.Builder

	b.WriteString(`You are a senior data analyst for a sales organization. Translate the user's question into a query program that a local engine executes against the opportunity dataset. The dataset already exists in memory - never re-load or re-fetch data. You are a translator only: do not compute any values yourself.

DATASET SCHEMA (column name and storage type):
`)
	b.WriteString(schema.Summary())

	fmt.Fprintf(&b, `
BUSINESS RULES:
1. Duplicate rows are removed by %q before any aggregation; assume one row per opportunity.
2. For revenue, forecasts or any money question use column %q.
3. Use %q for won/closed deals and %q for new opportunities. Dates in filters are ISO (YYYY-MM-DD), inclusive.
4. Opportunity states live in %q: %s.
5. Free-text filters on vendors, companies, statuses or reasons use "contains"; matching is case-insensitive and accent-insensitive, so partial names are fine.
6. When the question implies several constraints, emit one filter per constraint; filters are AND-chained.
7. If the answer is a name, label or status, use op "top" or "value" - the primary result stays text, never a number.
8. Amounts recorded in %s are converted to %s automatically; do not convert currency yourself.

PROGRAM FORMAT - respond with exactly one JSON object, nothing else:
{
  "filters": [{"column": "...", "contains": "..."} | {"column": "...", "from": "YYYY-MM-DD", "to": "YYYY-MM-DD"} | {"column": "...", "gte": 0, "lte": 0}],
  "metric": {"op": "sum|count|avg|max|min|top|value", "column": "..."},
  "group_by": "",
  "table": {"include": true, "columns": [], "limit": 50}
}

FIELD RULES:
- "metric.op": "sum" for totals, "count" for how-many, "avg"/"max"/"min" as asked; "top" for which-X-has-the-most questions (column = the grouping column); "value" to read one column of the first matching row.
- "metric.column": omit for money operations to use the canonical money column.
- "group_by": set when the question asks for a per-X breakdown, else "".
- "table": include only when the user asks for records, listings or details of specific opportunities; omit (or include=false) for a single aggregate.
- Only reference columns from the schema above.

EXAMPLES:
- "total forecast for closed deals" -> {"filters":[{"column":%q,"contains":"CERRADA"}],"metric":{"op":"sum"}}
- "how many opportunities did Veronika create in 2026" -> {"filters":[{"column":"vendedor","contains":"veronika"},{"column":%q,"from":"2026-01-01","to":"2026-12-31"}],"metric":{"op":"count"}}
- "which company has the biggest pipeline" -> {"metric":{"op":"top","column":"empresa"}}
- "information on opportunity 656" -> {"filters":[{"column":%q,"contains":"656"}],"metric":{"op":"value","column":%q},"table":{"include":true}}
`,
		rules.DedupColumn,
		rules.AmountColumn,
		rules.ClosedDateColumn,
		rules.CreatedDateColumn,
		rules.StatusColumn,
		strings.Join(rules.Statuses, ", "),
		rules.AlternateUnit,
		rules.CanonicalUnit,
		rules.StatusColumn,
		rules.CreatedDateColumn,
		rules.DedupColumn,
		rules.StatusColumn,
	)

	return b.String()
}
