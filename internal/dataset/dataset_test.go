package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecordsNormalizesAmounts(t *testing.T) {
	ds := FromRecords([]map[string]any{
		{"montoTotalPrevisto": "$1,234.50"},
		{"montoTotalPrevisto": 987.25},
		{"montoTotalPrevisto": "not a number"},
		{"montoTotalPrevisto": nil},
	})

	idx, ok := ds.Index("montoTotalPrevisto")
	require.True(t, ok)
	assert.Equal(t, KindAmount, ds.Columns[idx].Kind)

	assert.Equal(t, 1234.50, ds.Rows[0][idx].Num)
	assert.Equal(t, 987.25, ds.Rows[1][idx].Num)
	assert.Equal(t, 0.0, ds.Rows[2][idx].Num, "coercion failure becomes zero")
	assert.Equal(t, 0.0, ds.Rows[3][idx].Num)
}

func TestFromRecordsParsesDayFirstDates(t *testing.T) {
	ds := FromRecords([]map[string]any{
		{"fechaCierre": "03/04/2026"},
		{"fechaCierre": "2026-04-03"},
		{"fechaCierre": "garbage"},
		{"fechaCierre": ""},
	})

	idx, ok := ds.Index("fechaCierre")
	require.True(t, ok)
	assert.Equal(t, KindDate, ds.Columns[idx].Kind)

	want := time.Date(2026, time.April, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, ds.Rows[0][idx].Time, "day-first: 03/04 is April 3rd")
	assert.Equal(t, want, ds.Rows[1][idx].Time)
	assert.True(t, ds.Rows[2][idx].Time.IsZero(), "unparseable date becomes null")
	assert.True(t, ds.Rows[3][idx].Time.IsZero())
}

func TestFromRecordsMissingKeysBecomeNulls(t *testing.T) {
	ds := FromRecords([]map[string]any{
		{"empresa": "Acme", "montoTotalPrevisto": 100.0},
		{"empresa": "Initech"},
	})

	require.Equal(t, 2, ds.NumColumns())
	require.Equal(t, 2, ds.NumRows())

	amt, _ := ds.Index("montoTotalPrevisto")
	assert.Equal(t, 0.0, ds.Rows[1][amt].Num)
}

func TestIndexIsCaseInsensitive(t *testing.T) {
	ds := FromRecords([]map[string]any{{"Empresa": "Acme"}})
	_, ok := ds.Index("empresa")
	assert.True(t, ok)
	_, ok = ds.Index("vendedor")
	assert.False(t, ok)
}

func TestCloneIsolation(t *testing.T) {
	ds := FromRecords([]map[string]any{
		{"empresa": "Acme", "montoTotalPrevisto": 100.0},
	})

	clone := ds.Clone()
	amt, _ := clone.Index("montoTotalPrevisto")
	emp, _ := clone.Index("empresa")
	clone.Rows[0][amt].Num = 999
	clone.Rows[0][emp].Str = "Mutated"
	clone.Columns[0].Name = "renamed"

	origAmt, _ := ds.Index("montoTotalPrevisto")
	origEmp, _ := ds.Index("empresa")
	assert.Equal(t, 100.0, ds.Rows[0][origAmt].Num)
	assert.Equal(t, "Acme", ds.Rows[0][origEmp].Str)
}

func TestSchemaSummary(t *testing.T) {
	ds := FromRecords([]map[string]any{
		{"empresa": "Acme", "montoTotalPrevisto": 10.0, "fechaCierre": "01/02/2026"},
	})

	schema := ds.Schema()
	assert.Equal(t, 1, schema.Rows)
	assert.Equal(t, "amount", schema.Types["montoTotalPrevisto"])
	assert.Equal(t, "date", schema.Types["fechaCierre"])
	assert.Equal(t, "text", schema.Types["empresa"])

	summary := schema.Summary()
	assert.Contains(t, summary, "1 rows, 3 columns")
	assert.Contains(t, summary, "- montoTotalPrevisto (amount)")
}

func TestEmptyRecords(t *testing.T) {
	ds := FromRecords(nil)
	assert.Equal(t, 0, ds.NumRows())
	assert.Equal(t, 0, ds.NumColumns())
	assert.NotNil(t, ds.Clone())
}
