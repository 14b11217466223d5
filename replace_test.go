package exceltmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsForNameBeatsIndex(t *testing.T) {
	byName := RowReplacements{1: nil}
	byIdx := RowReplacements{2: nil}
	r := ByIndex(map[int]RowReplacements{0: byIdx}).AndSheet("Data", byName)

	rows, ok := r.rowsFor("Data", 0)
	require.True(t, ok)
	_, hasOne := rows[1]
	assert.True(t, hasOne)

	rows, ok = r.rowsFor("Other", 0)
	require.True(t, ok)
	_, hasTwo := rows[2]
	assert.True(t, hasTwo)
}

func TestRowsForNoMatch(t *testing.T) {
	r := BySheet(map[string]RowReplacements{"Data": {}})
	_, ok := r.rowsFor("Other", 3)
	assert.False(t, ok)

	var nilRepl *Replacements
	_, ok = nilRepl.rowsFor("Data", 0)
	assert.False(t, ok)
}

func TestSingleSheetIsIndexZero(t *testing.T) {
	m := RowReplacements{2: {MustRow(1)}}
	a := SingleSheet(m)
	b := ByIndex(map[int]RowReplacements{0: m})

	ra, oka := a.rowsFor("Whatever", 0)
	rb, okb := b.rowsFor("Whatever", 0)
	require.True(t, oka)
	require.True(t, okb)
	assert.Equal(t, rb, ra)

	_, ok := a.rowsFor("Whatever", 1)
	assert.False(t, ok)
}

func TestUnmatchedSelectors(t *testing.T) {
	r := ByIndex(map[int]RowReplacements{5: {}}).
		AndSheet("Data", RowReplacements{}).
		AndSheet("Ghost", RowReplacements{})

	missing := r.unmatchedSelectors([]string{"Data", "Other"})
	assert.Equal(t, []string{"#5", "Ghost"}, missing)
}

func TestHasFormulaData(t *testing.T) {
	plain := RowReplacements{0: {MustRow(1, "x")}}
	assert.False(t, plain.hasFormulaData())

	withFormula := RowReplacements{0: {MustRow(1), MustRow(Override(FormulaValue("A1*2")))}}
	assert.True(t, withFormula.hasFormulaData())
}
