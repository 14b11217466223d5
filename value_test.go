package exceltmpl

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueOfMapsScalars(t *testing.T) {
	cases := []struct {
		in   any
		kind CellKind
	}{
		{"hello", KindString},
		{42, KindNumber},
		{int64(7), KindNumber},
		{uint8(3), KindNumber},
		{3.5, KindNumber},
		{float32(1.5), KindNumber},
		{true, KindBool},
		{time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC), KindDate},
		{nil, KindBlank},
	}
	for _, tc := range cases {
		v, err := valueOf(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.kind, v.Kind(), "value %v", tc.in)
	}
}

func TestValueOfRejectsUnsupportedTypes(t *testing.T) {
	_, err := valueOf(struct{ X int }{1})
	var ute *UnsupportedValueTypeError
	require.ErrorAs(t, err, &ute)
}

func TestRowNilMeansKeep(t *testing.T) {
	row, err := Row(nil, 5)
	require.NoError(t, err)
	require.Len(t, row, 2)
	assert.False(t, row[0].Present())
	require.True(t, row[1].Present())
	assert.Equal(t, 5.0, row[1].Value().Num())
}

func TestRowFalsyValuesStillOverride(t *testing.T) {
	row, err := Row(0, false, "")
	require.NoError(t, err)
	for i, d := range row {
		assert.True(t, d.Present(), "column %d", i)
	}
	assert.Equal(t, KindNumber, row[0].Value().Kind())
	assert.Equal(t, KindBool, row[1].Value().Kind())
	assert.Equal(t, KindString, row[2].Value().Kind())
}

func TestRowPassesDatumThrough(t *testing.T) {
	row, err := Row(Keep(), Override(FormulaValue("=A1+B1")))
	require.NoError(t, err)
	assert.False(t, row[0].Present())
	require.True(t, row[1].Present())
	assert.Equal(t, "A1+B1", row[1].Value().FormulaText())
	assert.True(t, row.hasFormula())
}

func TestRowUnsupportedType(t *testing.T) {
	_, err := Row("ok", make(chan int))
	var ute *UnsupportedValueTypeError
	require.True(t, errors.As(err, &ute))
}

func TestMustRowPanics(t *testing.T) {
	assert.Panics(t, func() { MustRow(make(chan int)) })
}

func TestFormulaValueTrimsLeadingEquals(t *testing.T) {
	assert.Equal(t, "SUM(A1:A3)", FormulaValue("=SUM(A1:A3)").FormulaText())
	assert.Equal(t, "SUM(A1:A3)", FormulaValue("SUM(A1:A3)").FormulaText())
}

func TestCellValueString(t *testing.T) {
	assert.Equal(t, "<blank>", BlankValue().String())
	assert.Equal(t, "=A1+B1", FormulaValue("A1+B1").String())
	assert.Equal(t, "true", BoolValue(true).String())
}
