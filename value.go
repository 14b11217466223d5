package exceltmpl

import (
	"fmt"
	"time"
)

// CellKind identifies the type of data held by a CellValue.
type CellKind int

const (
	KindBlank CellKind = iota
	KindString
	KindNumber
	KindBool
	KindDate
	KindFormula
)

// String returns a human-readable name for the CellKind.
func (k CellKind) String() string {
	switch k {
	case KindBlank:
		return "Blank"
	case KindString:
		return "String"
	case KindNumber:
		return "Number"
	case KindBool:
		return "Bool"
	case KindDate:
		return "Date"
	case KindFormula:
		return "Formula"
	default:
		return "Unknown"
	}
}

// CellValue is a closed tagged variant holding one typed cell value.
// The zero value is a blank cell.
type CellValue struct {
	kind CellKind
	str  string // string payload, or formula text for KindFormula
	num  float64
	b    bool
	t    time.Time
}

// BlankValue returns a blank CellValue.
func BlankValue() CellValue { return CellValue{} }

// StringValue returns a string-typed CellValue.
func StringValue(s string) CellValue { return CellValue{kind: KindString, str: s} }

// NumberValue returns a number-typed CellValue.
func NumberValue(n float64) CellValue { return CellValue{kind: KindNumber, num: n} }

// BoolValue returns a boolean-typed CellValue.
func BoolValue(b bool) CellValue { return CellValue{kind: KindBool, b: b} }

// DateValue returns a date-typed CellValue.
func DateValue(t time.Time) CellValue { return CellValue{kind: KindDate, t: t} }

// FormulaValue returns a formula-typed CellValue. The formula text is stored
// without a leading "=".
func FormulaValue(formula string) CellValue {
	return CellValue{kind: KindFormula, str: trimFormula(formula)}
}

func trimFormula(f string) string {
	if len(f) > 0 && f[0] == '=' {
		return f[1:]
	}
	return f
}

// Kind returns the variant tag.
func (v CellValue) Kind() CellKind { return v.kind }

// IsBlank reports whether the value is blank.
func (v CellValue) IsBlank() bool { return v.kind == KindBlank }

// Str returns the string payload (valid for KindString).
func (v CellValue) Str() string { return v.str }

// Num returns the numeric payload (valid for KindNumber).
func (v CellValue) Num() float64 { return v.num }

// Bool returns the boolean payload (valid for KindBool).
func (v CellValue) Bool() bool { return v.b }

// Date returns the time payload (valid for KindDate).
func (v CellValue) Date() time.Time { return v.t }

// FormulaText returns the formula text without a leading "=" (valid for KindFormula).
func (v CellValue) FormulaText() string { return v.str }

// Any returns the payload as a plain Go value for writing through excelize.
func (v CellValue) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindDate:
		return v.t
	case KindFormula:
		return v.str
	default:
		return nil
	}
}

// String formats the value for error messages and debugging.
func (v CellValue) String() string {
	switch v.kind {
	case KindBlank:
		return "<blank>"
	case KindFormula:
		return "=" + v.str
	default:
		return fmt.Sprintf("%v", v.Any())
	}
}

// valueOf maps a loose Go value onto the cell variant. A nil input maps to a
// blank cell. Types with no cell representation yield UnsupportedValueTypeError.
func valueOf(v any) (CellValue, error) {
	switch x := v.(type) {
	case nil:
		return BlankValue(), nil
	case CellValue:
		return x, nil
	case string:
		return StringValue(x), nil
	case bool:
		return BoolValue(x), nil
	case float64:
		return NumberValue(x), nil
	case float32:
		return NumberValue(float64(x)), nil
	case int:
		return NumberValue(float64(x)), nil
	case int8:
		return NumberValue(float64(x)), nil
	case int16:
		return NumberValue(float64(x)), nil
	case int32:
		return NumberValue(float64(x)), nil
	case int64:
		return NumberValue(float64(x)), nil
	case uint:
		return NumberValue(float64(x)), nil
	case uint8:
		return NumberValue(float64(x)), nil
	case uint16:
		return NumberValue(float64(x)), nil
	case uint32:
		return NumberValue(float64(x)), nil
	case uint64:
		return NumberValue(float64(x)), nil
	case time.Time:
		return DateValue(x), nil
	default:
		return CellValue{}, &UnsupportedValueTypeError{Value: v}
	}
}

// Datum is one optional override value in a data row. The zero value keeps
// the template's value at that column; any constructed value, including an
// explicit blank, zero, false, or empty string, overrides it.
type Datum struct {
	present bool
	value   CellValue
}

// Keep returns the explicit "no override" marker: the template's value or
// formula at this column is used unchanged.
func Keep() Datum { return Datum{} }

// Override wraps a CellValue as an overriding datum.
func Override(v CellValue) Datum { return Datum{present: true, value: v} }

// Present reports whether the datum overrides the template.
func (d Datum) Present() bool { return d.present }

// Value returns the override value. Only meaningful when Present is true.
func (d Datum) Value() CellValue { return d.value }

// DataRow is one ordered sequence of override values for one output row.
type DataRow []Datum

// Row builds a DataRow from loose Go values. A nil entry maps to Keep();
// everything else overrides the template, even falsy values. Unmappable
// types yield UnsupportedValueTypeError.
func Row(vals ...any) (DataRow, error) {
	row := make(DataRow, len(vals))
	for i, v := range vals {
		if v == nil {
			row[i] = Keep()
			continue
		}
		if d, ok := v.(Datum); ok {
			row[i] = d
			continue
		}
		cv, err := valueOf(v)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		row[i] = Override(cv)
	}
	return row, nil
}

// MustRow is Row for static literals; it panics on unmappable values.
func MustRow(vals ...any) DataRow {
	row, err := Row(vals...)
	if err != nil {
		panic(err)
	}
	return row
}

// hasFormula reports whether any datum in the row overrides with a formula.
func (r DataRow) hasFormula() bool {
	for _, d := range r {
		if d.present && d.value.kind == KindFormula {
			return true
		}
	}
	return false
}
