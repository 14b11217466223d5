package exceltmpl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// templateCell is one template cell: its typed value and its style-table index.
type templateCell struct {
	value   CellValue
	styleID int
}

// templateRow holds one template row. Cells are keyed by 0-based column
// index; width is max referenced column + 1, independent per row.
type templateRow struct {
	cells  map[int]*templateCell
	width  int
	height float64
}

// templateSheet is the immutable in-memory copy of one template sheet. It is
// read once when the template is opened and never mutated afterward, so every
// pipeline stage can merge against it regardless of what has already been
// written downstream.
type templateSheet struct {
	name        string
	index       int
	rowCount    int
	rows        map[int]*templateRow // sparse: a row with no cells is absent
	colWidths   map[int]float64
	merged      []mergedRange
	hasFormulas bool
}

type mergedRange struct {
	start, end string // cell names like "A1", "C3"
}

// cellName converts 0-based row/col to an A1-style reference.
func cellName(row, col int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row+1)
	return name
}

// loadTemplate reads every sheet of the workbook into templateSheet models.
func loadTemplate(f *excelize.File) ([]*templateSheet, error) {
	var sheets []*templateSheet
	for i, name := range f.GetSheetList() {
		ts, err := loadTemplateSheet(f, name, i)
		if err != nil {
			return nil, fmt.Errorf("read template sheet %q: %w", name, err)
		}
		sheets = append(sheets, ts)
	}
	return sheets, nil
}

func loadTemplateSheet(f *excelize.File, name string, index int) (*templateSheet, error) {
	ts := &templateSheet{
		name:      name,
		index:     index,
		rows:      make(map[int]*templateRow),
		colWidths: make(map[int]float64),
	}

	grid, err := f.GetRows(name)
	if err != nil {
		return nil, err
	}
	ts.rowCount = len(grid)

	for rowIdx, cols := range grid {
		// Height before the cell scan: a spacer row with a height but no
		// content must survive.
		tr := &templateRow{cells: make(map[int]*templateCell)}
		if h, err := f.GetRowHeight(name, rowIdx+1); err == nil {
			tr.height = h
		}

		for colIdx := range cols {
			cn := cellName(rowIdx, colIdx)
			tc, err := readCell(f, name, cn)
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", cn, err)
			}
			if tc == nil {
				continue
			}
			if tc.value.Kind() == KindFormula {
				ts.hasFormulas = true
			}
			tr.cells[colIdx] = tc
			if colIdx+1 > tr.width {
				tr.width = colIdx + 1
			}
		}

		if len(tr.cells) > 0 || tr.height > 0 {
			ts.rows[rowIdx] = tr
		}
	}

	// Column widths survive row stripping, so the base builder and the
	// streaming writer both need them recorded here.
	cols, err := f.GetCols(name)
	if err == nil {
		for c := range cols {
			col, _ := excelize.ColumnNumberToName(c + 1)
			if w, err := f.GetColWidth(name, col); err == nil {
				ts.colWidths[c] = w
			}
		}
	}

	merged, err := f.GetMergeCells(name)
	if err == nil {
		for _, m := range merged {
			ts.merged = append(ts.merged, mergedRange{start: m.GetStartAxis(), end: m.GetEndAxis()})
		}
	}

	return ts, nil
}

// readCell reads one cell into a templateCell, or nil when the cell is empty
// and carries the default style.
func readCell(f *excelize.File, sheet, cell string) (*templateCell, error) {
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return nil, err
	}

	formula, err := f.GetCellFormula(sheet, cell)
	if err != nil {
		return nil, err
	}
	if formula != "" {
		return &templateCell{value: FormulaValue(formula), styleID: styleID}, nil
	}

	raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if raw == "" {
		if styleID == 0 {
			return nil, nil
		}
		return &templateCell{value: BlankValue(), styleID: styleID}, nil
	}

	ctype, err := f.GetCellType(sheet, cell)
	if err != nil {
		return nil, err
	}
	return &templateCell{value: typedValue(ctype, raw), styleID: styleID}, nil
}

// typedValue maps an excelize cell type plus its raw stored value onto the
// cell variant. Dates in xlsx are serial numbers with a date format, so they
// come through as numbers and keep their look via the propagated style.
func typedValue(ctype excelize.CellType, raw string) CellValue {
	switch ctype {
	case excelize.CellTypeBool:
		return BoolValue(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeNumber, excelize.CellTypeDate, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return NumberValue(n)
		}
		return StringValue(raw)
	default:
		return StringValue(raw)
	}
}

// rowAt returns the template row at the given index, or nil for sparse gaps.
func (ts *templateSheet) rowAt(i int) *templateRow {
	return ts.rows[i]
}
