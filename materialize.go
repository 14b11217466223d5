package exceltmpl

import "sort"

// materializer turns one template row plus zero or more data rows into the
// corresponding destination rows: a verbatim copy, an in-place fill, or an
// N-way expansion.
type materializer struct {
	ctx *evalContext // nil when the caller supplied no params
}

// materialize writes the output row(s) for one template row starting at
// destStart and returns how many rows were written.
//
// With no data rows, an existing template row copies 1:1 and a missing one
// emits nothing. With N data rows, N destination rows are written; at each
// column the data value wins when present, otherwise the template's value or
// formula at that column falls through, otherwise the column stays empty.
// Only the explicit Keep marker defers to the template: zero, false, and the
// empty string all override.
func (m *materializer) materialize(tr *templateRow, dataRows []DataRow, w sheetWriter, destStart int) (int, error) {
	if len(dataRows) == 0 {
		if tr == nil {
			return 0, nil
		}
		cells, err := m.copyCells(tr)
		if err != nil {
			return 0, err
		}
		if err := w.writeRow(destStart, cells, tr.height); err != nil {
			return 0, err
		}
		return 1, nil
	}

	for i, dr := range dataRows {
		cells, err := m.fillCells(tr, dr)
		if err != nil {
			return i, err
		}
		var height float64
		if tr != nil {
			height = tr.height
		}
		if err := w.writeRow(destStart+i, cells, height); err != nil {
			return i, err
		}
	}
	return len(dataRows), nil
}

// copyCells copies every populated template cell verbatim. Formula text is
// carried as-is, never rewritten.
func (m *materializer) copyCells(tr *templateRow) ([]outCell, error) {
	cells := make([]outCell, 0, len(tr.cells))
	for col, tc := range tr.cells {
		v, err := m.resolveTemplateValue(tc)
		if err != nil {
			return nil, &MergeError{Row: -1, Col: col, Err: err}
		}
		cells = append(cells, outCell{col: col, value: v})
	}
	return propagateStyle(tr, cells), nil
}

// fillCells resolves the effective value per column for one data row.
func (m *materializer) fillCells(tr *templateRow, dr DataRow) ([]outCell, error) {
	width := len(dr)
	if tr != nil && tr.width > width {
		width = tr.width
	}

	var cells []outCell
	for col := 0; col < width; col++ {
		if col < len(dr) && dr[col].Present() {
			cells = append(cells, outCell{col: col, value: dr[col].Value()})
			continue
		}
		if tr == nil {
			continue
		}
		tc, ok := tr.cells[col]
		if !ok {
			continue
		}
		v, err := m.resolveTemplateValue(tc)
		if err != nil {
			return nil, &MergeError{Row: -1, Col: col, Err: err}
		}
		cells = append(cells, outCell{col: col, value: v})
	}
	return propagateStyle(tr, cells), nil
}

// resolveTemplateValue returns the template cell's value, evaluating any
// embedded ${...} expressions when params were supplied.
func (m *materializer) resolveTemplateValue(tc *templateCell) (CellValue, error) {
	v := tc.value
	if m.ctx == nil || v.Kind() != KindString {
		return v, nil
	}
	return m.ctx.evaluateCellValue(v.Str())
}

// propagateStyle assigns each destination cell the style at the same
// style-table index as the template cell in its column, and makes sure every
// populated template column exists in the destination row even when nothing
// wrote a value there. All rows of an expansion pass through here with the
// same template row, so they all inherit the one source row's style.
func propagateStyle(tr *templateRow, cells []outCell) []outCell {
	if tr == nil {
		sortCells(cells)
		return cells
	}
	byCol := make(map[int]int, len(cells))
	for i, c := range cells {
		byCol[c.col] = i
	}
	for col, tc := range tr.cells {
		if i, ok := byCol[col]; ok {
			cells[i].styleID = tc.styleID
		} else {
			cells = append(cells, outCell{col: col, value: BlankValue(), styleID: tc.styleID})
		}
	}
	sortCells(cells)
	return cells
}

func sortCells(cells []outCell) {
	sort.Slice(cells, func(i, j int) bool { return cells[i].col < cells[j].col })
}
