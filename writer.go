package exceltmpl

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// outCell is one materialized destination cell.
type outCell struct {
	col     int
	value   CellValue
	styleID int
}

// sheetWriter receives the materialized rows of one destination sheet.
// writeRow is called with strictly increasing row indices and rows are never
// revisited, which is what lets the streaming implementation exist at all.
type sheetWriter interface {
	writeRow(index int, cells []outCell, height float64) error
	finalize() error
}

// useStreaming is the predicate choosing the writer implementation for a
// sheet: forward-only streaming is only possible when neither the template
// sheet nor the replacement data carries formulas, because formula
// re-evaluation needs random-access reads.
func useStreaming(ts *templateSheet, rows RowReplacements) bool {
	return !ts.hasFormulas && !rows.hasFormulaData()
}

// memoryWriter merges into a fully loaded workbook with random access, at
// memory cost proportional to sheet size. It is the only writer that can
// host formula cells.
type memoryWriter struct {
	f        *excelize.File
	sheet    string
	formulas []formulaCell // cells to re-evaluate on finalize
}

type formulaCell struct {
	name    string
	formula string
}

func newMemoryWriter(f *excelize.File, sheet string) *memoryWriter {
	return &memoryWriter{f: f, sheet: sheet}
}

func (w *memoryWriter) writeRow(index int, cells []outCell, height float64) error {
	for _, c := range cells {
		cn := cellName(index, c.col)
		switch c.value.Kind() {
		case KindBlank:
			// style only
		case KindFormula:
			if err := w.f.SetCellFormula(w.sheet, cn, c.value.FormulaText()); err != nil {
				return fmt.Errorf("set formula %s: %w", cn, err)
			}
			w.formulas = append(w.formulas, formulaCell{name: cn, formula: c.value.FormulaText()})
		default:
			if err := w.f.SetCellValue(w.sheet, cn, c.value.Any()); err != nil {
				return fmt.Errorf("set cell %s: %w", cn, err)
			}
		}
		if c.styleID > 0 {
			if err := w.f.SetCellStyle(w.sheet, cn, cn, c.styleID); err != nil {
				return fmt.Errorf("set style %s: %w", cn, err)
			}
		}
	}
	if height > 0 {
		if err := w.f.SetRowHeight(w.sheet, index+1, height); err != nil {
			return fmt.Errorf("set row height %d: %w", index+1, err)
		}
	}
	return nil
}

// finalize re-evaluates every formula cell written to this sheet and stores
// the result as the cell's cached value. Formula text is never rewritten, but
// without a cached value a viewer that does not recalculate on open shows the
// cell blank. Setting the value clears the formula, so the formula is re-set
// after it.
func (w *memoryWriter) finalize() error {
	for _, fc := range w.formulas {
		raw, err := w.f.CalcCellValue(w.sheet, fc.name, excelize.Options{RawCellValue: true})
		if err != nil {
			return fmt.Errorf("evaluate formula at %s: %w", fc.name, err)
		}
		if err := w.f.SetCellValue(w.sheet, fc.name, cachedValue(raw)); err != nil {
			return fmt.Errorf("cache formula result at %s: %w", fc.name, err)
		}
		if err := w.f.SetCellFormula(w.sheet, fc.name, fc.formula); err != nil {
			return fmt.Errorf("restore formula at %s: %w", fc.name, err)
		}
	}
	return nil
}

// cachedValue narrows a computed raw result for storage as a cached value.
func cachedValue(raw string) any {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}

// streamingWriter merges through excelize's forward-only stream writer.
// Rows already written cannot be read back or revisited.
type streamingWriter struct {
	sw     *excelize.StreamWriter
	merged []mergedRange
}

func newStreamingWriter(f *excelize.File, ts *templateSheet) (*streamingWriter, error) {
	sw, err := f.NewStreamWriter(ts.name)
	if err != nil {
		return nil, fmt.Errorf("stream writer for sheet %q: %w", ts.name, err)
	}
	// Column widths must be set before the first row reaches the stream.
	for col, width := range ts.colWidths {
		if err := sw.SetColWidth(col+1, col+1, width); err != nil {
			return nil, fmt.Errorf("set column width %d: %w", col+1, err)
		}
	}
	return &streamingWriter{sw: sw, merged: ts.merged}, nil
}

func (w *streamingWriter) writeRow(index int, cells []outCell, height float64) error {
	if len(cells) == 0 && height == 0 {
		return nil
	}
	width := 0
	for _, c := range cells {
		if c.value.Kind() == KindFormula {
			return fmt.Errorf("formula cell reached streaming writer at %s", cellName(index, c.col))
		}
		if c.col+1 > width {
			width = c.col + 1
		}
	}

	vals := make([]any, width)
	for i := range vals {
		vals[i] = excelize.Cell{}
	}
	for _, c := range cells {
		vals[c.col] = excelize.Cell{Value: c.value.Any(), StyleID: c.styleID}
	}

	opts := []excelize.RowOpts{}
	if height > 0 {
		opts = append(opts, excelize.RowOpts{Height: height})
	}
	if err := w.sw.SetRow(cellName(index, 0), vals, opts...); err != nil {
		return fmt.Errorf("stream row %d: %w", index+1, err)
	}
	return nil
}

func (w *streamingWriter) finalize() error {
	for _, m := range w.merged {
		if err := w.sw.MergeCell(m.start, m.end); err != nil {
			return fmt.Errorf("merge cells %s:%s: %w", m.start, m.end, err)
		}
	}
	return w.sw.Flush()
}
