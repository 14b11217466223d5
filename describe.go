package exceltmpl

import (
	"fmt"
	"sort"
	"strings"
)

// SheetInfo summarizes one template sheet.
type SheetInfo struct {
	Name         string
	Index        int
	RowCount     int
	FormulaCells []string // A1-style references of formula cells
	ColumnWidths map[int]float64
}

// TemplateInfo describes a template's shape: its sheets, row counts, and
// formula cells. Useful when constructing a replacement map against an
// unfamiliar template, and for checking which sheets will need the
// in-memory writer.
type TemplateInfo struct {
	Source string
	Sheets []SheetInfo
}

// Describe opens a template and reports its structure without merging
// anything.
func Describe(source string, opts ...Option) (*TemplateInfo, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	open, err := resolveTemplate(source, o)
	if err != nil {
		return nil, err
	}
	f, err := open()
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	sheets, err := loadTemplate(f)
	if err != nil {
		return nil, err
	}

	info := &TemplateInfo{Source: source}
	for _, ts := range sheets {
		si := SheetInfo{
			Name:         ts.name,
			Index:        ts.index,
			RowCount:     ts.rowCount,
			ColumnWidths: ts.colWidths,
		}
		for row, tr := range ts.rows {
			for col, tc := range tr.cells {
				if tc.value.Kind() == KindFormula {
					si.FormulaCells = append(si.FormulaCells, cellName(row, col))
				}
			}
		}
		sort.Strings(si.FormulaCells)
		info.Sheets = append(info.Sheets, si)
	}
	return info, nil
}

// String renders the description as a human-readable tree.
func (ti *TemplateInfo) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Template: %s\n", ti.Source)
	for _, si := range ti.Sheets {
		fmt.Fprintf(&b, "  [%d] %s: %d rows", si.Index, si.Name, si.RowCount)
		if len(si.FormulaCells) > 0 {
			fmt.Fprintf(&b, ", formulas at %s", strings.Join(si.FormulaCells, " "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
