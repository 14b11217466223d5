package exceltmpl

import (
	"slices"
	"sort"
	"strconv"
)

// RowReplacements maps a 0-based template row index to the data rows that
// replace it. An index absent from the map copies the template row 1:1; a
// present-but-empty slice drops the row from the output entirely.
type RowReplacements map[int][]DataRow

// Replacements selects which sheet each row map applies to. Construct it
// with BySheet, ByIndex, or SingleSheet; the three forms make the sheet
// targeting explicit instead of inferring it from the map shape.
type Replacements struct {
	names   map[string]RowReplacements
	indexes map[int]RowReplacements
}

// BySheet targets sheets by name.
func BySheet(m map[string]RowReplacements) *Replacements {
	return &Replacements{names: m}
}

// ByIndex targets sheets by 0-based sheet index.
func ByIndex(m map[int]RowReplacements) *Replacements {
	return &Replacements{indexes: m}
}

// SingleSheet applies one row map to the first sheet. It is shorthand for
// ByIndex(map[int]RowReplacements{0: rows}) and covers the common
// one-sheet-template case.
func SingleSheet(rows RowReplacements) *Replacements {
	return &Replacements{indexes: map[int]RowReplacements{0: rows}}
}

// AndSheet adds a named sheet's row map, allowing name- and index-keyed
// targeting to be combined. Name matches take precedence over index matches.
func (r *Replacements) AndSheet(name string, rows RowReplacements) *Replacements {
	if r.names == nil {
		r.names = make(map[string]RowReplacements)
	}
	r.names[name] = rows
	return r
}

// rowsFor resolves the row map for a sheet, by name first, then by index.
// The second result is false when no selector targets the sheet, which the
// pipeline treats as "no data for this sheet".
func (r *Replacements) rowsFor(name string, index int) (RowReplacements, bool) {
	if r == nil {
		return nil, false
	}
	if rows, ok := r.names[name]; ok {
		return rows, true
	}
	if rows, ok := r.indexes[index]; ok {
		return rows, true
	}
	return nil, false
}

// unmatchedSelectors reports selectors that resolve against none of the
// given sheet names, used by Validate to flag dangling selectors. Index
// selectors are rendered as "#n".
func (r *Replacements) unmatchedSelectors(sheetNames []string) []string {
	if r == nil {
		return nil
	}
	var missing []string
	for name := range r.names {
		if !slices.Contains(sheetNames, name) {
			missing = append(missing, name)
		}
	}
	for idx := range r.indexes {
		if idx < 0 || idx >= len(sheetNames) {
			missing = append(missing, "#"+strconv.Itoa(idx))
		}
	}
	sort.Strings(missing)
	return missing
}

// hasFormulaData reports whether any data row for this map overrides with a
// formula; such sheets cannot use the forward-only streaming writer.
func (m RowReplacements) hasFormulaData() bool {
	for _, rows := range m {
		for _, row := range rows {
			if row.hasFormula() {
				return true
			}
		}
	}
	return false
}
