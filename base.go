package exceltmpl

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// stripRows deletes every row of every sheet in the workbook, turning a
// freshly opened template copy into the stripped base that seeds stage 0 of
// the output pipeline. Column widths, sheet metadata, and the style table
// all survive; merged regions are re-applied afterwards because row removal
// collapses them.
//
// Rows are removed from last to first so earlier deletions never renumber
// the rows still pending.
func stripRows(f *excelize.File, sheets []*templateSheet) error {
	for _, ts := range sheets {
		for r := ts.rowCount; r >= 1; r-- {
			if err := f.RemoveRow(ts.name, r); err != nil {
				return fmt.Errorf("strip sheet %q row %d: %w", ts.name, r, err)
			}
		}
		for _, m := range ts.merged {
			if err := f.MergeCell(ts.name, m.start, m.end); err != nil {
				return fmt.Errorf("restore merged range %s:%s on %q: %w", m.start, m.end, ts.name, err)
			}
		}
	}
	return nil
}
