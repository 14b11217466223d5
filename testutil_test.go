package exceltmpl

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeTemplate builds an xlsx template with fn and saves it under a temp
// dir, returning its path.
func writeTemplate(t *testing.T, fn func(f *excelize.File)) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	fn(f)

	path := filepath.Join(t.TempDir(), "template.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// openOutput opens a built workbook and closes it when the test ends.
func openOutput(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

// outPath returns a fresh output file path in a temp dir.
func outPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "out.xlsx")
}

// squaresTemplate builds the canonical single-sheet template used by the
// end-to-end tests:
//
//	row 0: "n"      "n squared"   (bold header)
//	row 1: "-"      "-"
//	row 2: 0        0             (the expansion target)
//	row 3: "total"  "done"
func squaresTemplate(t *testing.T) string {
	t.Helper()
	return writeTemplate(t, func(f *excelize.File) {
		require.NoError(t, f.SetSheetName("Sheet1", "Squares"))

		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		require.NoError(t, err)

		f.SetCellValue("Squares", "A1", "n")
		f.SetCellValue("Squares", "B1", "n squared")
		f.SetCellStyle("Squares", "A1", "B1", bold)

		f.SetCellValue("Squares", "A2", "-")
		f.SetCellValue("Squares", "B2", "-")

		f.SetCellValue("Squares", "A3", 0)
		f.SetCellValue("Squares", "B3", 0)

		f.SetCellValue("Squares", "A4", "total")
		f.SetCellValue("Squares", "B4", "done")
	})
}

// cellStr reads a cell's displayed value, failing the test on error.
func cellStr(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}
