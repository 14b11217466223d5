package exceltmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestValidateCleanTemplate(t *testing.T) {
	tmplPath := writeTemplate(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "h")
		f.SetCellValue("Sheet1", "A2", "-")
	})

	issues, err := Validate(tmplPath, SingleSheet(RowReplacements{1: {MustRow("v")}}))
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidateUnmatchedSelector(t *testing.T) {
	tmplPath := writeTemplate(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "h")
	})

	repl := BySheet(map[string]RowReplacements{"Ghost": {0: {MustRow(1)}}})
	issues, err := Validate(tmplPath, repl)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Equal(t, "Ghost", issues[0].Sheet)
	assert.Contains(t, issues[0].String(), "[WARN]")
}

func TestValidateRowOutOfBounds(t *testing.T) {
	tmplPath := writeTemplate(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "h")
		f.SetCellValue("Sheet1", "A2", "-")
	})

	issues, err := Validate(tmplPath, SingleSheet(RowReplacements{
		1: {MustRow("fine")},
		9: {MustRow("ignored")},
	}))
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Equal(t, 9, issues[0].Row)
}

func TestValidateBadExpression(t *testing.T) {
	tmplPath := writeTemplate(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "${1 +}")
		f.SetCellValue("Sheet1", "B1", "${ok}")
	})

	issues, err := Validate(tmplPath, nil)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Equal(t, 0, issues[0].Row)
	assert.Contains(t, issues[0].Message, "A1")
}

func TestValidateTemplateNotFound(t *testing.T) {
	_, err := Validate("definitely-missing.xlsx", nil)
	require.ErrorIs(t, err, ErrTemplateNotFound)
}
