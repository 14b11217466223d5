package exceltmpl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // the build will fail or lose data
	SeverityWarning                 // the build may not do what the caller meant
)

// ValidationIssue is a single problem found while checking a replacement map
// against a template. Row is a 0-based template row index, -1 when the issue
// is not row-scoped.
type ValidationIssue struct {
	Severity Severity
	Sheet    string
	Row      int
	Message  string
}

// String formats the issue as "[ERROR] Squares row 2: message".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	where := v.Sheet
	if v.Row >= 0 {
		where = fmt.Sprintf("%s row %d", v.Sheet, v.Row)
	}
	return fmt.Sprintf("[%s] %s: %s", sev, where, v.Message)
}

// Validate checks a replacement map against a template before building:
// selectors that match no sheet, row indices at or beyond the template's row
// count, and invalid ${...} expression syntax in template cells. A non-nil
// error means the template could not be opened at all.
//
// Selector and bounds issues are warnings because the build treats them as
// "no data" rather than failing; they almost always indicate a mistake in
// the caller's map.
func Validate(source string, repl *Replacements, opts ...Option) ([]ValidationIssue, error) {
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

	var issues []ValidationIssue

	names := make([]string, len(sheets))
	for i, ts := range sheets {
		names[i] = ts.name
	}
	for _, sel := range repl.unmatchedSelectors(names) {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			Sheet:    sel,
			Row:      -1,
			Message:  "selector matches no sheet; its rows will not be merged",
		})
	}

	for _, ts := range sheets {
		rows, ok := repl.rowsFor(ts.name, ts.index)
		if ok {
			issues = append(issues, checkRowBounds(ts, rows)...)
		}
		issues = append(issues, checkExpressions(ts, o)...)
	}
	return issues, nil
}

// checkRowBounds flags row map keys the merge driver will never visit.
func checkRowBounds(ts *templateSheet, rows RowReplacements) []ValidationIssue {
	var issues []ValidationIssue
	keys := make([]int, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		if k < 0 || k >= ts.rowCount {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				Sheet:    ts.name,
				Row:      k,
				Message:  fmt.Sprintf("row index outside template (%d rows); its data will be ignored", ts.rowCount),
			})
		}
	}
	return issues
}

// checkExpressions compiles every ${...} segment found in template string
// cells for syntax errors.
func checkExpressions(ts *templateSheet, o *Options) []ValidationIssue {
	var issues []ValidationIssue
	for row, tr := range ts.rows {
		for col, tc := range tr.cells {
			if tc.value.Kind() != KindString {
				continue
			}
			text := tc.value.Str()
			if !strings.Contains(text, o.notationBegin) {
				continue
			}
			for _, seg := range parseExpressions(text, o.notationBegin, o.notationEnd) {
				if !seg.isExpression {
					continue
				}
				if _, err := expr.Compile(seg.text, expr.AllowUndefinedVariables()); err != nil {
					issues = append(issues, ValidationIssue{
						Severity: SeverityError,
						Sheet:    ts.name,
						Row:      row,
						Message:  fmt.Sprintf("cell %s: invalid expression %q: %v", cellName(row, col), seg.text, err),
					})
				}
			}
		}
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Row != issues[j].Row {
			return issues[i].Row < issues[j].Row
		}
		return issues[i].Message < issues[j].Message
	})
	return issues
}
