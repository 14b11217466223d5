package exceltmpl

import (
	"errors"
	"fmt"
)

// ErrTemplateNotFound is returned when neither a filesystem path nor a
// bundled resource resolves to a template.
var ErrTemplateNotFound = errors.New("template not found")

// UnsupportedValueTypeError is returned when a data-row value has no mapping
// to a document cell type.
type UnsupportedValueTypeError struct {
	Value any
}

func (e *UnsupportedValueTypeError) Error() string {
	return fmt.Sprintf("unsupported value type %T", e.Value)
}

// MergeError identifies the sheet, and where applicable the row and column,
// at which a merge failed. Row and Col are 0-based; -1 means not applicable.
type MergeError struct {
	Sheet string
	Row   int
	Col   int
	Err   error
}

func (e *MergeError) Error() string {
	switch {
	case e.Row >= 0 && e.Col >= 0:
		return fmt.Sprintf("merge sheet %q row %d col %d: %v", e.Sheet, e.Row, e.Col, e.Err)
	case e.Row >= 0:
		return fmt.Sprintf("merge sheet %q row %d: %v", e.Sheet, e.Row, e.Err)
	case e.Col >= 0:
		return fmt.Sprintf("merge sheet %q col %d: %v", e.Sheet, e.Col, e.Err)
	default:
		return fmt.Sprintf("merge sheet %q: %v", e.Sheet, e.Err)
	}
}

func (e *MergeError) Unwrap() error { return e.Err }

// mergeErr wraps err with merge position. A MergeError already in the chain
// keeps its column but picks up sheet and row from the caller that knows them.
func mergeErr(sheet string, row, col int, err error) error {
	var me *MergeError
	if errors.As(err, &me) {
		if me.Sheet == "" {
			me.Sheet = sheet
		}
		if me.Row < 0 {
			me.Row = row
		}
		return err
	}
	return &MergeError{Sheet: sheet, Row: row, Col: col, Err: err}
}

// WriteError wraps an I/O failure during a pipeline stage write.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %q: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
