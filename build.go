// Package exceltmpl generates xlsx workbooks by merging a pre-built
// layout-and-formatting template with caller data, matched by template row
// position. Each template row is copied unchanged, filled in place, or
// expanded into N output rows when N data rows target it; cell styles, row
// heights, and formula text carry over to every produced row.
package exceltmpl

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Build merges the template identified by source with the replacements and
// writes the finished workbook to outputPath. The source resolves as a
// filesystem path first, then against the bundled filesystem supplied with
// WithTemplateFS. On failure no output file is left behind.
func Build(source, outputPath string, repl *Replacements, opts ...Option) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return &WriteError{Path: outputPath, Err: err}
	}
	defer out.Close()

	if err := BuildWriter(source, out, repl, opts...); err != nil {
		out.Close()
		os.Remove(outputPath)
		return err
	}
	return nil
}

// BuildWriter is Build with a writable byte sink as the destination.
func BuildWriter(source string, w io.Writer, repl *Replacements, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	open, err := resolveTemplate(source, o)
	if err != nil {
		return err
	}
	return run(open, w, repl, o)
}

// BuildBytes is Build returning the finished workbook as bytes.
func BuildBytes(source string, repl *Replacements, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := BuildWriter(source, &buf, repl, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReader merges a template read from r and writes the result to w.
func BuildReader(r io.Reader, w io.Writer, repl *Replacements, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	return run(openerForBytes(data), w, repl, o)
}

// resolveTemplate turns a template source identifier into a reopenable
// workbook. The pipeline opens the template more than once (model load, base
// building), so the resolver returns an opener rather than a file.
func resolveTemplate(source string, o *Options) (func() (*excelize.File, error), error) {
	if _, err := os.Stat(source); err == nil {
		return func() (*excelize.File, error) {
			return excelize.OpenFile(source)
		}, nil
	}
	if o.templateFS != nil {
		data, err := fs.ReadFile(o.templateFS, source)
		if err == nil {
			return openerForBytes(data), nil
		}
	}
	return nil, fmt.Errorf("template %q: %w", source, ErrTemplateNotFound)
}

func openerForBytes(data []byte) func() (*excelize.File, error) {
	return func() (*excelize.File, error) {
		return excelize.OpenReader(bytes.NewReader(data))
	}
}

// run drives the whole pipeline: load the template model, build the stripped
// base, then merge one sheet per stage through chained intermediate files
// until the last stage lands on w. A forward-only destination cannot be
// queried for rows already written, so each stage reads only the immutable
// template model and the previous stage's file, and rewrites exactly one
// sheet.
//
// Every temporary artifact lives in one scratch directory removed on all
// exit paths; any per-sheet or per-row failure aborts the whole build.
func run(open func() (*excelize.File, error), w io.Writer, repl *Replacements, o *Options) error {
	tf, err := open()
	if err != nil {
		return fmt.Errorf("open template: %w", err)
	}
	sheets, err := loadTemplate(tf)
	tf.Close()
	if err != nil {
		return err
	}

	scratch, err := os.MkdirTemp(o.scratchDir, "exceltmpl-")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	basePath := filepath.Join(scratch, "base.xlsx")
	if err := writeBase(open, sheets, basePath); err != nil {
		return err
	}

	ctx := o.evalCtx()
	stage := basePath
	for i, ts := range sheets {
		last := i == len(sheets)-1
		next := filepath.Join(scratch, fmt.Sprintf("stage%d.xlsx", i+1))

		var dst io.Writer
		if last {
			dst = w
		}
		if err := runStage(stage, next, dst, ts, repl, ctx, o); err != nil {
			return err
		}
		stage = next
	}
	return nil
}

// writeBase strips a fresh template copy and saves it as the pipeline seed.
func writeBase(open func() (*excelize.File, error), sheets []*templateSheet, path string) error {
	f, err := open()
	if err != nil {
		return fmt.Errorf("open template for base: %w", err)
	}
	defer f.Close()

	if err := stripRows(f, sheets); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// runStage rewrites one sheet of the chained workbook. All other sheets pass
// through untouched. The final stage writes to out instead of nextPath.
func runStage(stagePath, nextPath string, out io.Writer, ts *templateSheet, repl *Replacements, ctx *evalContext, o *Options) error {
	f, err := excelize.OpenFile(stagePath)
	if err != nil {
		return fmt.Errorf("open stage file: %w", err)
	}
	defer f.Close()

	// A selector matching no sheet is not an error: the sheet merges with
	// an empty row map, reproducing the template 1:1.
	rows, _ := repl.rowsFor(ts.name, ts.index)

	var sw sheetWriter
	if useStreaming(ts, rows) {
		sw, err = newStreamingWriter(f, ts)
		if err != nil {
			return mergeErr(ts.name, -1, -1, err)
		}
	} else {
		sw = newMemoryWriter(f, ts.name)
	}

	if _, err := mergeSheet(ts, rows, sw, ctx); err != nil {
		return err
	}

	if out != nil {
		if o.recalculateOnOpen {
			fullCalc := true
			if err := f.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: &fullCalc}); err != nil {
				return fmt.Errorf("set calc props: %w", err)
			}
		}
		if err := f.Write(out); err != nil {
			return &WriteError{Path: "output", Err: err}
		}
		return nil
	}
	if err := f.SaveAs(nextPath); err != nil {
		return &WriteError{Path: nextPath, Err: err}
	}
	return nil
}
