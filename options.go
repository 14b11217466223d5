package exceltmpl

import "io/fs"

// Options holds configuration for a build.
type Options struct {
	templateFS        fs.FS
	scratchDir        string
	params            map[string]any
	evaluator         ExpressionEvaluator
	notationBegin     string
	notationEnd       string
	recalculateOnOpen bool
}

func defaultOptions() *Options {
	return &Options{
		notationBegin: "${",
		notationEnd:   "}",
	}
}

// Option configures a build.
type Option func(*Options)

// WithTemplateFS supplies a bundled-resource filesystem (typically an
// embed.FS). A template source that does not resolve on disk is looked up
// here before the build fails with ErrTemplateNotFound.
func WithTemplateFS(fsys fs.FS) Option {
	return func(o *Options) { o.templateFS = fsys }
}

// WithScratchDir sets the directory for the stripped base and the per-sheet
// intermediate files. The build creates a private subdirectory inside it and
// removes that subdirectory on every exit path. Defaults to the system temp
// directory.
func WithScratchDir(dir string) Option {
	return func(o *Options) { o.scratchDir = dir }
}

// WithParams supplies named values for ${...} expressions embedded in
// template cells. Without params, expression text passes through verbatim.
func WithParams(params map[string]any) Option {
	return func(o *Options) { o.params = params }
}

// WithEvaluator sets a custom expression evaluator.
func WithEvaluator(ev ExpressionEvaluator) Option {
	return func(o *Options) { o.evaluator = ev }
}

// WithExpressionNotation sets the expression delimiters (default: "${", "}").
func WithExpressionNotation(begin, end string) Option {
	return func(o *Options) {
		o.notationBegin = begin
		o.notationEnd = end
	}
}

// WithRecalculateOnOpen tells the spreadsheet application to recalculate all
// formulas when the output file is opened.
func WithRecalculateOnOpen(recalc bool) Option {
	return func(o *Options) { o.recalculateOnOpen = recalc }
}

// evalCtx returns the expression context for these options, or nil when the
// caller supplied no params.
func (o *Options) evalCtx() *evalContext {
	if o.params == nil {
		return nil
	}
	return newEvalContext(o.params, o.evaluator, o.notationBegin, o.notationEnd)
}
