package exceltmpl

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExpressionEvaluator evaluates parameter expressions embedded in template cells.
type ExpressionEvaluator interface {
	Evaluate(expression string, data map[string]any) (any, error)
}

// exprEvaluator implements ExpressionEvaluator using expr-lang/expr.
type exprEvaluator struct {
	cache sync.Map // expression string → compiled *vm.Program
}

// NewExpressionEvaluator creates an evaluator backed by expr-lang/expr with
// a compile cache.
func NewExpressionEvaluator() ExpressionEvaluator {
	return &exprEvaluator{}
}

func (e *exprEvaluator) Evaluate(expression string, data map[string]any) (any, error) {
	if expression == "" {
		return nil, nil
	}
	program, err := e.compile(expression, data)
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", expression, err)
	}
	result, err := expr.Run(program, data)
	if err != nil {
		return nil, fmt.Errorf("evaluate expression %q: %w", expression, err)
	}
	return result, nil
}

func (e *exprEvaluator) compile(expression string, env map[string]any) (*vm.Program, error) {
	if cached, ok := e.cache.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(expression, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	e.cache.Store(expression, program)
	return program, nil
}

// evalContext holds the caller's params and renders template cell text that
// embeds ${...} expressions.
type evalContext struct {
	params        map[string]any
	evaluator     ExpressionEvaluator
	notationBegin string
	notationEnd   string
}

func newEvalContext(params map[string]any, evaluator ExpressionEvaluator, begin, end string) *evalContext {
	if evaluator == nil {
		evaluator = NewExpressionEvaluator()
	}
	if begin == "" || end == "" {
		begin, end = "${", "}"
	}
	return &evalContext{
		params:        params,
		evaluator:     evaluator,
		notationBegin: begin,
		notationEnd:   end,
	}
}

// evaluateCellValue renders a template cell's text. A cell holding a single
// expression like "${total}" keeps the result's native type; mixed content
// like "Total: ${total}" always renders to a string; text with no
// expressions passes through verbatim.
func (c *evalContext) evaluateCellValue(text string) (CellValue, error) {
	if !strings.Contains(text, c.notationBegin) {
		return StringValue(text), nil
	}

	if exprStr, ok := extractSingleExpression(text, c.notationBegin, c.notationEnd); ok {
		result, err := c.evaluator.Evaluate(exprStr, c.params)
		if err != nil {
			return CellValue{}, err
		}
		return cellValueOfResult(result), nil
	}

	segments := parseExpressions(text, c.notationBegin, c.notationEnd)
	var b strings.Builder
	for _, seg := range segments {
		if !seg.isExpression {
			b.WriteString(seg.text)
			continue
		}
		val, err := c.evaluator.Evaluate(seg.text, c.params)
		if err != nil {
			return CellValue{}, err
		}
		if val != nil {
			fmt.Fprintf(&b, "%v", val)
		}
	}
	return StringValue(b.String()), nil
}

// cellValueOfResult maps an expression result onto the cell variant. Results
// outside the supported scalar types render as strings rather than failing,
// since expression output is display data.
func cellValueOfResult(v any) CellValue {
	if t, ok := v.(time.Time); ok {
		return DateValue(t)
	}
	cv, err := valueOf(v)
	if err != nil {
		return StringValue(fmt.Sprintf("%v", v))
	}
	return cv
}

// segment is a part of a cell value: literal text or an expression body.
type segment struct {
	isExpression bool
	text         string
}

// parseExpressions splits cell text into literal and expression segments.
// "Name: ${e.Name}" → [{literal "Name: "}, {expression "e.Name"}]
func parseExpressions(value, begin, end string) []segment {
	var segments []segment
	remaining := value

	for {
		startIdx := strings.Index(remaining, begin)
		if startIdx < 0 {
			break
		}

		searchFrom := startIdx + len(begin)
		endIdx := findMatchingEnd(remaining[searchFrom:], begin, end)
		if endIdx < 0 {
			break
		}
		endIdx += searchFrom

		if startIdx > 0 {
			segments = append(segments, segment{text: remaining[:startIdx]})
		}
		segments = append(segments, segment{
			isExpression: true,
			text:         remaining[startIdx+len(begin) : endIdx],
		})
		remaining = remaining[endIdx+len(end):]
	}

	if remaining != "" {
		segments = append(segments, segment{text: remaining})
	}
	return segments
}

// findMatchingEnd finds the matching end delimiter, handling nested pairs.
func findMatchingEnd(s, begin, end string) int {
	depth := 0
	for i := 0; i <= len(s)-len(end); i++ {
		if strings.HasPrefix(s[i:], begin) {
			depth++
		} else if strings.HasPrefix(s[i:], end) {
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// extractSingleExpression returns the expression body when the value is
// exactly one expression like "${total}" with no surrounding text.
func extractSingleExpression(value, begin, end string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, begin) || !strings.HasSuffix(trimmed, end) {
		return "", false
	}
	inner := trimmed[len(begin) : len(trimmed)-len(end)]
	if strings.Contains(inner, begin) {
		return "", false
	}
	return inner, true
}
