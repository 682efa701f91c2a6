// Package evaluator wraps expr-lang/expr as a safe arithmetic evaluator.
//
// Only numeric literals, the binary operators + - * / **, unary + and -,
// parentheses and a fixed set of named constants are accepted. Anything else
// (identifiers, calls, strings, member access, comparisons) is rejected before
// the expression is compiled. Integer literals are evaluated as float64, so
// large products lose precision instead of wrapping around.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

var (
	ErrEmptyExpression = errors.New("empty expression")
	ErrNotFinite       = errors.New("result is not a finite number")
)

// Constants are the named values an expression may reference.
var Constants = map[string]any{
	"pi": math.Pi,
	"e":  math.E,
}

var allowedBinary = map[string]bool{
	"+":  true,
	"-":  true,
	"*":  true,
	"/":  true,
	"**": true,
}

// Evaluator turns an arithmetic expression into its formatted numeric result.
type Evaluator interface {
	Evaluate(ctx context.Context, expression string) (string, error)
}

type Arithmetic struct{}

func New() *Arithmetic {
	return &Arithmetic{}
}

func (a *Arithmetic) Evaluate(ctx context.Context, expression string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		value string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := evaluate(expression)
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func evaluate(expression string) (out string, err error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return "", ErrEmptyExpression
	}

	tree, err := parser.Parse(expression)
	if err != nil {
		return "", fmt.Errorf("invalid expression: %w", err)
	}

	check := &grammarCheck{}
	ast.Walk(&tree.Node, check)
	if check.err != nil {
		return "", check.err
	}

	program, err := expr.Compile(expression,
		expr.Env(Constants),
		expr.DisableAllBuiltins(),
		expr.Patch(floatLiterals{}),
	)
	if err != nil {
		return "", fmt.Errorf("invalid expression: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("evaluation failed: %v", r)
		}
	}()

	value, err := expr.Run(program, Constants)
	if err != nil {
		return "", fmt.Errorf("evaluation failed: %w", err)
	}
	return Format(value)
}

type grammarCheck struct {
	err error
}

func (g *grammarCheck) Visit(node *ast.Node) {
	if g.err != nil {
		return
	}
	switch n := (*node).(type) {
	case *ast.IntegerNode, *ast.FloatNode:
	case *ast.BinaryNode:
		if !allowedBinary[n.Operator] {
			g.err = fmt.Errorf("operator %q is not allowed", n.Operator)
		}
	case *ast.UnaryNode:
		if n.Operator != "-" && n.Operator != "+" {
			g.err = fmt.Errorf("operator %q is not allowed", n.Operator)
		}
	case *ast.IdentifierNode:
		if _, ok := Constants[n.Value]; !ok {
			g.err = fmt.Errorf("unknown name %q", n.Value)
		}
	default:
		g.err = fmt.Errorf("unsupported syntax %T", *node)
	}
}

// floatLiterals rewrites integer literals as floats.
type floatLiterals struct{}

func (floatLiterals) Visit(node *ast.Node) {
	if n, ok := (*node).(*ast.IntegerNode); ok {
		ast.Patch(node, &ast.FloatNode{Value: float64(n.Value)})
	}
}

// Format renders a numeric result. Integral values below 1e15 print without a
// fractional part; everything else uses the shortest %g representation.
func Format(value any) (string, error) {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", ErrNotFinite
		}
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10), nil
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("result is not numeric: %T", value)
	}
}
