package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
)

// maxExactInt is the largest magnitude below which every integer is exactly
// representable as a float64.
const maxExactInt = 1 << 53

type CalculatorInput struct {
	Expression string `json:"expression" jsonschema_description:"Arithmetic expression, e.g. (3.5 + 2) * 4 ^ 2 or sqrt(2). Supports + - * / % ^, parentheses, pi, e and sqrt, pow, sin, cos, tan, log, ln, exp, abs, floor, ceil, round, min, max."`
}

var CalculatorDefinition = ToolDefinition{
	Name:        "calculator",
	Description: "Evaluate an arithmetic expression. Use this for any math question instead of computing in your head.",
	InputSchema: GenerateSchema[CalculatorInput](),
	Function:    Calculate,
}

var calcEnv = map[string]any{"pi": math.Pi, "e": math.E}

var calcOptions = []expr.Option{
	expr.Env(calcEnv),
	expr.Patch(floatArithmetic{}),
	expr.Function("mod", func(params ...any) (any, error) {
		if len(params) != 2 {
			return nil, fmt.Errorf("mod expects 2 arguments, got %d", len(params))
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		y, err := toFloat(params[1])
		if err != nil {
			return nil, err
		}
		return math.Mod(x, y), nil
	}),
	mathFunc("sqrt", math.Sqrt),
	mathFunc("sin", math.Sin),
	mathFunc("cos", math.Cos),
	mathFunc("tan", math.Tan),
	mathFunc("log", math.Log10),
	mathFunc("ln", math.Log),
	mathFunc("exp", math.Exp),
	expr.Function("pow", func(params ...any) (any, error) {
		if len(params) != 2 {
			return nil, fmt.Errorf("pow expects 2 arguments, got %d", len(params))
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		y, err := toFloat(params[1])
		if err != nil {
			return nil, err
		}
		return math.Pow(x, y), nil
	}),
}

// floatArithmetic makes every literal a float64 so results never wrap around
// on integer overflow, and turns a % b into mod(a, b), which accepts floats.
// Children are visited before their parents.
type floatArithmetic struct{}

func (floatArithmetic) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IntegerNode:
		*node = &ast.FloatNode{Value: float64(n.Value)}
	case *ast.BinaryNode:
		if n.Operator == "%" {
			*node = &ast.CallNode{
				Callee:    &ast.IdentifierNode{Value: "mod"},
				Arguments: []ast.Node{n.Left, n.Right},
			}
		}
	}
}

func mathFunc(name string, fn func(float64) float64) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(params))
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		return fn(x), nil
	})
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

// Calculate evaluates CalculatorInput.Expression. Non-finite results such as
// division by zero are errors.
func Calculate(_ context.Context, input json.RawMessage) (string, error) {
	var in CalculatorInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	return Evaluate(in.Expression)
}

// Evaluate returns the value of an arithmetic expression. All arithmetic is
// float64; integral results up to 2^53 print without a fraction or exponent,
// larger ones in shortest 'g' form.
func Evaluate(expression string) (string, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return "", fmt.Errorf("empty expression")
	}
	program, err := expr.Compile(expression, calcOptions...)
	if err != nil {
		return "", fmt.Errorf("invalid expression: %w", err)
	}
	out, err := expr.Run(program, calcEnv)
	if err != nil {
		return "", fmt.Errorf("evaluate: %w", err)
	}
	v, err := toFloat(out)
	if err != nil {
		return "", fmt.Errorf("expression did not produce a number")
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "", fmt.Errorf("result is not a finite number (division by zero?)")
	}
	if v == math.Trunc(v) && math.Abs(v) <= maxExactInt {
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return strconv.FormatFloat(v, 'g', -1, 64), nil
}
