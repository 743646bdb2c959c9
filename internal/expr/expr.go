// Package expr compiles CEL expressions of a single double variable y into
// integrands, e.g. "log(y)", "y * y" or "math.abs(y - 1.0)".
package expr

import (
	"fmt"
	"math"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/emrzvv/rcg/internal/model"
)

// costLimit bounds a single evaluation; integrands are evaluated thousands
// of times per integral.
const costLimit = 10_000

var (
	envOnce sync.Once
	env     *cel.Env
	envErr  error
)

func unary(name string, fn func(float64) float64) cel.EnvOption {
	return cel.Function(name,
		cel.Overload(name+"_double", []*cel.Type{cel.DoubleType}, cel.DoubleType,
			cel.UnaryBinding(func(v ref.Val) ref.Val {
				x, ok := v.(types.Double)
				if !ok {
					return types.MaybeNoSuchOverloadErr(v)
				}
				return types.Double(fn(float64(x)))
			})))
}

func newEnv() (*cel.Env, error) {
	envOnce.Do(func() {
		env, envErr = cel.NewEnv(
			cel.Variable("y", cel.DoubleType),
			ext.Math(),
			unary("log", math.Log),
			unary("exp", math.Exp),
			unary("log1p", math.Log1p),
			cel.Function("pow",
				cel.Overload("pow_double_double", []*cel.Type{cel.DoubleType, cel.DoubleType}, cel.DoubleType,
					cel.BinaryBinding(func(a, b ref.Val) ref.Val {
						x, ok1 := a.(types.Double)
						p, ok2 := b.(types.Double)
						if !ok1 || !ok2 {
							return types.NewErr("pow: expected doubles")
						}
						return types.Double(math.Pow(float64(x), float64(p)))
					}))),
		)
	})
	return env, envErr
}

// Integrand is a compiled expression of y.
type Integrand struct {
	src string
	prg cel.Program
}

// Compile type-checks src; the result must be a double. Numeric literals
// need a decimal point ("2.0", not "2").
func Compile(src string) (*Integrand, error) {
	const op = "expr.Compile"
	e, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("building expression environment: %w", err)
	}
	ast, issues := e.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, model.DomainError(op, "invalid expression %q: %v", src, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.DoubleType) {
		return nil, model.DomainError(op, "expression %q has type %s, want double", src, ast.OutputType())
	}
	prg, err := e.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, model.DomainError(op, "expression %q: %v", src, err)
	}
	return &Integrand{src: src, prg: prg}, nil
}

func (in *Integrand) String() string { return in.src }

func (in *Integrand) Eval(y float64) (float64, error) {
	out, _, err := in.prg.Eval(map[string]any{"y": y})
	if err != nil {
		return 0, model.DomainError("expr.Eval", "%q at y=%g: %v", in.src, y, err)
	}
	v, ok := out.Value().(float64)
	if !ok {
		return 0, model.DomainError("expr.Eval", "%q at y=%g returned %T", in.src, y, out.Value())
	}
	return v, nil
}

// Func adapts the integrand to a plain func for integration. Evaluation
// errors turn into NaN; firstErr reports the first of them.
func (in *Integrand) Func() (fn func(float64) float64, firstErr func() error) {
	var mu sync.Mutex
	var first error
	fn = func(y float64) float64 {
		v, err := in.Eval(y)
		if err != nil {
			mu.Lock()
			if first == nil {
				first = err
			}
			mu.Unlock()
			return math.NaN()
		}
		return v
	}
	return fn, func() error {
		mu.Lock()
		defer mu.Unlock()
		return first
	}
}
