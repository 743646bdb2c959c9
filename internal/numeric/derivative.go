package numeric

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/emrzvv/rcg/internal/model"
)

// fivePoint is the fourth-order central stencil for the first derivative.
var fivePoint = fd.Formula{
	Stencil: []fd.Point{
		{Loc: -2, Coeff: 1.0 / 12},
		{Loc: -1, Coeff: -8.0 / 12},
		{Loc: 1, Coeff: 8.0 / 12},
		{Loc: 2, Coeff: -1.0 / 12},
	},
	Derivative: 1,
	Step:       1e-3,
}

// forwardThree is the second-order one-sided stencil used at a domain edge.
var forwardThree = fd.Formula{
	Stencil: []fd.Point{
		{Loc: 0, Coeff: -1.5},
		{Loc: 1, Coeff: 2},
		{Loc: 2, Coeff: -0.5},
	},
	Derivative: 1,
	Step:       1e-3,
}

// Differentiator estimates f'(x) by halving the step until two successive
// estimates agree, then applies one Richardson step.
type Differentiator struct {
	Tolerance   Tolerance
	InitialStep float64 // относительно max(|x|, 1e-3)
	MaxHalvings int
}

func DefaultDifferentiator() Differentiator {
	return Differentiator{
		Tolerance:   Tolerance{Abs: 1e-10, Rel: 1e-5},
		InitialStep: 1e-2,
		MaxHalvings: 12,
	}
}

// Derivative differentiates f at x without evaluating it below lower.
// Pass math.Inf(-1) when f is defined everywhere.
func (d Differentiator) Derivative(f func(float64) (float64, error), x, lower float64) (float64, error) {
	const op = "numeric.Derivative"
	if math.IsNaN(x) || math.IsInf(x, 0) || x < lower {
		return 0, model.DomainError(op, "x=%g is outside the domain [%g, inf)", x, lower)
	}
	step := d.InitialStep
	if step <= 0 {
		step = DefaultDifferentiator().InitialStep
	}
	halvings := d.MaxHalvings
	if halvings <= 0 {
		halvings = DefaultDifferentiator().MaxHalvings
	}

	h := step * math.Max(math.Abs(x), 1e-3)
	formula, order := fivePoint, 4.0
	switch room := x - lower; {
	case room == 0:
		formula, order = forwardThree, 2
	case 2*h >= room:
		h = room / 4
	}

	var ferr error
	g := func(t float64) float64 {
		v, err := f(t)
		if err != nil && ferr == nil {
			ferr = err
		}
		return v
	}
	estimate := func(h float64) float64 {
		return fd.Derivative(g, x, &fd.Settings{Formula: formula, Step: h})
	}

	prev := estimate(h)
	if ferr != nil {
		return 0, ferr
	}
	var diff float64
	for i := 0; i < halvings; i++ {
		h /= 2
		cur := estimate(h)
		if ferr != nil {
			return 0, ferr
		}
		if math.IsNaN(cur) || math.IsInf(cur, 0) {
			return 0, model.ConvergenceError(op, d.Tolerance.Bound(prev), math.NaN(), "non-finite difference quotient")
		}
		diff = math.Abs(cur - prev)
		if diff <= d.Tolerance.Bound(cur) {
			k := math.Pow(2, order)
			return (k*cur - prev) / (k - 1), nil
		}
		prev = cur
	}
	return 0, model.ConvergenceError(op, d.Tolerance.Bound(prev), diff,
		"step halving did not settle")
}
