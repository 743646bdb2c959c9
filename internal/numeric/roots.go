package numeric

import (
	"math"

	"github.com/emrzvv/rcg/internal/model"
)

// RootFinder solves g(x) = 0 on (0, inf) for increasing g.
type RootFinder struct {
	Tolerance     Tolerance
	MaxIterations int
	MaxDoublings  int
}

func DefaultRootFinder() RootFinder {
	return RootFinder{
		Tolerance:     Tolerance{Rel: 1e-10},
		MaxIterations: 200,
		MaxDoublings:  1100,
	}
}

// Validate rejects settings under which Solve cannot stop at every scale.
// Rel is relative to the root, so it must be positive; Abs is in units of x
// and only helps when the scale of the root is known.
func (r RootFinder) Validate() error {
	const op = "numeric.RootFinder"
	t := r.Tolerance
	if !(t.Rel > 0 && t.Rel < 1) {
		return model.DomainError(op, "relative tolerance must be in (0, 1), got %g", t.Rel)
	}
	if !(t.Abs >= 0) || math.IsInf(t.Abs, 1) {
		return model.DomainError(op, "absolute tolerance must be finite and >= 0, got %g", t.Abs)
	}
	if r.MaxIterations < 0 || r.MaxDoublings < 0 {
		return model.DomainError(op, "iteration limits must be >= 0")
	}
	return nil
}

// Bracket grows [start, start] by doubling up and halving down until
// g(lo) <= 0 <= g(hi).
func (r RootFinder) Bracket(g func(float64) (float64, error), start float64) (lo, hi float64, err error) {
	const op = "numeric.Bracket"
	if !(start > 0) || math.IsInf(start, 0) {
		return 0, 0, model.DomainError(op, "start must be finite and > 0, got %g", start)
	}
	limit := r.MaxDoublings
	if limit <= 0 {
		limit = DefaultRootFinder().MaxDoublings
	}
	lo, hi = start, start
	ghi, err := g(hi)
	if err != nil {
		return 0, 0, err
	}
	steps := 0
	for ghi < 0 {
		if steps++; steps > limit || math.IsInf(hi, 1) {
			return 0, 0, model.RootFindingError(op, start, "upper bracket not found after doubling")
		}
		lo, hi = hi, 2*hi
		if ghi, err = g(hi); err != nil {
			return 0, 0, err
		}
	}
	glo := ghi
	if lo != hi {
		if glo, err = g(lo); err != nil {
			return 0, 0, err
		}
	}
	for glo > 0 {
		if steps++; steps > limit || lo == 0 {
			return 0, 0, model.RootFindingError(op, start, "lower bracket not found after halving")
		}
		hi, lo = lo, lo/2
		if glo, err = g(lo); err != nil {
			return 0, 0, err
		}
	}
	return lo, hi, nil
}

// Solve refines a bracket with Newton steps, falling back to geometric
// bisection whenever a step leaves the bracket. dg may be nil.
func (r RootFinder) Solve(g, dg func(float64) (float64, error), lo, hi float64) (float64, error) {
	const op = "numeric.Solve"
	if !(lo > 0) || !(hi >= lo) {
		return 0, model.RootFindingError(op, lo, "invalid bracket")
	}
	iters := r.MaxIterations
	if iters <= 0 {
		iters = DefaultRootFinder().MaxIterations
	}
	x := math.Sqrt(lo) * math.Sqrt(hi)
	for i := 0; i < iters; i++ {
		if hi-lo <= r.Tolerance.Bound(x) {
			return x, nil
		}
		gx, err := g(x)
		if err != nil {
			return 0, err
		}
		if gx == 0 {
			return x, nil
		}
		if gx < 0 {
			lo = x
		} else {
			hi = x
		}
		next := math.Sqrt(lo) * math.Sqrt(hi)
		if dg != nil {
			d, err := dg(x)
			if err != nil {
				return 0, err
			}
			if n := x - gx/d; d > 0 && n > lo && n < hi {
				next = n
			}
		}
		if math.Abs(next-x) <= r.Tolerance.Bound(x) {
			return next, nil
		}
		x = next
	}
	return 0, &model.Error{
		Kind:      model.KindRootFinding,
		Op:        op,
		Point:     x,
		Tolerance: r.Tolerance.Bound(x),
		Estimate:  hi - lo,
		Detail:    "iteration budget exhausted",
	}
}
