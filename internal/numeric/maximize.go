package numeric

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

var (
	ErrUnbounded    = errors.New("numeric: objective is unbounded")
	ErrNoFinitePeak = errors.New("numeric: objective has no finite value on the grid")
)

// Window is a closed interval scanned with Points evenly spaced nodes.
type Window struct {
	Lo, Hi float64
	Points int
}

// Maximizer finds the supremum of a 1-D function: a grid scan picks the
// starting point, Nelder–Mead refines it inside the scanned range.
type Maximizer struct {
	Tolerance     float64
	MaxIterations int
}

func DefaultMaximizer() Maximizer {
	return Maximizer{Tolerance: 1e-12, MaxIterations: 500}
}

// Maximize returns argmax and max of f over the union of windows.
func (m Maximizer) Maximize(f func(float64) float64, windows ...Window) (x, fx float64, err error) {
	if len(windows) == 0 {
		return 0, 0, errors.New("numeric: no search windows")
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	x, fx = math.NaN(), math.Inf(-1)
	var spacing float64
	for _, w := range windows {
		n := w.Points
		if n < 2 {
			n = 2
		}
		grid := floats.Span(make([]float64, n), w.Lo, w.Hi)
		for _, t := range grid {
			v := f(t)
			if math.IsInf(v, 1) {
				return t, v, fmt.Errorf("%w at %g", ErrUnbounded, t)
			}
			if !math.IsNaN(v) && v > fx {
				x, fx = t, v
			}
		}
		lo, hi = math.Min(lo, w.Lo), math.Max(hi, w.Hi)
		if spacing == 0 || grid[1]-grid[0] < spacing {
			spacing = grid[1] - grid[0]
		}
	}
	if math.IsInf(fx, -1) {
		return x, fx, ErrNoFinitePeak
	}

	problem := optimize.Problem{
		Func: func(v []float64) float64 {
			t := v[0]
			if t < lo || t > hi {
				return math.Inf(1)
			}
			r := f(t)
			if math.IsNaN(r) {
				return math.Inf(1)
			}
			return -r
		},
	}
	iters := m.MaxIterations
	if iters <= 0 {
		iters = DefaultMaximizer().MaxIterations
	}
	settings := &optimize.Settings{
		MajorIterations: iters,
		Converger: &optimize.FunctionConverge{
			Absolute:   m.Tolerance,
			Relative:   m.Tolerance,
			Iterations: 30,
		},
	}
	res, err := optimize.Minimize(problem, []float64{x}, settings, &optimize.NelderMead{SimplexSize: spacing})
	if err != nil {
		return x, fx, fmt.Errorf("numeric: refine maximum near %g: %w", x, err)
	}
	if res.Status.Early() {
		return x, fx, fmt.Errorf("numeric: refine maximum near %g: %s", x, res.Status)
	}
	if math.IsInf(res.F, -1) {
		return res.X[0], math.Inf(1), fmt.Errorf("%w at %g", ErrUnbounded, res.X[0])
	}
	if -res.F > fx {
		return res.X[0], -res.F, nil
	}
	return x, fx, nil
}
