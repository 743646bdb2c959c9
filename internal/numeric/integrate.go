package numeric

import (
	"container/heap"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/emrzvv/rcg/internal/model"
)

// Tolerance is an absolute/relative accuracy target: |err| <= max(Abs, Rel*|value|).
type Tolerance struct {
	Abs float64 `yaml:"abs"`
	Rel float64 `yaml:"rel"`
}

func (t Tolerance) Bound(value float64) float64 {
	return math.Max(t.Abs, t.Rel*math.Abs(value))
}

// Integrator is a global adaptive Gauss–Legendre integrator. Each subinterval
// is estimated with Points and 2*Points nodes; the difference is its error.
// The subinterval with the largest error is bisected until the total error is
// within tolerance or MaxSubintervals is reached.
type Integrator struct {
	Tolerance       Tolerance
	Points          int
	MaxSubintervals int
}

func DefaultIntegrator() Integrator {
	return Integrator{
		Tolerance:       Tolerance{Abs: 1e-12, Rel: 1e-9},
		Points:          10,
		MaxSubintervals: 2000,
	}
}

type Result struct {
	Value        float64
	AbsErr       float64
	Subintervals int
}

type segment struct {
	a, b     float64
	val, err float64
}

type segments []segment

func (s segments) Len() int           { return len(s) }
func (s segments) Less(i, j int) bool { return s[i].err > s[j].err }
func (s segments) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s *segments) Push(x any)        { *s = append(*s, x.(segment)) }

func (s *segments) Pop() any {
	old := *s
	n := len(old)
	x := old[n-1]
	*s = old[:n-1]
	return x
}

func (s segments) sum() (v, e float64) {
	for _, sg := range s {
		v += sg.val
		e += sg.err
	}
	return v, e
}

// Integrate integrates f over [points[0], points[len-1]], using the inner
// points as initial breakpoints. The bounds must be finite.
func (in Integrator) Integrate(f func(float64) float64, points ...float64) (Result, error) {
	const op = "numeric.Integrate"
	if len(points) < 2 {
		return Result{}, model.DomainError(op, "need at least two points, got %d", len(points))
	}
	pts := make([]float64, len(points))
	copy(pts, points)
	sort.Float64s(pts)
	for _, p := range pts {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return Result{}, model.DomainError(op, "integration bounds must be finite, got %g", p)
		}
	}
	n := in.Points
	if n <= 0 {
		n = 10
	}
	maxSub := in.MaxSubintervals
	if maxSub <= 0 {
		maxSub = DefaultIntegrator().MaxSubintervals
	}

	bad := false
	g := func(x float64) float64 {
		v := f(x)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad = true
			return 0
		}
		return v
	}
	estimate := func(a, b float64) segment {
		coarse := quad.Fixed(g, a, b, n, quad.Legendre{}, 0)
		fine := quad.Fixed(g, a, b, 2*n, quad.Legendre{}, 0)
		return segment{a: a, b: b, val: fine, err: math.Abs(fine - coarse)}
	}

	h := &segments{}
	for i := 0; i+1 < len(pts); i++ {
		if pts[i+1] > pts[i] {
			heap.Push(h, estimate(pts[i], pts[i+1]))
		}
	}
	if h.Len() == 0 {
		return Result{}, nil
	}
	if bad {
		return Result{}, model.ConvergenceError(op, in.Tolerance.Abs, math.NaN(), "integrand is not finite")
	}

	for {
		val, errSum := h.sum()
		if errSum <= in.Tolerance.Bound(val) {
			return Result{Value: val, AbsErr: errSum, Subintervals: h.Len()}, nil
		}
		if h.Len() >= maxSub {
			return Result{Value: val, AbsErr: errSum, Subintervals: h.Len()},
				model.ConvergenceError(op, in.Tolerance.Bound(val), errSum,
					"subinterval budget exhausted")
		}
		worst := heap.Pop(h).(segment)
		mid := 0.5 * (worst.a + worst.b)
		if mid <= worst.a || mid >= worst.b {
			// интервал не делится в float64
			return Result{Value: val, AbsErr: errSum, Subintervals: h.Len() + 1},
				model.ConvergenceError(op, in.Tolerance.Bound(val), errSum,
					"subinterval below floating point resolution")
		}
		heap.Push(h, estimate(worst.a, mid))
		heap.Push(h, estimate(mid, worst.b))
		if bad {
			return Result{}, model.ConvergenceError(op, in.Tolerance.Bound(val), math.NaN(), "integrand is not finite")
		}
	}
}
