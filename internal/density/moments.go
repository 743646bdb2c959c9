package density

import (
	"math"

	"github.com/emrzvv/rcg/internal/model"
)

// Mean is E[Y]. Given the Poisson mixing count K of Kibble's construction,
// E[Y | K] = r (a+K)/(a+K-1), and E[1/(a+K-1)] = (1-rho)/(a-1).
func (e *Engine) Mean() (float64, error) {
	const op = "density.Mean"
	if !(e.a2 > 1) {
		return 0, e.fail(model.DomainError(op, "mean is infinite for shape2=%g <= 1", e.a2), 0)
	}
	if !e.sameShape {
		return e.r * e.a1 / (e.a2 - 1), nil
	}
	return e.r * (e.a1 - e.rho) / (e.a1 - 1), nil
}

// Variance is Var(Y), finite for shape2 > 2.
func (e *Engine) Variance() (float64, error) {
	const op = "density.Variance"
	if !(e.a2 > 2) {
		return 0, e.fail(model.DomainError(op, "variance is infinite for shape2=%g <= 2", e.a2), 0)
	}
	mean, err := e.Mean()
	if err != nil {
		return 0, err
	}
	var m2 float64
	if !e.sameShape {
		m2 = e.r * e.r * e.a1 * (e.a1 + 1) / ((e.a2 - 1) * (e.a2 - 2))
	} else {
		a, q := e.a1, 1-e.rho
		m2 = e.r * e.r * (1 + 4*q/(a-1) + 6*q*q/((a-1)*(a-2)))
	}
	return m2 - mean*mean, nil
}

// ExpectTheta is E[X2/X1], the mean of the reciprocal ratio.
func (e *Engine) ExpectTheta() (float64, error) {
	const op = "density.ExpectTheta"
	if !(e.a1 > 1) {
		return 0, e.fail(model.DomainError(op, "E[X2/X1] is infinite for shape1=%g <= 1", e.a1), 0)
	}
	if !e.sameShape {
		return e.a2 / (e.a1 - 1) / e.r, nil
	}
	return (e.a1 - e.rho) / (e.a1 - 1) / e.r, nil
}

// ExpectMarginals returns E[X1] and E[X2].
func (e *Engine) ExpectMarginals() (m1, m2 float64) {
	return e.a1 * e.params.Scale1(), e.a2 * e.params.Scale2()
}

// ExpectBetaMarginal is E[X1] / (E[X1] + E[X2]).
func (e *Engine) ExpectBetaMarginal() float64 {
	m1, m2 := e.ExpectMarginals()
	return m1 / (m1 + m2)
}

// LogMoments returns the mean and variance of log Y. The mean is exact
// because the marginals stay gamma under any correlation.
func (e *Engine) LogMoments() (mean, variance float64, err error) {
	c := e.center
	v, err := e.integrate(func(p point) float64 {
		d := p.logZ() - c
		return d * d
	}, origin, infinity)
	if err != nil {
		return 0, 0, e.fail(err, 0)
	}
	return e.logR + c, v, nil
}

// Expect is E[fn(Y); lo <= Y <= hi]. hi may be +Inf.
func (e *Engine) Expect(fn func(y float64) float64, lo, hi float64) (float64, error) {
	const op = "density.Expect"
	if math.IsNaN(lo) || math.IsNaN(hi) || lo < 0 || hi < lo {
		return 0, e.fail(model.DomainError(op, "invalid range [%g, %g]", lo, hi), 0)
	}
	if fn == nil {
		fn = func(y float64) float64 { return y }
	}
	from, to := origin, infinity
	if lo > 0 {
		from = e.pointAt(lo)
	}
	if !math.IsInf(hi, 1) {
		to = e.pointAt(hi)
	}
	if hi == 0 {
		return 0, nil
	}
	bad := false
	v, err := e.integrate(func(p point) float64 {
		fv := fn(e.r * math.Exp(p.logZ()))
		if math.IsNaN(fv) {
			bad = true
			return 0
		}
		return fv
	}, from, to)
	if err != nil {
		return 0, e.fail(err, 0)
	}
	if bad {
		return 0, e.fail(model.DomainError(op, "integrand returned NaN"), 0)
	}
	return v, nil
}

// ExpectBeta is E[Y/(1+Y)].
func (e *Engine) ExpectBeta() (float64, error) {
	return e.Expect(func(y float64) float64 { return y / (1 + y) }, 0, math.Inf(1))
}

// CheckNormalization verifies that the density integrates to 1 within tol.
// A converged mass that misses 1 is returned together with the error.
func (e *Engine) CheckNormalization(tol float64) (float64, error) {
	const op = "density.CheckNormalization"
	mass, err := e.integrate(nil, origin, infinity)
	if err != nil {
		return 0, e.fail(err, 0)
	}
	if math.Abs(mass-1) > tol {
		return mass, e.fail(model.ConvergenceError(op, tol, math.Abs(mass-1), "density does not integrate to one"), 0)
	}
	return mass, nil
}
