package numeric

import (
	"math"

	"gonum.org/v1/gonum/mathext"

	"github.com/emrzvv/rcg/internal/model"
)

// Trigamma is ψ1(x) = ζ(2, x).
func Trigamma(x float64) float64 {
	return mathext.Zeta(2, x)
}

// InvTrigamma returns x > 0 with ψ1(x) = v, by bisection in log x.
func InvTrigamma(v float64) (float64, error) {
	const op = "numeric.InvTrigamma"
	if !(v > 0) || math.IsInf(v, 0) {
		return 0, model.DomainError(op, "trigamma value must be finite and > 0, got %g", v)
	}
	// ψ1 убывает: ψ1(x) ~ 1/x^2 около нуля и ~ 1/x на бесконечности
	lo, hi := math.Log(1e-8), math.Log(1e12)
	if Trigamma(math.Exp(lo)) < v || Trigamma(math.Exp(hi)) > v {
		return 0, model.DomainError(op, "trigamma value %g is out of range", v)
	}
	for i := 0; i < 200 && hi-lo > 1e-13; i++ {
		mid := 0.5 * (lo + hi)
		if Trigamma(math.Exp(mid)) > v {
			lo = mid
		} else {
			hi = mid
		}
	}
	return math.Exp(0.5 * (lo + hi)), nil
}

// LogBetaPrimePDF is the log density of BetaPrime(p, q) scaled by s.
func LogBetaPrimePDF(x, p, q, s float64) float64 {
	if x <= 0 {
		if x == 0 {
			switch {
			case p < 1:
				return math.Inf(1)
			case p == 1:
				return -mathext.Lbeta(p, q) - math.Log(s)
			}
		}
		return math.Inf(-1)
	}
	if math.IsInf(x, 1) {
		return math.Inf(-1)
	}
	u := x / s
	return (p-1)*math.Log(u) - (p+q)*math.Log1p(u) - mathext.Lbeta(p, q) - math.Log(s)
}
