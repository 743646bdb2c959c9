package density

import (
	"math"
)

// point is a location on the beta-value scale b = z/(1+z) of the standardized
// ratio z = y/r, carried together with 1-b and both logs so that neither tail
// loses precision.
type point struct {
	t, s       float64
	logT, logS float64
}

var (
	origin   = point{t: 0, s: 1, logT: math.Inf(-1), logS: 0}
	infinity = point{t: 1, s: 0, logT: 0, logS: math.Inf(-1)}
)

// atLog returns the point for log z = v.
func atLog(v float64) point {
	switch {
	case math.IsInf(v, -1):
		return origin
	case math.IsInf(v, 1):
		return infinity
	}
	// log t = -log(1+e^-v), log s = -log(1+e^v)
	var logT, logS float64
	if v > 0 {
		logT = -math.Log1p(math.Exp(-v))
		logS = -v + logT
	} else {
		logS = -math.Log1p(math.Exp(v))
		logT = v + logS
	}
	return point{t: math.Exp(logT), s: math.Exp(logS), logT: logT, logS: logS}
}

func fromLogT(logT float64) point {
	t := math.Exp(logT)
	return point{t: t, s: 1 - t, logT: logT, logS: math.Log1p(-t)}
}

func fromLogS(logS float64) point {
	s := math.Exp(logS)
	return point{t: 1 - s, s: s, logT: math.Log1p(-s), logS: logS}
}

// logZ is log(t/s).
func (p point) logZ() float64 { return p.logT - p.logS }

// logBeta is the log density of the standardized beta value B = Z/(1+Z).
// For equal shapes this is Kibble's ratio density mapped to (0, 1); for
// independent gammas with unequal shapes it is Beta(shape1, shape2).
func (e *Engine) logBeta(p point) float64 {
	if math.IsInf(p.logT, -1) || math.IsInf(p.logS, -1) {
		return e.edgeLogDensity(p)
	}
	if !e.sameShape || e.rho == 0 {
		return (e.a1-1)*p.logT + (e.a2-1)*p.logS - e.logNorm
	}
	d := p.t - p.s
	q := d*d + 4*(1-e.rho)*p.t*p.s
	return -e.logNorm + e.a1*math.Log1p(-e.rho) + (e.a1-1)*(p.logT+p.logS) - (e.a1+0.5)*math.Log(q)
}

// edgeLogDensity is the limit at b = 0 or b = 1.
func (e *Engine) edgeLogDensity(p point) float64 {
	a := e.a1
	if math.IsInf(p.logS, -1) {
		a = e.a2
	}
	switch {
	case a < 1:
		return math.Inf(1)
	case a > 1:
		return math.Inf(-1)
	}
	// a == 1: при t или s = 0 имеем q = 1
	if !e.sameShape || e.rho == 0 {
		return -e.logNorm
	}
	return -e.logNorm + math.Log1p(-e.rho)
}

// logY is the log density of Y at the standardized point p.
func (e *Engine) logY(p point) float64 {
	return e.logBeta(p) + 2*p.logS - e.logR
}
