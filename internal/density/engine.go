package density

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mathext"

	"github.com/emrzvv/rcg/internal/model"
	"github.com/emrzvv/rcg/internal/numeric"
)

type Settings struct {
	Integrator     numeric.Integrator
	Differentiator numeric.Differentiator
	Strategy       Strategy
}

func DefaultSettings() Settings {
	return Settings{
		Integrator:     numeric.DefaultIntegrator(),
		Differentiator: numeric.DefaultDifferentiator(),
		Strategy:       Analytic{},
	}
}

// Engine evaluates the density and distribution function of Y = X1/X2.
// All methods are pure functions of the point and the construction inputs.
type Engine struct {
	params   model.Params
	settings Settings

	a1, a2    float64
	rho       float64
	sameShape bool
	r, logR   float64
	logNorm   float64

	// показатели замены переменной на концах (0, 1)
	e1, e2 float64
	center float64 // E[log Z]
	spread float64 // грубая оценка sd(log Z)
	split  point
	seeds  []point
}

// seedMultiples place initial breakpoints at center ± k*spread on the log scale.
var seedMultiples = []float64{0.5, 1, 2, 4, 8}

func New(p model.Params, s Settings) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if s.Strategy == nil {
		s.Strategy = Analytic{}
	}
	if s.Integrator.MaxSubintervals == 0 {
		s.Integrator = numeric.DefaultIntegrator()
	}
	e := &Engine{
		params:    p,
		settings:  s,
		a1:        p.Shape1(),
		a2:        p.Shape2(),
		rho:       p.Correlation(),
		sameShape: p.SameShape(),
		r:         p.Ratio(),
		logR:      math.Log(p.Scale1()) - math.Log(p.Scale2()),
	}
	e.logNorm = mathext.Lbeta(e.a1, e.a2)
	e.e1 = math.Min(e.a1, 1)
	e.e2 = math.Min(e.a2, 1)
	e.center = mathext.Digamma(e.a1) - mathext.Digamma(e.a2)
	e.spread = math.Sqrt(numeric.Trigamma(e.a1/(1-e.rho)) + numeric.Trigamma(e.a2/(1-e.rho)))
	e.split = atLog(e.center)
	e.seeds = append(e.seeds, e.split)
	for _, k := range seedMultiples {
		e.seeds = append(e.seeds, atLog(e.center-k*e.spread), atLog(e.center+k*e.spread))
	}
	return e, nil
}

func (e *Engine) Params() model.Params { return e.params }
func (e *Engine) Settings() Settings   { return e.settings }
func (e *Engine) StrategyName() string { return e.settings.Strategy.Name() }

// Ratio is scale1/scale2.
func (e *Engine) Ratio() float64 { return e.r }

// LogCenter is E[log Y].
func (e *Engine) LogCenter() float64 { return e.logR + e.center }

// LogSpread is a rough scale of log Y used to place search grids.
func (e *Engine) LogSpread() float64 { return e.spread }

func (e *Engine) pointAt(y float64) point {
	return atLog(math.Log(y) - e.logR)
}

func (e *Engine) analyticLogPDF(y float64) float64 {
	return e.logY(e.pointAt(y))
}

// fail attaches the parameters and the evaluation point to err.
func (e *Engine) fail(err error, y float64) error {
	if err == nil {
		return nil
	}
	var me *model.Error
	if errors.As(err, &me) {
		c := *me
		if c.Params == nil {
			p := e.params
			c.Params = &p
		}
		if c.Point == 0 {
			c.Point = y
		}
		return &c
	}
	return err
}

func checkPoint(op string, y float64) error {
	if math.IsNaN(y) {
		return model.DomainError(op, "evaluation point is NaN")
	}
	return nil
}

// LogPDF is log f(y); -Inf for y <= 0 and y = +Inf.
func (e *Engine) LogPDF(y float64) (float64, error) {
	const op = "density.LogPDF"
	if err := checkPoint(op, y); err != nil {
		return 0, e.fail(err, y)
	}
	if y <= 0 || math.IsInf(y, 1) {
		return math.Inf(-1), nil
	}
	v, err := e.settings.Strategy.LogPDF(e, y)
	if err != nil {
		return 0, e.fail(err, y)
	}
	if math.IsNaN(v) {
		return 0, e.fail(&model.Error{Kind: model.KindConvergence, Op: op, Point: y, Detail: "density evaluated to NaN"}, y)
	}
	return v, nil
}

func (e *Engine) PDF(y float64) (float64, error) {
	lp, err := e.LogPDF(y)
	if err != nil {
		return 0, err
	}
	return math.Exp(lp), nil
}

// DPDF is the derivative of the density, 0 outside (0, inf).
func (e *Engine) DPDF(y float64) (float64, error) {
	const op = "density.DPDF"
	if err := checkPoint(op, y); err != nil {
		return 0, e.fail(err, y)
	}
	if y <= 0 || math.IsInf(y, 1) {
		return 0, nil
	}
	d, err := e.settings.Differentiator.Derivative(e.PDF, y, 0)
	if err != nil {
		return 0, e.fail(err, y)
	}
	return d, nil
}

// CDF is P(Y <= y). The side of the split holding y is integrated directly
// and the other side is obtained by complement.
func (e *Engine) CDF(y float64) (float64, error) {
	const op = "density.CDF"
	if err := checkPoint(op, y); err != nil {
		return 0, e.fail(err, y)
	}
	switch {
	case y <= 0:
		return 0, nil
	case math.IsInf(y, 1):
		return 1, nil
	}
	tail, err := e.splitMass(y)
	if err != nil {
		return 0, e.fail(err, y)
	}
	if tail.lower {
		return clamp01(tail.mass), nil
	}
	return clamp01(1 - tail.mass), nil
}

// Survival is P(Y > y).
func (e *Engine) Survival(y float64) (float64, error) {
	const op = "density.Survival"
	if err := checkPoint(op, y); err != nil {
		return 0, e.fail(err, y)
	}
	switch {
	case y <= 0:
		return 1, nil
	case math.IsInf(y, 1):
		return 0, nil
	}
	tail, err := e.splitMass(y)
	if err != nil {
		return 0, e.fail(err, y)
	}
	if tail.lower {
		return clamp01(1 - tail.mass), nil
	}
	return clamp01(tail.mass), nil
}

// tailMass is the mass of the tail holding y: P(Y <= y) when lower is set,
// P(Y > y) otherwise.
type tailMass struct {
	mass  float64
	lower bool
}

// splitMass integrates only the side of the split that contains y.
func (e *Engine) splitMass(y float64) (tailMass, error) {
	p := e.pointAt(y)
	if p.logT <= e.split.logT {
		v, err := e.lower(nil, origin, p, e.e1)
		if err != nil {
			return tailMass{}, err
		}
		return tailMass{mass: v, lower: true}, nil
	}
	v, err := e.upper(nil, p, infinity, e.e2)
	if err != nil {
		return tailMass{}, err
	}
	return tailMass{mass: v}, nil
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// weight multiplies the beta-value density inside integrals.
type weight func(p point) float64

// integrate computes ∫ w(b) f_B(b) db between two points, splitting at the
// center so each piece sees at most one endpoint singularity. Weights may grow
// like |log b| or 1/(1-b) at the ends, so the substitution is sharper than the
// one used for the distribution function.
func (e *Engine) integrate(w weight, from, to point) (float64, error) {
	var total float64
	if from.logT < e.split.logT {
		hi := to
		if to.logT > e.split.logT {
			hi = e.split
		}
		v, err := e.lower(w, from, hi, e.e1/4)
		if err != nil {
			return 0, err
		}
		total += v
	}
	if to.logT > e.split.logT {
		lo := from
		if from.logT < e.split.logT {
			lo = e.split
		}
		v, err := e.upper(w, lo, to, e.e2/4)
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

// lower integrates over [from, to] near b = 0 in u = b^k.
func (e *Engine) lower(w weight, from, to point, k float64) (float64, error) {
	if to.logT <= from.logT {
		return 0, nil
	}
	f := func(u float64) float64 {
		lu := math.Log(u)
		p := fromLogT(lu / k)
		v := math.Exp(e.logBeta(p) - math.Log(k) + (1/k-1)*lu)
		if w != nil {
			v *= w(p)
		}
		return v
	}
	lo, hi := math.Exp(k*from.logT), math.Exp(k*to.logT)
	pts := []float64{lo, hi}
	for _, s := range e.seeds {
		if u := math.Exp(k * s.logT); u > lo && u < hi {
			pts = append(pts, u)
		}
	}
	res, err := e.settings.Integrator.Integrate(f, pts...)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// upper integrates over [from, to] near b = 1 in v = (1-b)^k.
func (e *Engine) upper(w weight, from, to point, k float64) (float64, error) {
	if to.logT <= from.logT {
		return 0, nil
	}
	f := func(v float64) float64 {
		lv := math.Log(v)
		p := fromLogS(lv / k)
		r := math.Exp(e.logBeta(p) - math.Log(k) + (1/k-1)*lv)
		if w != nil {
			r *= w(p)
		}
		return r
	}
	lo, hi := math.Exp(k*to.logS), math.Exp(k*from.logS)
	pts := []float64{lo, hi}
	for _, s := range e.seeds {
		if v := math.Exp(k * s.logS); v > lo && v < hi {
			pts = append(pts, v)
		}
	}
	res, err := e.settings.Integrator.Integrate(f, pts...)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}
