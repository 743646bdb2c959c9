package rcg

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/emrzvv/rcg/internal/common"
	"github.com/emrzvv/rcg/internal/density"
	"github.com/emrzvv/rcg/internal/envelope"
	"github.com/emrzvv/rcg/internal/model"
	"github.com/emrzvv/rcg/internal/numeric"
	"github.com/emrzvv/rcg/internal/sampler"
)

type (
	Params        = model.Params
	Tolerance     = numeric.Tolerance
	Batch         = sampler.Batch
	EnvelopeSpec  = envelope.Spec
	EnvelopeCache = envelope.Cache
)

func NewParams(shape1, scale1, shape2, scale2, rho float64) (Params, error) {
	return model.NewParams(shape1, scale1, shape2, scale2, rho)
}

// FromRates takes the common shape alpha and the rates of X1 and X2.
func FromRates(alpha, lambdaM, lambdaU, rho float64) (Params, error) {
	return model.FromRates(alpha, lambdaM, lambdaU, rho)
}

func FromTheta(theta, alpha, rho, scale float64) (Params, error) {
	return model.FromTheta(theta, alpha, rho, scale)
}

func NewEnvelopeCache() *EnvelopeCache { return envelope.NewCache() }

// NewBoundedEnvelopeCache keeps at most limit envelopes, oldest dropped first.
func NewBoundedEnvelopeCache(limit int) *EnvelopeCache { return envelope.NewBoundedCache(limit) }

// Distribution is the ratio Y = X1/X2 for one parameter set. Evaluation
// methods are safe for concurrent use; the envelope is built on the first
// sampling call.
type Distribution struct {
	params   Params
	opts     options
	engine   *density.Engine
	selector *envelope.Selector

	mu      sync.Mutex
	sampler *sampler.Sampler
}

func New(p Params, opts ...Option) (*Distribution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	strategy, err := density.StrategyByName(o.strategy)
	if err != nil {
		return nil, err
	}
	if nd, ok := strategy.(density.NumericalDerivative); ok {
		nd.Differentiator = o.density.Differentiator
		strategy = nd
	}
	o.density.Strategy = strategy
	if err := o.sampler.Validate(); err != nil {
		return nil, err
	}
	if err := o.roots.Validate(); err != nil {
		return nil, err
	}
	engine, err := density.New(p, o.density)
	if err != nil {
		return nil, err
	}
	sel, err := envelope.NewSelector(o.envelope, o.cache, o.logger)
	if err != nil {
		return nil, err
	}
	return &Distribution{params: p, opts: o, engine: engine, selector: sel}, nil
}

func (d *Distribution) Params() Params { return d.params }

// annotate attaches the parameters to a structured error that lacks them.
func (d *Distribution) annotate(err error) error {
	var me *model.Error
	if err != nil && errors.As(err, &me) && me.Params == nil {
		return me.WithParams(d.params)
	}
	return err
}

func (d *Distribution) PDF(y float64) (float64, error)    { return d.engine.PDF(y) }
func (d *Distribution) LogPDF(y float64) (float64, error) { return d.engine.LogPDF(y) }
func (d *Distribution) CDF(y float64) (float64, error)    { return d.engine.CDF(y) }

// Survival is 1 - CDF without the cancellation in the upper tail.
func (d *Distribution) Survival(y float64) (float64, error) { return d.engine.Survival(y) }

// DPDF is the derivative of the density.
func (d *Distribution) DPDF(y float64) (float64, error) { return d.engine.DPDF(y) }

// PPF inverts the CDF. PPF(0) = 0 and PPF(1) = +Inf. Upper quantiles are
// solved on the survival function.
func (d *Distribution) PPF(p float64) (float64, error) {
	const op = "rcg.PPF"
	switch {
	case math.IsNaN(p) || p < 0 || p > 1:
		return 0, model.DomainError(op, "probability must be in [0, 1], got %g", p).WithParams(d.params)
	case p == 0:
		return 0, nil
	case p == 1:
		return math.Inf(1), nil
	}
	g := func(y float64) (float64, error) {
		c, err := d.engine.CDF(y)
		return c - p, err
	}
	if p > 0.5 {
		q := 1 - p
		g = func(y float64) (float64, error) {
			s, err := d.engine.Survival(y)
			return q - s, err
		}
	}
	lo, hi, err := d.opts.roots.Bracket(g, d.params.Ratio())
	if err != nil {
		return 0, d.annotate(d.rootErr(err, p))
	}
	y, err := d.opts.roots.Solve(g, d.engine.PDF, lo, hi)
	if err != nil {
		return 0, d.annotate(d.rootErr(err, p))
	}
	return y, nil
}

// rootErr reports root finder failures at the probability being inverted.
func (d *Distribution) rootErr(err error, p float64) error {
	var me *model.Error
	if errors.As(err, &me) && me.Kind == model.KindRootFinding {
		c := *me
		c.Op = "rcg.PPF"
		c.Point = p
		return &c
	}
	return err
}

// Envelope returns the envelope used for sampling, building it if needed.
func (d *Distribution) Envelope() (*EnvelopeSpec, error) {
	s, err := d.getSampler()
	if err != nil {
		return nil, err
	}
	return s.Spec(), nil
}

func (d *Distribution) getSampler() (*sampler.Sampler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sampler != nil {
		return d.sampler, nil
	}
	spec, err := d.selector.Select(d.engine)
	if err != nil {
		return nil, d.annotate(err)
	}
	s, err := sampler.New(d.engine, spec, d.opts.sampler)
	if err != nil {
		return nil, d.annotate(err)
	}
	d.sampler = s
	return s, nil
}

// Sample draws n exact variates from src. The same src state reproduces the
// same batch.
func (d *Distribution) Sample(n int, src rand.Source) (Batch, error) {
	s, err := d.getSampler()
	if err != nil {
		return Batch{}, err
	}
	b, err := s.SampleWithRetry(n, src, d.opts.retry, d.opts.logger)
	if b.Violations > 0 {
		d.opts.logger.Warn("density exceeded the envelope bound",
			"violations", b.Violations, "envelope", s.Spec().String(), "params", d.params.String())
	}
	return b, d.annotate(err)
}

// Rvs draws n variates from a fresh stream seeded with seed.
func (d *Distribution) Rvs(n int, seed uint64) ([]float64, error) {
	b, err := d.Sample(n, common.NewRNG(seed))
	if err != nil {
		return nil, err
	}
	return b.Values, nil
}

func (d *Distribution) Mean() (float64, error)     { return d.engine.Mean() }
func (d *Distribution) Variance() (float64, error) { return d.engine.Variance() }

// ExpectTheta is E[X2/X1].
func (d *Distribution) ExpectTheta() (float64, error) { return d.engine.ExpectTheta() }

// Expect is E[fn(Y); lo <= Y <= hi]; nil fn means the identity and hi may
// be +Inf.
func (d *Distribution) Expect(fn func(float64) float64, lo, hi float64) (float64, error) {
	return d.engine.Expect(fn, lo, hi)
}

// LogMoments returns the mean and variance of log Y.
func (d *Distribution) LogMoments() (mean, variance float64, err error) {
	return d.engine.LogMoments()
}

// CheckNormalization integrates the density and fails if the mass is off
// by more than tol.
func (d *Distribution) CheckNormalization(tol float64) (float64, error) {
	return d.engine.CheckNormalization(tol)
}

// BetaPDF is the density of B = Y/(1+Y) = X1/(X1+X2).
func (d *Distribution) BetaPDF(b float64) (float64, error) { return d.engine.BetaPDF(b) }
func (d *Distribution) BetaCDF(b float64) (float64, error) { return d.engine.BetaCDF(b) }
func (d *Distribution) ExpectBeta() (float64, error)       { return d.engine.ExpectBeta() }

// ExpectBetaMarginal is E[X1]/(E[X1]+E[X2]), the beta value of the means.
func (d *Distribution) ExpectBetaMarginal() float64 { return d.engine.ExpectBetaMarginal() }
