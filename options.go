package rcg

import (
	"io"
	"log/slog"

	"github.com/emrzvv/rcg/internal/density"
	"github.com/emrzvv/rcg/internal/envelope"
	"github.com/emrzvv/rcg/internal/numeric"
	"github.com/emrzvv/rcg/internal/sampler"
)

type options struct {
	density  density.Settings
	strategy string
	envelope envelope.Settings
	sampler  sampler.Settings
	retry    sampler.RetryPolicy
	roots    numeric.RootFinder
	logger   *slog.Logger
	cache    *envelope.Cache
}

func defaultOptions() options {
	return options{
		density:  density.DefaultSettings(),
		strategy: density.Analytic{}.Name(),
		envelope: envelope.DefaultSettings(),
		sampler:  sampler.DefaultSettings(),
		retry:    sampler.DefaultRetryPolicy(),
		roots:    numeric.DefaultRootFinder(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

type Option func(*options)

// WithTolerance sets the integration tolerance behind CDF and moments.
func WithTolerance(t Tolerance) Option {
	return func(o *options) { o.density.Integrator.Tolerance = t }
}

// WithIntegration sets the Gauss–Legendre order and the subinterval ceiling.
func WithIntegration(points, maxSubintervals int) Option {
	return func(o *options) {
		o.density.Integrator.Points = points
		o.density.Integrator.MaxSubintervals = maxSubintervals
	}
}

func WithDerivative(t Tolerance, maxHalvings int) Option {
	return func(o *options) {
		o.density.Differentiator.Tolerance = t
		o.density.Differentiator.MaxHalvings = maxHalvings
	}
}

// WithStrategy picks the density strategy by name: "analytic" or
// "numerical-derivative".
func WithStrategy(name string) Option {
	return func(o *options) { o.strategy = name }
}

func WithPPF(t Tolerance, maxIterations, maxDoublings int) Option {
	return func(o *options) {
		o.roots = numeric.RootFinder{Tolerance: t, MaxIterations: maxIterations, MaxDoublings: maxDoublings}
	}
}

func WithMaxProposals(n int) Option {
	return func(o *options) { o.sampler.MaxProposals = n }
}

func WithBatchSize(n int) Option {
	return func(o *options) { o.sampler.BatchSize = n }
}

// WithSafetyFactor scales the envelope bound M; it must lie in [1, 1.5].
func WithSafetyFactor(f float64) Option {
	return func(o *options) { o.envelope.SafetyFactor = f }
}

// WithRetries reruns exhausted samples with a growing proposal ceiling.
func WithRetries(n int) Option {
	return func(o *options) { o.retry.Retries = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCache shares envelopes between distributions. Entries are keyed by the
// parameters and every setting that affects the envelope search.
func WithCache(c *EnvelopeCache) Option {
	return func(o *options) { o.cache = c }
}
