package envelope

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"

	"github.com/emrzvv/rcg/internal/density"
	"github.com/emrzvv/rcg/internal/model"
	"github.com/emrzvv/rcg/internal/numeric"
)

type Settings struct {
	SafetyFactor  float64   // M = sup(f/g) * SafetyFactor
	GridHalfWidth float64   // глобальная сетка: center ± GridHalfWidth по log y
	GridPoints    int       // узлов в глобальной сетке
	LocalWidth    float64   // локальная сетка: center ± LocalWidth*spread
	LocalPoints   int       // узлов в локальной сетке
	Tolerance     float64   // допустимый недолёт sup ниже 1
	TailWeights   []float64 // дополнительные веса хвоста для смеси
	Maximizer     numeric.Maximizer
}

func DefaultSettings() Settings {
	return Settings{
		SafetyFactor:  1.02,
		GridHalfWidth: 50,
		GridPoints:    2001,
		LocalWidth:    10,
		LocalPoints:   801,
		Tolerance:     1e-3,
		TailWeights:   []float64{0.05, 0.2},
		Maximizer:     numeric.DefaultMaximizer(),
	}
}

func (s Settings) Validate() error {
	if math.IsNaN(s.SafetyFactor) || s.SafetyFactor < 1 || s.SafetyFactor > 1.5 {
		return model.DomainError("envelope.Settings", "safety factor must be in [1, 1.5], got %g", s.SafetyFactor)
	}
	if s.GridPoints < 2 || s.LocalPoints < 2 {
		return model.DomainError("envelope.Settings", "grids need at least two points")
	}
	if !(s.GridHalfWidth > 0) || !(s.LocalWidth > 0) {
		return model.DomainError("envelope.Settings", "grid widths must be > 0")
	}
	for _, w := range s.TailWeights {
		if !(w > 0 && w < 1) {
			return model.DomainError("envelope.Settings", "tail weight must be in (0, 1), got %g", w)
		}
	}
	return nil
}

// Spec is a dominating envelope: f(y) <= M * g(y) for all y > 0.
type Spec struct {
	Family   Family
	Envelope Envelope
	M        float64
	LogM     float64
	ArgMax   float64 // y, где достигается sup f/g
	Tried    int     // сколько кандидатов было оценено
}

func (s *Spec) FamilyParams() map[string]float64 {
	return s.Envelope.Params()
}

func (s *Spec) String() string {
	keys := make([]string, 0)
	params := s.FamilyParams()
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := s.Family.String()
	for _, k := range keys {
		out += fmt.Sprintf(" %s=%.6g", k, params[k])
	}
	return fmt.Sprintf("%s M=%.6g", out, s.M)
}

type Selector struct {
	settings Settings
	cache    *Cache
	logger   *slog.Logger
}

// NewSelector returns a selector backed by cache. A nil cache gets a private
// one, a nil logger discards.
func NewSelector(s Settings, cache *Cache, logger *slog.Logger) (*Selector, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if cache == nil {
		cache = NewCache()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Selector{settings: s, cache: cache, logger: logger}, nil
}

func (s *Selector) Settings() Settings { return s.settings }

// Select returns the cached envelope for the engine's parameters, building
// it on first use.
func (s *Selector) Select(e *density.Engine) (*Spec, error) {
	return s.cache.Get(keyFor(e, s.settings), func() (*Spec, error) { return s.build(e) })
}

func (s *Selector) candidates(e *density.Engine) ([]Envelope, error) {
	p := e.Params()
	r := p.Ratio()
	if p.Independent() {
		// при rho = 0 Y/r распределено как (a1/a2) F(2a1, 2a2)
		return []Envelope{newScaledF(p.Shape1(), p.Shape2(), r)}, nil
	}
	a := p.Shape1()
	base := betaPrime{p: a, q: a, scale: r}
	out := []Envelope{base}

	_, v, err := e.LogMoments()
	if err != nil {
		return nil, err
	}
	c, err := numeric.InvTrigamma(v / 2)
	if err != nil || c <= a {
		// ядро не уже хвоста: смесь ничего не даст
		return out, nil
	}
	core := betaPrime{p: c, q: c, scale: r}
	lead := math.Min(0.5, math.Max(0.01, math.Pow(1-p.Correlation(), a)))
	weights := []float64{lead}
	for _, w := range s.settings.TailWeights {
		if w != lead {
			weights = append(weights, w)
		}
	}
	for _, w := range weights {
		out = append(out, mixture{weight: w, tail: base, core: core})
	}
	return out, nil
}

func (s *Selector) build(e *density.Engine) (*Spec, error) {
	const op = "envelope.Select"
	p := e.Params()
	cands, err := s.candidates(e)
	if err != nil {
		return nil, model.EnvelopeError(op, "fitting envelope", err).WithParams(p)
	}
	var best *Spec
	var firstErr error
	for _, env := range cands {
		spec, err := s.bound(e, env)
		if err != nil {
			s.logger.Debug("envelope candidate rejected", "family", env.Family(), "params", env.Params(), "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.logger.Debug("envelope candidate", "family", env.Family(), "params", env.Params(), "M", spec.M)
		if best == nil || spec.M < best.M {
			best = spec
		}
	}
	if best == nil {
		return nil, model.EnvelopeError(op, "no candidate envelope dominates the density", firstErr).WithParams(p)
	}
	best.Tried = len(cands)
	s.logger.Debug("envelope selected", "params", p.String(), "family", best.Family, "M", best.M)
	return best, nil
}

// bound finds sup f/g over log y and scales it by the safety factor.
func (s *Selector) bound(e *density.Engine, env Envelope) (*Spec, error) {
	const op = "envelope.bound"
	var evalErr error
	logRatio := func(v float64) float64 {
		y := math.Exp(v)
		lf, err := e.LogPDF(y)
		if err != nil {
			if evalErr == nil {
				evalErr = err
			}
			return math.NaN()
		}
		lg := env.LogPDF(y)
		switch {
		case math.IsInf(lf, -1):
			return math.Inf(-1)
		case math.IsInf(lg, -1):
			// f > 0, g = 0: отношение не ограничено
			return math.Inf(1)
		}
		return lf - lg
	}
	c := e.LogCenter()
	sd := e.LogSpread()
	windows := []numeric.Window{
		{Lo: c - s.settings.GridHalfWidth, Hi: c + s.settings.GridHalfWidth, Points: s.settings.GridPoints},
		{Lo: c - s.settings.LocalWidth*sd, Hi: c + s.settings.LocalWidth*sd, Points: s.settings.LocalPoints},
	}
	v, logSup, err := s.settings.Maximizer.Maximize(logRatio, windows...)
	if evalErr != nil {
		return nil, model.EnvelopeError(op, "density evaluation failed", evalErr)
	}
	if err != nil {
		detail := "supremum search failed"
		if errors.Is(err, numeric.ErrUnbounded) {
			detail = "density ratio is unbounded"
		}
		return nil, model.EnvelopeError(op, detail, err)
	}
	if math.IsNaN(logSup) || math.IsInf(logSup, 0) {
		return nil, model.EnvelopeError(op, fmt.Sprintf("non-finite supremum %g", logSup), nil)
	}
	sup := math.Exp(logSup)
	if sup < 1-s.settings.Tolerance {
		// две нормированные плотности: sup f/g >= 1
		return nil, model.EnvelopeError(op, fmt.Sprintf("supremum %g below 1, search undershot", sup), nil)
	}
	m := sup * s.settings.SafetyFactor
	return &Spec{
		Family:   env.Family(),
		Envelope: env,
		M:        m,
		LogM:     math.Log(m),
		ArgMax:   math.Exp(v),
	}, nil
}
