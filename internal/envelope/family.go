package envelope

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/emrzvv/rcg/internal/model"
	"github.com/emrzvv/rcg/internal/numeric"
)

// Family tags the closed set of proposal distributions.
type Family int

const (
	ScaledF Family = iota + 1
	BetaPrime
	BetaPrimeMixture
)

func (f Family) String() string {
	switch f {
	case ScaledF:
		return "scaled-f"
	case BetaPrime:
		return "beta-prime"
	case BetaPrimeMixture:
		return "beta-prime-mixture"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Envelope is a proposal density g on (0, inf) that can be sampled directly.
type Envelope interface {
	Family() Family
	LogPDF(y float64) float64
	Rand(src rand.Source) (float64, error)
	Params() map[string]float64
}

// scaledF is Y = Scale * F(D1, D2).
type scaledF struct {
	d1, d2 float64
	scale  float64
}

func newScaledF(shape1, shape2, ratio float64) scaledF {
	return scaledF{d1: 2 * shape1, d2: 2 * shape2, scale: ratio * shape1 / shape2}
}

func (scaledF) Family() Family { return ScaledF }

func (s scaledF) LogPDF(y float64) float64 {
	if !(y > 0) || math.IsInf(y, 1) {
		return math.Inf(-1)
	}
	return distuv.F{D1: s.d1, D2: s.d2}.LogProb(y/s.scale) - math.Log(s.scale)
}

func (s scaledF) Rand(src rand.Source) (float64, error) {
	if src == nil {
		return 0, model.DomainError("envelope.ScaledF", "nil random source")
	}
	return s.scale * distuv.F{D1: s.d1, D2: s.d2, Src: src}.Rand(), nil
}

func (s scaledF) Params() map[string]float64 {
	return map[string]float64{"d1": s.d1, "d2": s.d2, "scale": s.scale}
}

// betaPrime is Y = Scale * G1/G2 with G1 ~ Gamma(P, 1), G2 ~ Gamma(Q, 1).
type betaPrime struct {
	p, q  float64
	scale float64
}

func (betaPrime) Family() Family { return BetaPrime }

func (b betaPrime) LogPDF(y float64) float64 {
	if !(y > 0) {
		return math.Inf(-1)
	}
	return numeric.LogBetaPrimePDF(y, b.p, b.q, b.scale)
}

func (b betaPrime) Rand(src rand.Source) (float64, error) {
	g1, err := model.GammaVariate(b.p, 1, src)
	if err != nil {
		return 0, err
	}
	g2, err := model.GammaVariate(b.q, 1, src)
	if err != nil {
		return 0, err
	}
	return b.scale * g1 / g2, nil
}

func (b betaPrime) Params() map[string]float64 {
	return map[string]float64{"p": b.p, "q": b.q, "scale": b.scale}
}

// mixture is Weight*Tail + (1-Weight)*Core. The tail keeps the target's
// power-law ends, the core follows its peak.
type mixture struct {
	weight     float64
	tail, core betaPrime
}

func (mixture) Family() Family { return BetaPrimeMixture }

func (m mixture) LogPDF(y float64) float64 {
	if !(y > 0) {
		return math.Inf(-1)
	}
	return floats.LogSumExp([]float64{
		math.Log(m.weight) + m.tail.LogPDF(y),
		math.Log1p(-m.weight) + m.core.LogPDF(y),
	})
}

func (m mixture) Rand(src rand.Source) (float64, error) {
	if src == nil {
		return 0, model.DomainError("envelope.BetaPrimeMixture", "nil random source")
	}
	unif := distuv.Uniform{Min: 0, Max: 1, Src: src}
	if unif.Rand() < m.weight {
		return m.tail.Rand(src)
	}
	return m.core.Rand(src)
}

func (m mixture) Params() map[string]float64 {
	return map[string]float64{
		"weight":     m.weight,
		"tail_shape": m.tail.p,
		"core_shape": m.core.p,
		"scale":      m.core.scale,
	}
}
