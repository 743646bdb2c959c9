package sampler

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/emrzvv/rcg/internal/model"
)

// Joint draws (X1, X2) directly from Kibble's construction:
//
//	lambda ~ Gamma(a, rho/(1-rho)), K ~ Poisson(lambda),
//	X_i | K ~ Gamma(a+K, scale_i*(1-rho)) independently.
//
// It needs no envelope and serves as an independent reference for the
// rejection sampler.
type Joint struct {
	params model.Params
}

func NewJoint(p model.Params) (*Joint, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Joint{params: p}, nil
}

// Pair returns one (X1, X2) draw.
func (j *Joint) Pair(src rand.Source) (x1, x2 float64, err error) {
	if src == nil {
		return 0, 0, model.DomainError("sampler.Joint", "nil random source")
	}
	p := j.params
	rho := p.Correlation()
	k := 0.0
	if rho > 0 {
		lambda, err := model.GammaVariate(p.Shape1(), rho/(1-rho), src)
		if err != nil {
			return 0, 0, err
		}
		if lambda > 0 {
			k = distuv.Poisson{Lambda: lambda, Src: src}.Rand()
		}
	}
	x1, err = model.GammaVariate(p.Shape1()+k, p.Scale1()*(1-rho), src)
	if err != nil {
		return 0, 0, err
	}
	x2, err = model.GammaVariate(p.Shape2()+k, p.Scale2()*(1-rho), src)
	if err != nil {
		return 0, 0, err
	}
	return x1, x2, nil
}

// Ratios returns n draws of X1/X2.
func (j *Joint) Ratios(n int, src rand.Source) ([]float64, error) {
	if n < 0 {
		return nil, model.DomainError("sampler.Joint", "n must be >= 0, got %d", n)
	}
	out := make([]float64, n)
	for i := range out {
		x1, x2, err := j.Pair(src)
		if err != nil {
			return nil, err
		}
		out[i] = x1 / x2
	}
	return out, nil
}
