package model

import (
	"fmt"
	"math"
)

// Params holds the defining parameters of Y = X1/X2, where X1 ~ Gamma(shape1, scale1)
// and X2 ~ Gamma(shape2, scale2) are joined by Kibble's bivariate gamma with
// correlation rho. The zero value is invalid; use NewParams.
type Params struct {
	shape1, scale1 float64
	shape2, scale2 float64
	rho            float64
}

// NewParams validates and returns an immutable parameter set.
//
// The valid region is: finite positive shapes and scales, 0 <= rho < 1, and
// equal shapes whenever rho > 0. rho == 1 collapses Y onto the point
// scale1/scale2 and is rejected.
func NewParams(shape1, scale1, shape2, scale2, rho float64) (Params, error) {
	p := Params{shape1: shape1, scale1: scale1, shape2: shape2, scale2: scale2, rho: rho}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// FromRates builds parameters in the rate form X_m ~ Gamma(alpha, rate lambdaM),
// X_u ~ Gamma(alpha, rate lambdaU).
func FromRates(alpha, lambdaM, lambdaU, rho float64) (Params, error) {
	if !(lambdaM > 0) || !(lambdaU > 0) || math.IsInf(lambdaM, 0) || math.IsInf(lambdaU, 0) {
		return Params{}, DomainError("model.FromRates", "rates must be finite and > 0, got lambda_m=%g lambda_u=%g", lambdaM, lambdaU)
	}
	return NewParams(alpha, 1/lambdaM, alpha, 1/lambdaU, rho)
}

// FromTheta builds parameters from a target rate ratio theta = lambdaM/lambdaU,
// keeping the smaller rate at scale.
func FromTheta(theta, alpha, rho, scale float64) (Params, error) {
	if !(theta > 0) || math.IsInf(theta, 0) {
		return Params{}, DomainError("model.FromTheta", "theta must be finite and > 0, got %g", theta)
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return Params{}, DomainError("model.FromTheta", "scale must be finite and > 0, got %g", scale)
	}
	lambdaM := scale * math.Max(theta, 1)
	lambdaU := scale / math.Min(theta, 1)
	return FromRates(alpha, lambdaM, lambdaU, rho)
}

func (p Params) Validate() error {
	const op = "model.Params"
	check := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return DomainError(op, "%s must be finite and > 0, got %g", name, v)
		}
		return nil
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"shape1", p.shape1}, {"scale1", p.scale1}, {"shape2", p.shape2}, {"scale2", p.scale2},
	} {
		if err := check(f.name, f.v); err != nil {
			return err
		}
	}
	switch {
	case math.IsNaN(p.rho) || p.rho < 0:
		return DomainError(op, "correlation must be in [0, 1), got %g", p.rho)
	case p.rho >= 1:
		return DomainError(op, "correlation %g is outside [0, 1): the ratio degenerates to the point %g", p.rho, p.scale1/p.scale2)
	case p.rho > 0 && p.shape1 != p.shape2:
		return DomainError(op, "correlated gammas need equal shapes, got shape1=%g shape2=%g at correlation %g", p.shape1, p.shape2, p.rho)
	}
	return nil
}

func (p Params) Shape1() float64      { return p.shape1 }
func (p Params) Scale1() float64      { return p.scale1 }
func (p Params) Shape2() float64      { return p.shape2 }
func (p Params) Scale2() float64      { return p.scale2 }
func (p Params) Correlation() float64 { return p.rho }

// Ratio is scale1/scale2, the scale of Y.
func (p Params) Ratio() float64 { return p.scale1 / p.scale2 }

// Independent reports rho == 0.
func (p Params) Independent() bool { return p.rho == 0 }

// SameShape reports shape1 == shape2.
func (p Params) SameShape() bool { return p.shape1 == p.shape2 }

// Rates returns 1/scale1 and 1/scale2.
func (p Params) Rates() (lambdaM, lambdaU float64) { return 1 / p.scale1, 1 / p.scale2 }

// Swap returns the parameters of 1/Y = X2/X1.
func (p Params) Swap() Params {
	return Params{shape1: p.shape2, scale1: p.scale2, shape2: p.shape1, scale2: p.scale1, rho: p.rho}
}

func (p Params) String() string {
	return fmt.Sprintf("shape1=%g scale1=%g shape2=%g scale2=%g rho=%g", p.shape1, p.scale1, p.shape2, p.scale2, p.rho)
}
