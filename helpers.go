package rcg

import (
	"github.com/emrzvv/rcg/internal/common"
	"github.com/emrzvv/rcg/internal/density"
	"github.com/emrzvv/rcg/internal/envelope"
	"github.com/emrzvv/rcg/internal/sampler"
)

// sharedEnvelopes bounds the cache behind the package-level helpers.
const sharedEnvelopes = 64

// shared keeps envelopes between calls of the package-level helpers.
var shared = envelope.NewBoundedCache(sharedEnvelopes)

func PDF(y float64, p Params) (float64, error) {
	d, err := New(p)
	if err != nil {
		return 0, err
	}
	return d.PDF(y)
}

func CDF(y float64, p Params) (float64, error) {
	d, err := New(p)
	if err != nil {
		return 0, err
	}
	return d.CDF(y)
}

func PPF(q float64, p Params) (float64, error) {
	d, err := New(p)
	if err != nil {
		return 0, err
	}
	return d.PPF(q)
}

// Rvs draws n variates of Y with a fresh stream seeded with seed. Envelopes
// are kept in a small shared cache unless opts supply another one.
func Rvs(n int, p Params, seed uint64, opts ...Option) ([]float64, error) {
	d, err := New(p, append([]Option{WithCache(shared)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return d.Rvs(n, seed)
}

// JointRvs draws n ratios straight from the bivariate gamma pair, without
// an envelope. It follows the same law as Rvs but not the same stream.
func JointRvs(n int, p Params, seed uint64) ([]float64, error) {
	j, err := sampler.NewJoint(p)
	if err != nil {
		return nil, err
	}
	return j.Ratios(n, common.NewRNG(seed))
}

// SimulateBetaValues draws n beta values X1/(X1+X2) for a pair with common
// shape alpha, rate ratio theta and correlation rho; see FromTheta.
func SimulateBetaValues(n int, theta, alpha, rho, scale float64, seed uint64) ([]float64, error) {
	p, err := FromTheta(theta, alpha, rho, scale)
	if err != nil {
		return nil, err
	}
	ys, err := Rvs(n, p, seed)
	if err != nil {
		return nil, err
	}
	return density.ToBeta(ys), nil
}

// ToBeta maps ratios y to beta values y/(1+y) in place.
func ToBeta(ys []float64) []float64 { return density.ToBeta(ys) }
