package rcg

import (
	"math/rand/v2"

	"github.com/emrzvv/rcg/internal/model"
)

// Marginal is the gamma law of one component of the pair. Correlation does
// not change the marginals.
type Marginal struct {
	Shape, Scale float64
}

func (m Marginal) PDF(x float64) (float64, error) { return model.GammaPDF(x, m.Shape, m.Scale) }
func (m Marginal) CDF(x float64) (float64, error) { return model.GammaCDF(x, m.Shape, m.Scale) }

func (m Marginal) Quantile(p float64) (float64, error) {
	return model.GammaQuantile(p, m.Shape, m.Scale)
}

func (m Marginal) Mean() float64 { return m.Shape * m.Scale }

func (m Marginal) Rand(src rand.Source) (float64, error) {
	return model.GammaVariate(m.Shape, m.Scale, src)
}

// Marginals returns the laws of X1 and X2.
func (d *Distribution) Marginals() (x1, x2 Marginal) {
	p := d.params
	return Marginal{Shape: p.Shape1(), Scale: p.Scale1()}, Marginal{Shape: p.Shape2(), Scale: p.Scale2()}
}
