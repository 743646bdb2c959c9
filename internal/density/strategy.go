package density

import (
	"math"

	"github.com/emrzvv/rcg/internal/model"
	"github.com/emrzvv/rcg/internal/numeric"
)

// Strategy computes log f(y) for y in (0, inf). The engine handles the
// boundary and NaN cases before delegating.
type Strategy interface {
	Name() string
	LogPDF(e *Engine, y float64) (float64, error)
}

// Analytic evaluates the closed-form density in log space.
type Analytic struct{}

func (Analytic) Name() string { return "analytic" }

func (Analytic) LogPDF(e *Engine, y float64) (float64, error) {
	return e.analyticLogPDF(y), nil
}

// NumericalDerivative differentiates the CDF. It is much slower than
// Analytic and is kept as a cross-check of the integration path.
type NumericalDerivative struct {
	Differentiator numeric.Differentiator
}

func (NumericalDerivative) Name() string { return "numerical-derivative" }

func (n NumericalDerivative) LogPDF(e *Engine, y float64) (float64, error) {
	d := n.Differentiator
	if d.MaxHalvings == 0 {
		d = e.settings.Differentiator
	}
	v, err := d.Derivative(e.CDF, y, 0)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		// шум интегрирования в хвостах
		if -v <= d.Tolerance.Bound(v) {
			return math.Inf(-1), nil
		}
		return 0, model.ConvergenceError("density.NumericalDerivative", d.Tolerance.Bound(v), v,
			"negative derivative of the distribution function")
	}
	return math.Log(v), nil
}

// StrategyByName maps configuration names to strategies.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "", "analytic":
		return Analytic{}, nil
	case "numerical-derivative", "numeric":
		return NumericalDerivative{}, nil
	default:
		return nil, model.DomainError("density.StrategyByName", "unknown density strategy %q", name)
	}
}
