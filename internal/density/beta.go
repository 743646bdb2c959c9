package density

import (
	"math"

	"github.com/emrzvv/rcg/internal/model"
)

// Beta values b = Y/(1+Y) = X1/(X1+X2) live on [0, 1].

func checkBeta(op string, b float64) error {
	if math.IsNaN(b) || b < 0 || b > 1 {
		return model.DomainError(op, "beta value must be in [0, 1], got %g", b)
	}
	return nil
}

// BetaPDF is the density of b. It is 0 at both endpoints.
func (e *Engine) BetaPDF(b float64) (float64, error) {
	if err := checkBeta("density.BetaPDF", b); err != nil {
		return 0, e.fail(err, b)
	}
	if b == 0 || b == 1 {
		return 0, nil
	}
	y := b / (1 - b)
	lp, err := e.LogPDF(y)
	if err != nil {
		return 0, err
	}
	return math.Exp(lp - 2*math.Log1p(-b)), nil
}

func (e *Engine) BetaCDF(b float64) (float64, error) {
	if err := checkBeta("density.BetaCDF", b); err != nil {
		return 0, e.fail(err, b)
	}
	if b == 1 {
		return 1, nil
	}
	return e.CDF(b / (1 - b))
}

// ToBeta maps ratios to beta values in place.
func ToBeta(ys []float64) []float64 {
	for i, y := range ys {
		if math.IsInf(y, 1) {
			ys[i] = 1
			continue
		}
		ys[i] = y / (1 + y)
	}
	return ys
}
