package numeric

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrzvv/rcg/internal/model"
)

func TestIntegrate(t *testing.T) {
	in := DefaultIntegrator()
	tests := []struct {
		name   string
		f      func(float64) float64
		points []float64
		want   float64
	}{
		{"sin", math.Sin, []float64{0, math.Pi}, 2},
		{"normal", func(x float64) float64 { return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi) }, []float64{-12, 12}, 1},
		{"breakpoints unsorted", math.Exp, []float64{1, 0, 0.25}, math.E - 1},
		{"kink", math.Abs, []float64{-1, 0, 2}, 2.5},
		{"empty interval", math.Exp, []float64{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := in.Integrate(tt.f, tt.points...)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, res.Value, 1e-9)
			assert.LessOrEqual(t, res.AbsErr, in.Tolerance.Bound(res.Value))
		})
	}
}

func TestIntegrateErrors(t *testing.T) {
	in := DefaultIntegrator()

	t.Run("one point", func(t *testing.T) {
		_, err := in.Integrate(math.Sin, 1)
		assert.True(t, errors.Is(err, model.ErrDomain))
	})
	t.Run("infinite bound", func(t *testing.T) {
		_, err := in.Integrate(math.Sin, 0, math.Inf(1))
		assert.True(t, errors.Is(err, model.ErrDomain))
	})
	t.Run("nan integrand", func(t *testing.T) {
		f := func(x float64) float64 {
			if x > 0.5 {
				return math.NaN()
			}
			return x
		}
		_, err := in.Integrate(f, 0, 1)
		assert.True(t, errors.Is(err, model.ErrConvergence))
	})
	t.Run("budget", func(t *testing.T) {
		tight := Integrator{Tolerance: Tolerance{Abs: 1e-15}, Points: 5, MaxSubintervals: 2}
		_, err := tight.Integrate(func(x float64) float64 { return math.Sin(50 * x) }, 0, 5, 10)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrConvergence))
		var me *model.Error
		require.True(t, errors.As(err, &me))
		assert.Greater(t, me.Estimate, 0.0)
	})
}

func TestToleranceBound(t *testing.T) {
	tol := Tolerance{Abs: 1e-12, Rel: 1e-6}
	assert.Equal(t, 1e-12, tol.Bound(0))
	assert.InDelta(t, 1e-3, tol.Bound(-1000), 1e-18)
}
