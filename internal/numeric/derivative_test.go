package numeric

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrzvv/rcg/internal/model"
)

func wrap(f func(float64) float64) func(float64) (float64, error) {
	return func(x float64) (float64, error) { return f(x), nil }
}

func TestDerivative(t *testing.T) {
	d := DefaultDifferentiator()
	tests := []struct {
		name  string
		f     func(float64) float64
		x     float64
		lower float64
		want  float64
	}{
		{"sin", math.Sin, 1, math.Inf(-1), math.Cos(1)},
		{"exp", math.Exp, -2, math.Inf(-1), math.Exp(-2)},
		{"square at edge", func(x float64) float64 { return x * x }, 0, 0, 0},
		{"sqrt near edge", math.Sqrt, 0.01, 0, 5},
		{"log", math.Log, 50, 0, 0.02},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Derivative(wrap(tt.f), tt.x, tt.lower)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6*math.Max(1, math.Abs(tt.want)))
		})
	}
}

func TestDerivativeErrors(t *testing.T) {
	d := DefaultDifferentiator()

	_, err := d.Derivative(wrap(math.Sin), -1, 0)
	assert.True(t, errors.Is(err, model.ErrDomain))

	_, err = d.Derivative(wrap(math.Sin), math.NaN(), math.Inf(-1))
	assert.True(t, errors.Is(err, model.ErrDomain))

	boom := model.DomainError("test", "boom")
	_, err = d.Derivative(func(float64) (float64, error) { return 0, boom }, 1, 0)
	assert.ErrorIs(t, err, boom)
}
