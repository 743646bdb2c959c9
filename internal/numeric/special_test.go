package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrigamma(t *testing.T) {
	assert.InDelta(t, math.Pi*math.Pi/6, Trigamma(1), 1e-12)
	assert.InDelta(t, math.Pi*math.Pi/2, Trigamma(0.5), 1e-12)
}

func TestInvTrigamma(t *testing.T) {
	for _, x := range []float64{0.01, 0.7, 2.5, 40, 1e5} {
		got, err := InvTrigamma(Trigamma(x))
		require.NoError(t, err)
		assert.InDelta(t, x, got, 1e-9*x)
	}
	_, err := InvTrigamma(0)
	assert.Error(t, err)
	_, err = InvTrigamma(math.Inf(1))
	assert.Error(t, err)
}

func TestLogBetaPrimePDF(t *testing.T) {
	// BetaPrime(1, 1): 1/(1+x)^2
	for _, x := range []float64{0.5, 1, 2, 5} {
		assert.InDelta(t, -2*math.Log1p(x), LogBetaPrimePDF(x, 1, 1, 1), 1e-12)
	}
	// масштаб: g_s(x) = g(x/s)/s
	assert.InDelta(t, LogBetaPrimePDF(1.5, 2.5, 3, 1)-math.Log(2), LogBetaPrimePDF(3, 2.5, 3, 2), 1e-12)
	assert.True(t, math.IsInf(LogBetaPrimePDF(-1, 2, 2, 1), -1))
	assert.True(t, math.IsInf(LogBetaPrimePDF(0, 0.5, 2, 1), 1))
	assert.True(t, math.IsInf(LogBetaPrimePDF(0, 2, 2, 1), -1))
}
