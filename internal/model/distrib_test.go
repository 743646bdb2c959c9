package model

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGammaFunctions(t *testing.T) {
	c, err := GammaCDF(1, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1-math.Exp(-1), c, 1e-14)

	s, err := GammaSurvival(1, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-1), s, 1e-14)

	d, err := GammaPDF(2, 1, 2)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-1)/2, d, 1e-14)

	d, err = GammaPDF(0, 0.5, 1)
	require.NoError(t, err)
	assert.True(t, math.IsInf(d, 1))

	c, err = GammaCDF(math.Inf(1), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, c)

	_, err = GammaCDF(-1, 1, 1)
	assert.True(t, errors.Is(err, ErrDomain))
	_, err = GammaPDF(1, 0, 1)
	assert.True(t, errors.Is(err, ErrDomain))
}

func TestGammaQuantile(t *testing.T) {
	q, err := GammaQuantile(0, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, q)

	q, err = GammaQuantile(1, 2, 1)
	require.NoError(t, err)
	assert.True(t, math.IsInf(q, 1))

	q, err = GammaQuantile(0.3, 2.5, 3)
	require.NoError(t, err)
	c, err := GammaCDF(q, 2.5, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, c, 1e-9)

	_, err = GammaQuantile(1.5, 2, 1)
	assert.True(t, errors.Is(err, ErrDomain))
}

func TestGammaVariate(t *testing.T) {
	_, err := GammaVariate(2, 1, nil)
	assert.True(t, errors.Is(err, ErrDomain))

	src := rand.NewPCG(1, 2)
	const n = 20000
	var sum float64
	for i := 0; i < n; i++ {
		x, err := GammaVariate(3, 2, src)
		require.NoError(t, err)
		require.Greater(t, x, 0.0)
		sum += x
	}
	// E = 6, sd of mean = sqrt(12/n)
	assert.InDelta(t, 6, sum/n, 0.1)
}
