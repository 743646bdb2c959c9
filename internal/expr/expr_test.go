package expr

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrzvv/rcg/internal/model"
)

func TestEval(t *testing.T) {
	tests := []struct {
		src  string
		y    float64
		want float64
	}{
		{"y", 2.5, 2.5},
		{"log(y)", math.E, 1},
		{"y * y", 3, 9},
		{"pow(y, 0.5)", 4, 2},
		{"exp(-y)", 1, math.Exp(-1)},
		{"log1p(y)", 1e-10, 1e-10},
		{"math.abs(y - 5.0)", 2, 3},
		{"y > 1.0 ? 1.0 : 0.0", 0.5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			in, err := Compile(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.src, in.String())
			got, err := in.Eval(tt.y)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-15)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	for _, src := range []string{
		"y * 2",   // int literal
		"y > 1.0", // bool
		"z + 1.0",
		"log(",
	} {
		_, err := Compile(src)
		require.Error(t, err, src)
		assert.True(t, errors.Is(err, model.ErrDomain), src)
	}
}

func TestFunc(t *testing.T) {
	in, err := Compile("[1.0, 2.0][int(y)]")
	require.NoError(t, err)

	fn, firstErr := in.Func()
	assert.Equal(t, 2.0, fn(1))
	assert.NoError(t, firstErr())

	assert.True(t, math.IsNaN(fn(5)))
	assert.True(t, math.IsNaN(fn(7)))
	err = firstErr()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "y=5")
}
