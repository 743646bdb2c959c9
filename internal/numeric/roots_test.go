package numeric

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrzvv/rcg/internal/model"
)

func lin(root float64) func(float64) (float64, error) {
	return func(x float64) (float64, error) { return x - root, nil }
}

func one(float64) (float64, error) { return 1, nil }

func TestBracket(t *testing.T) {
	rf := DefaultRootFinder()
	for _, root := range []float64{3, 1e-7, 1e9, 1} {
		lo, hi, err := rf.Bracket(lin(root), 1)
		require.NoError(t, err)
		assert.LessOrEqual(t, lo, root)
		assert.GreaterOrEqual(t, hi, root)
	}
}

func TestBracketLimit(t *testing.T) {
	rf := RootFinder{MaxDoublings: 3}
	_, _, err := rf.Bracket(lin(1e6), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrRootFinding))

	_, _, err = rf.Bracket(lin(1), -1)
	assert.True(t, errors.Is(err, model.ErrDomain))
}

func TestSolve(t *testing.T) {
	rf := DefaultRootFinder()
	tests := []struct {
		name string
		g    func(float64) (float64, error)
		dg   func(float64) (float64, error)
		want float64
	}{
		{"newton", lin(3), one, 3},
		{"bisection", lin(3), nil, 3},
		{"tiny root", lin(2.5e-8), nil, 2.5e-8},
		{"far below one", lin(1e-30), nil, 1e-30},
		{"far above one", lin(3e25), one, 3e25},
		{"curved", func(x float64) (float64, error) { return math.Log(x) - 1, nil },
			func(x float64) (float64, error) { return 1 / x, nil }, math.E},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, err := rf.Bracket(tt.g, 1)
			require.NoError(t, err)
			x, err := rf.Solve(tt.g, tt.dg, lo, hi)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, x, 1e-9*tt.want)
		})
	}
}

func TestSolveBudget(t *testing.T) {
	rf := RootFinder{Tolerance: Tolerance{Rel: 1e-12}, MaxIterations: 1}
	_, err := rf.Solve(lin(3), nil, 1e-3, 1e3)
	require.Error(t, err)
	assert.Equal(t, model.KindRootFinding, model.KindOf(err))

	_, err = rf.Solve(lin(3), nil, 2, 1)
	assert.True(t, errors.Is(err, model.ErrRootFinding))
}

func TestRootFinderValidate(t *testing.T) {
	require.NoError(t, DefaultRootFinder().Validate())
	tests := []struct {
		name string
		rf   RootFinder
	}{
		{"no relative tolerance", RootFinder{Tolerance: Tolerance{Abs: 1e-10}}},
		{"relative tolerance one", RootFinder{Tolerance: Tolerance{Rel: 1}}},
		{"negative abs", RootFinder{Tolerance: Tolerance{Abs: -1, Rel: 1e-10}}},
		{"infinite abs", RootFinder{Tolerance: Tolerance{Abs: math.Inf(1), Rel: 1e-10}}},
		{"negative iterations", RootFinder{Tolerance: Tolerance{Rel: 1e-10}, MaxIterations: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.rf.Validate(), model.ErrDomain))
		})
	}
}
