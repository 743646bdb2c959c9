package stats

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrzvv/rcg/internal/sampler"
)

func uniform(x float64) (float64, error) {
	return math.Min(1, math.Max(0, x)), nil
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampler.Batch{Values: []float64{4, 1, 3, 2}, Proposals: 8})
	assert.Equal(t, 4, s.N)
	assert.Equal(t, 0.5, s.AcceptanceRate)
	assert.InDelta(t, 2.5, s.Mean, 1e-15)
	assert.InDelta(t, 5.0/3, s.Variance, 1e-15)
	assert.Equal(t, 2.0, s.Median)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.True(t, math.IsNaN(s.KS))

	empty := Summarize(sampler.Batch{})
	assert.Zero(t, empty.N)
	assert.True(t, math.IsNaN(empty.Mean))

	single := Summarize(sampler.Batch{Values: []float64{7}, Proposals: 1})
	assert.Equal(t, 0.0, single.Variance)
}

func TestKS(t *testing.T) {
	d, err := KSAgainstCDF([]float64{0.25, 0.75}, uniform)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, d, 1e-15)

	s, err := Summarize(sampler.Batch{Values: []float64{0.75, 0.25}}).WithKS([]float64{0.75, 0.25}, uniform)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, s.KS, 1e-15)

	boom := errors.New("boom")
	_, err = KSAgainstCDF([]float64{1}, func(float64) (float64, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 0.0, KSTwoSample([]float64{1, 2, 3}, []float64{3, 2, 1}))
	assert.InDelta(t, 1, KSTwoSample([]float64{1, 2}, []float64{5, 6}), 1e-15)
}

func TestKSCritical(t *testing.T) {
	one := KSCritical(0.05, 100, 0)
	assert.InDelta(t, 0.1358, one, 1e-4)
	two := KSCritical(0.05, 100, 100)
	assert.InDelta(t, one*math.Sqrt2, two, 1e-12)
}

func TestGridMass(t *testing.T) {
	assert.InDelta(t, 8.0/3, GridMass([]float64{0, 1, 2}, []float64{0, 1, 4}), 1e-14)
	assert.InDelta(t, 0.5, GridMass([]float64{0, 1}, []float64{0, 1}), 1e-15)
	assert.Equal(t, 0.0, GridMass([]float64{0}, []float64{1}))
	assert.Equal(t, 0.0, GridMass([]float64{0, 1}, []float64{1}))
}

func TestCollector(t *testing.T) {
	var c Collector
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(sampler.Batch{Values: []float64{1, 2}, Proposals: 3})
		}()
	}
	wg.Wait()
	b := c.Batch()
	assert.Len(t, b.Values, 16)
	assert.Equal(t, 24, b.Proposals)
	assert.Equal(t, 8, c.Runs)

	// копия не разделяет память
	b.Values[0] = -1
	assert.Equal(t, 1.0, c.Values[0])
}

func TestSorted(t *testing.T) {
	in := []float64{3, 1, 2}
	assert.Equal(t, []float64{1, 2, 3}, Sorted(in))
	assert.Equal(t, []float64{3, 1, 2}, in)
}
