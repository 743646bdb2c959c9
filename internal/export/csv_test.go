package export

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrzvv/rcg/internal/model"
	"github.com/emrzvv/rcg/internal/sampler"
	"github.com/emrzvv/rcg/internal/stats"
)

func golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func fixedRun(t *testing.T) Run {
	t.Helper()
	p, err := model.NewParams(2, 1, 2, 1, 0.5)
	require.NoError(t, err)
	run := NewRun(p, 42)
	run.ID = uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	run.Envelope = "beta-prime M=1.1"
	run.Summary = stats.Summary{
		N:              3,
		Proposals:      4,
		AcceptanceRate: 0.75,
		Mean:           1.5,
		Variance:       0.25,
		Median:         1.5,
		Min:            1,
		Max:            2,
		KS:             0.125,
	}
	return run
}

func TestWriteSamples(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSamples(&buf, []float64{0.5, 1.25, 3}, false))
	golden(t).Assert(t, "samples", buf.Bytes())
}

func TestWriteGrid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGrid(&buf, []GridPoint{
		{Y: 1, PDF: 0.25, CDF: 0.5},
		{Y: 3, PDF: 0.0625, CDF: 0.75},
	}))
	golden(t).Assert(t, "grid", buf.Bytes())
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, fixedRun(t)))
	golden(t).Assert(t, "summary", buf.Bytes())
}

func TestNewRun(t *testing.T) {
	p, err := model.NewParams(2, 1, 2, 1, 0)
	require.NoError(t, err)
	a, b := NewRun(p, 1), NewRun(p, 1)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, uint64(1), a.Seed)
}

func TestToCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested") + "/"
	require.NoError(t, ToCSV(dir, fixedRun(t)))
	require.NoError(t, GridToCSV(dir, []GridPoint{{Y: 1, PDF: 0.25, CDF: 0.5}, {Y: 3, PDF: 0.0625, CDF: 0.75}}))

	summary, err := os.ReadFile(filepath.Join(dir, "summary.csv"))
	require.NoError(t, err)
	golden(t).Assert(t, "summary", summary)

	grid, err := os.ReadFile(filepath.Join(dir, "grid.csv"))
	require.NoError(t, err)
	golden(t).Assert(t, "grid", grid)
}

func TestStreamSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.csv")
	batches := make(chan sampler.Batch)
	type result struct {
		col *stats.Collector
		err error
	}
	done := make(chan result)
	go func() {
		col, err := StreamSamples(context.Background(), path, false, batches)
		done <- result{col, err}
	}()
	batches <- sampler.Batch{Values: []float64{0.5}, Proposals: 2}
	batches <- sampler.Batch{Values: []float64{1.25, 3}, Proposals: 3}
	close(batches)
	res := <-done
	require.NoError(t, res.err)

	assert.Equal(t, 2, res.col.Runs)
	assert.Equal(t, 5, res.col.Proposals)
	assert.Equal(t, []float64{0.5, 1.25, 3}, res.col.Values)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	golden(t).Assert(t, "samples", data)
}

func TestStreamSamplesBeta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beta.csv")
	batches := make(chan sampler.Batch, 1)
	batches <- sampler.Batch{Values: []float64{1, 3}, Proposals: 2}
	close(batches)

	col, err := StreamSamples(context.Background(), path, true, batches)
	require.NoError(t, err)
	// в сборщике остаются отношения, в файле - beta
	assert.Equal(t, []float64{1, 3}, col.Values)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	golden(t).Assert(t, "samples_beta", data)
}

func TestStreamSamplesCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cancel.csv")
	batches := make(chan sampler.Batch, 1)
	batches <- sampler.Batch{Values: []float64{math.Pi}, Proposals: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	col, err := StreamSamples(ctx, path, false, batches)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, col)
	assert.Equal(t, 1, col.Runs)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "i,y\n0,3.141592654\n", string(data))
}

func TestStreamSamplesBadPath(t *testing.T) {
	_, err := StreamSamples(context.Background(), filepath.Join(t.TempDir(), "no", "such", "file.csv"), false, nil)
	assert.Error(t, err)
}
