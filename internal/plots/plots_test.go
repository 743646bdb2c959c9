package plots

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrzvv/rcg/internal/model"
)

func TestWindow(t *testing.T) {
	kept, share := Window([]float64{1, 2, 3, 10}, 0, 5)
	assert.Equal(t, []float64{1, 2, 3}, kept)
	assert.Equal(t, 0.75, share)

	kept, share = Window(nil, 0, 1)
	assert.Empty(t, kept)
	assert.Zero(t, share)
}

func TestOverlaySave(t *testing.T) {
	values := make([]float64, 0, 500)
	for i := 0; i < 500; i++ {
		values = append(values, float64(i%50)/10)
	}
	o := Overlay{
		Title:  "test",
		Values: values,
		Bins:   20,
		Lo:     0,
		Hi:     4,
		PDF:    func(y float64) float64 { return math.Exp(-y) },
	}
	p, err := o.Plot()
	require.NoError(t, err)
	assert.Equal(t, 4.0, p.X.Max)

	file := filepath.Join(t.TempDir(), "hist.png")
	require.NoError(t, o.Save(file))
	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestOverlayErrors(t *testing.T) {
	tests := []struct {
		name string
		o    Overlay
	}{
		{"no bins", Overlay{Values: []float64{1}, Bins: 0, Lo: 0, Hi: 2}},
		{"empty range", Overlay{Values: []float64{1}, Bins: 10, Lo: 2, Hi: 2}},
		{"nothing inside", Overlay{Values: []float64{5, 6}, Bins: 10, Lo: 0, Hi: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.o.Plot()
			assert.True(t, errors.Is(err, model.ErrDomain))
		})
	}
}
