package plots

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/emrzvv/rcg/internal/model"
)

// Overlay is a normalized histogram of draws with the density on top.
// Draws outside [Lo, Hi] are left out and the histogram is scaled by the
// share that stayed, so both curves are on the density scale.
type Overlay struct {
	Title  string
	Values []float64
	Bins   int
	Lo, Hi float64
	PDF    func(float64) float64
}

// Window keeps the values inside [lo, hi] and returns their share.
func Window(values []float64, lo, hi float64) (kept []float64, share float64) {
	if len(values) == 0 {
		return nil, 0
	}
	kept = make([]float64, 0, len(values))
	for _, v := range values {
		if v >= lo && v <= hi {
			kept = append(kept, v)
		}
	}
	return kept, float64(len(kept)) / float64(len(values))
}

func (o Overlay) Plot() (*plot.Plot, error) {
	if o.Bins < 1 || !(o.Hi > o.Lo) {
		return nil, model.DomainError("plots.Overlay", "need bins >= 1 and lo < hi, got bins=%d [%g, %g]", o.Bins, o.Lo, o.Hi)
	}
	kept, share := Window(o.Values, o.Lo, o.Hi)
	if len(kept) == 0 {
		return nil, model.DomainError("plots.Overlay", "no draws inside [%g, %g]", o.Lo, o.Hi)
	}

	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = "y"
	p.Y.Label.Text = "Плотность"

	h, err := plotter.NewHist(plotter.Values(kept), o.Bins)
	if err != nil {
		return nil, err
	}
	h.Normalize(share)
	h.FillColor = color.RGBA{R: 140, G: 170, B: 220, A: 255}
	p.Add(h)
	p.Legend.Add(fmt.Sprintf("выборка (n=%d)", len(o.Values)), h)

	if o.PDF != nil {
		f := plotter.NewFunction(o.PDF)
		f.XMin, f.XMax = o.Lo, o.Hi
		f.Samples = 400
		f.Color = color.RGBA{R: 200, A: 255}
		f.Width = vg.Points(1.5)
		p.Add(f)
		p.Legend.Add("f(y)", f)
	}
	p.X.Min, p.X.Max = o.Lo, o.Hi
	return p, nil
}

func (o Overlay) Save(file string) error {
	p, err := o.Plot()
	if err != nil {
		return err
	}
	return p.Save(20*vg.Centimeter, 10*vg.Centimeter, file)
}
