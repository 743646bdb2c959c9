package cli

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/emrzvv/rcg"
	"github.com/emrzvv/rcg/internal/export"
	"github.com/emrzvv/rcg/internal/plots"
	"github.com/emrzvv/rcg/internal/stats"
)

type PlotOptions struct {
	N         int
	Seed      uint64
	File      string
	Bins      int
	GridSize  int
	Quantiles [2]float64
}

type PlotResult struct {
	File     string `json:"file"`
	Grid     string `json:"grid"`
	N        int    `json:"n"`
	Lo       Float  `json:"lo"`
	Hi       Float  `json:"hi"`
	GridMass Float  `json:"grid_mass"`
	CDFMass  Float  `json:"cdf_mass"`
}

func NewPlotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlotOptions{Quantiles: [2]float64{0.005, 0.995}}
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot a histogram of draws against the density",
		Long: `Draw n variates, plot their histogram over the central quantile range
with the density on top, and write the density grid to grid.csv.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(rootOpts, opts, cmd)
		},
	}
	cmd.Flags().IntVar(&opts.N, "n", 20_000, "number of draws")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "seed (default from config)")
	cmd.Flags().StringVar(&opts.File, "file", "", "output image (default from config)")
	cmd.Flags().IntVar(&opts.Bins, "bins", 0, "histogram bins (default from config)")
	cmd.Flags().IntVar(&opts.GridSize, "grid", 201, "density grid points")
	return cmd
}

func runPlot(rootOpts *RootOptions, opts *PlotOptions, cmd *cobra.Command) error {
	cfg := rootOpts.Config
	seed, file, bins := opts.Seed, opts.File, opts.Bins
	if !cmd.Flags().Changed("seed") {
		seed = cfg.Sampler.Seed
		if cfg.SeedFromClock {
			rootOpts.Logger.Info("seed derived from clock", "seed", seed)
		}
	}
	if file == "" {
		file = filepath.Join(cfg.Output.Dir, cfg.Output.PlotFile)
	}
	if bins == 0 {
		bins = cfg.Output.Bins
	}
	if opts.N < 1 || opts.GridSize < 3 {
		return NewExitError(ExitDomain, fmt.Sprintf("need n >= 1 and grid >= 3, got n=%d grid=%d", opts.N, opts.GridSize))
	}

	d, p, err := rootOpts.distribution()
	if err != nil {
		return err
	}
	lo, err := d.PPF(opts.Quantiles[0])
	if err != nil {
		return WrapExitError("cannot place the plot range", err)
	}
	hi, err := d.PPF(opts.Quantiles[1])
	if err != nil {
		return WrapExitError("cannot place the plot range", err)
	}

	grid, err := densityGrid(d, lo, hi, opts.GridSize)
	if err != nil {
		return WrapExitError("density grid failed", err)
	}
	xs := make([]float64, len(grid))
	fs := make([]float64, len(grid))
	for i, g := range grid {
		xs[i], fs[i] = g.Y, g.PDF
	}
	gridMass := stats.GridMass(xs, fs)
	cdfMass := grid[len(grid)-1].CDF - grid[0].CDF
	rootOpts.Logger.Debug("density grid", "lo", lo, "hi", hi, "simpson", gridMass, "cdf", cdfMass)
	if err := export.GridToCSV(cfg.Output.Dir, grid); err != nil {
		return WrapExitError("cannot write grid", err)
	}

	ys, err := d.Rvs(opts.N, seed)
	if err != nil {
		return WrapExitError("sampling failed", err)
	}
	overlay := plots.Overlay{
		Title:  fmt.Sprintf("RCG %s", p),
		Values: ys,
		Bins:   bins,
		Lo:     lo,
		Hi:     hi,
		PDF: func(y float64) float64 {
			v, err := d.PDF(y)
			if err != nil {
				return math.NaN()
			}
			return v
		},
	}
	if err := overlay.Save(file); err != nil {
		return WrapExitError("cannot save plot", err)
	}

	res := PlotResult{
		File:     file,
		Grid:     filepath.Join(cfg.Output.Dir, "grid.csv"),
		N:        opts.N,
		Lo:       Float(lo),
		Hi:       Float(hi),
		GridMass: Float(gridMass),
		CDFMass:  Float(cdfMass),
	}
	table := Table{
		Header: []string{"key", "value"},
		Rows: [][]any{
			{"file", res.File},
			{"grid", res.Grid},
			{"n", res.N},
			{"lo", lo},
			{"hi", hi},
			{"grid_mass", gridMass},
			{"cdf_mass", cdfMass},
		},
	}
	return rootOpts.formatter(cmd).Success(res, table)
}

// densityGrid tabulates the density and CDF on n evenly spaced points.
func densityGrid(d *rcg.Distribution, lo, hi float64, n int) ([]export.GridPoint, error) {
	ys := floats.Span(make([]float64, n), lo, hi)
	grid := make([]export.GridPoint, n)
	for i, y := range ys {
		f, err := d.PDF(y)
		if err != nil {
			return nil, err
		}
		c, err := d.CDF(y)
		if err != nil {
			return nil, err
		}
		grid[i] = export.GridPoint{Y: y, PDF: f, CDF: c}
	}
	return grid, nil
}
