package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/emrzvv/rcg"
	"github.com/emrzvv/rcg/internal/common"
	"github.com/emrzvv/rcg/internal/export"
	"github.com/emrzvv/rcg/internal/model"
	"github.com/emrzvv/rcg/internal/sampler"
	"github.com/emrzvv/rcg/internal/stats"
)

// ksMax caps the draws checked against the CDF; each check is an integral.
const ksMax = 2000

type SampleOptions struct {
	N      int
	Seed   uint64
	Out    string
	Beta   bool
	Method string // rejection | joint
	Chunk  int
}

type SampleResult struct {
	RunID          string   `json:"run_id"`
	N              int      `json:"n"`
	Seed           uint64   `json:"seed"`
	Method         string   `json:"method"`
	Envelope       string   `json:"envelope,omitempty"`
	Proposals      int      `json:"proposals"`
	AcceptanceRate Float    `json:"acceptance_rate"`
	Mean           Float    `json:"mean"`
	KS             Float    `json:"ks"`
	Files          []string `json:"files"`
}

func NewSampleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SampleOptions{}
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw exact variates of Y and write them as CSV",
		Long: `Draw variates of Y by rejection from the selected envelope (or directly
from the bivariate gamma pair with --method joint), stream them to
samples.csv and write a run summary with the KS distance to the CDF.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(rootOpts, opts, cmd)
		},
	}
	cmd.Flags().IntVar(&opts.N, "n", 0, "number of draws (default from config)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "seed (default from config)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&opts.Beta, "beta", false, "write beta values y/(1+y)")
	cmd.Flags().StringVar(&opts.Method, "method", "rejection", "rejection | joint")
	cmd.Flags().IntVar(&opts.Chunk, "chunk", 10_000, "draws per streamed batch")
	return cmd
}

func runSample(rootOpts *RootOptions, opts *SampleOptions, cmd *cobra.Command) error {
	cfg := rootOpts.Config
	logger := rootOpts.Logger
	n, seed, out := opts.N, opts.Seed, opts.Out
	if !cmd.Flags().Changed("n") {
		n = cfg.Sampler.N
	}
	if !cmd.Flags().Changed("seed") {
		seed = cfg.Sampler.Seed
		if cfg.SeedFromClock {
			logger.Info("seed derived from clock", "seed", seed)
		}
	}
	if out == "" {
		out = cfg.Output.Dir
	}
	if n < 0 || opts.Chunk < 1 {
		return NewExitError(ExitDomain, fmt.Sprintf("need n >= 0 and chunk >= 1, got n=%d chunk=%d", n, opts.Chunk))
	}
	if opts.Method != "rejection" && opts.Method != "joint" {
		return NewExitError(ExitDomain, fmt.Sprintf("unknown method %q", opts.Method))
	}

	d, p, err := rootOpts.distribution()
	if err != nil {
		return err
	}
	draw, envName, err := drawFunc(d, p, opts.Method)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return WrapExitError("cannot create output directory", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	samplesPath := filepath.Join(out, "samples.csv")
	batches := make(chan sampler.Batch, 4)
	writerDone := make(chan struct{})
	var col *stats.Collector
	var writeErr error
	go func() {
		defer close(writerDone)
		col, writeErr = export.StreamSamples(ctx, samplesPath, opts.Beta, batches)
	}()

	rng := common.NewRNG(seed)
	sampleErr := produce(ctx, n, opts.Chunk, rng, draw, batches, writerDone)
	close(batches)
	<-writerDone

	if sampleErr != nil {
		return WrapExitError("sampling failed", sampleErr)
	}
	if writeErr != nil {
		return WrapExitError("cannot write samples", writeErr)
	}

	batch := col.Batch()
	summary := stats.Summarize(batch)
	check := batch.Values
	if len(check) > ksMax {
		check = check[:ksMax]
	}
	if len(check) > 0 {
		if summary, err = summary.WithKS(check, d.CDF); err != nil {
			return WrapExitError("KS check failed", err)
		}
	}
	run := export.NewRun(p, seed)
	run.Envelope = envName
	run.Summary = summary
	if err := export.ToCSV(out, run); err != nil {
		return WrapExitError("cannot write summary", err)
	}
	logger.Debug("sample written", "run_id", run.ID, "n", summary.N, "proposals", summary.Proposals)

	res := SampleResult{
		RunID:          run.ID.String(),
		N:              summary.N,
		Seed:           seed,
		Method:         opts.Method,
		Envelope:       envName,
		Proposals:      summary.Proposals,
		AcceptanceRate: Float(summary.AcceptanceRate),
		Mean:           Float(summary.Mean),
		KS:             Float(summary.KS),
		Files:          []string{samplesPath, filepath.Join(out, "summary.csv")},
	}
	table := Table{
		Header: []string{"key", "value"},
		Rows: [][]any{
			{"run_id", res.RunID},
			{"n", res.N},
			{"seed", fmt.Sprint(seed)},
			{"method", res.Method},
			{"envelope", envName},
			{"proposals", res.Proposals},
			{"acceptance_rate", summary.AcceptanceRate},
			{"mean", summary.Mean},
			{"ks", summary.KS},
		},
	}
	return rootOpts.formatter(cmd).Success(res, table)
}

type drawer func(k int, rng *common.RNG) (sampler.Batch, error)

func drawFunc(d *rcg.Distribution, p model.Params, method string) (drawer, string, error) {
	if method == "joint" {
		j, err := sampler.NewJoint(p)
		if err != nil {
			return nil, "", WrapExitError("invalid parameters", err)
		}
		return func(k int, rng *common.RNG) (sampler.Batch, error) {
			ys, err := j.Ratios(k, rng)
			return sampler.Batch{Values: ys, Proposals: len(ys)}, err
		}, "joint", nil
	}
	spec, err := d.Envelope()
	if err != nil {
		return nil, "", WrapExitError("cannot build envelope", err)
	}
	return func(k int, rng *common.RNG) (sampler.Batch, error) {
		return d.Sample(k, rng)
	}, spec.String(), nil
}

// produce sends n draws in chunks until done, the writer stops or ctx ends.
func produce(ctx context.Context, n, chunk int, rng *common.RNG, draw drawer,
	batches chan<- sampler.Batch, writerDone <-chan struct{}) error {
	for left := n; left > 0; left -= chunk {
		b, err := draw(min(chunk, left), rng)
		if err != nil {
			return err
		}
		select {
		case batches <- b:
		case <-writerDone:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
