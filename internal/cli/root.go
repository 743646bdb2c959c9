package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/emrzvv/rcg"
	"github.com/emrzvv/rcg/internal/config"
	"github.com/emrzvv/rcg/internal/model"
)

// RootOptions holds global flags and the state they resolve to.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Format     string

	params paramFlags

	Config *config.Config
	Logger *slog.Logger
}

var ValidFormats = []string{"text", "json"}

// paramFlags override the params section of the config.
type paramFlags struct {
	shape1, scale1, shape2, scale2, rho float64
	alpha, lambdaM, lambdaU             float64
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rcg",
		Short: "Ratio of correlated gammas",
		Long: `Density, distribution function, quantiles, moments and exact sampling
of Y = X1/X2 for a Kibble bivariate gamma pair (X1, X2).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd.Flags())
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "path to YAML config")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error), overrides config")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.Float64Var(&opts.params.shape1, "shape1", 0, "shape of X1")
	pf.Float64Var(&opts.params.scale1, "scale1", 0, "scale of X1")
	pf.Float64Var(&opts.params.shape2, "shape2", 0, "shape of X2")
	pf.Float64Var(&opts.params.scale2, "scale2", 0, "scale of X2")
	pf.Float64Var(&opts.params.rho, "rho", 0, "correlation of X1 and X2, in [0, 1)")
	pf.Float64Var(&opts.params.alpha, "alpha", 0, "common shape (rate parametrization)")
	pf.Float64Var(&opts.params.lambdaM, "lambda-m", 0, "rate of X1 (rate parametrization)")
	pf.Float64Var(&opts.params.lambdaU, "lambda-u", 0, "rate of X2 (rate parametrization)")

	cmd.AddCommand(NewPDFCommand(opts))
	cmd.AddCommand(NewCDFCommand(opts))
	cmd.AddCommand(NewPPFCommand(opts))
	cmd.AddCommand(NewSampleCommand(opts))
	cmd.AddCommand(NewExpectCommand(opts))
	cmd.AddCommand(NewEnvelopeCommand(opts))
	cmd.AddCommand(NewPlotCommand(opts))

	return cmd
}

// resolve loads the config, applies flag overrides and sets up logging.
func (o *RootOptions) resolve(flags *pflag.FlagSet) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitDomain, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return &ExitError{Code: ExitDomain, Message: "cannot load config", Err: err}
		}
		cfg = loaded
	}

	set := func(name string, dst *float64, v float64) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	p := &cfg.Params
	set("shape1", &p.Shape1, o.params.shape1)
	set("scale1", &p.Scale1, o.params.scale1)
	set("shape2", &p.Shape2, o.params.shape2)
	set("scale2", &p.Scale2, o.params.scale2)
	set("rho", &p.Rho, o.params.rho)
	set("alpha", &p.Alpha, o.params.alpha)
	set("lambda-m", &p.LambdaM, o.params.lambdaM)
	set("lambda-u", &p.LambdaU, o.params.lambdaU)
	if !flags.Changed("alpha") && (flags.Changed("shape1") || flags.Changed("shape2")) {
		// явные формы важнее alpha из конфига
		p.Alpha = 0
	}
	if p.Alpha > 0 {
		if p.LambdaM == 0 {
			p.LambdaM = 1
		}
		if p.LambdaU == 0 {
			p.LambdaU = 1
		}
	}
	if _, err := cfg.ModelParams(); err != nil {
		return WrapExitError("invalid parameters", err)
	}

	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return WrapExitError("invalid log level", err)
	}
	o.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	o.Config = cfg
	return nil
}

// distribution builds the distribution described by the resolved config.
func (o *RootOptions) distribution() (*rcg.Distribution, model.Params, error) {
	p, err := o.Config.ModelParams()
	if err != nil {
		return nil, model.Params{}, WrapExitError("invalid parameters", err)
	}
	opts := append(o.Config.Options(), rcg.WithLogger(o.Logger))
	d, err := rcg.New(p, opts...)
	if err != nil {
		return nil, p, WrapExitError("cannot build distribution", err)
	}
	return d, p, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}
