package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/emrzvv/rcg"
	"github.com/emrzvv/rcg/internal/density"
	"github.com/emrzvv/rcg/internal/model"
	"github.com/emrzvv/rcg/internal/numeric"
)

type Config struct {
	Params struct {
		Shape1 float64 `yaml:"shape1"` // форма числителя
		Scale1 float64 `yaml:"scale1"`
		Shape2 float64 `yaml:"shape2"` // форма знаменателя
		Scale2 float64 `yaml:"scale2"`
		Rho    float64 `yaml:"rho"` // корреляция, 0 <= rho < 1

		// альтернативная параметризация: общая форма и интенсивности
		Alpha   float64 `yaml:"alpha"`
		LambdaM float64 `yaml:"lambda_m"`
		LambdaU float64 `yaml:"lambda_u"`
	} `yaml:"params"`

	Numerics struct {
		Tolerance       numeric.Tolerance `yaml:"tolerance"` // интегрирование
		Points          int               `yaml:"points"`    // узлов Гаусса-Лежандра на отрезок
		MaxSubintervals int               `yaml:"max_subintervals"`
		Derivative      numeric.Tolerance `yaml:"derivative"`
		MaxHalvings     int               `yaml:"max_halvings"`
		Strategy        string            `yaml:"strategy"` // analytic | numerical-derivative
		PPF             struct {
			Tolerance     numeric.Tolerance `yaml:"tolerance"`
			MaxIterations int               `yaml:"max_iterations"`
			MaxDoublings  int               `yaml:"max_doublings"`
		} `yaml:"ppf"`
	} `yaml:"numerics"`

	Sampler struct {
		N            int     `yaml:"n"`
		Seed         uint64  `yaml:"seed"`
		MaxProposals int     `yaml:"max_proposals"`
		BatchSize    int     `yaml:"batch_size"`
		Retries      int     `yaml:"retries"`
		SafetyFactor float64 `yaml:"safety_factor"`
	} `yaml:"sampler"`

	Output struct {
		Dir      string `yaml:"dir"`
		PlotFile string `yaml:"plot_file"`
		Bins     int    `yaml:"bins"`
	} `yaml:"output"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	// SeedFromClock is set when the seed was derived from the clock.
	SeedFromClock bool `yaml:"-"`
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read decodes, completes and validates a config.
func Read(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error when parsing config: %w", err)
	}

	fillDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("error when validating config: %w", err)
	}
	return &cfg, nil
}

// Default is the config of an empty file.
func Default() *Config {
	var cfg Config
	fillDefaults(&cfg)
	return &cfg
}

func fillDefaults(c *Config) {
	if c.Params.Alpha > 0 {
		if c.Params.LambdaM == 0 {
			c.Params.LambdaM = 1
		}
		if c.Params.LambdaU == 0 {
			c.Params.LambdaU = 1
		}
	} else {
		if c.Params.Shape1 == 0 {
			c.Params.Shape1 = 2
		}
		if c.Params.Shape2 == 0 {
			c.Params.Shape2 = c.Params.Shape1
		}
		if c.Params.Scale1 == 0 {
			c.Params.Scale1 = 1
		}
		if c.Params.Scale2 == 0 {
			c.Params.Scale2 = 1
		}
	}

	in := numeric.DefaultIntegrator()
	if c.Numerics.Tolerance == (numeric.Tolerance{}) {
		c.Numerics.Tolerance = in.Tolerance
	}
	if c.Numerics.Points == 0 {
		c.Numerics.Points = in.Points
	}
	if c.Numerics.MaxSubintervals == 0 {
		c.Numerics.MaxSubintervals = in.MaxSubintervals
	}
	d := numeric.DefaultDifferentiator()
	if c.Numerics.Derivative == (numeric.Tolerance{}) {
		c.Numerics.Derivative = d.Tolerance
	}
	if c.Numerics.MaxHalvings == 0 {
		c.Numerics.MaxHalvings = d.MaxHalvings
	}
	if c.Numerics.Strategy == "" {
		c.Numerics.Strategy = density.Analytic{}.Name()
	}
	rf := numeric.DefaultRootFinder()
	if c.Numerics.PPF.Tolerance == (numeric.Tolerance{}) {
		c.Numerics.PPF.Tolerance = rf.Tolerance
	}
	if c.Numerics.PPF.MaxIterations == 0 {
		c.Numerics.PPF.MaxIterations = rf.MaxIterations
	}
	if c.Numerics.PPF.MaxDoublings == 0 {
		c.Numerics.PPF.MaxDoublings = rf.MaxDoublings
	}

	if c.Sampler.N == 0 {
		c.Sampler.N = 1000
	}
	if c.Sampler.Seed == 0 {
		c.Sampler.Seed = uint64(time.Now().UnixNano())
		c.SeedFromClock = true
	}
	if c.Sampler.MaxProposals == 0 {
		c.Sampler.MaxProposals = 100_000
	}
	if c.Sampler.BatchSize == 0 {
		c.Sampler.BatchSize = 64
	}
	if c.Sampler.SafetyFactor == 0 {
		c.Sampler.SafetyFactor = 1.02
	}

	if c.Output.Dir == "" {
		c.Output.Dir = "./results"
	}
	if c.Output.PlotFile == "" {
		c.Output.PlotFile = "rcg_hist.png"
	}
	if c.Output.Bins == 0 {
		c.Output.Bins = 100
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func validate(cfg *Config) error {
	if _, err := cfg.ModelParams(); err != nil {
		return err
	}
	if _, err := density.StrategyByName(cfg.Numerics.Strategy); err != nil {
		return err
	}
	if cfg.Numerics.Points < 1 || cfg.Numerics.MaxSubintervals < 1 || cfg.Numerics.MaxHalvings < 1 {
		return model.DomainError("config", "numerics points, max_subintervals and max_halvings must be >= 1")
	}
	if cfg.Numerics.PPF.MaxIterations < 1 || cfg.Numerics.PPF.MaxDoublings < 1 {
		return model.DomainError("config", "ppf iteration limits must be >= 1")
	}
	if t := cfg.Numerics.PPF.Tolerance; !(t.Rel > 0 && t.Rel < 1) {
		return model.DomainError("config", "numerics.ppf.tolerance.rel must be in (0, 1), got %g", t.Rel)
	}
	if cfg.Sampler.N < 0 {
		return model.DomainError("config", "sampler.n must be >= 0, got %d", cfg.Sampler.N)
	}
	if cfg.Sampler.MaxProposals < 1 || cfg.Sampler.BatchSize < 1 {
		return model.DomainError("config", "sampler.max_proposals and sampler.batch_size must be >= 1")
	}
	if cfg.Sampler.Retries < 0 {
		return model.DomainError("config", "sampler.retries must be >= 0, got %d", cfg.Sampler.Retries)
	}
	if s := cfg.Sampler.SafetyFactor; s < 1 || s > 1.5 {
		return model.DomainError("config", "sampler.safety_factor must be in [1, 1.5], got %g", s)
	}
	if cfg.Output.Bins < 1 {
		return model.DomainError("config", "output.bins must be >= 1, got %d", cfg.Output.Bins)
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return err
	}
	return nil
}

// ModelParams builds the distribution parameters, preferring the
// alpha/lambda form when alpha is set.
func (c *Config) ModelParams() (model.Params, error) {
	p := c.Params
	if p.Alpha > 0 {
		return model.FromRates(p.Alpha, p.LambdaM, p.LambdaU, p.Rho)
	}
	return model.NewParams(p.Shape1, p.Scale1, p.Shape2, p.Scale2, p.Rho)
}

// Options maps the numerics and sampler sections onto distribution options.
func (c *Config) Options() []rcg.Option {
	n := c.Numerics
	return []rcg.Option{
		rcg.WithTolerance(n.Tolerance),
		rcg.WithIntegration(n.Points, n.MaxSubintervals),
		rcg.WithDerivative(n.Derivative, n.MaxHalvings),
		rcg.WithStrategy(n.Strategy),
		rcg.WithPPF(n.PPF.Tolerance, n.PPF.MaxIterations, n.PPF.MaxDoublings),
		rcg.WithMaxProposals(c.Sampler.MaxProposals),
		rcg.WithBatchSize(c.Sampler.BatchSize),
		rcg.WithRetries(c.Sampler.Retries),
		rcg.WithSafetyFactor(c.Sampler.SafetyFactor),
	}
}

func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, model.DomainError("config", "unknown log level %q", s)
	}
	return l, nil
}
