package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrzvv/rcg/internal/model"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var resp struct {
		Status string `json:"status"`
		Data   T      `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestCommandPresence(t *testing.T) {
	root := NewRootCommand()
	for _, name := range []string{"pdf", "cdf", "ppf", "sample", "expect", "envelope", "plot"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("command %q not registered", name)
		}
	}
	for _, flag := range []string{"config", "log-level", "format", "shape1", "scale1", "shape2", "scale2", "rho", "alpha", "lambda-m", "lambda-u"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}

	sample, _, err := root.Find([]string{"sample"})
	require.NoError(t, err)
	for _, flag := range []string{"n", "seed", "out", "beta", "method", "chunk"} {
		assert.NotNil(t, sample.Flags().Lookup(flag), flag)
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{nil, ExitSuccess},
		{errors.New("plain"), ExitFailure},
		{WrapExitError("x", model.DomainError("op", "bad")), ExitDomain},
		{WrapExitError("x", model.ConvergenceError("op", 1, 2, "slow")), ExitNumerical},
		{WrapExitError("x", model.RootFindingError("op", 0.5, "lost")), ExitNumerical},
		{WrapExitError("x", model.EnvelopeError("op", "none", nil)), ExitNumerical},
		{WrapExitError("x", model.ExhaustedError("op", 10)), ExitExhausted},
		{WrapExitError("x", errors.New("io")), ExitFailure},
		{fmt.Errorf("outer: %w", NewExitError(ExitDomain, "inner")), ExitDomain},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, GetExitCode(tt.err), fmt.Sprint(tt.err))
	}

	e := WrapExitError("sampling failed", model.ExhaustedError("op", 10))
	assert.True(t, errors.Is(e, model.ErrSamplingExhausted))
	assert.Contains(t, e.Error(), "sampling failed: SamplingExhaustedError")
}

func TestFloatJSON(t *testing.T) {
	b, err := json.Marshal([]Float{1.5, Float(math.Inf(1)), Float(math.NaN())})
	require.NoError(t, err)
	assert.Equal(t, `[1.5,"+Inf","NaN"]`, string(b))
}

func TestPDFCommand(t *testing.T) {
	out, err := run(t, "pdf", "--y", "1,3", "--shape1", "1", "--shape2", "1", "--format", "json")
	require.NoError(t, err)
	res := decode[[]struct {
		X     float64 `json:"x"`
		Value float64 `json:"value"`
	}](t, out)
	require.Len(t, res, 2)
	assert.Equal(t, 1.0, res[0].X)
	assert.InDelta(t, 0.25, res[0].Value, 1e-14)
	assert.InDelta(t, 1.0/16, res[1].Value, 1e-14)
}

func TestCDFTextOutput(t *testing.T) {
	out, err := run(t, "cdf", "--y", "1", "--shape1", "1", "--shape2", "1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"y", "cdf"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "0.5"}, strings.Fields(lines[1]))
}

func TestPPFCommand(t *testing.T) {
	out, err := run(t, "ppf", "--p", "0.5,1", "--shape1", "2", "--shape2", "2", "--rho", "0.5", "--format", "json")
	require.NoError(t, err)
	// медиана симметричного случая r = 1 равна 1
	assert.Contains(t, out, `"x":1,"value":"+Inf"`)
	res := decode[[]struct {
		Value json.RawMessage `json:"value"`
	}](t, out)
	var median float64
	require.NoError(t, json.Unmarshal(res[0].Value, &median))
	assert.InDelta(t, 1, median, 1e-8)
}

func TestInvalidInput(t *testing.T) {
	_, err := run(t, "pdf", "--shape1", "2", "--shape2", "2", "--rho", "1")
	require.Error(t, err)
	assert.Equal(t, ExitDomain, GetExitCode(err))

	_, err = run(t, "pdf", "--format", "xml")
	assert.Equal(t, ExitDomain, GetExitCode(err))

	_, err = run(t, "pdf", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, ExitDomain, GetExitCode(err))

	_, err = run(t, "pdf", "--log-level", "loud")
	assert.Equal(t, ExitDomain, GetExitCode(err))

	_, err = run(t, "ppf", "--p", "1.5")
	assert.Equal(t, ExitDomain, GetExitCode(err))

	_, err = run(t, "expect", "--expr", "y * 2")
	assert.Equal(t, ExitDomain, GetExitCode(err))

	_, err = run(t, "sample", "--method", "gibbs", "--out", t.TempDir())
	assert.Equal(t, ExitDomain, GetExitCode(err))
}

func TestRateFlags(t *testing.T) {
	// alpha = 1, lambda_m = 2, lambda_u = 1: Y = (1/2) * Gamma(1)/Gamma(1)
	out, err := run(t, "cdf", "--alpha", "1", "--lambda-m", "2", "--y", "0.5", "--format", "json")
	require.NoError(t, err)
	res := decode[[]PointResult](t, out)
	assert.InDelta(t, 0.5, float64(res[0].Value), 1e-10)
}

func TestExpectCommand(t *testing.T) {
	out, err := run(t, "expect", "--expr", "y", "--shape1", "3.5", "--shape2", "3.5", "--scale2", "2", "--rho", "0.6", "--format", "json")
	require.NoError(t, err)
	res := decode[struct {
		Expr  string  `json:"expr"`
		Lo    float64 `json:"lo"`
		Value float64 `json:"value"`
	}](t, out)
	assert.Equal(t, "y", res.Expr)
	// E[Y] = r (a - rho)/(a - 1)
	assert.InEpsilon(t, 0.5*2.9/2.5, res.Value, 1e-7)
}

func TestEnvelopeCommand(t *testing.T) {
	out, err := run(t, "envelope", "--shape1", "2", "--shape2", "5", "--format", "json")
	require.NoError(t, err)
	res := decode[struct {
		Family string             `json:"family"`
		Params map[string]float64 `json:"params"`
		M      float64            `json:"m"`
		Tried  int                `json:"tried"`
	}](t, out)
	assert.Equal(t, "scaled-f", res.Family)
	assert.Equal(t, 4.0, res.Params["d1"])
	assert.InDelta(t, 1.02, res.M, 1e-3)
	assert.Equal(t, 1, res.Tried)
}

func TestSampleCommand(t *testing.T) {
	for _, method := range []string{"rejection", "joint"} {
		t.Run(method, func(t *testing.T) {
			dir := t.TempDir()
			out, err := run(t, "sample", "--n", "300", "--chunk", "128", "--seed", "7", "--out", dir,
				"--method", method, "--shape1", "3", "--shape2", "3", "--rho", "0.5", "--format", "json")
			require.NoError(t, err)
			res := decode[struct {
				RunID string   `json:"run_id"`
				N     int      `json:"n"`
				Seed  uint64   `json:"seed"`
				KS    float64  `json:"ks"`
				Files []string `json:"files"`
			}](t, out)
			assert.Equal(t, 300, res.N)
			assert.Equal(t, uint64(7), res.Seed)
			assert.NotEmpty(t, res.RunID)
			assert.Less(t, res.KS, 0.15)

			data, err := os.ReadFile(filepath.Join(dir, "samples.csv"))
			require.NoError(t, err)
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			assert.Equal(t, "i,y", lines[0])
			assert.Len(t, lines, 301)

			summary, err := os.ReadFile(filepath.Join(dir, "summary.csv"))
			require.NoError(t, err)
			assert.Contains(t, string(summary), "run_id,"+res.RunID)
		})
	}
}

func TestSampleReproducible(t *testing.T) {
	read := func() string {
		dir := t.TempDir()
		_, err := run(t, "sample", "--n", "50", "--seed", "11", "--out", dir, "--beta")
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(dir, "samples.csv"))
		require.NoError(t, err)
		return string(data)
	}
	first := read()
	assert.True(t, strings.HasPrefix(first, "i,b\n"))
	assert.Equal(t, first, read())
}

func TestPlotCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("params: {shape1: 3.0, shape2: 3.0, rho: 0.4}\nsampler: {seed: 5}\noutput: {dir: %q, bins: 30}\n", dir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	out, err := run(t, "plot", "--config", cfgPath, "--n", "2000", "--grid", "101", "--format", "json")
	require.NoError(t, err)
	res := decode[struct {
		File     string  `json:"file"`
		GridMass float64 `json:"grid_mass"`
		CDFMass  float64 `json:"cdf_mass"`
	}](t, out)
	assert.Equal(t, filepath.Join(dir, "rcg_hist.png"), res.File)
	assert.InDelta(t, 0.99, res.CDFMass, 1e-6)
	assert.InDelta(t, res.CDFMass, res.GridMass, 1e-3)

	for _, name := range []string{"rcg_hist.png", "grid.csv"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestOutputFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}
	require.NoError(t, f.Success(nil, Table{Header: []string{"k", "v"}, Rows: [][]any{{"n", 1234567}, {"x", 0.125}}}))
	assert.Contains(t, buf.String(), "1,234,567")
	assert.Contains(t, buf.String(), "0.125")

	buf.Reset()
	require.NoError(t, f.Error(errors.New("boom")))
	assert.Equal(t, "Error: boom\n", buf.String())

	buf.Reset()
	f.Format = "json"
	require.NoError(t, f.Error(errors.New("boom")))
	assert.JSONEq(t, `{"status":"error","error":"boom"}`, buf.String())
}
