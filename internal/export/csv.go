package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/emrzvv/rcg/internal/model"
	"github.com/emrzvv/rcg/internal/stats"
)

// Run describes one sampling run for summary.csv.
type Run struct {
	ID       uuid.UUID
	Params   model.Params
	Seed     uint64
	Envelope string // семейство и M
	Summary  stats.Summary
}

func NewRun(p model.Params, seed uint64) Run {
	return Run{ID: uuid.New(), Params: p, Seed: seed}
}

// GridPoint is one row of grid.csv.
type GridPoint struct {
	Y   float64
	PDF float64
	CDF float64
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// WriteSamples writes one value per row; the header is "b" for beta values.
func WriteSamples(w io.Writer, values []float64, beta bool) error {
	cw := csv.NewWriter(w)
	header := "y"
	if beta {
		header = "b"
	}
	_ = cw.Write([]string{"i", header})
	for i, v := range values {
		cw.Write([]string{
			strconv.Itoa(i),
			formatFloat(v),
		})
	}
	cw.Flush()
	return cw.Error()
}

func WriteGrid(w io.Writer, grid []GridPoint) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"y", "pdf", "cdf"})
	for _, g := range grid {
		cw.Write([]string{
			formatFloat(g.Y),
			formatFloat(g.PDF),
			formatFloat(g.CDF),
		})
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary writes the run as key/value rows.
func WriteSummary(w io.Writer, run Run) error {
	cw := csv.NewWriter(w)
	p, s := run.Params, run.Summary
	rows := [][]string{
		{"key", "value"},
		{"run_id", run.ID.String()},
		{"shape1", formatFloat(p.Shape1())},
		{"scale1", formatFloat(p.Scale1())},
		{"shape2", formatFloat(p.Shape2())},
		{"scale2", formatFloat(p.Scale2())},
		{"rho", formatFloat(p.Correlation())},
		{"seed", strconv.FormatUint(run.Seed, 10)},
		{"envelope", run.Envelope},
		{"n", strconv.Itoa(s.N)},
		{"proposals", strconv.Itoa(s.Proposals)},
		{"acceptance_rate", fmt.Sprintf("%.5f", s.AcceptanceRate)},
		{"mean", formatFloat(s.Mean)},
		{"variance", formatFloat(s.Variance)},
		{"median", formatFloat(s.Median)},
		{"min", formatFloat(s.Min)},
		{"max", formatFloat(s.Max)},
		{"ks", formatFloat(s.KS)},
	}
	for _, r := range rows {
		cw.Write(r)
	}
	cw.Flush()
	return cw.Error()
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := write(f); err != nil {
		return err
	}
	return f.Close()
}

func trimDir(dir string) string {
	if strings.HasSuffix(dir, "/") {
		dir = dir[:len(dir)-1]
	}
	return dir
}

// ToCSV writes summary.csv into dir.
func ToCSV(dir string, run Run) error {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}
	return writeFile(fmt.Sprintf("%s/summary.csv", trimDir(dir)), func(w io.Writer) error {
		return WriteSummary(w, run)
	})
}

// GridToCSV writes grid.csv into dir.
func GridToCSV(dir string, grid []GridPoint) error {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}
	return writeFile(fmt.Sprintf("%s/grid.csv", trimDir(dir)), func(w io.Writer) error {
		return WriteGrid(w, grid)
	})
}
