package stats

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/emrzvv/rcg/internal/sampler"
)

type Summary struct {
	N              int
	Proposals      int
	AcceptanceRate float64
	Mean           float64
	Variance       float64
	Min, Max       float64
	Median         float64
	KS             float64 // расстояние до теоретической CDF, NaN если не считали
}

// Summarize describes a batch. KS is left NaN; see WithKS.
func Summarize(b sampler.Batch) Summary {
	s := Summary{
		N:              len(b.Values),
		Proposals:      b.Proposals,
		AcceptanceRate: b.AcceptanceRate(),
		Mean:           math.NaN(),
		Variance:       math.NaN(),
		Min:            math.NaN(),
		Max:            math.NaN(),
		Median:         math.NaN(),
		KS:             math.NaN(),
	}
	if s.N == 0 {
		return s
	}
	s.Mean, s.Variance = stat.MeanVariance(b.Values, nil)
	if s.N == 1 {
		s.Variance = 0
	}
	s.Min, s.Max = floats.Min(b.Values), floats.Max(b.Values)
	sorted := Sorted(b.Values)
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	return s
}

// WithKS fills KS against cdf.
func (s Summary) WithKS(values []float64, cdf func(float64) (float64, error)) (Summary, error) {
	d, err := KSAgainstCDF(Sorted(values), cdf)
	if err != nil {
		return s, err
	}
	s.KS = d
	return s, nil
}

// Sorted returns a sorted copy.
func Sorted(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	sort.Float64s(out)
	return out
}

// KSAgainstCDF is sup |F_n - F| for sorted data.
func KSAgainstCDF(sorted []float64, cdf func(float64) (float64, error)) (float64, error) {
	n := float64(len(sorted))
	var d float64
	for i, x := range sorted {
		f, err := cdf(x)
		if err != nil {
			return 0, err
		}
		d = math.Max(d, math.Max(float64(i+1)/n-f, f-float64(i)/n))
	}
	return d, nil
}

// KSTwoSample is the two-sample Kolmogorov–Smirnov distance.
func KSTwoSample(x, y []float64) float64 {
	return stat.KolmogorovSmirnov(Sorted(x), nil, Sorted(y), nil)
}

// KSCritical is the asymptotic critical distance at level alpha for samples
// of sizes n and m; m = 0 means a one-sample test.
func KSCritical(alpha float64, n, m int) float64 {
	c := math.Sqrt(-0.5 * math.Log(alpha/2))
	if m == 0 {
		return c / math.Sqrt(float64(n))
	}
	return c * math.Sqrt(float64(n+m)/float64(n*m))
}

// GridMass integrates tabulated values on a sorted grid by Simpson's rule,
// or the trapezoid rule for two points.
func GridMass(x, fx []float64) float64 {
	switch {
	case len(x) < 2 || len(x) != len(fx):
		return 0
	case len(x) == 2:
		return integrate.Trapezoidal(x, fx)
	}
	return integrate.Simpsons(x, fx)
}

// Collector accumulates batches from successive runs.
type Collector struct {
	mu        sync.Mutex
	Values    []float64
	Proposals int
	Runs      int
}

func (c *Collector) Add(b sampler.Batch) {
	c.mu.Lock()
	c.Values = append(c.Values, b.Values...)
	c.Proposals += b.Proposals
	c.Runs++
	c.mu.Unlock()
}

func (c *Collector) Batch() sampler.Batch {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sampler.Batch{Values: append([]float64(nil), c.Values...), Proposals: c.Proposals}
}
