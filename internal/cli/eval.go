package cli

import (
	"math"
	"strconv"

	"github.com/spf13/cobra"
)

// Float marshals non-finite values as JSON strings ("+Inf", "NaN").
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.AppendQuote(nil, strconv.FormatFloat(v, 'g', -1, 64)), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

type PointResult struct {
	X     Float `json:"x"`
	Value Float `json:"value"`
}

// evalCommand builds pdf/cdf/ppf: one flag of points, one function.
func evalCommand(opts *RootOptions, use, short, flag, column string,
	eval func(o *RootOptions) (func(float64) (float64, error), error)) *cobra.Command {
	var points []float64
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := eval(opts)
			if err != nil {
				return err
			}
			results := make([]PointResult, 0, len(points))
			table := Table{Header: []string{flag, column}}
			for _, x := range points {
				v, err := fn(x)
				if err != nil {
					return WrapExitError(column+" failed", err)
				}
				results = append(results, PointResult{X: Float(x), Value: Float(v)})
				table.Rows = append(table.Rows, []any{x, v})
			}
			return opts.formatter(cmd).Success(results, table)
		},
	}
	def := []float64{1}
	if flag == "p" {
		def = []float64{0.5}
	}
	cmd.Flags().Float64SliceVar(&points, flag, def, "evaluation points, comma separated")
	return cmd
}

func NewPDFCommand(opts *RootOptions) *cobra.Command {
	return evalCommand(opts, "pdf", "Density of Y at the given points", "y", "pdf",
		func(o *RootOptions) (func(float64) (float64, error), error) {
			d, _, err := o.distribution()
			if err != nil {
				return nil, err
			}
			return d.PDF, nil
		})
}

func NewCDFCommand(opts *RootOptions) *cobra.Command {
	return evalCommand(opts, "cdf", "Distribution function of Y at the given points", "y", "cdf",
		func(o *RootOptions) (func(float64) (float64, error), error) {
			d, _, err := o.distribution()
			if err != nil {
				return nil, err
			}
			return d.CDF, nil
		})
}

func NewPPFCommand(opts *RootOptions) *cobra.Command {
	return evalCommand(opts, "ppf", "Quantiles of Y at the given probabilities", "p", "ppf",
		func(o *RootOptions) (func(float64) (float64, error), error) {
			d, _, err := o.distribution()
			if err != nil {
				return nil, err
			}
			return d.PPF, nil
		})
}
