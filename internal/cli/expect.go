package cli

import (
	"math"

	"github.com/spf13/cobra"

	"github.com/emrzvv/rcg/internal/expr"
)

type ExpectResult struct {
	Expr  string `json:"expr"`
	Lo    Float  `json:"lo"`
	Hi    Float  `json:"hi"`
	Value Float  `json:"value"`
}

func NewExpectCommand(rootOpts *RootOptions) *cobra.Command {
	var src string
	var lo, hi float64
	cmd := &cobra.Command{
		Use:   "expect",
		Short: "Integrate an expression of y against the density",
		Long: `Compute E[g(Y); lo <= Y <= hi] for a CEL expression g of the double y,
for example "log(y)", "y * y" or "pow(y, 0.5)". Literals must be doubles.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := expr.Compile(src)
			if err != nil {
				return WrapExitError("invalid expression", err)
			}
			d, _, err := rootOpts.distribution()
			if err != nil {
				return err
			}
			fn, firstErr := in.Func()
			v, err := d.Expect(fn, lo, hi)
			if e := firstErr(); e != nil {
				return WrapExitError("expression failed", e)
			}
			if err != nil {
				return WrapExitError("expectation failed", err)
			}
			rootOpts.Logger.Debug("expectation", "expr", in.String(), "lo", lo, "hi", hi, "value", v)
			res := ExpectResult{Expr: in.String(), Lo: Float(lo), Hi: Float(hi), Value: Float(v)}
			table := Table{
				Header: []string{"expr", "lo", "hi", "value"},
				Rows:   [][]any{{in.String(), lo, hi, v}},
			}
			return rootOpts.formatter(cmd).Success(res, table)
		},
	}
	cmd.Flags().StringVar(&src, "expr", "y", "CEL expression of y")
	cmd.Flags().Float64Var(&lo, "lo", 0, "lower integration limit")
	cmd.Flags().Float64Var(&hi, "hi", math.Inf(1), "upper integration limit (inf allowed)")
	return cmd
}
