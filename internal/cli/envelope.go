package cli

import (
	"sort"

	"github.com/spf13/cobra"
)

type EnvelopeResult struct {
	Family string           `json:"family"`
	Params map[string]Float `json:"params"`
	M      Float            `json:"m"`
	ArgMax Float            `json:"argmax"`
	Tried  int              `json:"tried"`
}

func NewEnvelopeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "envelope",
		Short:         "Show the envelope chosen for rejection sampling",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := rootOpts.distribution()
			if err != nil {
				return err
			}
			spec, err := d.Envelope()
			if err != nil {
				return WrapExitError("cannot build envelope", err)
			}
			params := spec.FamilyParams()
			res := EnvelopeResult{
				Family: spec.Family.String(),
				Params: make(map[string]Float, len(params)),
				M:      Float(spec.M),
				ArgMax: Float(spec.ArgMax),
				Tried:  spec.Tried,
			}
			keys := make([]string, 0, len(params))
			for k, v := range params {
				res.Params[k] = Float(v)
				keys = append(keys, k)
			}
			sort.Strings(keys)
			table := Table{Header: []string{"key", "value"}}
			table.Rows = append(table.Rows, []any{"family", res.Family})
			for _, k := range keys {
				table.Rows = append(table.Rows, []any{k, params[k]})
			}
			table.Rows = append(table.Rows,
				[]any{"M", spec.M},
				[]any{"acceptance", 1 / spec.M},
				[]any{"argmax", spec.ArgMax},
				[]any{"candidates", spec.Tried},
			)
			return rootOpts.formatter(cmd).Success(res, table)
		},
	}
}
