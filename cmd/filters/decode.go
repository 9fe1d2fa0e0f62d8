package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/vango-dev/filters/pkg/filterstate"
)

func decodeCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "decode <url>",
		Short: "Show the filter state held by a URL",
		Long: `Decode a page or commit URL into its base, class and filter state, printed
as JSON. Malformed query segments are reported on stderr; with --strict they
fail the command.

Examples:
  filters decode '/shop?k1=v1&k2=1-5'
  filters decode "$(filters encode --base /shop ram=8GB)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := filterstate.Decode(args[0])
			if err != nil {
				if strict {
					return err
				}
				warn(cmd, "%v", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Base    string            `json:"base"`
				Class   string            `json:"cls,omitempty"`
				Filters map[string]string `json:"filters"`
			}{d.Base, d.Class, d.State.Map()})
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on malformed query segments")

	return cmd
}
