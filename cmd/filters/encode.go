package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/filters/pkg/filterstate"
)

func encodeCmd() *cobra.Command {
	var (
		base  string
		class string
	)

	cmd := &cobra.Command{
		Use:   "encode key=value...",
		Short: "Build a commit URL from filter values",
		Long: `Build the URL a widget commits to for the given filter values.

Examples:
  filters encode --base /shop --cls products ram=8GB brands=Nike,Levis
  filters encode price=10-500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := filterstate.New()
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				if !ok || key == "" {
					return fmt.Errorf("invalid filter %q: want key=value", arg)
				}
				st.Set(key, value)
			}
			fmt.Fprintln(cmd.OutOrStdout(), filterstate.Encode(base, class, st))
			return nil
		},
	}

	cmd.Flags().StringVarP(&base, "base", "b", "", "Base URL")
	cmd.Flags().StringVar(&class, "cls", "", "Class parameter")

	return cmd
}
