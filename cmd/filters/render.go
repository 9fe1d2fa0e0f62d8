package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/filters/pkg/filters"
	"github.com/vango-dev/filters/pkg/render"
	"github.com/vango-dev/filters/pkg/schema"
	"github.com/vango-dev/filters/pkg/widget"
)

func renderCmd() *cobra.Command {
	var (
		pageURL string
		class   string
		apply   bool
		pretty  bool
	)

	cmd := &cobra.Command{
		Use:   "render <schema>",
		Short: "Print the HTML of a widget",
		Long: `Render the widget described by a schema file (or s3://bucket/key) with
the filter state decoded from --url, and print the HTML fragment.

Examples:
  filters render schemas/products.json
  filters render schemas/products.yaml --url '/shop?ram=8GB&price=10-500' --pretty`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log(cmd)
			sc, err := schema.NewLoader(schema.WithLogger(logger)).Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			sync, err := filters.New(filters.Config{
				Schema:   sc,
				Class:    class,
				Apply:    apply,
				PageURL:  pageURL,
				Navigate: func(string) {},
				Widget:   widget.New(widget.WithApplyMode(apply), widget.WithLogger(logger)),
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			defer sync.Close()

			if err := sync.Mount(); err != nil {
				warn(cmd, "url: %v", err)
			}
			tree, report := sync.Render()
			for _, u := range report.Unsupported {
				warn(cmd, "skipped %v", u)
			}

			html, err := render.NewRenderer(render.RendererConfig{Pretty: pretty}).RenderToString(tree)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), html)
			return nil
		},
	}

	cmd.Flags().StringVarP(&pageURL, "url", "u", "", "Page URL whose query holds the filter state")
	cmd.Flags().StringVar(&class, "cls", "", "Class sent with commits")
	cmd.Flags().BoolVar(&apply, "apply", false, "Render in apply mode")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the HTML")

	return cmd
}
