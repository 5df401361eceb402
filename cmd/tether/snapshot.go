package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/tether/internal/app"
	"github.com/dshills/tether/internal/codec"
)

func newSnapshotCmd(c *cli) *cobra.Command {
	var (
		dataPath     string
		bindingsPath string
		selectPath   string
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the data, or the values of a bindings file",
		Long: `Snapshot prints the data file in the output format. With --bindings it
prints the current value of every binding instead. --select narrows the
output to one value using the same path syntax as bindings, such as
"user.tags[0]" or "user.tags.0".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadData(dataPath)
			if err != nil {
				return err
			}

			var out any = doc
			if bindingsPath != "" {
				specs, err := app.LoadBindings(bindingsPath)
				if err != nil {
					return err
				}
				s, err := app.NewSession(doc, specs, c.sessionOptions()...)
				if err != nil {
					return err
				}
				defer s.Close()
				out = s.Values()
			}

			if selectPath != "" {
				raw, err := codec.Encode(out, codec.FormatJSON, 0)
				if err != nil {
					return err
				}
				if out, err = codec.SelectValue(raw, selectPath); err != nil {
					return err
				}
			}
			return c.print(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "data file (json, yaml or toml)")
	cmd.Flags().StringVarP(&bindingsPath, "bindings", "b", "", "bindings file")
	cmd.Flags().StringVarP(&selectPath, "select", "s", "", "path of the value to print")
	return cmd
}
