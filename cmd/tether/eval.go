package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/tether/internal/app"
)

func newEvalCmd(c *cli) *cobra.Command {
	var dataPath string

	cmd := &cobra.Command{
		Use:   "eval EXPRESSION",
		Short: "Evaluate an expression against a data file",
		Example: `  tether eval --data cart.json "{items}.length + ' items'"
  tether eval "Math.max(1, 2) * 3"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadData(dataPath)
			if err != nil {
				return err
			}

			const name = "result"
			s, err := app.NewSession(doc, []app.BindingSpec{{Name: name, Expression: args[0]}}, c.sessionOptions()...)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Err(name); err != nil {
				return err
			}
			v, err := s.Value(name)
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "data file (json, yaml or toml)")
	return cmd
}
