package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/tether/internal/app"
	"github.com/dshills/tether/internal/codec"
)

func newWatchCmd(c *cli) *cobra.Command {
	var (
		dataPath     string
		bindingsPath string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print binding values as the data file changes",
		Long: `Watch evaluates a bindings file against a data file, prints every
value as JSON, and then prints each value again whenever a change to
the data file alters it. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadData(dataPath)
			if err != nil {
				return err
			}
			specs, err := app.LoadBindings(bindingsPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printValue := func(name string, v any) {
				rendered, err := codec.Encode(v, codec.FormatJSON, 0)
				if err != nil {
					c.logger.Warn("rendering %s: %v", name, err)
					return
				}
				fmt.Fprintf(out, "%s = %s\n", name, strings.TrimSpace(string(rendered)))
			}

			s, err := app.NewSession(doc, specs, c.sessionOptions(app.WithOnChange(printValue))...)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, name := range s.Names() {
				v, err := s.Value(name)
				if err != nil {
					return err
				}
				printValue(name, v)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return s.Run(ctx, dataPath)
		},
	}
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "data file (json, yaml or toml)")
	cmd.Flags().StringVarP(&bindingsPath, "bindings", "b", "", "bindings file")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("bindings")
	return cmd
}
