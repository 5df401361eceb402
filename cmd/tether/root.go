package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/tether/internal/app"
	"github.com/dshills/tether/internal/codec"
	"github.com/dshills/tether/internal/config"
	"github.com/dshills/tether/internal/logging"
	"github.com/dshills/tether/internal/script"
)

// cli holds state shared by every subcommand.
type cli struct {
	configPath string
	logLevel   string
	functions  string
	format     string

	cfg    *config.Config
	logger *logging.Logger
	engine *script.Engine
	closer io.Closer
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "tether",
		Short: "Evaluate and watch bindings over structured data",
		Long: `tether binds named values to paths and expressions over a JSON, YAML
or TOML document and keeps them up to date as the document changes.`,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return c.setup() },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "configuration file (TOML)")
	flags.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&c.functions, "functions", "", "Lua file whose functions expressions may call")
	flags.StringVarP(&c.format, "format", "f", "", "output format (json, yaml, toml)")

	root.AddCommand(
		newEvalCmd(c),
		newSnapshotCmd(c),
		newSetCmd(c),
		newWatchCmd(c),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and installs the logger.
func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.functions != "" {
		cfg.Expression.Functions = c.functions
	}
	if c.format != "" {
		cfg.Output.Format = c.format
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	logger, closer, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	logging.SetLogger(logger)
	c.logger = logger
	c.closer = closer

	if cfg.Expression.Functions != "" {
		engine := script.NewEngine(script.WithLogger(logger.WithComponent("script")))
		if err := engine.LoadFile(cfg.Expression.Functions); err != nil {
			engine.Close()
			return err
		}
		c.engine = engine
		logger.Debug("loaded functions %v from %s", engine.Names(), cfg.Expression.Functions)
	}
	return nil
}

func (c *cli) teardown() error {
	if c.engine != nil {
		if err := c.engine.Close(); err != nil {
			return err
		}
	}
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// sessionOptions maps configuration onto session options.
func (c *cli) sessionOptions(extra ...app.Option) []app.Option {
	opts := []app.Option{
		app.WithLogger(c.logger.WithComponent("session")),
		app.WithGlobals(c.cfg.Expression.Globals),
		app.WithDebounce(c.cfg.Watch.Debounce),
	}
	if c.engine != nil {
		opts = append(opts, app.WithFunctions(c.engine.Functions()))
	}
	return append(opts, extra...)
}

// loadData decodes the data file, or returns nil when path is empty.
func (c *cli) loadData(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	return codec.DecodeFile(path)
}

// outputFormat returns the configured output format.
func (c *cli) outputFormat() codec.Format {
	f, err := codec.ParseFormat(c.cfg.Output.Format)
	if err != nil {
		return codec.FormatJSON
	}
	return f
}

// render encodes v in the output format, colored when w is a terminal
// and the configuration allows it.
func (c *cli) render(w io.Writer, v any) ([]byte, error) {
	f := c.outputFormat()
	if f != codec.FormatJSON {
		return codec.Encode(v, f, c.cfg.Output.Indent)
	}
	data, err := codec.Encode(v, codec.FormatJSON, 0)
	if err != nil {
		return nil, err
	}
	return codec.Pretty(data, c.cfg.Output.Indent, c.cfg.UseColor(isTerminal(w))), nil
}

func (c *cli) print(w io.Writer, v any) error {
	out, err := c.render(w, v)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// Version needs no configuration.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tether %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
		},
	}
}
