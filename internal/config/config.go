package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/tether/internal/config/loader"
	"github.com/dshills/tether/internal/logging"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// maxIncludeDepth bounds nested include directives.
const maxIncludeDepth = 8

// Config is the complete set of tether settings.
type Config struct {
	Log        LogConfig
	Watch      WatchConfig
	Expression ExpressionConfig
	Output     OutputConfig

	// Path is the file the settings were loaded from, if any.
	Path string
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Level  string
	Output string
}

// WatchConfig controls live reload of data files.
type WatchConfig struct {
	Debounce time.Duration
}

// ExpressionConfig controls what expressions can reference.
type ExpressionConfig struct {
	// Globals enables Math, String, Number and the other built-ins.
	Globals bool
	// Functions is a Lua file whose global functions become callable.
	Functions string
}

// OutputConfig controls how documents are printed.
type OutputConfig struct {
	Format string
	Color  string
	Indent int
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Output: "stderr",
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
		Expression: ExpressionConfig{
			Globals: true,
		},
		Output: OutputConfig{
			Format: FormatJSON,
			Color:  ColorAuto,
			Indent: 2,
		},
	}
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs  loader.FileSystem
	env loader.Loader
}

// WithFileSystem reads configuration files from fsys.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithEnv replaces the environment layer. Passing nil disables it.
func WithEnv(l loader.Loader) Option {
	return func(o *options) {
		o.env = l
	}
}

// Load builds a Config from defaults, the TOML file at path and the
// environment. An empty path or a missing file skips the file layer.
func Load(path string, opts ...Option) (*Config, error) {
	o := options{
		fs:  loader.DefaultFS(),
		env: loader.NewEnvLoader(loader.DefaultEnvPrefix),
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := Default()
	var data map[string]any

	if path != "" {
		file, err := loader.NewTOMLLoaderWithFS(o.fs, path).LoadWithIncludes(path, maxIncludeDepth)
		if err != nil {
			return nil, err
		}
		if file != nil {
			cfg.Path = path
			data = loader.DeepMerge(data, file)
		}
	}

	if o.env != nil {
		env, err := o.env.Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		data = loader.DeepMerge(data, env)
	}

	if err := cfg.Apply(data); err != nil {
		return nil, err
	}
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply copies recognized settings from a merged map onto c.
// Unrecognized keys are ignored.
func (c *Config) Apply(data map[string]any) error {
	var errs []error
	get := func(path string) (any, bool) {
		return loader.Lookup(data, path)
	}

	if err := readString(get, "log.level", &c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if err := readString(get, "log.output", &c.Log.Output); err != nil {
		errs = append(errs, err)
	}
	if err := readDuration(get, "watch.debounce", &c.Watch.Debounce); err != nil {
		errs = append(errs, err)
	}
	if err := readBool(get, "expression.globals", &c.Expression.Globals); err != nil {
		errs = append(errs, err)
	}
	if err := readString(get, "expression.functions", &c.Expression.Functions); err != nil {
		errs = append(errs, err)
	}
	if err := readString(get, "output.format", &c.Output.Format); err != nil {
		errs = append(errs, err)
	}
	if err := readString(get, "output.color", &c.Output.Color); err != nil {
		errs = append(errs, err)
	}
	if err := readInt(get, "output.indent", &c.Output.Indent); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// resolvePaths expands environment references in the functions file and
// makes a relative path relative to the configuration file.
func (c *Config) resolvePaths() {
	fn := c.Expression.Functions
	if fn == "" {
		return
	}
	fn = loader.ExpandEnv(fn)
	if c.Path != "" && !filepath.IsAbs(fn) {
		fn = filepath.Join(filepath.Dir(c.Path), fn)
	}
	c.Expression.Functions = fn
}

// Validate checks every setting and reports all failures together.
func (c *Config) Validate() error {
	var errs []error
	enum := func(path, value string, allowed ...string) {
		for _, a := range allowed {
			if value == a {
				return
			}
		}
		errs = append(errs, &ValidationError{
			Path:    path,
			Message: fmt.Sprintf("must be one of %v", allowed),
			Value:   value,
			Code:    ErrCodeInvalidEnum,
		})
	}

	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, &ValidationError{
			Path:    "log.level",
			Message: "unknown log level",
			Value:   c.Log.Level,
			Code:    ErrCodeInvalidEnum,
		})
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, &ValidationError{
			Path:    "watch.debounce",
			Message: "must not be negative",
			Value:   c.Watch.Debounce,
			Code:    ErrCodeOutOfRange,
		})
	}
	enum("output.format", c.Output.Format, FormatJSON, FormatYAML, FormatTOML)
	enum("output.color", c.Output.Color, ColorAuto, ColorAlways, ColorNever)
	if c.Output.Indent < 0 || c.Output.Indent > 16 {
		errs = append(errs, &ValidationError{
			Path:    "output.indent",
			Message: "must be between 0 and 16",
			Value:   c.Output.Indent,
			Code:    ErrCodeOutOfRange,
		})
	}
	return errors.Join(errs...)
}

// LogLevel returns the configured level.
func (c *Config) LogLevel() logging.LogLevel {
	return logging.ParseLogLevel(c.Log.Level)
}

// NewLogger builds a logger for the configured level and output. The
// returned closer releases the log file, if one was opened.
func (c *Config) NewLogger() (*logging.Logger, io.Closer, error) {
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogLevel()

	var closer io.Closer = nopCloser{}
	switch c.Log.Output {
	case "", "stderr":
		cfg.Output = os.Stderr
	case "stdout":
		cfg.Output = os.Stdout
	default:
		f, err := os.OpenFile(c.Log.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		cfg.Output = f
		closer = f
	}
	return logging.New(cfg), closer, nil
}

// UseColor reports whether output should be colored, given whether the
// destination is a terminal.
func (c *Config) UseColor(terminal bool) bool {
	switch c.Output.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	return terminal
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type getter func(path string) (any, bool)

func readString(get getter, path string, dst *string) error {
	v, ok := get(path)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return &TypeError{Path: path, Expected: "string", Actual: fmt.Sprintf("%T", v)}
	}
	*dst = s
	return nil
}

func readBool(get getter, path string, dst *bool) error {
	v, ok := get(path)
	if !ok {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		return &TypeError{Path: path, Expected: "bool", Actual: fmt.Sprintf("%T", v)}
	}
	*dst = b
	return nil
}

func readInt(get getter, path string, dst *int) error {
	v, ok := get(path)
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case int64:
		*dst = int(n)
		return nil
	case int:
		*dst = n
		return nil
	case float64:
		if n == math.Trunc(n) {
			*dst = int(n)
			return nil
		}
	}
	return &TypeError{Path: path, Expected: "int", Actual: fmt.Sprintf("%T", v)}
}

// readDuration accepts a duration string such as "250ms", a
// time.Duration, or an integer number of milliseconds.
func readDuration(get getter, path string, dst *time.Duration) error {
	v, ok := get(path)
	if !ok {
		return nil
	}
	switch d := v.(type) {
	case time.Duration:
		*dst = d
		return nil
	case int64:
		*dst = time.Duration(d) * time.Millisecond
		return nil
	case string:
		parsed, err := time.ParseDuration(d)
		if err == nil {
			*dst = parsed
			return nil
		}
	}
	return &TypeError{Path: path, Expected: "duration", Actual: fmt.Sprintf("%T", v)}
}
