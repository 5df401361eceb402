package loader

import (
	"os"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// DefaultEnvPrefix is the prefix of environment variables read by tether.
const DefaultEnvPrefix = "TETHER_"

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // e.g. "TETHER_"
	mapping map[string]string // env var -> config path
	environ func() []string
}

// NewEnvLoader creates a loader for variables starting with prefix.
// The prefix should include the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithMapping(prefix, defaultEnvMapping())
}

// NewEnvLoaderWithMapping creates a loader with explicit variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
		environ: os.Environ,
	}
}

func defaultEnvMapping() map[string]string {
	return map[string]string{
		"TETHER_LOG_LEVEL":      "log.level",
		"TETHER_LOG_OUTPUT":     "log.output",
		"TETHER_WATCH_DEBOUNCE": "watch.debounce",
		"TETHER_GLOBALS":        "expression.globals",
		"TETHER_FUNCTIONS":      "expression.functions",
		"TETHER_OUTPUT_FORMAT":  "output.format",
		"TETHER_OUTPUT_COLOR":   "output.color",
		"TETHER_OUTPUT_INDENT":  "output.indent",
	}
}

// Load reads the environment. Mapped variables land on their configured
// path; other prefixed variables are converted with envToPath.
// Empty values are kept, not treated as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		setByPath(config, path, parseValue(value))
	}
	return config, nil
}

// AddMapping maps an environment variable onto a config path.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// RemoveMapping removes an environment variable mapping.
func (l *EnvLoader) RemoveMapping(envVar string) {
	delete(l.mapping, envVar)
}

// envToPath converts TETHER_OUTPUT_LINE_WIDTH to output.lineWidth.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.TrimPrefix(env, l.prefix)
	parts := strings.Split(strings.ToLower(name), "_")
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}

	var b strings.Builder
	b.WriteString(parts[1])
	for _, p := range parts[2:] {
		if p != "" {
			b.WriteString(strings.ToUpper(p[:1]) + p[1:])
		}
	}
	return parts[0] + "." + b.String()
}

// parseValue converts an environment string to the most specific type.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(s, &v); err == nil {
			return v
		}
	}
	return s
}

// setByPath sets a value in a nested map, creating intermediate maps.
func setByPath(data map[string]any, path string, value any) {
	parts := splitPath(path)
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

func splitPath(path string) []string {
	return strings.Split(path, ".")
}

// ExpandEnv expands $VAR and ${VAR} references in s.
func ExpandEnv(s string) string {
	return os.ExpandEnv(s)
}
