package loader

import (
	"reflect"
	"testing"
	"time"
)

func fakeEnv(vars ...string) func() []string {
	return func() []string { return vars }
}

func TestEnvLoader_Load(t *testing.T) {
	t.Setenv("TETHER_LOG_LEVEL", "debug")
	t.Setenv("TETHER_WATCH_DEBOUNCE", "250ms")
	t.Setenv("TETHER_OUTPUT_INDENT", "4")

	config, err := NewEnvLoader(DefaultEnvPrefix).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if v, ok := Lookup(config, "log.level"); !ok || v != "debug" {
		t.Errorf("log.level = %v, want debug", v)
	}
	if v, ok := Lookup(config, "watch.debounce"); !ok || v != 250*time.Millisecond {
		t.Errorf("watch.debounce = %v (%T), want 250ms", v, v)
	}
	if v, ok := Lookup(config, "output.indent"); !ok || v != int64(4) {
		t.Errorf("output.indent = %v (%T), want 4", v, v)
	}
}

func TestEnvLoader_LoadUnmapped(t *testing.T) {
	l := NewEnvLoader(DefaultEnvPrefix)
	l.environ = fakeEnv(
		"TETHER_OUTPUT_LINE_WIDTH=80",
		"TETHER_=ignored",
		"OTHER_LOG_LEVEL=error",
		"malformed",
	)

	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := map[string]any{"output": map[string]any{"lineWidth": int64(80)}}
	if !reflect.DeepEqual(config, want) {
		t.Errorf("Load() = %v, want %v", config, want)
	}
}

func TestEnvLoader_envToPath(t *testing.T) {
	l := NewEnvLoader(DefaultEnvPrefix)
	tests := []struct {
		env  string
		want string
	}{
		{"TETHER_LOG_LEVEL", "log.level"},
		{"TETHER_OUTPUT_LINE_WIDTH", "output.lineWidth"},
		{"TETHER_DEBUG", "debug"},
		{"TETHER_", ""},
	}
	for _, tt := range tests {
		if got := l.envToPath(tt.env); got != tt.want {
			t.Errorf("envToPath(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"true", true},
		{"Yes", true},
		{"off", false},
		{"42", int64(42)},
		{"-3", int64(-3)},
		{"1.5", 1.5},
		{"2s", 2 * time.Second},
		{"[1, 2]", []any{1.0, 2.0}},
		{`{"a": "b"}`, map[string]any{"a": "b"}},
		{"[broken", "[broken"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseValue(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestEnvLoader_AddRemoveMapping(t *testing.T) {
	l := NewEnvLoaderWithMapping(DefaultEnvPrefix, nil)
	l.environ = fakeEnv("TETHER_COLOR=always")

	l.AddMapping("TETHER_COLOR", "output.color")
	config, _ := l.Load()
	if v, _ := Lookup(config, "output.color"); v != "always" {
		t.Errorf("mapped output.color = %v, want always", v)
	}

	l.RemoveMapping("TETHER_COLOR")
	config, _ = l.Load()
	if v, _ := Lookup(config, "color"); v != "always" {
		t.Errorf("unmapped color = %v, want always", v)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("TETHER_TEST_HOME", "/home/ada")
	if got := ExpandEnv("${TETHER_TEST_HOME}/fn.lua"); got != "/home/ada/fn.lua" {
		t.Errorf("ExpandEnv() = %q", got)
	}
}
