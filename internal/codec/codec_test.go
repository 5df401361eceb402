package codec

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dshills/tether/internal/observable"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"data.json", FormatJSON, false},
		{"/tmp/data.YAML", FormatYAML, false},
		{"data.yml", FormatYAML, false},
		{"conf.toml", FormatTOML, false},
		{"notes.txt", 0, true},
		{"Makefile", 0, true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.err {
			t.Errorf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.err)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("FormatFromPath(%q) error = %v, want ErrUnknownFormat", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("FormatFromPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
	if Format(9).String() != "unknown" {
		t.Errorf("Format(9).String() = %q", Format(9).String())
	}
}

func TestDecode(t *testing.T) {
	want := map[string]any{
		"name": "ada",
		"tags": []any{"math", "engines"},
		"born": map[string]any{"year": int64(1815)},
	}

	tests := []struct {
		format Format
		in     string
	}{
		{FormatYAML, "name: ada\ntags: [math, engines]\nborn:\n  year: 1815\n"},
		{FormatTOML, "name = \"ada\"\ntags = [\"math\", \"engines\"]\n[born]\nyear = 1815\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			got, err := Decode([]byte(tt.in), tt.format)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Decode() = %#v, want %#v", got, want)
			}
		})
	}

	got, err := Decode([]byte(`{"name":"ada","born":{"year":1815}}`), FormatJSON)
	if err != nil {
		t.Fatalf("Decode(json) error = %v", err)
	}
	if year := got.(map[string]any)["born"].(map[string]any)["year"]; year != 1815.0 {
		t.Errorf("json year = %#v, want float64 1815", year)
	}
}

func TestDecode_Normalizes(t *testing.T) {
	got, err := Decode([]byte("1: one\nwhen: 2024-05-01T10:00:00Z\n"), FormatYAML)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("Decode() = %T, want map[string]any", got)
	}
	if m["1"] != "one" {
		t.Errorf("non-string key not converted: %#v", m)
	}
	if _, ok := m["when"].(string); !ok {
		t.Errorf("timestamp = %T, want string", m["when"])
	}

	got, err = Decode([]byte("day = 2024-05-01\n"), FormatTOML)
	if err != nil {
		t.Fatalf("Decode(toml) error = %v", err)
	}
	if day := got.(map[string]any)["day"]; day != "2024-05-01" {
		t.Errorf("local date = %#v, want 2024-05-01", day)
	}
}

func TestDecode_Errors(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		_, err := Decode([]byte("{{ nope"), f)
		var derr *DecodeError
		if !errors.As(err, &derr) || derr.Format != f {
			t.Errorf("Decode(%v) error = %v, want *DecodeError", f, err)
		}
	}
	if _, err := Decode(nil, Format(7)); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Decode(unknown) error = %v", err)
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.yaml")
	if err := os.WriteFile(path, []byte("items:\n  - 1\n  - 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if !reflect.DeepEqual(doc, map[string]any{"items": []any{int64(1), int64(2)}}) {
		t.Errorf("DecodeFile() = %#v", doc)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	var derr *DecodeError
	if _, err := DecodeFile(bad); !errors.As(err, &derr) || derr.Path != bad {
		t.Errorf("DecodeFile(bad) error = %v, want *DecodeError with path", err)
	}
	if _, err := DecodeFile(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("DecodeFile(missing) error = %v, want not-exist", err)
	}
}

func TestScopeAndEncode(t *testing.T) {
	doc, err := Decode([]byte(`{"user":{"name":"ada"},"tags":["a"]}`), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	scope, err := Scope(doc)
	if err != nil {
		t.Fatalf("Scope() error = %v", err)
	}
	obj := scope.(*observable.Object)
	v, _ := obj.Get("tags")
	v.(*observable.Collection[any]).Push("b")

	out, err := Encode(obj, FormatJSON, 0)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != `{"tags":["a","b"],"user":{"name":"ada"}}` {
		t.Errorf("Encode(json) = %s", got)
	}

	out, err = Encode(obj, FormatYAML, 2)
	if err != nil {
		t.Fatalf("Encode(yaml) error = %v", err)
	}
	back, err := Decode(out, FormatYAML)
	if err != nil {
		t.Fatalf("Decode(yaml) error = %v", err)
	}
	if !reflect.DeepEqual(back, map[string]any{"tags": []any{"a", "b"}, "user": map[string]any{"name": "ada"}}) {
		t.Errorf("yaml round trip = %#v", back)
	}

	out, err = Encode(map[string]any{"server": map[string]any{"port": 8080}}, FormatTOML, 2)
	if err != nil {
		t.Fatalf("Encode(toml) error = %v", err)
	}
	if !strings.Contains(string(out), "port = 8080") {
		t.Errorf("Encode(toml) = %s", out)
	}
	if _, err := Encode([]any{1}, FormatTOML, 0); err == nil {
		t.Error("Encode(toml) of an array: expected error")
	}
}

func TestEncode_DoesNotMutate(t *testing.T) {
	src := map[string]any{"n": 1}
	if _, err := Encode(src, FormatJSON, 0); err != nil {
		t.Fatal(err)
	}
	if _, ok := src["n"].(int); !ok {
		t.Errorf("Encode() mutated its input: %T", src["n"])
	}
}
