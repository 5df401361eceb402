package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TETHER_LOG_LEVEL", "error")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEvalCmd(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "cart.json", `{"items": [1, 2, 3], "user": {"name": "ada"}}`)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"eval", "--data", data, "{items}.length"}, "3"},
		{[]string{"eval", "--data", data, "{user.name}.toUpperCase()"}, `"ADA"`},
		{[]string{"eval", "Math.max(1, 2) * 3"}, "6"},
		{[]string{"eval", "--format", "yaml", "'x' + 1"}, "x1"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("execute() error = %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvalCmd_Errors(t *testing.T) {
	if _, err := execute(t, "eval", "1 +"); err == nil {
		t.Error("eval of malformed expression succeeded")
	}
	if _, err := execute(t, "eval", "--data", "missing.json", "1"); err == nil {
		t.Error("eval with missing data succeeded")
	}
	if _, err := execute(t, "eval", "--log-level", "loud", "1"); err == nil {
		t.Error("eval with invalid log level succeeded")
	}
}

func TestEvalCmd_Functions(t *testing.T) {
	dir := t.TempDir()
	lua := writeFile(t, dir, "funcs.lua", `function greet(name) return "hi " .. name end`)

	out, err := execute(t, "eval", "--functions", lua, "greet('ada')")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if got := strings.TrimSpace(out); got != `"hi ada"` {
		t.Errorf("output = %q", got)
	}
}

func TestSnapshotCmd(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.yaml", "user:\n  name: ada\n  tags: [a, b]\n")
	bindings := writeFile(t, dir, "bindings.toml", `
[[bindings]]
name = "who"
path = "user.name"

[[bindings]]
name = "tagCount"
expression = "{user.tags}.length"
`)

	out, err := execute(t, "snapshot", "--data", data, "--select", "user.tags.1")
	if err != nil {
		t.Fatalf("snapshot --select error = %v", err)
	}
	if got := strings.TrimSpace(out); got != `"b"` {
		t.Errorf("snapshot --select = %q", got)
	}

	out, err = execute(t, "snapshot", "--data", data, "--bindings", bindings, "--format", "toml")
	if err != nil {
		t.Fatalf("snapshot --bindings error = %v", err)
	}
	if !strings.Contains(out, "who = ") || !strings.Contains(out, "ada") || !strings.Contains(out, "tagCount = 2") {
		t.Errorf("snapshot --bindings output = %q", out)
	}
}

func TestSetCmd(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.toml", "[server]\nhost = 'localhost'\nport = 8080\n")

	if _, err := execute(t, "set", data, "server.port", "9090"); err != nil {
		t.Fatalf("set error = %v", err)
	}

	out, err := execute(t, "snapshot", "--data", data, "--select", "server")
	if err != nil {
		t.Fatalf("snapshot error = %v", err)
	}
	if !strings.Contains(out, `"port": 9090`) || !strings.Contains(out, `"host": "localhost"`) {
		t.Errorf("after set = %q", out)
	}

	out, err = execute(t, "set", "--dry-run", data, "server.host", "example.com")
	if err != nil {
		t.Fatalf("set --dry-run error = %v", err)
	}
	if !strings.Contains(out, "example.com") {
		t.Errorf("dry run output = %q", out)
	}
	content, _ := os.ReadFile(data)
	if strings.Contains(string(content), "example.com") {
		t.Error("dry run modified the file")
	}
}

func TestSetCmd_BracketPath(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"list.json": `{"items": [{"name": "a"}, {"name": "b"}]}`,
		"list.yaml": "items:\n  - name: a\n  - name: b\n",
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			data := writeFile(t, dir, name, content)
			if _, err := execute(t, "set", data, "items[0].name", "z"); err != nil {
				t.Fatalf("set error = %v", err)
			}

			out, err := execute(t, "snapshot", "--data", data, "--select", "items[0].name")
			if err != nil {
				t.Fatalf("snapshot error = %v", err)
			}
			if got := strings.TrimSpace(out); got != `"z"` {
				t.Errorf("items[0].name = %s, want \"z\"", got)
			}

			out, err = execute(t, "snapshot", "--data", data)
			if err != nil {
				t.Fatalf("snapshot error = %v", err)
			}
			if strings.Contains(out, "items[0]") {
				t.Errorf("bracket path written as a literal key: %s", out)
			}
		})
	}

	data := writeFile(t, dir, "bad.json", `{"a": 1}`)
	if _, err := execute(t, "set", data, "a[", "2"); err == nil {
		t.Error("set with malformed path succeeded")
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "tether dev") {
		t.Errorf("version output = %q", out)
	}
}
