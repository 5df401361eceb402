package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		result := tt.level.String()
		if result != tt.expected {
			t.Errorf("LogLevel(%d).String() = '%s', expected '%s'", tt.level, result, tt.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"Warning", LogLevelWarn},
		{"error", LogLevelError},
		{"unknown", LogLevelInfo},
		{"", LogLevelInfo},
	}

	for _, tt := range tests {
		result := ParseLogLevel(tt.input)
		if result != tt.expected {
			t.Errorf("ParseLogLevel('%s') = %d, expected %d", tt.input, result, tt.expected)
		}
	}
}

func TestValidLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", "warn", "error"} {
		if !ValidLevel(s) {
			t.Errorf("ValidLevel(%q) = false, expected true", s)
		}
	}
	if ValidLevel("loud") {
		t.Error("ValidLevel(\"loud\") = true, expected false")
	}
}

func TestNew_DefaultOutput(t *testing.T) {
	logger := New(Config{Output: nil})
	if logger.sink.output == nil {
		t.Error("expected default output to be set")
	}
}

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LogLevelDebug,
		Output: &buf,
		Prefix: "test",
	})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	for _, want := range []string{"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]", "test:"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LogLevelWarn,
		Output: &buf,
	})

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	output := buf.String()
	if strings.Contains(output, "[DEBUG]") {
		t.Error("expected DEBUG to be filtered out")
	}
	if strings.Contains(output, "[INFO]") {
		t.Error("expected INFO to be filtered out")
	}
	if !strings.Contains(output, "[WARN]") {
		t.Error("expected WARN in output")
	}
}

func TestLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LogLevelInfo, Output: &buf})

	logger.Info("formatted %s %d", "test", 42)

	if !strings.Contains(buf.String(), "formatted test 42") {
		t.Errorf("expected formatted message, got: %s", buf.String())
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LogLevelInfo, Output: &buf})

	logger.WithFields(map[string]any{
		"b": 42,
		"a": "value1",
	}).Info("test")

	output := buf.String()
	if !strings.Contains(output, "{a=value1, b=42}") {
		t.Errorf("expected ordered fields in output, got: %s", output)
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LogLevelInfo, Output: &buf})

	logger.WithComponent("binding").Info("test")

	if !strings.Contains(buf.String(), "component=binding") {
		t.Errorf("expected component in output, got: %s", buf.String())
	}
}

func TestLogger_DerivedSharesSink(t *testing.T) {
	var buf bytes.Buffer
	root := New(Config{Level: LogLevelInfo, Output: &buf})
	child := root.WithComponent("expr")

	root.SetLevel(LogLevelError)
	child.Warn("should be filtered")
	if buf.Len() != 0 {
		t.Errorf("expected child to follow root level, got: %s", buf.String())
	}

	root.Disable()
	child.Error("disabled")
	if buf.Len() != 0 {
		t.Errorf("expected child to follow root disable, got: %s", buf.String())
	}

	root.Enable()
	child.Error("enabled")
	if !strings.Contains(buf.String(), "enabled") {
		t.Errorf("expected output after enable, got: %s", buf.String())
	}
}

func TestNullLogger(t *testing.T) {
	// Must not panic with no output configured.
	NullLogger.Error("nothing")
	NullLogger.WithComponent("x").Info("nothing")
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	custom := New(Config{Level: LogLevelDebug, Output: &buf})

	SetLogger(custom)
	defer SetLogger(nil)

	if GetLogger() != custom {
		t.Error("GetLogger() did not return the logger passed to SetLogger")
	}

	SetLogger(nil)
	if GetLogger() == nil {
		t.Error("GetLogger() returned nil after reset")
	}
}
