package binding

import (
	"errors"
	"testing"

	"github.com/dshills/tether/internal/logging"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", OneWay, false},
		{"oneway", OneWay, false},
		{"TwoWay", TwoWay, false},
		{"two-way", TwoWay, false},
		{" onetime ", OneTime, false},
		{"sideways", OneWay, true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidMode) {
			t.Errorf("ParseMode(%q) error = %v, want ErrInvalidMode", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBind_OneWay(t *testing.T) {
	scope := object(t, map[string]any{"user": map[string]any{"name": "ada"}})
	view := object(t, map[string]any{"text": ""})

	b, err := Bind(view, "text", scope, "user.name", OneWay, WithLogger(logging.NullLogger))
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	defer b.Close()

	if v, _ := view.Get("text"); v != "ada" {
		t.Errorf("text = %v, want ada", v)
	}

	child(t, scope, "user").Set("name", "grace")
	if v, _ := view.Get("text"); v != "grace" {
		t.Errorf("text = %v, want grace", v)
	}

	view.Set("text", "edited")
	if v, _ := child(t, scope, "user").Get("name"); v != "grace" {
		t.Errorf("one-way binding wrote back: name = %v", v)
	}
}

func TestBind_TwoWay(t *testing.T) {
	scope := object(t, map[string]any{"user": map[string]any{"name": "ada"}})
	view := object(t, map[string]any{"text": ""})

	var sets int
	view.PropertyChanged().Subscribe(func(string) { sets++ })

	b, err := Bind(view, "text", scope, "user.name", TwoWay, WithLogger(logging.NullLogger))
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	view.Set("text", "edited")
	if v, _ := child(t, scope, "user").Get("name"); v != "edited" {
		t.Errorf("name = %v, want edited", v)
	}
	// One set from the initial update, one from the edit; no echo.
	if sets != 2 {
		t.Errorf("target notifications = %d, want 2", sets)
	}

	b.Close()
	b.Close()
	if n := view.PropertyChanged().Len(); n != 1 {
		t.Errorf("target handlers after Close = %d, want 1", n)
	}
	view.Set("text", "after close")
	if v, _ := child(t, scope, "user").Get("name"); v != "edited" {
		t.Errorf("closed binding wrote back: name = %v", v)
	}
}

func TestBind_OneTime(t *testing.T) {
	scope := object(t, map[string]any{"title": "first"})
	view := object(t, map[string]any{"text": ""})

	b, err := Bind(view, "text", scope, "title", OneTime, WithLogger(logging.NullLogger))
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	scope.Set("title", "second")
	if v, _ := view.Get("text"); v != "first" {
		t.Errorf("text = %v, want first", v)
	}
	if scope.PropertyChanged().Len() != 0 {
		t.Errorf("one-time binding kept %d handlers", scope.PropertyChanged().Len())
	}

	b.ResetWith(object(t, map[string]any{"title": "third"}))
	if v, _ := view.Get("text"); v != "third" {
		t.Errorf("text after reset = %v, want third", v)
	}
}

func TestBind_Errors(t *testing.T) {
	view := object(t, map[string]any{})
	if _, err := Bind(view, "text", nil, "", OneWay); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("Bind() error = %v, want ErrEmptyPath", err)
	}
	if _, err := Bind(nil, "text", nil, "a", OneWay); err == nil {
		t.Error("Bind(nil target) succeeded")
	}
}
