package binding

import (
	"errors"
	"reflect"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr error
	}{
		{"a.b.c", "a.b.c", nil},
		{"items[0]", "items.0", nil},
		{"items[0].name", "items.0.name", nil},
		{"a[b][c]", "a.b.c", nil},
		{"[0].name", "0.name", nil},
		{"a[$key_1]", "a.$key_1", nil},
		{"a[]", "a.", nil},
		{"a[b.c]", "", ErrPathSyntax},
		{"a[b", "", ErrPathSyntax},
		{"a]b", "", ErrPathSyntax},
		{"a[-1]", "", ErrPathSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := NormalizePath(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NormalizePath(%q) error = %v, want %v", tt.path, err, tt.wantErr)
				}
				var se *PathSyntaxError
				if !errors.As(err, &se) {
					t.Errorf("NormalizePath(%q) error is %T, want *PathSyntaxError", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePath(%q) error = %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		path    string
		want    []string
		wantErr error
	}{
		{"a", []string{"a"}, nil},
		{"a.b[2].c", []string{"a", "b", "2", "c"}, nil},
		{"", nil, ErrEmptyPath},
		{"a..b", nil, ErrEmptyPath},
		{"a.", nil, ErrEmptyPath},
		{".a", nil, ErrEmptyPath},
		{"a[]", nil, ErrEmptyPath},
		{"a[!]", nil, ErrPathSyntax},
	}

	for _, tt := range tests {
		got, err := ParsePath(tt.path)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParsePath(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParsePath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestEmptyPathError(t *testing.T) {
	_, err := ParsePath("a..b")
	var ee *EmptyPathError
	if !errors.As(err, &ee) {
		t.Fatalf("error is %T, want *EmptyPathError", err)
	}
	if ee.Path != "a..b" {
		t.Errorf("Path = %q, want a..b", ee.Path)
	}
}
