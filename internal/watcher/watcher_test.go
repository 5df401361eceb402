package watcher

import (
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestOp_String(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
		{OpCreate | OpWrite, "CREATE|WRITE"},
		{0, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestOp_Has(t *testing.T) {
	op := OpCreate | OpWrite
	if !op.Has(OpCreate) || !op.Has(OpWrite) {
		t.Error("Has() = false for a contained op")
	}
	if op.Has(OpRemove) {
		t.Error("Has(OpRemove) = true")
	}
	if op.Has(0) {
		t.Error("Has(0) = true")
	}
}

func TestConvertOp(t *testing.T) {
	tests := []struct {
		in   fsnotify.Op
		want Op
	}{
		{fsnotify.Create, OpCreate},
		{fsnotify.Write, OpWrite},
		{fsnotify.Remove, OpRemove},
		{fsnotify.Rename, OpRename},
		{fsnotify.Chmod, OpChmod},
		{fsnotify.Create | fsnotify.Write, OpCreate | OpWrite},
	}
	for _, tt := range tests {
		if got := convertOp(tt.in); got != tt.want {
			t.Errorf("convertOp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	w, err := New(WithDebounce(10 * time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()
	if _, ok := w.(*DebouncedWatcher); !ok {
		t.Errorf("New() = %T, want *DebouncedWatcher", w)
	}

	raw, err := New(WithDebounce(0), WithBufferSize(4))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer raw.Close()
	if _, ok := raw.(*FileWatcher); !ok {
		t.Errorf("New(WithDebounce(0)) = %T, want *FileWatcher", raw)
	}
}
