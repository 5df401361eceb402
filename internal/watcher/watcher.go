// Package watcher reports changes to individual files.
//
// Each watched file's parent directory is registered with the OS, and
// events are filtered down to the watched names. This catches editors and
// tools that save by writing a temporary file and renaming it over the
// original, which a watch on the file itself would lose.
package watcher

import (
	"errors"
	"strings"
	"time"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
	ErrNotWatching     = errors.New("path is not being watched")
	ErrPathNotExist    = errors.New("path does not exist")
)

// Op represents the type of file system operation.
type Op uint32

const (
	// OpCreate indicates a file was created or renamed into place.
	OpCreate Op = 1 << iota
	// OpWrite indicates a file was written to.
	OpWrite
	// OpRemove indicates a file was removed.
	OpRemove
	// OpRename indicates a file was renamed away.
	OpRename
	// OpChmod indicates file permissions were changed.
	OpChmod
)

// String returns a human-readable representation of the operation.
// Combined operations are joined with "|".
func (op Op) String() string {
	names := []struct {
		op   Op
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
	}
	var parts []string
	for _, n := range names {
		if op.Has(n.op) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(parts, "|")
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return o != 0 && op&o == o
}

// Event represents a change to a watched file.
type Event struct {
	// Path is the absolute path of the watched file.
	Path string

	// Op is the operation that occurred. Debounced events carry every
	// operation seen during the quiet period.
	Op Op

	// Timestamp is when the last contributing change occurred.
	Timestamp time.Time
}

// Watcher monitors files for changes.
type Watcher interface {
	// Watch starts watching a file.
	Watch(path string) error

	// Unwatch stops watching a file.
	Unwatch(path string) error

	// Events returns the channel of change events.
	// The channel is closed when the watcher is closed.
	Events() <-chan Event

	// Errors returns the channel of watcher errors.
	// The channel is closed when the watcher is closed.
	Errors() <-chan error

	// Close stops the watcher and releases resources.
	Close() error

	// IsWatching returns true if the path is being watched.
	IsWatching(path string) bool

	// WatchedPaths returns all watched files.
	WatchedPaths() []string
}

// Config holds watcher configuration options.
type Config struct {
	// Debounce is the quiet period before an event is delivered.
	// Changes within the window are coalesced. Zero disables debouncing.
	Debounce time.Duration

	// BufferSize is the size of the event and error channels.
	BufferSize int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Debounce:   100 * time.Millisecond,
		BufferSize: 100,
	}
}

// Option configures a watcher.
type Option func(*Config)

// WithDebounce sets the debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(c *Config) {
		c.Debounce = d
	}
}

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) Option {
	return func(c *Config) {
		c.BufferSize = size
	}
}

// New creates a file watcher, debounced unless the delay is zero.
func New(opts ...Option) (Watcher, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	fw, err := NewFileWatcher(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Debounce <= 0 {
		return fw, nil
	}
	return NewDebouncedWatcher(fw, cfg.Debounce, cfg.BufferSize), nil
}
