package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat indicates a format name or file extension tether
	// does not read.
	ErrUnknownFormat = errors.New("unknown document format")

	// ErrNotFound indicates a selection path matched nothing.
	ErrNotFound = errors.New("path not found")

	// ErrInvalidJSON indicates Select or Patch was given malformed JSON.
	ErrInvalidJSON = errors.New("invalid JSON")
)

// DecodeError reports a document that failed to parse.
type DecodeError struct {
	Path   string
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decoding %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("decoding %s %s: %v", e.Format, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
