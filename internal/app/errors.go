package app

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrSessionClosed indicates an operation on a closed session.
	ErrSessionClosed = errors.New("session closed")

	// ErrInvalidBinding indicates a malformed bindings entry.
	ErrInvalidBinding = errors.New("invalid binding")

	// ErrUnknownBinding indicates a binding name that is not defined.
	ErrUnknownBinding = errors.New("unknown binding")

	// ErrReadOnlyBinding indicates a write to a binding that is not two-way.
	ErrReadOnlyBinding = errors.New("binding is not two-way")
)

// SpecError reports a bindings entry that could not be set up.
type SpecError struct {
	Index int    // Position in the bindings list
	Name  string // Binding name, if known
	Err   error  // Underlying error
}

func (e *SpecError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("binding #%d: %v", e.Index+1, e.Err)
	}
	return fmt.Sprintf("binding %q: %v", e.Name, e.Err)
}

func (e *SpecError) Unwrap() error {
	return e.Err
}

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // Operation name (e.g., "reload", "watch")
	Target string // Target of the operation (e.g., file path)
	Err    error  // Underlying error
}

func (e *OperationError) Error() string {
	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
