package binding

import (
	"errors"
	"fmt"
)

// Sentinel errors for binding setup and source updates.
var (
	// ErrEmptyPath is returned when a path or one of its segments is empty.
	ErrEmptyPath = errors.New("empty binding path")

	// ErrPathSyntax is returned when a path cannot be normalized.
	ErrPathSyntax = errors.New("invalid binding path")

	// ErrNoGetter is returned by UpdateSource on a manager built without a getter.
	ErrNoGetter = errors.New("binding has no getter")

	// ErrNilSetter is returned when a manager is created without a setter.
	ErrNilSetter = errors.New("binding setter cannot be nil")

	// ErrNotAssignable is returned when a value cannot be stored on an object.
	ErrNotAssignable = errors.New("property is not assignable")

	// ErrInvalidMode is returned when parsing an unknown binding mode.
	ErrInvalidMode = errors.New("invalid binding mode")
)

// EmptyPathError reports a path that is empty, or has an empty segment
// once brackets are normalized.
type EmptyPathError struct {
	// Path is the path as given.
	Path string
}

// Error implements the error interface.
func (e *EmptyPathError) Error() string {
	if e.Path == "" {
		return "binding path is empty"
	}
	return fmt.Sprintf("binding path %q has an empty segment", e.Path)
}

// Is allows errors.Is to match EmptyPathError with ErrEmptyPath.
func (e *EmptyPathError) Is(target error) bool {
	return target == ErrEmptyPath
}

// PathSyntaxError reports a malformed bracket indexer.
type PathSyntaxError struct {
	Path   string
	Offset int
	Reason string
}

// Error implements the error interface.
func (e *PathSyntaxError) Error() string {
	return fmt.Sprintf("invalid binding path %q at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// Is allows errors.Is to match PathSyntaxError with ErrPathSyntax.
func (e *PathSyntaxError) Is(target error) bool {
	return target == ErrPathSyntax
}

// AssignError describes a failed property assignment.
type AssignError struct {
	Name string
	Type string
	Err  error
}

// Error implements the error interface.
func (e *AssignError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot assign %q on %s: %v", e.Name, e.Type, e.Err)
	}
	return fmt.Sprintf("cannot assign %q on %s", e.Name, e.Type)
}

// Unwrap returns the underlying error.
func (e *AssignError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match AssignError with ErrNotAssignable.
func (e *AssignError) Is(target error) bool {
	return target == ErrNotAssignable
}
