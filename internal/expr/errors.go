package expr

import (
	"errors"
	"fmt"
)

// Sentinel errors for compiling and evaluating expressions.
var (
	// ErrSyntax is returned when formula text cannot be parsed.
	ErrSyntax = errors.New("syntax error")

	// ErrReference is returned when an identifier resolves nowhere.
	ErrReference = errors.New("undefined identifier")

	// ErrType is returned for operations on values of the wrong kind,
	// such as reading a property of null or calling a non-function.
	ErrType = errors.New("type error")

	// ErrPanic is returned when evaluation panics.
	ErrPanic = errors.New("evaluation panicked")
)

// SyntaxError reports where parsing failed.
type SyntaxError struct {
	// Text is the formula being parsed.
	Text string
	// Pos is the byte offset of the offending token.
	Pos int
	// Msg describes the problem.
	Msg string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d in %q: %s", e.Pos, e.Text, e.Msg)
}

// Is allows errors.Is to match SyntaxError with ErrSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// ReferenceError reports an identifier that is neither a parameter, a scope
// property nor a global.
type ReferenceError struct {
	Name string
}

// Error implements the error interface.
func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s is not defined", e.Name)
}

// Is allows errors.Is to match ReferenceError with ErrReference.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrReference
}

func typeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrType, fmt.Sprintf(format, args...))
}
