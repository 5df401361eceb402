package observable

import (
	"errors"
	"fmt"
)

// Sentinel errors for the observable model.
var (
	// ErrSourceType is returned when an Object is built from an unsupported source.
	ErrSourceType = errors.New("unsupported source type")

	// ErrAlreadyObservable is returned when wrapping a value that is already a Notifier.
	ErrAlreadyObservable = errors.New("value is already observable")

	// ErrNotAnObject is returned when wrapping nil or a scalar value.
	ErrNotAnObject = errors.New("value is not an object")

	// ErrUnsupportedType is returned when wrapping a value that is never converted, such as time.Time.
	ErrUnsupportedType = errors.New("unsupported value type")

	// ErrRange is returned when an index or count falls outside a collection.
	ErrRange = errors.New("index out of range")

	// ErrReentrantMutation is raised when a collection is mutated during its own structural change.
	ErrReentrantMutation = errors.New("collection mutated during structural change")

	// ErrTypeMismatch is returned when a value cannot be stored in a typed collection.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrReadOnlyProperty is returned when assigning a computed property such as length.
	ErrReadOnlyProperty = errors.New("property is read-only")

	// ErrUnknownProperty is returned when a property name does not exist.
	ErrUnknownProperty = errors.New("unknown property")
)

// SourceTypeError describes why a value could not become an Object.
type SourceTypeError struct {
	// Type is the Go type of the rejected source.
	Type string
	// Reason explains the rejection.
	Reason string
}

// Error implements the error interface.
func (e *SourceTypeError) Error() string {
	return fmt.Sprintf("cannot create observable object from %s: %s", e.Type, e.Reason)
}

// Is allows errors.Is to match SourceTypeError with ErrSourceType.
func (e *SourceTypeError) Is(target error) bool {
	return target == ErrSourceType
}

// RangeError reports an out-of-bounds index or count.
type RangeError struct {
	// Op is the collection operation that failed.
	Op string
	// Index is the offending index or count.
	Index int
	// Len is the collection length at the time of the call.
	Len int
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0, %d]", e.Op, e.Index, e.Len)
}

// Is allows errors.Is to match RangeError with ErrRange.
func (e *RangeError) Is(target error) bool {
	return target == ErrRange
}

// ReentrantMutationError is the panic value raised when a collection is
// mutated while one of its structural operations is still running.
type ReentrantMutationError struct {
	// Op is the mutator that was called.
	Op string
	// InProgress is the mutator that was already running.
	InProgress string
}

// Error implements the error interface.
func (e *ReentrantMutationError) Error() string {
	return fmt.Sprintf("%s called while %s is in progress", e.Op, e.InProgress)
}

// Is allows errors.Is to match ReentrantMutationError with ErrReentrantMutation.
func (e *ReentrantMutationError) Is(target error) bool {
	return target == ErrReentrantMutation
}
