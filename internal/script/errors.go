package script

import "errors"

// Errors for script engine operations.
var (
	// ErrEngineClosed is returned when operating on a closed engine.
	ErrEngineClosed = errors.New("script engine is closed")

	// ErrNotFunction is returned when calling a global that is not a function.
	ErrNotFunction = errors.New("not a function")

	// ErrTimeout is returned when a call exceeds the engine's timeout.
	ErrTimeout = errors.New("script execution timeout")
)
