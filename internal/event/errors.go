package event

import "errors"

// Sentinel errors for event subscriptions.
var (
	// ErrDuplicateSubscription is returned when a handler is already subscribed to the event.
	ErrDuplicateSubscription = errors.New("handler is already subscribed")

	// ErrHandlerNotFound is returned when removing a handler that is not subscribed.
	ErrHandlerNotFound = errors.New("handler not found")

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")
)
