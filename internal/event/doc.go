// Package event provides the typed publish/subscribe primitive that every
// observable in tether is built on.
//
// An Event[T] owns an ordered list of handlers. Invoking the event calls each
// handler synchronously, on the calling goroutine, in subscription order:
//
//	changed := event.New[string]()
//	h := event.NewHandler(func(name string) {
//	    fmt.Println("changed:", name)
//	})
//	if err := changed.AddHandler(h); err != nil {
//	    return err
//	}
//	changed.Invoke("title")
//
// # Handler Identity
//
// Go functions are not comparable, so a subscription is identified by the
// *Handler wrapping the function rather than by the function itself. The
// same *Handler may be subscribed to an event at most once; subscribing it
// again returns ErrDuplicateSubscription, and removing a handler that was
// never added returns ErrHandlerNotFound. Both indicate a bug in the caller.
//
// # Reentrancy
//
// Handlers may add or remove handlers (including themselves) while the event
// is being invoked. A handler removed mid-invocation is not called for the
// rest of that invocation; a handler added mid-invocation is first called on
// the next one.
//
// # Panics
//
// A panicking handler is not recovered: the panic propagates to the caller of
// Invoke and the remaining handlers are not called. Callers that need
// isolation recover around their own critical sections.
//
// # Thread Safety
//
// Event is not safe for concurrent use. The binding core is single-threaded
// and all notification happens on the goroutine that caused it.
package event
