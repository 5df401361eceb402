package event

// Handler wraps a callback so it can be identified when subscribing and
// unsubscribing.
type Handler[T any] struct {
	fn    func(T)
	owner any
}

// NewHandler creates a handler for fn.
func NewHandler[T any](fn func(T)) *Handler[T] {
	return &Handler[T]{fn: fn}
}

// NewHandlerWithOwner creates a handler for fn bound to owner.
// The owner is informational; it lets diagnostics and tests find out who
// registered a handler.
func NewHandlerWithOwner[T any](owner any, fn func(T)) *Handler[T] {
	return &Handler[T]{fn: fn, owner: owner}
}

// Owner returns the context the handler was bound to, or nil.
func (h *Handler[T]) Owner() any {
	return h.owner
}

// Call invokes the handler directly.
func (h *Handler[T]) Call(args T) {
	if h.fn != nil {
		h.fn(args)
	}
}

// subscription is one entry in an event's handler list.
type subscription[T any] struct {
	handler *Handler[T]
	active  bool
}

// Event is an ordered list of handlers invoked with a value of type T.
// The zero value is ready to use.
type Event[T any] struct {
	subs  []*subscription[T]
	index map[*Handler[T]]*subscription[T]
}

// New creates an empty event.
func New[T any]() *Event[T] {
	return &Event[T]{}
}

// AddHandler subscribes h to the event.
// Returns ErrDuplicateSubscription if h is already subscribed.
func (e *Event[T]) AddHandler(h *Handler[T]) error {
	if h == nil {
		return ErrNilHandler
	}
	if e.index == nil {
		e.index = make(map[*Handler[T]]*subscription[T])
	}
	if _, ok := e.index[h]; ok {
		return ErrDuplicateSubscription
	}

	sub := &subscription[T]{handler: h, active: true}
	e.index[h] = sub
	e.subs = append(e.subs, sub)
	return nil
}

// Subscribe wraps fn in a new handler, subscribes it and returns the handler
// so it can be removed later.
func (e *Event[T]) Subscribe(fn func(T)) *Handler[T] {
	h := NewHandler(fn)
	// A freshly created handler cannot be a duplicate.
	_ = e.AddHandler(h)
	return h
}

// RemoveHandler unsubscribes h and returns it.
// Returns ErrHandlerNotFound if h is not subscribed.
func (e *Event[T]) RemoveHandler(h *Handler[T]) (*Handler[T], error) {
	sub, ok := e.index[h]
	if !ok {
		return nil, ErrHandlerNotFound
	}
	sub.active = false
	delete(e.index, h)

	// Build a new slice: an Invoke in progress keeps iterating its own copy.
	subs := make([]*subscription[T], 0, len(e.subs)-1)
	for _, s := range e.subs {
		if s != sub {
			subs = append(subs, s)
		}
	}
	e.subs = subs
	return h, nil
}

// RemoveAllHandlers unsubscribes every handler. It always succeeds.
func (e *Event[T]) RemoveAllHandlers() {
	for _, s := range e.subs {
		s.active = false
	}
	e.subs = nil
	e.index = nil
}

// HasHandler reports whether h is subscribed.
func (e *Event[T]) HasHandler(h *Handler[T]) bool {
	_, ok := e.index[h]
	return ok
}

// Len returns the number of subscribed handlers.
func (e *Event[T]) Len() int {
	return len(e.subs)
}

// Handlers returns the subscribed handlers in subscription order.
func (e *Event[T]) Handlers() []*Handler[T] {
	out := make([]*Handler[T], len(e.subs))
	for i, s := range e.subs {
		out[i] = s.handler
	}
	return out
}

// Invoke calls every subscribed handler with args, in subscription order.
func (e *Event[T]) Invoke(args T) {
	subs := e.subs
	for _, s := range subs {
		if !s.active {
			continue
		}
		s.handler.Call(args)
	}
}
