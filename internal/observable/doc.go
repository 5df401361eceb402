// Package observable provides the notifying data model that bindings observe.
//
// Two concrete types make up the model:
//
//   - Object wraps a plain object (a string-keyed map or a struct) as a set of
//     named properties. Every Set raises exactly one PropertyChanged event
//     carrying the property name.
//   - Collection[T] is an ordered, mutable sequence. Every structural
//     mutation raises one CollectionChanged event per element changed, then
//     the net per-index PropertyChanged events and a "length" change when the
//     length moved.
//
// Both satisfy Notifier, the only capability the binding engine depends on.
// Any type exposing PropertyChanged() can take part in a binding path.
//
// # Conversion
//
// Values assigned into an Object or Collection are converted into further
// observables when they are "convertible": non-nil, not a time.Time, not
// already a Notifier, and a map with string keys, a slice or array (other
// than []byte), or a struct. Conversion can be turned off per instance with
// WithoutNestedConversion.
//
//	scope, err := observable.From(map[string]any{
//	    "order": map[string]any{"qty": 2, "price": 9.5},
//	    "lines": []any{"a", "b"},
//	})
//
// # Event Ordering
//
// Notification is synchronous. For a single mutator call, all
// CollectionChanged events fire before any PropertyChanged event, and the
// per-index changes fire in ascending index order before "length".
//
// # Reentrancy
//
// A collection rejects mutation from inside its own CollectionChanged
// handlers: the call panics with a *ReentrantMutationError. PropertyChanged
// handlers run after the structural phase has finished and may mutate the
// collection again.
package observable
