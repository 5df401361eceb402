// Package binding resolves dotted property paths against an observable
// object graph and keeps targets updated as values along the path change.
//
// Paths are dot separated; bracket indexers are rewritten to dots, so
// "items[0].name" and "items.0.name" are the same path. A Manager walks the
// path, subscribes to every observable.Notifier it meets and, when an
// intermediate object is replaced, drops the subscriptions past that point
// and resolves the remainder against the new object. A path that cannot be
// resolved yields the configured default value rather than an error.
//
// Managers hold subscriptions on objects they do not own and must be
// released with Unbind.
package binding
