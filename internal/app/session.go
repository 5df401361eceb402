// Package app assembles the binding core into a session: a data document,
// a set of named bindings over it, and an optional file watch that
// reloads the document when it changes on disk.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/tether/internal/binding"
	"github.com/dshills/tether/internal/codec"
	"github.com/dshills/tether/internal/event"
	"github.com/dshills/tether/internal/expr"
	"github.com/dshills/tether/internal/logging"
	"github.com/dshills/tether/internal/observable"
	"github.com/dshills/tether/internal/watcher"
)

// ChangeFunc receives a binding name and its new plain value.
type ChangeFunc func(name string, value any)

// Option configures a Session.
type Option func(*Session)

// WithFunctions makes funcs callable from binding expressions.
func WithFunctions(funcs map[string]expr.Func) Option {
	return func(s *Session) {
		s.funcs = funcs
	}
}

// WithGlobals enables or disables the built-in expression globals
// (Math, String, Number and friends).
func WithGlobals(enabled bool) Option {
	return func(s *Session) {
		s.globals = enabled
	}
}

// WithLogger sets the session logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDebounce sets the quiet period Run waits for before reloading.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		s.debounce = d
	}
}

// WithOnChange registers fn to run after a bound value changes. It runs
// outside the session lock and may call back into the session.
func WithOnChange(fn ChangeFunc) Option {
	return func(s *Session) {
		s.onChange = fn
	}
}

// entry is one named binding.
type entry struct {
	spec    BindingSpec
	binding *binding.Binding
	expr    *expr.Expression
}

type change struct {
	name  string
	value any
}

// Session holds a scope built from a data document and keeps one value
// per binding spec in sync with it. A Session is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	scope   observable.Notifier
	values  *observable.Object
	entries []*entry
	byName  map[string]*entry
	handler *event.Handler[string]
	pending []change

	funcs    map[string]expr.Func
	globals  bool
	debounce time.Duration
	onChange ChangeFunc
	logger   *logging.Logger
	closed   bool
}

// NewSession builds the scope for doc and binds every spec against it.
// A nil doc starts with an empty scope.
func NewSession(doc any, specs []BindingSpec, opts ...Option) (*Session, error) {
	s := &Session{
		globals:  true,
		debounce: watcher.DefaultConfig().Debounce,
		byName:   make(map[string]*entry, len(specs)),
		logger:   logging.GetLogger().WithComponent("session"),
	}
	for _, opt := range opts {
		opt(s)
	}

	scope, err := newScope(doc)
	if err != nil {
		return nil, err
	}
	s.scope = scope

	initial := make(map[string]any, len(specs))
	for _, spec := range specs {
		initial[spec.Name] = nil
	}
	s.values = observable.MustObject(initial, observable.WithoutNestedConversion())
	s.handler = s.values.PropertyChanged().Subscribe(s.valueChanged)

	for i, spec := range specs {
		if err := s.add(i, spec); err != nil {
			s.closeEntries()
			return nil, err
		}
	}
	s.pending = nil
	return s, nil
}

func newScope(doc any) (observable.Notifier, error) {
	if doc == nil {
		return observable.MustObject(map[string]any{}), nil
	}
	scope, err := codec.Scope(doc)
	if err != nil {
		return nil, fmt.Errorf("building scope: %w", err)
	}
	return scope, nil
}

func (s *Session) add(i int, spec BindingSpec) error {
	if err := spec.Validate(); err != nil {
		return &SpecError{Index: i, Name: spec.Name, Err: err}
	}
	if _, dup := s.byName[spec.Name]; dup {
		return &SpecError{Index: i, Name: spec.Name, Err: fmt.Errorf("%w: duplicate name", ErrInvalidBinding)}
	}
	mode, _ := binding.ParseMode(spec.Mode)
	logger := s.logger.WithField("binding", spec.Name)

	e := &entry{spec: spec}
	if spec.Expression != "" {
		x, err := expr.New(spec.Expression, s.scope, s.exprOptions(logger)...)
		if err != nil {
			return &SpecError{Index: i, Name: spec.Name, Err: err}
		}
		b, err := binding.Bind(s.values, spec.Name, x, expr.ResultProperty, mode,
			binding.WithLogger(logger))
		if err != nil {
			x.Close()
			return &SpecError{Index: i, Name: spec.Name, Err: err}
		}
		e.expr, e.binding = x, b
	} else {
		b, err := binding.Bind(s.values, spec.Name, s.scope, spec.Path, mode,
			binding.WithDefault(spec.Default), binding.WithLogger(logger))
		if err != nil {
			return &SpecError{Index: i, Name: spec.Name, Err: err}
		}
		e.binding = b
	}

	s.entries = append(s.entries, e)
	s.byName[spec.Name] = e
	return nil
}

func (s *Session) exprOptions(logger *logging.Logger) []expr.Option {
	opts := []expr.Option{expr.WithLogger(logger)}
	if !s.globals {
		opts = append(opts, expr.WithGlobals(nil))
	}
	if len(s.funcs) > 0 {
		opts = append(opts, expr.WithFunctions(s.funcs))
	}
	return opts
}

// valueChanged queues a change notification. It runs under s.mu.
func (s *Session) valueChanged(name string) {
	if s.onChange == nil {
		return
	}
	v, _ := s.values.Get(name)
	s.pending = append(s.pending, change{name: name, value: observable.Plain(v)})
}

// unlock releases s.mu and delivers queued change notifications.
func (s *Session) unlock() {
	pending := s.pending
	s.pending = nil
	fn := s.onChange
	s.mu.Unlock()

	if fn == nil {
		return
	}
	for _, c := range pending {
		fn(c.name, c.value)
	}
}

// Reload replaces the data document. Every binding re-resolves against the
// new scope and every expression evaluates once.
func (s *Session) Reload(doc any) error {
	scope, err := newScope(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return ErrSessionClosed
	}

	s.scope = scope
	for _, e := range s.entries {
		if e.expr != nil {
			e.expr.ResetWith(scope)
			if e.binding.Mode() == binding.OneTime {
				e.binding.ResetWith(e.expr)
			}
			continue
		}
		e.binding.ResetWith(scope)
	}
	return nil
}

// ReloadFile decodes path and reloads the session with it.
func (s *Session) ReloadFile(path string) error {
	doc, err := codec.DecodeFile(path)
	if err != nil {
		return &OperationError{Op: "reload", Target: path, Err: err}
	}
	if err := s.Reload(doc); err != nil {
		return &OperationError{Op: "reload", Target: path, Err: err}
	}
	return nil
}

// Value returns the current plain value of the named binding.
func (s *Session) Value(name string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if _, ok := s.byName[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBinding, name)
	}
	v, _ := s.values.Get(name)
	return observable.Plain(v), nil
}

// Values returns every binding's current plain value.
func (s *Session) Values() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.ToMap()
}

// Names returns the binding names in definition order.
func (s *Session) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.spec.Name
	}
	return names
}

// Err returns the last evaluation error of an expression binding.
func (s *Session) Err(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBinding, name)
	}
	if e.expr == nil {
		return nil
	}
	return e.expr.Err()
}

// Set writes v to a two-way binding, which carries it back into the data.
// The binding's path must currently resolve.
func (s *Session) Set(name string, v any) error {
	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return ErrSessionClosed
	}
	e, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBinding, name)
	}
	if e.binding.Mode() != binding.TwoWay {
		return fmt.Errorf("%w: %q is %s", ErrReadOnlyBinding, name, e.binding.Mode())
	}
	if _, ok := e.binding.Manager().Value(); !ok {
		return &OperationError{Op: "set", Target: name, Err: fmt.Errorf("path %q does not resolve", e.spec.Path)}
	}
	return s.values.SetProperty(name, v)
}

// Document returns the current data as a plain tree, including writes made
// through two-way bindings.
func (s *Session) Document() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return observable.Plain(s.scope)
}

// Close releases every binding. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.closeEntries()
}

func (s *Session) closeEntries() {
	for _, e := range s.entries {
		e.binding.Close()
		if e.expr != nil {
			e.expr.Close()
		}
	}
	s.entries = nil
	clear(s.byName)
	if s.handler != nil {
		if _, err := s.values.PropertyChanged().RemoveHandler(s.handler); err != nil {
			s.logger.Warn("unsubscribing values: %v", err)
		}
		s.handler = nil
	}
}

// Run watches dataPath and reloads the session whenever it changes, until
// ctx is cancelled. Reload failures are logged and the previous data is
// kept.
func (s *Session) Run(ctx context.Context, dataPath string) error {
	w, err := watcher.New(watcher.WithDebounce(s.debounce))
	if err != nil {
		return &OperationError{Op: "watch", Target: dataPath, Err: err}
	}
	defer w.Close()

	if err := w.Watch(dataPath); err != nil {
		return &OperationError{Op: "watch", Target: dataPath, Err: err}
	}
	s.logger.Info("watching %s", dataPath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if !ev.Op.Has(watcher.OpWrite) && !ev.Op.Has(watcher.OpCreate) {
				s.logger.Debug("ignoring %s on %s", ev.Op, ev.Path)
				continue
			}
			if err := s.ReloadFile(dataPath); err != nil {
				if errors.Is(err, ErrSessionClosed) {
					return err
				}
				s.logger.Warn("%v", err)
				continue
			}
			s.logger.Debug("reloaded %s", dataPath)
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			s.logger.Warn("watching %s: %v", dataPath, err)
		}
	}
}
