package expr

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/tether/internal/binding"
	"github.com/dshills/tether/internal/event"
	"github.com/dshills/tether/internal/logging"
	"github.com/dshills/tether/internal/observable"
)

// Property names exposed by an Expression.
const (
	ResultProperty = "result"
	TextProperty   = "text"
)

// Option configures an Expression.
type Option func(*Expression)

// WithGlobals replaces the fallback identifiers. Passing nil disables them.
func WithGlobals(globals map[string]any) Option {
	return func(e *Expression) {
		e.globals = globals
	}
}

// WithFunctions adds named functions to the fallback identifiers.
func WithFunctions(funcs map[string]Func) Option {
	return func(e *Expression) {
		if e.globals == nil {
			e.globals = make(map[string]any, len(funcs))
		} else {
			e.globals = maps.Clone(e.globals)
		}
		for name, fn := range funcs {
			e.globals[name] = fn
		}
	}
}

// WithLogger sets the logger used for evaluation failures.
func WithLogger(l *logging.Logger) Option {
	return func(e *Expression) {
		if l != nil {
			e.logger = l
		}
	}
}

// param is one distinct placeholder.
type param struct {
	name    string
	path    string
	manager *binding.Manager

	// coll is the collection currently held by the parameter, if any.
	coll    observable.CollectionNotifier
	handler *event.Handler[observable.CollectionChange]
}

// Expression is a formula over {path} placeholders that re-evaluates
// whenever a referenced value changes. Its result is published as the
// "result" property, so an Expression can itself be a binding source.
type Expression struct {
	id      uuid.UUID
	text    string
	formula string
	program *Program
	compErr error

	scope   any
	globals map[string]any
	params  []*param
	holder  *observable.Object
	watch   *event.Handler[string]
	changed *event.Event[string]
	logger  *logging.Logger

	result any
	err    error

	// resetting suppresses evaluation while parameters are rebound.
	resetting bool
	closed    bool
}

// New creates an Expression for text bound to scope and evaluates it once.
//
// Each distinct {path} placeholder becomes a parameter named p0, p1, ... in
// order of first appearance. Invalid placeholder paths fail construction.
// A formula that does not parse does not: the error is reported by Err and
// the result stays nil.
func New(text string, scope any, opts ...Option) (*Expression, error) {
	e := &Expression{
		id:      uuid.New(),
		text:    text,
		scope:   scope,
		globals: DefaultGlobals(),
		changed: event.New[string](),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.GetLogger().WithComponent("expr")
	}
	e.logger = e.logger.WithField("expr", e.id.String()[:8])

	formula, paths, err := extractPlaceholders(text)
	if err != nil {
		return nil, err
	}
	e.formula = formula
	e.program, e.compErr = Compile(formula)

	initial := make(map[string]any, len(paths))
	for i, path := range paths {
		p := &param{name: "p" + strconv.Itoa(i), path: path}
		e.params = append(e.params, p)
		initial[p.name] = nil
	}
	e.holder = observable.MustObject(initial, observable.WithoutNestedConversion())
	e.watch = e.holder.PropertyChanged().Subscribe(e.paramChanged)

	e.resetting = true
	for _, p := range e.params {
		name := p.name
		m, err := binding.NewManager(scope, p.path, func(v any) {
			e.holder.Set(name, v)
		}, binding.WithLogger(e.logger.WithComponent("binding")))
		if err != nil {
			e.resetting = false
			e.Close()
			return nil, err
		}
		p.manager = m
	}
	e.resetting = false

	e.Exec()
	return e, nil
}

// extractPlaceholders replaces every {path} in text with its parameter name
// and returns the distinct normalized paths in order of first appearance.
func extractPlaceholders(text string) (string, []string, error) {
	var (
		b     strings.Builder
		paths []string
		index = map[string]int{}
	)
	rest := text
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		raw := strings.TrimSpace(rest[open+1 : open+end])
		segments, err := binding.ParsePath(raw)
		if err != nil {
			return "", nil, fmt.Errorf("expression %q: %w", text, err)
		}
		path := strings.Join(segments, ".")
		i, ok := index[path]
		if !ok {
			i = len(paths)
			index[path] = i
			paths = append(paths, path)
		}
		b.WriteString(rest[:open])
		b.WriteString("p" + strconv.Itoa(i))
		rest = rest[open+end+1:]
	}
	return b.String(), paths, nil
}

// ID returns the expression's unique identifier.
func (e *Expression) ID() string {
	return e.id.String()
}

// Text returns the expression as given to New.
func (e *Expression) Text() string {
	return e.text
}

// Formula returns the text with placeholders replaced by parameter names.
func (e *Expression) Formula() string {
	return e.formula
}

// Paths returns the distinct placeholder paths in parameter order.
func (e *Expression) Paths() []string {
	out := make([]string, len(e.params))
	for i, p := range e.params {
		out[i] = p.path
	}
	return out
}

// Result returns the last computed value, or nil if evaluation failed.
func (e *Expression) Result() any {
	return e.result
}

// Err returns the error from the last evaluation, if any.
func (e *Expression) Err() error {
	return e.err
}

// Scope returns the scope placeholders are resolved against.
func (e *Expression) Scope() any {
	return e.scope
}

// PropertyChanged implements observable.Notifier. It is raised with
// "result" after every evaluation.
func (e *Expression) PropertyChanged() *event.Event[string] {
	return e.changed
}

// Property implements observable.PropertyGetter for "result" and "text".
func (e *Expression) Property(name string) (any, bool) {
	switch name {
	case ResultProperty:
		return e.result, true
	case TextProperty:
		return e.text, true
	}
	return nil, false
}

// Exec evaluates the formula against the current parameter values and
// publishes the result. Failures are logged and yield a nil result; Exec
// always raises PropertyChanged("result").
func (e *Expression) Exec() {
	e.result, e.err = e.evaluate()
	if e.err != nil {
		e.logger.Warn("evaluating %q: %v", e.text, e.err)
		e.result = nil
	}
	e.changed.Invoke(ResultProperty)
}

func (e *Expression) evaluate() (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	if e.compErr != nil {
		return nil, e.compErr
	}
	params := make(map[string]any, len(e.params))
	for _, p := range e.params {
		v, _ := e.holder.Get(p.name)
		if s, ok := v.(observable.Snapshotter); ok {
			v = s.Snapshot()
		}
		params[p.name] = v
	}
	return e.program.Eval(Env{Params: params, Scope: e.scope, Globals: e.globals})
}

// ResetWith rebinds every placeholder to a new scope and evaluates once.
func (e *Expression) ResetWith(scope any) {
	func() {
		e.resetting = true
		defer func() { e.resetting = false }()

		e.scope = scope
		for _, p := range e.params {
			p.manager.ResetWith(scope)
		}
	}()
	e.Exec()
}

// Close releases every subscription held by the expression. It is safe to
// call more than once.
func (e *Expression) Close() {
	if e.closed {
		return
	}
	e.closed = true
	for _, p := range e.params {
		if p.manager != nil {
			p.manager.Unbind()
		}
		e.unwatchCollection(p)
	}
	if _, err := e.holder.PropertyChanged().RemoveHandler(e.watch); err != nil {
		e.logger.Warn("unsubscribing parameters: %v", err)
	}
}

// paramChanged runs when a manager stores a new parameter value.
func (e *Expression) paramChanged(name string) {
	for _, p := range e.params {
		if p.name == name {
			e.watchCollection(p)
			break
		}
	}
	if !e.resetting {
		e.Exec()
	}
}

// watchCollection keeps p subscribed to the collection it currently holds,
// so structural changes re-evaluate even when the reference is unchanged.
func (e *Expression) watchCollection(p *param) {
	v, _ := e.holder.Get(p.name)
	cn, _ := v.(observable.CollectionNotifier)
	if p.coll != nil && p.coll == cn {
		return
	}
	e.unwatchCollection(p)
	if cn == nil {
		return
	}

	h := event.NewHandlerWithOwner(e, func(observable.CollectionChange) {
		if !e.resetting {
			e.Exec()
		}
	})
	if err := cn.CollectionChanged().AddHandler(h); err != nil {
		e.logger.Warn("watching %s: %v", p.path, err)
		return
	}
	p.coll = cn
	p.handler = h
}

func (e *Expression) unwatchCollection(p *param) {
	if p.coll == nil {
		return
	}
	if _, err := p.coll.CollectionChanged().RemoveHandler(p.handler); err != nil {
		e.logger.Warn("unwatching %s: %v", p.path, err)
	}
	p.coll = nil
	p.handler = nil
}
