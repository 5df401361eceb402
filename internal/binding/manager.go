package binding

import (
	"github.com/google/uuid"

	"github.com/dshills/tether/internal/event"
	"github.com/dshills/tether/internal/logging"
	"github.com/dshills/tether/internal/observable"
)

// link is one resolved position along a path: the object found there, the
// segment read from it, and the handler watching that segment when the
// object is a Notifier.
type link struct {
	object   any
	name     string
	notifier observable.Notifier
	handler  *event.Handler[string]
}

// Manager keeps a target in sync with the value found at a path under a
// scope. It subscribes to every Notifier along the path and re-resolves the
// rest of the path whenever an intermediate object is replaced.
//
// A Manager must be released with Unbind once it is no longer needed;
// until then the objects on its path hold references to it.
type Manager struct {
	id       uuid.UUID
	scope    any
	path     string
	segments []string
	setter   func(any)
	getter   func() any
	def      any
	logger   *logging.Logger

	links []*link
}

// Option configures a Manager.
type Option func(*Manager)

// WithGetter supplies the function UpdateSource reads the target value from.
func WithGetter(getter func() any) Option {
	return func(m *Manager) {
		m.getter = getter
	}
}

// WithDefault sets the value passed to the setter while the path is unresolved.
func WithDefault(v any) Option {
	return func(m *Manager) {
		m.def = v
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager binds setter to path under scope. The path is resolved and
// subscribed immediately and setter is called once before NewManager returns.
func NewManager(scope any, path string, setter func(any), opts ...Option) (*Manager, error) {
	segments, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	if setter == nil {
		return nil, ErrNilSetter
	}

	m := &Manager{
		id:       uuid.New(),
		scope:    scope,
		path:     path,
		segments: segments,
		setter:   setter,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.GetLogger().WithComponent("binding")
	}
	m.logger = m.logger.WithField("path", path)

	m.reregisterFrom(0)
	m.UpdateTarget()
	return m, nil
}

// ID returns the manager's unique identifier.
func (m *Manager) ID() string {
	return m.id.String()
}

// Path returns the path as given to NewManager.
func (m *Manager) Path() string {
	return m.path
}

// Scope returns the current scope root.
func (m *Manager) Scope() any {
	return m.scope
}

// Links returns how many path positions are currently resolved.
func (m *Manager) Links() int {
	return len(m.links)
}

// Subscriptions returns how many handlers the manager has attached.
func (m *Manager) Subscriptions() int {
	n := 0
	for _, l := range m.links {
		if l.handler != nil {
			n++
		}
	}
	return n
}

// Value resolves the path against the scope.
func (m *Manager) Value() (any, bool) {
	obj := m.scope
	for _, seg := range m.segments {
		v, ok := Lookup(obj, seg)
		if !ok {
			return nil, false
		}
		obj = v
	}
	return obj, true
}

// UpdateTarget passes the resolved value to the setter, or the default value
// when the path does not resolve to a non-nil value.
func (m *Manager) UpdateTarget() {
	v, ok := m.Value()
	if !ok || isNil(v) {
		m.setter(m.def)
		return
	}
	m.setter(v)
}

// UpdateSource writes the getter's value to the last path segment.
// An unreachable parent object is not an error; the update is skipped.
func (m *Manager) UpdateSource() error {
	if m.getter == nil {
		return ErrNoGetter
	}

	parent := m.scope
	for _, seg := range m.segments[:len(m.segments)-1] {
		v, ok := Lookup(parent, seg)
		if !ok {
			parent = nil
			break
		}
		parent = v
	}
	if !isObject(parent) {
		m.logger.Debug("source parent unreachable, skipping update")
		return nil
	}

	return Assign(parent, m.segments[len(m.segments)-1], m.getter())
}

// ResetWith points the manager at a new scope, re-subscribing the whole path
// and updating the target once.
func (m *Manager) ResetWith(scope any) {
	m.scope = scope
	m.reregisterFrom(0)
	m.UpdateTarget()
}

// Unbind detaches every handler the manager holds. It is safe to call more
// than once.
func (m *Manager) Unbind() {
	m.discardFrom(0)
}

// discardFrom unsubscribes links[i:] and truncates the slice to links[:i].
func (m *Manager) discardFrom(i int) {
	if i >= len(m.links) {
		return
	}
	for _, l := range m.links[i:] {
		if l.handler == nil {
			continue
		}
		if _, err := l.notifier.PropertyChanged().RemoveHandler(l.handler); err != nil {
			m.logger.Warn("unsubscribing %q: %v", l.name, err)
		}
		l.handler = nil
	}
	m.links = m.links[:i:i]
}

// reregisterFrom replaces links[i:] with a freshly resolved suffix.
func (m *Manager) reregisterFrom(i int) {
	m.discardFrom(i)

	var obj any
	if i == 0 {
		obj = m.scope
	} else {
		prev := m.links[i-1]
		v, ok := Lookup(prev.object, prev.name)
		if !ok {
			return
		}
		obj = v
	}

	for pos := i; pos < len(m.segments); pos++ {
		if isNil(obj) {
			return
		}
		l := &link{object: obj, name: m.segments[pos]}
		m.links = append(m.links, l)
		m.subscribe(pos, l)

		if pos == len(m.segments)-1 {
			return
		}
		v, ok := Lookup(obj, l.name)
		if !ok {
			return
		}
		obj = v
	}
}

func (m *Manager) subscribe(pos int, l *link) {
	n, ok := l.object.(observable.Notifier)
	if !ok {
		return
	}
	h := event.NewHandlerWithOwner(m, func(name string) {
		if name != l.name || !m.current(pos, l) {
			return
		}
		if pos < len(m.segments)-1 {
			m.reregisterFrom(pos + 1)
		}
		m.UpdateTarget()
	})
	if err := n.PropertyChanged().AddHandler(h); err != nil {
		m.logger.Warn("subscribing %q: %v", l.name, err)
		return
	}
	l.notifier = n
	l.handler = h
}

// current reports whether l is still the live link at pos.
func (m *Manager) current(pos int, l *link) bool {
	return pos < len(m.links) && m.links[pos] == l && l.handler != nil
}
