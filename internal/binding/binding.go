package binding

import (
	"fmt"
	"strings"

	"github.com/dshills/tether/internal/event"
	"github.com/dshills/tether/internal/logging"
	"github.com/dshills/tether/internal/observable"
)

// Mode selects the direction values flow through a Binding.
type Mode int

const (
	// OneWay copies source changes to the target.
	OneWay Mode = iota
	// TwoWay also writes target changes back to the source.
	TwoWay
	// OneTime copies the source value once and then detaches.
	OneTime
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case OneWay:
		return "oneway"
	case TwoWay:
		return "twoway"
	case OneTime:
		return "onetime"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name such as "twoway" or "one-way".
func ParseMode(s string) (Mode, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "") {
	case "", "oneway":
		return OneWay, nil
	case "twoway":
		return TwoWay, nil
	case "onetime":
		return OneTime, nil
	}
	return OneWay, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Target is an object whose properties can be bound.
type Target interface {
	observable.Notifier
	observable.PropertyGetter
	observable.PropertySetter
}

// Binding ties one property of a target to a path under a scope.
type Binding struct {
	target   Target
	property string
	mode     Mode
	manager  *Manager
	handler  *event.Handler[string]
	logger   *logging.Logger

	// updating is set while a value is in flight in either direction.
	updating bool
}

// Bind creates a binding that keeps target.property in sync with path under
// scope according to mode.
func Bind(target Target, property string, scope any, path string, mode Mode, opts ...Option) (*Binding, error) {
	if target == nil {
		return nil, fmt.Errorf("binding %q: target cannot be nil", path)
	}

	b := &Binding{
		target:   target,
		property: property,
		mode:     mode,
		logger:   logging.GetLogger().WithComponent("binding"),
	}

	if mode == TwoWay {
		opts = append(opts, WithGetter(func() any {
			v, _ := target.Property(property)
			return v
		}))
	}

	m, err := NewManager(scope, path, b.setTarget, opts...)
	if err != nil {
		return nil, err
	}
	b.manager = m
	b.logger = m.logger.WithField("property", property)

	switch mode {
	case OneTime:
		m.Unbind()
	case TwoWay:
		b.handler = event.NewHandlerWithOwner(b, b.targetChanged)
		if err := target.PropertyChanged().AddHandler(b.handler); err != nil {
			m.Unbind()
			return nil, err
		}
	}
	return b, nil
}

// Mode returns the binding mode.
func (b *Binding) Mode() Mode {
	return b.mode
}

// Manager returns the path manager driving the binding.
func (b *Binding) Manager() *Manager {
	return b.manager
}

// ResetWith re-resolves the binding against a new scope.
func (b *Binding) ResetWith(scope any) {
	b.manager.ResetWith(scope)
	if b.mode == OneTime {
		b.manager.Unbind()
	}
}

// Close detaches the binding from both the source path and the target.
// It is safe to call more than once.
func (b *Binding) Close() {
	b.manager.Unbind()
	if b.handler != nil {
		if _, err := b.target.PropertyChanged().RemoveHandler(b.handler); err != nil {
			b.logger.Warn("unsubscribing target: %v", err)
		}
		b.handler = nil
	}
}

func (b *Binding) setTarget(v any) {
	if b.updating {
		return
	}
	b.updating = true
	defer func() { b.updating = false }()

	if err := b.target.SetProperty(b.property, v); err != nil {
		b.logger.Warn("setting target: %v", err)
	}
}

func (b *Binding) targetChanged(name string) {
	if name != b.property || b.updating {
		return
	}
	b.updating = true
	defer func() { b.updating = false }()

	if err := b.manager.UpdateSource(); err != nil {
		b.logger.Warn("updating source: %v", err)
	}
}
