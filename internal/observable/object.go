package observable

import (
	"bytes"
	"fmt"

	"github.com/dshills/tether/internal/event"
)

// Object is a set of named, notifying properties copied from a plain source.
// Object is not safe for concurrent use.
type Object struct {
	keys    []string
	values  map[string]any
	opts    options
	changed *event.Event[string]
}

// NewObject creates an Object from source, which must be a string-keyed map
// or a struct (or pointer to struct). The source is copied: later changes to
// it are not seen by the Object and vice versa.
func NewObject(source any, opts ...Option) (*Object, error) {
	if source == nil {
		return nil, &SourceTypeError{Type: "nil", Reason: "not a plain object"}
	}
	if _, ok := source.(Notifier); ok {
		return nil, &SourceTypeError{Type: fmt.Sprintf("%T", source), Reason: "already observable"}
	}
	if _, ok := sliceItems(source); ok {
		return nil, &SourceTypeError{Type: fmt.Sprintf("%T", source), Reason: "sequences must use Collection"}
	}

	keys, values, err := entries(source)
	if err != nil {
		return nil, err
	}

	o := &Object{
		keys:    keys,
		values:  make(map[string]any, len(values)),
		opts:    applyOptions(opts),
		changed: event.New[string](),
	}
	for _, k := range keys {
		o.values[k] = wrap(values[k], o.opts)
	}
	return o, nil
}

// MustObject is like NewObject but panics on error.
func MustObject(source any, opts ...Option) *Object {
	o, err := NewObject(source, opts...)
	if err != nil {
		panic(err)
	}
	return o
}

// PropertyChanged returns the event raised with the property name on every Set.
func (o *Object) PropertyChanged() *event.Event[string] {
	return o.changed
}

// Get returns the current value of name.
func (o *Object) Get(name string) (any, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Set stores value under name and raises exactly one PropertyChanged(name).
// Convertible values are wrapped first unless nested conversion is off.
// Setting a name the object does not have yet defines it.
func (o *Object) Set(name string, value any) {
	if _, ok := o.values[name]; !ok {
		o.keys = append(o.keys, name)
	}
	o.values[name] = wrap(value, o.opts)
	o.changed.Invoke(name)
}

// Has reports whether the object has a property called name.
func (o *Object) Has(name string) bool {
	_, ok := o.values[name]
	return ok
}

// Keys returns the property names in definition order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of properties.
func (o *Object) Len() int {
	return len(o.keys)
}

// Property implements PropertyGetter.
func (o *Object) Property(name string) (any, bool) {
	return o.Get(name)
}

// SetProperty implements PropertySetter.
func (o *Object) SetProperty(name string, value any) error {
	o.Set(name, value)
	return nil
}

// ToMap returns a plain copy of the object with nested observables unwrapped.
func (o *Object) ToMap() map[string]any {
	m := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		m[k] = Plain(o.values[k])
	}
	return m
}

func (o *Object) plain() any {
	return o.ToMap()
}

// MarshalJSON encodes the properties in definition order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("encoding property %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
