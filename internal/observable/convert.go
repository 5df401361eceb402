package observable

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Option configures an Object or Collection.
type Option func(*options)

type options struct {
	convert bool
}

func defaultOptions() options {
	return options{convert: true}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithoutNestedConversion stores assigned values as-is instead of wrapping
// convertible values into nested observables.
func WithoutNestedConversion() Option {
	return func(o *options) {
		o.convert = false
	}
}

var timeType = reflect.TypeOf(time.Time{})

// IsObservable reports whether v satisfies Notifier.
func IsObservable(v any) bool {
	_, ok := v.(Notifier)
	return ok
}

// IsConvertible reports whether v would be wrapped into a nested observable
// when assigned with conversion enabled.
func IsConvertible(v any) bool {
	switch v.(type) {
	case nil, time.Time, *time.Time, []byte, Notifier:
		return false
	case map[string]any, []any:
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return rv.Type().Key().Kind() == reflect.String
	case reflect.Slice, reflect.Array:
		return true
	case reflect.Struct:
		return rv.Type() != timeType
	case reflect.Pointer:
		if rv.IsNil() {
			return false
		}
		return rv.Elem().Kind() == reflect.Struct && rv.Elem().Type() != timeType
	}
	return false
}

// From wraps value in a new observable: a *Collection[any] for slices and
// arrays, an *Object for maps and structs.
func From(value any, opts ...Option) (Notifier, error) {
	switch value.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrNotAnObject)
	case Notifier:
		return nil, ErrAlreadyObservable
	case time.Time, *time.Time:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, value)
	}

	if items, ok := sliceItems(value); ok {
		return NewCollection(items, opts...), nil
	}
	if !IsConvertible(value) {
		return nil, fmt.Errorf("%w: %T", ErrNotAnObject, value)
	}
	return NewObject(value, opts...)
}

// wrap converts value into a nested observable when enabled and possible.
func wrap(value any, o options) any {
	if !o.convert || !IsConvertible(value) {
		return value
	}
	n, err := From(value)
	if err != nil {
		return value
	}
	return n
}

// sliceItems copies the elements of a slice or array into []any.
func sliceItems(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return append([]any(nil), v...), true
	case []byte:
		return nil, false
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// entries lists the keys and values of a map or struct source.
func entries(source any) ([]string, map[string]any, error) {
	if m, ok := source.(map[string]any); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make(map[string]any, len(m))
		for k, v := range m {
			values[k] = v
		}
		return keys, values, nil
	}

	rv := reflect.ValueOf(source)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, nil, &SourceTypeError{Type: rv.Type().String(), Reason: "map keys must be strings"}
		}
		keys := make([]string, 0, rv.Len())
		values := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			keys = append(keys, k)
			values[k] = iter.Value().Interface()
		}
		sort.Strings(keys)
		return keys, values, nil

	case reflect.Struct:
		if rv.Type() == timeType {
			return nil, nil, &SourceTypeError{Type: "time.Time", Reason: "dates are copied, not wrapped"}
		}
		t := rv.Type()
		keys := make([]string, 0, t.NumField())
		values := make(map[string]any, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name, ok := fieldName(f)
			if !ok {
				continue
			}
			keys = append(keys, name)
			values[name] = rv.Field(i).Interface()
		}
		return keys, values, nil
	}

	return nil, nil, &SourceTypeError{Type: fmt.Sprintf("%T", source), Reason: "not a plain object"}
}

// fieldName returns the property name for an exported struct field.
func fieldName(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, true
	}
	return f.Name, true
}

// plainer is implemented by observables that can unwrap themselves.
type plainer interface {
	plain() any
}

// Plain recursively unwraps observables into maps and slices.
// Other values are returned unchanged.
func Plain(v any) any {
	if p, ok := v.(plainer); ok {
		return p.plain()
	}
	return v
}
