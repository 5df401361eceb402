package binding

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/dshills/tether/internal/observable"
)

// Lookup reads the property name from obj. It understands PropertyGetter,
// string-keyed maps, slices and arrays (decimal indices and "length"),
// and structs or struct pointers (field name or json tag).
// The second result is false when obj has no such property.
func Lookup(obj any, name string) (any, bool) {
	switch o := obj.(type) {
	case nil:
		return nil, false
	case observable.PropertyGetter:
		return o.Property(name)
	case map[string]any:
		v, ok := o[name]
		return v, ok
	case []any:
		if name == observable.LengthProperty {
			return len(o), true
		}
		i, ok := index(name, len(o))
		if !ok {
			return nil, false
		}
		return o[i], true
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Slice, reflect.Array:
		if name == observable.LengthProperty {
			return rv.Len(), true
		}
		i, ok := index(name, rv.Len())
		if !ok {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	case reflect.Struct:
		f, ok := field(rv, name)
		if !ok {
			return nil, false
		}
		return f.Interface(), true
	}
	return nil, false
}

// Assign stores value as the property name of obj. Structs must be passed
// by pointer to be assignable.
func Assign(obj any, name string, value any) error {
	switch o := obj.(type) {
	case nil:
		return &AssignError{Name: name, Type: "nil"}
	case observable.PropertySetter:
		if err := o.SetProperty(name, value); err != nil {
			return &AssignError{Name: name, Type: typeName(obj), Err: err}
		}
		return nil
	case map[string]any:
		o[name] = value
		return nil
	case []any:
		i, ok := index(name, len(o))
		if !ok {
			return &AssignError{Name: name, Type: typeName(obj), Err: observable.ErrRange}
		}
		o[i] = value
		return nil
	}

	rv := reflect.ValueOf(obj)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			return &AssignError{Name: name, Type: typeName(obj)}
		}
		v, err := convertTo(value, rv.Type().Elem())
		if err != nil {
			return &AssignError{Name: name, Type: typeName(obj), Err: err}
		}
		rv.SetMapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()), v)
		return nil
	case reflect.Slice:
		i, ok := index(name, rv.Len())
		if !ok {
			return &AssignError{Name: name, Type: typeName(obj), Err: observable.ErrRange}
		}
		v, err := convertTo(value, rv.Type().Elem())
		if err != nil {
			return &AssignError{Name: name, Type: typeName(obj), Err: err}
		}
		rv.Index(i).Set(v)
		return nil
	case reflect.Pointer:
		if rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return &AssignError{Name: name, Type: typeName(obj)}
		}
		f, ok := field(rv.Elem(), name)
		if !ok || !f.CanSet() {
			return &AssignError{Name: name, Type: typeName(obj), Err: observable.ErrUnknownProperty}
		}
		v, err := convertTo(value, f.Type())
		if err != nil {
			return &AssignError{Name: name, Type: typeName(obj), Err: err}
		}
		f.Set(v)
		return nil
	}
	return &AssignError{Name: name, Type: typeName(obj)}
}

// isObject reports whether v can hold assignable properties.
func isObject(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case observable.PropertySetter, map[string]any, []any:
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return !rv.IsNil()
	case reflect.Pointer:
		return !rv.IsNil() && rv.Elem().Kind() == reflect.Struct
	}
	return false
}

// isNil reports whether v is nil or a nil pointer, map, slice or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func index(name string, n int) (int, bool) {
	i, err := strconv.Atoi(name)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// field finds an exported struct field by json tag name or Go name.
func field(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == "-" {
			continue
		}
		if tag == name || (tag == "" && f.Name == name) {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func convertTo(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: nil for %s", observable.ErrTypeMismatch, t)
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(t.Kind()) {
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s for %s", observable.ErrTypeMismatch, v.Type(), t)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
