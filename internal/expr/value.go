package expr

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/dshills/tether/internal/observable"
)

// undefinedType is the type of Undefined.
type undefinedType struct{}

func (undefinedType) String() string { return "undefined" }

// Undefined is the value of a missing property. It is distinct from nil,
// which is null.
var Undefined = undefinedType{}

// Func is a function value callable from expressions.
type Func func(args ...any) (any, error)

// normalize converts Go numeric types to float64 so arithmetic and
// equality see a single number type.
func normalize(v any) any {
	switch n := v.(type) {
	case nil, float64, string, bool, Func, undefinedType:
		return v
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case float32:
		return float64(n)
	case uint:
		return float64(n)
	case uint64:
		return float64(n)
	case func(args ...any) (any, error):
		return Func(n)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

func isNumber(v any) bool {
	_, ok := v.(float64)
	return ok
}

// toNumber converts v the way arithmetic operators do.
func toNumber(v any) float64 {
	switch x := normalize(v).(type) {
	case nil:
		return 0
	case undefinedType:
		return math.NaN()
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		switch s {
		case "Infinity", "+Infinity":
			return math.Inf(1)
		case "-Infinity":
			return math.Inf(-1)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case []any:
		switch len(x) {
		case 0:
			return 0
		case 1:
			return toNumber(x[0])
		}
	}
	return math.NaN()
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// toString converts v the way string concatenation does.
func toString(v any) string {
	switch x := normalize(v).(type) {
	case nil:
		return "null"
	case undefinedType:
		return "undefined"
	case string:
		return x
	case float64:
		return formatNumber(x)
	case bool:
		return strconv.FormatBool(x)
	case Func:
		return "function"
	case []any:
		parts := make([]string, len(x))
		for i, it := range x {
			if it == nil || it == any(Undefined) {
				continue
			}
			parts[i] = toString(it)
		}
		return strings.Join(parts, ",")
	case observable.Snapshotter:
		return toString(x.Snapshot())
	}
	return "[object Object]"
}

// truthy reports whether v counts as true in a condition.
func truthy(v any) bool {
	switch x := normalize(v).(type) {
	case nil, undefinedType:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	}
	return true
}

// typeOf returns the typeof name of v.
func typeOf(v any) string {
	switch normalize(v).(type) {
	case nil:
		return "object"
	case undefinedType:
		return "undefined"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case Func:
		return "function"
	}
	return "object"
}

// strictEqual implements ===.
func strictEqual(a, b any) bool {
	a, b = normalize(a), normalize(b)
	switch x := a.(type) {
	case nil:
		return b == nil
	case undefinedType:
		_, ok := b.(undefinedType)
		return ok
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return sameObject(a, b)
}

// looseEqual implements ==.
func looseEqual(a, b any) bool {
	a, b = normalize(a), normalize(b)
	if isNullish(a) || isNullish(b) {
		return isNullish(a) && isNullish(b)
	}
	if typeOf(a) == typeOf(b) {
		return strictEqual(a, b)
	}
	switch {
	case isNumber(a) && isString(b), isString(a) && isNumber(b):
		return toNumber(a) == toNumber(b)
	case isBool(a):
		return looseEqual(toNumber(a), b)
	case isBool(b):
		return looseEqual(a, toNumber(b))
	case isPrimitive(a) && !isPrimitive(b):
		return looseEqual(a, toString(b))
	case !isPrimitive(a) && isPrimitive(b):
		return looseEqual(toString(a), b)
	}
	return false
}

// sameObject compares reference identity for non-primitive values.
func sameObject(a, b any) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !ra.IsValid() || !rb.IsValid() || ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	if ra.Type().Comparable() {
		return a == b
	}
	return false
}

func isNullish(v any) bool {
	if v == nil {
		return true
	}
	_, ok := v.(undefinedType)
	return ok
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isPrimitive(v any) bool {
	switch v.(type) {
	case nil, undefinedType, float64, string, bool:
		return true
	}
	return false
}
