package expr

import (
	"math"
	"strconv"
	"strings"

	"github.com/dshills/tether/internal/observable"
)

// callMethod runs a built-in method of a string, number, boolean or array.
func callMethod(obj any, name string, args []any) (any, error) {
	if name == "toString" {
		return toString(obj), nil
	}
	switch x := obj.(type) {
	case string:
		return stringMethod(x, name, args)
	case float64:
		return numberMethod(x, name, args)
	case []any:
		return arrayMethod(x, name, args)
	case observable.Snapshotter:
		return arrayMethod(x.Snapshot(), name, args)
	}
	return nil, typeErrorf("%s.%s is not a function", typeOf(obj), name)
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}

// intArg converts args[i] to an integer, using def when absent.
func intArg(args []any, i, def int) int {
	if i >= len(args) || args[i] == any(Undefined) {
		return def
	}
	f := toNumber(args[i])
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Trunc(f))
}

// clampIndex resolves a possibly negative index against length n.
func clampIndex(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
	}
	if i > n {
		return n
	}
	return i
}

func stringMethod(s, name string, args []any) (any, error) {
	runes := []rune(s)
	switch name {
	case "toUpperCase":
		return strings.ToUpper(s), nil
	case "toLowerCase":
		return strings.ToLower(s), nil
	case "trim":
		return strings.TrimSpace(s), nil
	case "includes":
		return strings.Contains(s, toString(arg(args, 0))), nil
	case "startsWith":
		return strings.HasPrefix(s, toString(arg(args, 0))), nil
	case "endsWith":
		return strings.HasSuffix(s, toString(arg(args, 0))), nil
	case "indexOf":
		i := strings.Index(s, toString(arg(args, 0)))
		if i < 0 {
			return float64(-1), nil
		}
		return float64(len([]rune(s[:i]))), nil
	case "charAt":
		i := intArg(args, 0, 0)
		if i < 0 || i >= len(runes) {
			return "", nil
		}
		return string(runes[i]), nil
	case "slice":
		start := clampIndex(intArg(args, 0, 0), len(runes))
		end := clampIndex(intArg(args, 1, len(runes)), len(runes))
		if start >= end {
			return "", nil
		}
		return string(runes[start:end]), nil
	case "substring":
		start := min(max(intArg(args, 0, 0), 0), len(runes))
		end := min(max(intArg(args, 1, len(runes)), 0), len(runes))
		if start > end {
			start, end = end, start
		}
		return string(runes[start:end]), nil
	case "split":
		sep := arg(args, 0)
		if sep == any(Undefined) {
			return []any{s}, nil
		}
		parts := strings.Split(s, toString(sep))
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out, nil
	case "replace":
		return strings.Replace(s, toString(arg(args, 0)), toString(arg(args, 1)), 1), nil
	case "repeat":
		n := intArg(args, 0, 0)
		if n < 0 {
			return nil, typeErrorf("invalid repeat count %d", n)
		}
		return strings.Repeat(s, n), nil
	case "concat":
		var b strings.Builder
		b.WriteString(s)
		for _, a := range args {
			b.WriteString(toString(a))
		}
		return b.String(), nil
	}
	return nil, typeErrorf("string.%s is not a function", name)
}

func numberMethod(f float64, name string, args []any) (any, error) {
	switch name {
	case "toFixed":
		digits := intArg(args, 0, 0)
		if digits < 0 || digits > 100 {
			return nil, typeErrorf("toFixed() digits out of range: %d", digits)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return formatNumber(f), nil
		}
		return strconv.FormatFloat(f, 'f', digits, 64), nil
	}
	return nil, typeErrorf("number.%s is not a function", name)
}

func arrayMethod(items []any, name string, args []any) (any, error) {
	switch name {
	case "join":
		sep := ","
		if a := arg(args, 0); a != any(Undefined) {
			sep = toString(a)
		}
		parts := make([]string, len(items))
		for i, it := range items {
			if !isNullish(normalize(it)) {
				parts[i] = toString(it)
			}
		}
		return strings.Join(parts, sep), nil
	case "indexOf":
		target := arg(args, 0)
		for i, it := range items {
			if strictEqual(it, target) {
				return float64(i), nil
			}
		}
		return float64(-1), nil
	case "includes":
		target := arg(args, 0)
		for _, it := range items {
			if strictEqual(it, target) {
				return true, nil
			}
		}
		return false, nil
	case "slice":
		start := clampIndex(intArg(args, 0, 0), len(items))
		end := clampIndex(intArg(args, 1, len(items)), len(items))
		if start >= end {
			return []any{}, nil
		}
		return append([]any(nil), items[start:end]...), nil
	case "concat":
		out := append([]any(nil), items...)
		for _, a := range args {
			if more, ok := a.([]any); ok {
				out = append(out, more...)
				continue
			}
			out = append(out, a)
		}
		return out, nil
	case "at":
		i := intArg(args, 0, 0)
		if i < 0 {
			i += len(items)
		}
		if i < 0 || i >= len(items) {
			return Undefined, nil
		}
		return normalize(items[i]), nil
	}
	return nil, typeErrorf("array.%s is not a function", name)
}

// DefaultGlobals returns the identifiers available to every expression
// unless replaced with WithGlobals.
func DefaultGlobals() map[string]any {
	unary := func(f func(float64) float64) Func {
		return func(args ...any) (any, error) {
			return f(toNumber(arg(args, 0))), nil
		}
	}
	fold := func(init float64, pick func(a, b float64) float64) Func {
		return func(args ...any) (any, error) {
			acc := init
			for _, a := range args {
				n := toNumber(a)
				if math.IsNaN(n) {
					return math.NaN(), nil
				}
				acc = pick(acc, n)
			}
			return acc, nil
		}
	}

	return map[string]any{
		"Math": map[string]any{
			"PI":    math.Pi,
			"E":     math.E,
			"abs":   unary(math.Abs),
			"ceil":  unary(math.Ceil),
			"floor": unary(math.Floor),
			"round": unary(func(f float64) float64 { return math.Floor(f + 0.5) }),
			"trunc": unary(math.Trunc),
			"sqrt":  unary(math.Sqrt),
			"sign": unary(func(f float64) float64 {
				switch {
				case f > 0:
					return 1
				case f < 0:
					return -1
				}
				return f
			}),
			"max": fold(math.Inf(-1), math.Max),
			"min": fold(math.Inf(1), math.Min),
			"pow": Func(func(args ...any) (any, error) {
				return math.Pow(toNumber(arg(args, 0)), toNumber(arg(args, 1))), nil
			}),
		},
		"String": Func(func(args ...any) (any, error) {
			if len(args) == 0 {
				return "", nil
			}
			return toString(args[0]), nil
		}),
		"Number": Func(func(args ...any) (any, error) {
			if len(args) == 0 {
				return float64(0), nil
			}
			return toNumber(args[0]), nil
		}),
		"Boolean": Func(func(args ...any) (any, error) {
			return truthy(arg(args, 0)), nil
		}),
		"isNaN": Func(func(args ...any) (any, error) {
			return math.IsNaN(toNumber(arg(args, 0))), nil
		}),
		"parseFloat": Func(func(args ...any) (any, error) {
			return parseLeadingFloat(toString(arg(args, 0))), nil
		}),
		"parseInt": Func(func(args ...any) (any, error) {
			return math.Trunc(parseLeadingFloat(toString(arg(args, 0)))), nil
		}),
		"NaN":      math.NaN(),
		"Infinity": math.Inf(1),
	}
}

// parseLeadingFloat parses the longest numeric prefix of s.
func parseLeadingFloat(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for i := 1; i <= len(s); i++ {
		if _, err := strconv.ParseFloat(s[:i], 64); err == nil {
			end = i
		}
	}
	if end == 0 {
		return math.NaN()
	}
	f, _ := strconv.ParseFloat(s[:end], 64)
	return f
}
