package expr

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/dshills/tether/internal/observable"
)

func evalString(t *testing.T, text string, env Env) (any, error) {
	t.Helper()
	p, err := Compile(text)
	if err != nil {
		t.Fatalf("Compile(%q) error = %v", text, err)
	}
	return p.Eval(env)
}

func TestEval(t *testing.T) {
	scope := observable.MustObject(map[string]any{
		"name":  "Ada",
		"count": 3,
		"user":  map[string]any{"age": 36, "tags": []any{"a", "b"}},
		"empty": "",
		"none":  nil,
	})
	env := Env{
		Params:  map[string]any{"p0": 10, "p1": []any{1, 2, 3}},
		Scope:   scope,
		Globals: DefaultGlobals(),
	}

	tests := []struct {
		in   string
		want any
	}{
		// arithmetic and the per-operator precedence levels
		{"1 + 2 * 3", 7.0},
		{"1 - 2 + 3", -4.0},
		{"8 / 2 * 2", 2.0},
		{"(1 - 2) + 3", 2.0},
		{"-p0 + 1", -9.0},
		{"10 / 4", 2.5},
		{"1 / 0", math.Inf(1)},

		// strings
		{"'a' + 1", "a1"},
		{"1 + '1'", "11"},
		{"name + ' L.'", "Ada L."},
		{"'x' + null", "xnull"},
		{"'n=' + p1", "n=1,2,3"},
		{"'5' * '2'", 10.0},
		{"true + 1", 2.0},

		// comparison and equality
		{"count > 2", true},
		{"count >= 4", false},
		{"'b' > 'a'", true},
		{"'10' < 9", false},
		{"1 == '1'", true},
		{"1 === '1'", false},
		{"1 !== '1'", true},
		{"null == undefined", true},
		{"null === undefined", false},
		{"0 == false", true},
		{"'' == 0", true},
		{"none == null", true},
		{"p1 === p1", true},

		// logic
		{"!empty", true},
		{"!!name", true},
		{"empty || 'fallback'", "fallback"},
		{"name && count", 3.0},
		{"count > 2 ? 'many' : 'few'", "many"},
		{"none ? 1 : 2", 2.0},

		// typeof
		{"typeof name", "string"},
		{"typeof count", "number"},
		{"typeof none", "object"},
		{"typeof user.missing", "undefined"},
		{"typeof Math.max", "function"},
		{"typeof true", "boolean"},

		// members
		{"user.age", 36.0},
		{"user.tags.length", 2.0},
		{"p1.length", 3.0},
		{"name.length", 3.0},
		{"user.missing", nil},

		// methods
		{"name.toUpperCase()", "ADA"},
		{"name.toLowerCase().concat('!', 1)", "ada!1"},
		{"'  x '.trim()", "x"},
		{"name.indexOf('d')", 1.0},
		{"name.includes('da')", true},
		{"name.slice(-2)", "da"},
		{"name.substring(2, 0)", "Ad"},
		{"name.charAt(0)", "A"},
		{"'a,b'.split(',').length", 2.0},
		{"'ab'.repeat(2)", "abab"},
		{"'aXbX'.replace('X', '-')", "a-bX"},
		{"(3.14159).toFixed(2)", "3.14"},
		{"p0.toString() + 1", "101"},
		{"p1.join('-')", "1-2-3"},
		{"p1.indexOf(2)", 1.0},
		{"p1.includes(4)", false},
		{"p1.slice(1).length", 2.0},
		{"p1.concat(4, p1).length", 7.0},
		{"p1.at(-1)", 3.0},
		{"user.tags.join()", "a,b"},

		// globals
		{"Math.max(1, p0, 3)", 10.0},
		{"Math.min()", math.Inf(1)},
		{"Math.round(2.5)", 3.0},
		{"Math.floor(-1.5)", -2.0},
		{"Math.PI > 3", true},
		{"String(1.5)", "1.5"},
		{"Number('42')", 42.0},
		{"Boolean('')", false},
		{"parseInt('12px')", 12.0},
		{"parseFloat('3.5kg')", 3.5},
		{"isNaN('x' * 1)", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := evalString(t, tt.in, env)
			if err != nil {
				t.Fatalf("Eval(%q) error = %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Eval(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEval_NaN(t *testing.T) {
	got, err := evalString(t, "'abc' - 1", Env{})
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if f, ok := got.(float64); !ok || !math.IsNaN(f) {
		t.Errorf("Eval() = %v, want NaN", got)
	}
}

func TestEval_Errors(t *testing.T) {
	env := Env{
		Scope:   map[string]any{"obj": map[string]any{}, "none": nil},
		Globals: DefaultGlobals(),
	}

	tests := []struct {
		in   string
		want error
	}{
		{"missing + 1", ErrReference},
		{"none.name", ErrType},
		{"none.go()", ErrType},
		{"obj.nothing()", ErrType},
		{"'s'.nothing()", ErrType},
		{"(1).nothing()", ErrType},
		{"obj()", ErrType},
		{"'x'.repeat(-1)", ErrType},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := evalString(t, tt.in, env)
			if !errors.Is(err, tt.want) {
				t.Errorf("Eval(%q) error = %v, want %v", tt.in, err, tt.want)
			}
		})
	}
}

func TestEval_LookupOrder(t *testing.T) {
	env := Env{
		Params:  map[string]any{"x": "param"},
		Scope:   map[string]any{"x": "scope", "y": "scope"},
		Globals: map[string]any{"x": "global", "y": "global", "z": "global"},
	}
	for name, want := range map[string]string{"x": "param", "y": "scope", "z": "global"} {
		got, err := evalString(t, name, env)
		if err != nil || got != want {
			t.Errorf("Eval(%q) = %v, %v want %q", name, got, err, want)
		}
	}
}

func TestEval_FunctionValues(t *testing.T) {
	double := Func(func(args ...any) (any, error) {
		return toNumber(arg(args, 0)) * 2, nil
	})
	failing := Func(func(args ...any) (any, error) {
		return nil, errors.New("boom")
	})
	env := Env{
		Scope:   map[string]any{"helpers": map[string]any{"double": double}},
		Globals: map[string]any{"double": double, "fail": failing},
	}

	if got, err := evalString(t, "double(4) + helpers.double(1)", env); err != nil || got != 10.0 {
		t.Errorf("Eval() = %v, %v want 10", got, err)
	}
	if _, err := evalString(t, "fail()", env); err == nil || err.Error() != "boom" {
		t.Errorf("Eval(fail()) error = %v, want boom", err)
	}
}
