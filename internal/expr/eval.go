package expr

import (
	"fmt"
	"math"

	"github.com/dshills/tether/internal/binding"
)

// Env supplies identifier values during evaluation. Names are looked up in
// Params, then as properties of Scope, then in Globals.
type Env struct {
	Params  map[string]any
	Scope   any
	Globals map[string]any
}

func (env Env) lookup(name string) (any, error) {
	if v, ok := env.Params[name]; ok {
		return v, nil
	}
	if env.Scope != nil {
		if v, ok := binding.Lookup(env.Scope, name); ok {
			return v, nil
		}
	}
	if v, ok := env.Globals[name]; ok {
		return v, nil
	}
	return nil, &ReferenceError{Name: name}
}

// Program is a compiled formula.
type Program struct {
	source string
	root   Node
}

// Compile parses text into a reusable Program.
func Compile(text string) (*Program, error) {
	root, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return &Program{source: text, root: root}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(text string) *Program {
	p, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return p
}

// Source returns the formula text.
func (p *Program) Source() string {
	return p.source
}

// String returns the fully parenthesized form of the parsed formula.
func (p *Program) String() string {
	return p.root.String()
}

// Eval evaluates the program. Numbers are returned as float64, and an
// undefined result is returned as nil.
func (p *Program) Eval(env Env) (any, error) {
	v, err := eval(p.root, env)
	if err != nil {
		return nil, err
	}
	if v == any(Undefined) {
		return nil, nil
	}
	return v, nil
}

func eval(n Node, env Env) (any, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil

	case *Ident:
		v, err := env.lookup(n.Name)
		if err != nil {
			return nil, err
		}
		return normalize(v), nil

	case *Unary:
		v, err := eval(n.Operand, env)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "!":
			return !truthy(v), nil
		case "-":
			return -toNumber(v), nil
		case "+":
			return toNumber(v), nil
		case "typeof":
			return typeOf(v), nil
		}
		return nil, fmt.Errorf("%w: unknown unary operator %q", ErrSyntax, n.Op)

	case *Binary:
		return evalBinary(n, env)

	case *Ternary:
		c, err := eval(n.Cond, env)
		if err != nil {
			return nil, err
		}
		if truthy(c) {
			return eval(n.Then, env)
		}
		return eval(n.Else, env)

	case *Member:
		obj, err := eval(n.Object, env)
		if err != nil {
			return nil, err
		}
		return member(obj, n.Name)

	case *Call:
		return evalCall(n, env)
	}
	return nil, fmt.Errorf("%w: unknown node %T", ErrSyntax, n)
}

func evalBinary(n *Binary, env Env) (any, error) {
	left, err := eval(n.Left, env)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "&&":
		if !truthy(left) {
			return left, nil
		}
		return eval(n.Right, env)
	case "||":
		if truthy(left) {
			return left, nil
		}
		return eval(n.Right, env)
	}

	right, err := eval(n.Right, env)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "+":
		lp, rp := primitive(left), primitive(right)
		if isString(lp) || isString(rp) {
			return toString(lp) + toString(rp), nil
		}
		return toNumber(lp) + toNumber(rp), nil
	case "-":
		return toNumber(left) - toNumber(right), nil
	case "*":
		return toNumber(left) * toNumber(right), nil
	case "/":
		return toNumber(left) / toNumber(right), nil
	case "===":
		return strictEqual(left, right), nil
	case "!==":
		return !strictEqual(left, right), nil
	case "==":
		return looseEqual(left, right), nil
	case "!=":
		return !looseEqual(left, right), nil
	case "<", "<=", ">", ">=":
		return compare(n.Op, left, right), nil
	}
	return nil, fmt.Errorf("%w: unknown operator %q", ErrSyntax, n.Op)
}

// primitive converts objects to their string form for "+".
func primitive(v any) any {
	v = normalize(v)
	if isPrimitive(v) {
		return v
	}
	return toString(v)
}

func compare(op string, a, b any) bool {
	a, b = primitive(a), primitive(b)
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			switch op {
			case "<":
				return as < bs
			case "<=":
				return as <= bs
			case ">":
				return as > bs
			default:
				return as >= bs
			}
		}
	}
	x, y := toNumber(a), toNumber(b)
	if math.IsNaN(x) || math.IsNaN(y) {
		return false
	}
	switch op {
	case "<":
		return x < y
	case "<=":
		return x <= y
	case ">":
		return x > y
	default:
		return x >= y
	}
}

// member reads obj.name.
func member(obj any, name string) (any, error) {
	obj = normalize(obj)
	if isNullish(obj) {
		return nil, typeErrorf("cannot read property %q of %s", name, toString(obj))
	}
	switch x := obj.(type) {
	case string:
		if name == "length" {
			return float64(len([]rune(x))), nil
		}
		return Undefined, nil
	case float64, bool, Func:
		return Undefined, nil
	}
	if v, ok := binding.Lookup(obj, name); ok {
		return normalize(v), nil
	}
	return Undefined, nil
}

func evalCall(n *Call, env Env) (any, error) {
	args := make([]any, len(n.Args))
	evalArgs := func() error {
		for i, a := range n.Args {
			v, err := eval(a, env)
			if err != nil {
				return err
			}
			args[i] = v
		}
		return nil
	}

	m, ok := n.Callee.(*Member)
	if !ok {
		callee, err := eval(n.Callee, env)
		if err != nil {
			return nil, err
		}
		fn, ok := callee.(Func)
		if !ok {
			return nil, typeErrorf("%s is not a function", n.Callee)
		}
		if err := evalArgs(); err != nil {
			return nil, err
		}
		return callFunc(fn, args)
	}

	obj, err := eval(m.Object, env)
	if err != nil {
		return nil, err
	}
	obj = normalize(obj)
	if isNullish(obj) {
		return nil, typeErrorf("cannot read property %q of %s", m.Name, toString(obj))
	}
	if err := evalArgs(); err != nil {
		return nil, err
	}

	// A function-valued property wins over built-in methods.
	if !isPrimitive(obj) {
		if v, ok := binding.Lookup(obj, m.Name); ok {
			if fn, ok := normalize(v).(Func); ok {
				return callFunc(fn, args)
			}
		}
	}
	return callMethod(obj, m.Name, args)
}

func callFunc(fn Func, args []any) (any, error) {
	v, err := fn(args...)
	if err != nil {
		return nil, err
	}
	return normalize(v), nil
}
