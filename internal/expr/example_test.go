package expr_test

import (
	"fmt"

	"github.com/dshills/tether/internal/expr"
	"github.com/dshills/tether/internal/logging"
	"github.com/dshills/tether/internal/observable"
)

// Example_collectionLength shows a result that follows collection edits.
func Example_collectionLength() {
	scope := observable.MustObject(map[string]any{"todo": []any{"write", "test"}})

	e, err := expr.New("{todo}.length + ' left'", scope, expr.WithLogger(logging.NullLogger))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer e.Close()
	fmt.Println(e.Result())

	v, _ := scope.Get("todo")
	v.(*observable.Collection[any]).Push("ship")
	fmt.Println(e.Result())

	// Output:
	// 2 left
	// 3 left
}

// ExampleCompile evaluates a formula without a scope.
func ExampleCompile() {
	p, err := expr.Compile("n > 1 ? n + ' items' : 'one item'")
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, n := range []int{1, 3} {
		v, _ := p.Eval(expr.Env{Params: map[string]any{"n": n}})
		fmt.Println(v)
	}

	// Output:
	// one item
	// 3 items
}
