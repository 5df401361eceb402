package observable_test

import (
	"encoding/json"
	"fmt"

	"github.com/dshills/tether/internal/event"
	"github.com/dshills/tether/internal/observable"
)

// ExampleCollection_Push shows that structural events precede property events.
func ExampleCollection_Push() {
	c := observable.NewCollection([]string{"a", "b"})
	c.CollectionChanged().AddHandler(event.NewHandler(func(ch observable.CollectionChange) {
		fmt.Printf("%s at %d: %v\n", ch.Action, ch.NewIndex, ch.NewItem)
	}))
	c.PropertyChanged().AddHandler(event.NewHandler(func(name string) {
		fmt.Println("changed:", name)
	}))

	c.Push("c", "d")

	// Output:
	// create at 2: c
	// create at 3: d
	// changed: 2
	// changed: 3
	// changed: length
}

// ExampleObject shows nested conversion and serialization.
func ExampleObject() {
	o := observable.MustObject(map[string]any{
		"name": "ada",
		"tags": []any{"math", "engines"},
	})
	o.Set("name", "lovelace")

	tags, _ := o.Get("tags")
	tags.(*observable.Collection[any]).Push("poetry")

	data, _ := json.Marshal(o)
	fmt.Println(string(data))

	// Output: {"name":"lovelace","tags":["math","engines","poetry"]}
}
