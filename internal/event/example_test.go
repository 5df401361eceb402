package event_test

import (
	"fmt"

	"github.com/dshills/tether/internal/event"
)

// Example_basicUsage demonstrates subscribing, invoking and unsubscribing.
func Example_basicUsage() {
	changed := event.New[string]()

	h := event.NewHandler(func(name string) {
		fmt.Println("changed:", name)
	})
	if err := changed.AddHandler(h); err != nil {
		fmt.Printf("AddHandler failed: %v\n", err)
		return
	}

	changed.Invoke("title")

	if _, err := changed.RemoveHandler(h); err != nil {
		fmt.Printf("RemoveHandler failed: %v\n", err)
		return
	}
	changed.Invoke("ignored")
	fmt.Println("handlers:", changed.Len())

	// Output:
	// changed: title
	// handlers: 0
}

// Example_duplicateSubscription shows that a handler can only be added once.
func Example_duplicateSubscription() {
	changed := event.New[int]()
	h := changed.Subscribe(func(int) {})

	err := changed.AddHandler(h)
	fmt.Println(err)

	// Output: handler is already subscribed
}
