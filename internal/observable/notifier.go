package observable

import "github.com/dshills/tether/internal/event"

// Notifier is implemented by anything that announces its own property
// changes by name.
type Notifier interface {
	PropertyChanged() *event.Event[string]
}

// CollectionNotifier is implemented by sequences that announce structural
// changes.
type CollectionNotifier interface {
	CollectionChanged() *event.Event[CollectionChange]
}

// PropertyGetter exposes named properties for reading.
type PropertyGetter interface {
	// Property returns the value of name and whether it exists.
	Property(name string) (any, bool)
}

// PropertySetter exposes named properties for writing.
type PropertySetter interface {
	SetProperty(name string, value any) error
}

// Snapshotter is implemented by collections that can hand out a stable,
// untyped copy of their items.
type Snapshotter interface {
	Snapshot() []any
}

// Action identifies the kind of structural change.
type Action int

const (
	// Create means an item was inserted.
	Create Action = iota
	// Delete means an item was removed.
	Delete
	// Replace means the item at an index was swapped for another.
	Replace
	// Move means an item changed position.
	Move
	// Attach means an item was inserted as part of a relocation between
	// collections; consumers must not treat it as newly created.
	Attach
	// Detach means an item was removed as part of a relocation; consumers
	// must not treat it as destroyed.
	Detach
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case Create:
		return "create"
	case Delete:
		return "delete"
	case Replace:
		return "replace"
	case Move:
		return "move"
	case Attach:
		return "attach"
	case Detach:
		return "detach"
	default:
		return "unknown"
	}
}

// CollectionChange describes one structural change. Indices that do not
// apply to the action are -1.
type CollectionChange struct {
	Action   Action
	NewIndex int
	OldIndex int
	NewItem  any
	OldItem  any
}
