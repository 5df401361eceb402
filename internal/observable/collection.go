package observable

import (
	"iter"
	"slices"
	"strconv"

	"github.com/dshills/tether/internal/event"
)

// LengthProperty is the property name raised when a collection's length changes.
const LengthProperty = "length"

// Collection is an ordered, mutable sequence that reports every structural
// change. Collection is not safe for concurrent use.
type Collection[T any] struct {
	items   []T
	opts    options
	changed *event.Event[string]
	structs *event.Event[CollectionChange]

	// busy names the mutator whose structural phase is running.
	busy string
}

// NewCollection creates a collection holding items. Items pass through the
// same conversion as Push.
func NewCollection[T any](items []T, opts ...Option) *Collection[T] {
	c := &Collection[T]{
		items:   make([]T, 0, len(items)),
		opts:    applyOptions(opts),
		changed: event.New[string](),
		structs: event.New[CollectionChange](),
	}
	for _, it := range items {
		c.items = append(c.items, c.convertItem(it))
	}
	return c
}

// PropertyChanged returns the event raised for index and length changes.
func (c *Collection[T]) PropertyChanged() *event.Event[string] {
	return c.changed
}

// CollectionChanged returns the event raised for each structural change.
func (c *Collection[T]) CollectionChanged() *event.Event[CollectionChange] {
	return c.structs
}

// convertItem wraps a convertible item when the element type can hold the
// resulting observable.
func (c *Collection[T]) convertItem(item T) T {
	if !c.opts.convert {
		return item
	}
	wrapped := wrap(any(item), c.opts)
	if t, ok := wrapped.(T); ok {
		return t
	}
	return item
}

// span is the set of indices whose occupant changed during one mutator call.
type span struct {
	oldLen  int
	indices []int
}

func rangeSpan(oldLen, lo, hi int) span {
	s := span{oldLen: oldLen}
	for i := lo; i < hi; i++ {
		s.indices = append(s.indices, i)
	}
	return s
}

// mutate runs the structural phase of op under the reentrancy guard, then
// raises the net property changes.
func (c *Collection[T]) mutate(op string, fn func() span) {
	if c.busy != "" {
		panic(&ReentrantMutationError{Op: op, InProgress: c.busy})
	}

	var s span
	func() {
		c.busy = op
		defer func() { c.busy = "" }()
		s = fn()
	}()

	for _, i := range s.indices {
		c.changed.Invoke(strconv.Itoa(i))
	}
	if len(c.items) != s.oldLen {
		c.changed.Invoke(LengthProperty)
	}
}

func (c *Collection[T]) insert(index int, item T, action Action) {
	c.items = slices.Insert(c.items, index, item)
	c.structs.Invoke(CollectionChange{
		Action:   action,
		NewIndex: index,
		OldIndex: -1,
		NewItem:  item,
	})
}

func (c *Collection[T]) remove(index int, action Action) T {
	item := c.items[index]
	c.items = slices.Delete(c.items, index, index+1)
	c.structs.Invoke(CollectionChange{
		Action:   action,
		NewIndex: -1,
		OldIndex: index,
		OldItem:  item,
	})
	return item
}

func (c *Collection[T]) move(from, to int) {
	item := c.items[from]
	c.items = slices.Delete(c.items, from, from+1)
	c.items = slices.Insert(c.items, to, item)
	c.structs.Invoke(CollectionChange{
		Action:   Move,
		NewIndex: to,
		OldIndex: from,
		NewItem:  item,
		OldItem:  item,
	})
}

// Push appends items and returns the new length.
func (c *Collection[T]) Push(items ...T) int {
	c.mutate("push", func() span {
		oldLen := len(c.items)
		for _, it := range items {
			c.insert(len(c.items), c.convertItem(it), Create)
		}
		return rangeSpan(oldLen, oldLen, len(c.items))
	})
	return len(c.items)
}

// Pop removes and returns the last item. It reports false on an empty
// collection.
func (c *Collection[T]) Pop() (T, bool) {
	var item T
	var ok bool
	c.mutate("pop", func() span {
		oldLen := len(c.items)
		if oldLen == 0 {
			return span{oldLen: oldLen}
		}
		item, ok = c.remove(oldLen-1, Delete), true
		return rangeSpan(oldLen, oldLen-1, oldLen)
	})
	return item, ok
}

// Shift removes and returns the first item. It reports false on an empty
// collection.
func (c *Collection[T]) Shift() (T, bool) {
	var item T
	var ok bool
	c.mutate("shift", func() span {
		oldLen := len(c.items)
		if oldLen == 0 {
			return span{oldLen: oldLen}
		}
		item, ok = c.remove(0, Delete), true
		return rangeSpan(oldLen, 0, oldLen)
	})
	return item, ok
}

// Unshift inserts items at the front, preserving their order, and returns
// the new length.
func (c *Collection[T]) Unshift(items ...T) int {
	c.mutate("unshift", func() span {
		oldLen := len(c.items)
		for i, it := range items {
			c.insert(i, c.convertItem(it), Create)
		}
		if len(items) == 0 {
			return span{oldLen: oldLen}
		}
		return rangeSpan(oldLen, 0, len(c.items))
	})
	return len(c.items)
}

// Splice removes deleteCount items starting at start, inserts items in
// their place and returns the removed items. A negative start counts back
// from the end; a negative deleteCount removes everything from start on.
func (c *Collection[T]) Splice(start, deleteCount int, items ...T) ([]T, error) {
	n := len(c.items)
	if start < 0 {
		start += n
	}
	if start < 0 || start > n {
		return nil, &RangeError{Op: "splice", Index: start, Len: n}
	}
	if deleteCount < 0 {
		deleteCount = n - start
	}
	if start+deleteCount > n {
		return nil, &RangeError{Op: "splice", Index: start + deleteCount, Len: n}
	}

	var removed []T
	c.mutate("splice", func() span {
		removed = make([]T, 0, deleteCount)
		for i := 0; i < deleteCount; i++ {
			removed = append(removed, c.remove(start, Delete))
		}
		for i, it := range items {
			c.insert(start+i, c.convertItem(it), Create)
		}

		if len(items) == deleteCount {
			return rangeSpan(n, start, start+len(items))
		}
		return rangeSpan(n, start, max(len(c.items), n))
	})
	return removed, nil
}

// Move relocates the item at from to index to.
func (c *Collection[T]) Move(from, to int) error {
	n := len(c.items)
	if from < 0 || from >= n {
		return &RangeError{Op: "move", Index: from, Len: n}
	}
	if to < 0 || to >= n {
		return &RangeError{Op: "move", Index: to, Len: n}
	}

	c.mutate("move", func() span {
		if from == to {
			return span{oldLen: n}
		}
		c.move(from, to)
		return rangeSpan(n, min(from, to), max(from, to)+1)
	})
	return nil
}

// Attach inserts an item that is being relocated from elsewhere.
// Observers receive Attach instead of Create.
func (c *Collection[T]) Attach(item T, index int) error {
	n := len(c.items)
	if index < 0 || index > n {
		return &RangeError{Op: "attach", Index: index, Len: n}
	}

	c.mutate("attach", func() span {
		c.insert(index, item, Attach)
		return rangeSpan(n, index, len(c.items))
	})
	return nil
}

// Detach removes an item that is being relocated elsewhere and returns it.
// Observers receive Detach instead of Delete.
func (c *Collection[T]) Detach(index int) (T, error) {
	n := len(c.items)
	if index < 0 || index >= n {
		var zero T
		return zero, &RangeError{Op: "detach", Index: index, Len: n}
	}

	var item T
	c.mutate("detach", func() span {
		item = c.remove(index, Detach)
		return rangeSpan(n, index, n)
	})
	return item, nil
}

// SetAt replaces the item at index i.
func (c *Collection[T]) SetAt(i int, value T) error {
	n := len(c.items)
	if i < 0 || i >= n {
		return &RangeError{Op: "set", Index: i, Len: n}
	}

	c.mutate("set", func() span {
		old := c.items[i]
		c.items[i] = c.convertItem(value)
		c.structs.Invoke(CollectionChange{
			Action:   Replace,
			NewIndex: i,
			OldIndex: i,
			NewItem:  c.items[i],
			OldItem:  old,
		})
		return rangeSpan(n, i, i+1)
	})
	return nil
}

// Sort orders the collection with a stable sort using cmp, which returns a
// negative number when a sorts before b. The reordering is carried out as a
// sequence of moves so observers see Move events only.
func (c *Collection[T]) Sort(cmp func(a, b T) int) {
	c.mutate("sort", func() span {
		n := len(c.items)
		target := make([]int, n)
		for i := range target {
			target[i] = i
		}
		snapshot := slices.Clone(c.items)
		slices.SortStableFunc(target, func(a, b int) int {
			return cmp(snapshot[a], snapshot[b])
		})

		// order[p] is the original index of the item now at position p.
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		for i, want := range target {
			j := slices.Index(order[i:], want) + i
			if j == i {
				continue
			}
			c.move(j, i)
			order = slices.Delete(order, j, j+1)
			order = slices.Insert(order, i, want)
		}

		s := span{oldLen: n}
		for i, orig := range order {
			if orig != i {
				s.indices = append(s.indices, i)
			}
		}
		return s
	})
}

// Reverse reverses the collection in place using len-1 moves.
func (c *Collection[T]) Reverse() {
	c.mutate("reverse", func() span {
		n := len(c.items)
		s := span{oldLen: n}
		if n < 2 {
			return s
		}
		for i := 0; i < n-1; i++ {
			c.move(n-1, i)
		}
		for i := 0; i < n; i++ {
			if n%2 == 1 && i == n/2 {
				continue
			}
			s.indices = append(s.indices, i)
		}
		return s
	})
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// At returns the item at index i. It reports false when i is outside
// [0, Len()).
func (c *Collection[T]) At(i int) (T, bool) {
	if i < 0 || i >= len(c.items) {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

// Items returns a copy of the items.
func (c *Collection[T]) Items() []T {
	return slices.Clone(c.items)
}

// ToJSON returns the plain item sequence, the form serializers should see.
func (c *Collection[T]) ToJSON() []T {
	return c.Items()
}

// Snapshot returns an untyped shallow copy of the items.
func (c *Collection[T]) Snapshot() []any {
	out := make([]any, len(c.items))
	for i, it := range c.items {
		out[i] = it
	}
	return out
}

// All iterates over index/item pairs.
func (c *Collection[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, it := range c.items {
			if !yield(i, it) {
				return
			}
		}
	}
}

// Slice returns a copy of the items in [start, end). Negative bounds count
// back from the end and out-of-range bounds are clamped.
func (c *Collection[T]) Slice(start, end int) []T {
	n := len(c.items)
	clamp := func(i int) int {
		if i < 0 {
			i += n
		}
		return min(max(i, 0), n)
	}
	start, end = clamp(start), clamp(end)
	if start >= end {
		return []T{}
	}
	return slices.Clone(c.items[start:end])
}

// IndexFunc returns the index of the first item satisfying f, or -1.
func (c *Collection[T]) IndexFunc(f func(T) bool) int {
	return slices.IndexFunc(c.items, f)
}

// Contains reports whether any item satisfies f.
func (c *Collection[T]) Contains(f func(T) bool) bool {
	return c.IndexFunc(f) >= 0
}

// Filter returns the items satisfying f.
func (c *Collection[T]) Filter(f func(T) bool) []T {
	var out []T
	for _, it := range c.items {
		if f(it) {
			out = append(out, it)
		}
	}
	return out
}

// Each calls f for every item in order.
func (c *Collection[T]) Each(f func(int, T)) {
	for i, it := range c.items {
		f(i, it)
	}
}

// Map applies f to every item of c.
func Map[T, U any](c *Collection[T], f func(T) U) []U {
	out := make([]U, len(c.items))
	for i, it := range c.items {
		out[i] = f(it)
	}
	return out
}

// Property implements PropertyGetter for "length" and numeric indices.
func (c *Collection[T]) Property(name string) (any, bool) {
	if name == LengthProperty {
		return len(c.items), true
	}
	i, err := strconv.Atoi(name)
	if err != nil {
		return nil, false
	}
	return c.At(i)
}

// SetProperty implements PropertySetter for numeric indices.
func (c *Collection[T]) SetProperty(name string, value any) error {
	if name == LengthProperty {
		return ErrReadOnlyProperty
	}
	i, err := strconv.Atoi(name)
	if err != nil {
		return ErrUnknownProperty
	}
	var item T
	if value != nil {
		v, ok := value.(T)
		if !ok {
			return ErrTypeMismatch
		}
		item = v
	}
	return c.SetAt(i, item)
}

func (c *Collection[T]) plain() any {
	out := make([]any, len(c.items))
	for i, it := range c.items {
		out[i] = Plain(it)
	}
	return out
}

// MarshalJSON encodes the collection as a plain JSON array.
func (c *Collection[T]) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.items)
}
