package observable

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/dshills/tether/internal/event"
)

func TestNewObject_CopiesSource(t *testing.T) {
	src := map[string]any{"name": "ada", "age": 36}
	o, err := NewObject(src)
	if err != nil {
		t.Fatalf("NewObject() error = %v", err)
	}

	src["name"] = "changed"
	if v, _ := o.Get("name"); v != "ada" {
		t.Errorf("Get(name) = %v, want ada", v)
	}
	if got := o.Keys(); !reflect.DeepEqual(got, []string{"age", "name"}) {
		t.Errorf("Keys() = %v, want [age name]", got)
	}
}

func TestNewObject_SourceErrors(t *testing.T) {
	existing := MustObject(map[string]any{})

	tests := []struct {
		name   string
		source any
	}{
		{"nil", nil},
		{"scalar", 42},
		{"string", "text"},
		{"slice", []any{1, 2}},
		{"typed slice", []string{"a"}},
		{"observable", existing},
		{"non-string keys", map[int]any{1: 2}},
		{"date", time.Now()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewObject(tt.source)
			if !errors.Is(err, ErrSourceType) {
				t.Errorf("NewObject(%T) error = %v, want ErrSourceType", tt.source, err)
			}
			var se *SourceTypeError
			if !errors.As(err, &se) {
				t.Errorf("NewObject(%T) error is %T, want *SourceTypeError", tt.source, err)
			}
		})
	}
}

func TestObject_SetNotifiesOnce(t *testing.T) {
	o := MustObject(map[string]any{"a": 1})
	var names []string
	o.PropertyChanged().AddHandler(event.NewHandler(func(name string) {
		names = append(names, name)
	}))

	o.Set("a", 2)
	o.Set("a", map[string]any{"deep": true})

	if !reflect.DeepEqual(names, []string{"a", "a"}) {
		t.Errorf("notifications = %v, want [a a]", names)
	}
	if _, ok := mustGet(t, o, "a").(*Object); !ok {
		t.Errorf("assigned map stored as %T, want *Object", mustGet(t, o, "a"))
	}
}

func TestObject_SetDefinesNewProperty(t *testing.T) {
	o := MustObject(map[string]any{"a": 1})
	var names []string
	o.PropertyChanged().AddHandler(event.NewHandler(func(name string) {
		names = append(names, name)
	}))

	o.Set("b", 2)

	if !o.Has("b") || o.Len() != 2 {
		t.Errorf("Has(b) = %v, Len() = %d", o.Has("b"), o.Len())
	}
	if got := o.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v, want [a b]", got)
	}
	if !reflect.DeepEqual(names, []string{"b"}) {
		t.Errorf("notifications = %v, want [b]", names)
	}
}

func TestObject_NestedConversion(t *testing.T) {
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	o := MustObject(map[string]any{
		"child": map[string]any{"x": 1},
		"list":  []any{1, 2},
		"when":  when,
		"plain": "text",
	})

	if _, ok := mustGet(t, o, "child").(*Object); !ok {
		t.Errorf("child is %T, want *Object", mustGet(t, o, "child"))
	}
	if _, ok := mustGet(t, o, "list").(*Collection[any]); !ok {
		t.Errorf("list is %T, want *Collection[any]", mustGet(t, o, "list"))
	}
	if got := mustGet(t, o, "when"); got != when {
		t.Errorf("when = %v, want %v", got, when)
	}

	raw := MustObject(map[string]any{"child": map[string]any{"x": 1}}, WithoutNestedConversion())
	if _, ok := mustGet(t, raw, "child").(map[string]any); !ok {
		t.Errorf("unconverted child is %T, want map", mustGet(t, raw, "child"))
	}
	raw.Set("other", []any{1})
	if _, ok := mustGet(t, raw, "other").([]any); !ok {
		t.Errorf("unconverted assignment is %T, want []any", mustGet(t, raw, "other"))
	}
}

func TestObject_FromStruct(t *testing.T) {
	type address struct {
		City string `json:"city"`
	}
	type person struct {
		Name    string `json:"name"`
		Address address
		Secret  string `json:"-"`
		hidden  int
	}

	o := MustObject(person{Name: "ada", Address: address{City: "London"}, hidden: 1})

	if got := o.Keys(); !reflect.DeepEqual(got, []string{"name", "Address"}) {
		t.Errorf("Keys() = %v, want [name Address]", got)
	}
	addr, ok := mustGet(t, o, "Address").(*Object)
	if !ok {
		t.Fatalf("Address is %T, want *Object", mustGet(t, o, "Address"))
	}
	if city, _ := addr.Get("city"); city != "London" {
		t.Errorf("city = %v, want London", city)
	}
}

func TestObject_ToMapAndJSON(t *testing.T) {
	o := MustObject(map[string]any{
		"b": []any{1, map[string]any{"c": true}},
		"a": "x",
	})

	want := map[string]any{
		"a": "x",
		"b": []any{1, map[string]any{"c": true}},
	}
	if got := o.ToMap(); !reflect.DeepEqual(got, want) {
		t.Errorf("ToMap() = %#v, want %#v", got, want)
	}

	data, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"a":"x","b":[1,{"c":true}]}` {
		t.Errorf("json = %s", data)
	}
}

func TestObject_PropertyAccess(t *testing.T) {
	o := MustObject(map[string]any{"a": 1})

	var g PropertyGetter = o
	var s PropertySetter = o

	if err := s.SetProperty("a", 5); err != nil {
		t.Errorf("SetProperty() error = %v", err)
	}
	if v, ok := g.Property("a"); !ok || v != 5 {
		t.Errorf("Property(a) = %v, %v want 5, true", v, ok)
	}
	if _, ok := g.Property("missing"); ok {
		t.Error("Property(missing) reported ok")
	}
}

func mustGet(t *testing.T, o *Object, name string) any {
	t.Helper()
	v, ok := o.Get(name)
	if !ok {
		t.Fatalf("Get(%q) missing", name)
	}
	return v
}
