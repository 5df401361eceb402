// Package codec reads and writes the data documents tether binds to.
//
// Documents are JSON, YAML or TOML and decode into a tree of
// map[string]any, []any and scalars with JSON-compatible types: numbers
// are float64 for JSON and int64 or float64 for YAML and TOML, and dates
// become strings. Scope turns that tree into an observable graph; Encode
// goes the other way and accepts observables directly.
//
// Select and Patch address documents with gjson/sjson paths such as
// "user.tags.0" or "items.#.name".
package codec
