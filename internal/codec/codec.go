package codec

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/tether/internal/observable"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodeFile reads path and decodes it in the format named by its
// extension.
func DecodeFile(path string) (any, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Decode(data, f)
	if err != nil {
		if derr, ok := err.(*DecodeError); ok {
			derr.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Decode parses data into a plain tree. An empty YAML document decodes to
// nil; an empty TOML document to an empty map.
func Decode(data []byte, f Format) (any, error) {
	var (
		doc any
		err error
	)
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		var m map[string]any
		err = toml.Unmarshal(data, &m)
		if m == nil {
			m = map[string]any{}
		}
		doc = m
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, &DecodeError{Format: f, Err: err}
	}
	return normalize(doc), nil
}

// normalize copies v, rewriting decoder-specific types and unwrapping
// observables into the common tree shape.
func normalize(v any) any {
	switch x := v.(type) {
	case observable.Notifier:
		if p := observable.Plain(x); p != v {
			return normalize(p)
		}
		return x
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalize(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalize(item)
		}
		return out
	case jsonNumber:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case int:
		return int64(x)
	case uint64:
		return float64(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case toml.LocalDate:
		return x.String()
	case toml.LocalTime:
		return x.String()
	case toml.LocalDateTime:
		return x.String()
	}
	return v
}

// jsonNumber is satisfied by the number type a decoder yields with
// UseNumber enabled.
type jsonNumber interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

// decodeExactJSON decodes JSON keeping integers as int64, so values that
// pass through JSON on their way to YAML or TOML keep their type.
func decodeExactJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &DecodeError{Format: FormatJSON, Err: err}
	}
	return normalize(doc), nil
}

// Scope wraps a decoded document in observables so bindings can follow
// changes to it.
func Scope(doc any) (observable.Notifier, error) {
	return observable.From(doc)
}

// Encode renders v in format f. Observables are encoded through their
// current contents. indent is the number of spaces per level; zero gives
// compact JSON and the library default for YAML and TOML.
func Encode(v any, f Format, indent int) ([]byte, error) {
	plain := normalize(v)
	pad := strings.Repeat(" ", max(indent, 0))

	var buf bytes.Buffer
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if indent > 0 {
			enc.SetIndent("", pad)
		}
		if err := enc.Encode(plain); err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		if indent > 0 {
			enc.SetIndent(indent)
		}
		if err := enc.Encode(plain); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
	case FormatTOML:
		if _, ok := plain.(map[string]any); !ok {
			return nil, fmt.Errorf("encoding toml: document must be a table, got %T", plain)
		}
		enc := toml.NewEncoder(&buf)
		if indent > 0 {
			enc.SetIndentTables(true)
			enc.SetIndentSymbol(pad)
		}
		if err := enc.Encode(plain); err != nil {
			return nil, fmt.Errorf("encoding toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, f)
	}
	return buf.Bytes(), nil
}
