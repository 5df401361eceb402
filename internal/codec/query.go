package codec

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Pretty reformats JSON with the given indent, optionally with terminal
// colors.
func Pretty(data []byte, indent int, color bool) []byte {
	opts := *pretty.DefaultOptions
	opts.SortKeys = true
	if indent > 0 {
		opts.Indent = fmt.Sprintf("%*s", indent, "")
	}
	out := pretty.PrettyOptions(data, &opts)
	if color {
		out = pretty.Color(out, nil)
	}
	return out
}

// Select returns the raw JSON of the value at a gjson path.
func Select(data []byte, path string) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return []byte(res.Raw), nil
}

// SelectValue returns the value at a binding path such as "items[0].name"
// decoded into the common tree shape.
func SelectValue(data []byte, path string) (any, error) {
	query, err := QueryPath(path)
	if err != nil {
		return nil, err
	}
	raw, err := Select(data, query)
	if err != nil {
		return nil, err
	}
	return Decode(raw, FormatJSON)
}

// Patch sets the value at an sjson path in a JSON document, creating
// intermediate objects as needed.
func Patch(data []byte, path string, value any) ([]byte, error) {
	if len(data) > 0 && !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	out, err := sjson.SetBytes(data, path, normalize(value))
	if err != nil {
		return nil, fmt.Errorf("patching %s: %w", path, err)
	}
	return out, nil
}

// Delete removes the value at an sjson path from a JSON document.
func Delete(data []byte, path string) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	if !gjson.GetBytes(data, path).Exists() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	out, err := sjson.DeleteBytes(data, path)
	if err != nil {
		return nil, fmt.Errorf("deleting %s: %w", path, err)
	}
	return out, nil
}

// PatchDocument sets the value at a binding path such as "items[0].name"
// in a document of any format and re-encodes it in that format.
func PatchDocument(data []byte, f Format, path string, value any, indent int) ([]byte, error) {
	query, err := QueryPath(path)
	if err != nil {
		return nil, err
	}
	if f == FormatJSON {
		out, err := Patch(data, query, value)
		if err != nil {
			return nil, err
		}
		return Pretty(out, indent, false), nil
	}

	doc, err := Decode(data, f)
	if err != nil {
		return nil, err
	}
	asJSON, err := Encode(doc, FormatJSON, 0)
	if err != nil {
		return nil, err
	}
	patched, err := Patch(asJSON, query, value)
	if err != nil {
		return nil, err
	}
	doc, err = decodeExactJSON(patched)
	if err != nil {
		return nil, err
	}
	return Encode(doc, f, indent)
}

// ParseValue interprets a command-line value: valid JSON (numbers, true,
// null, quoted strings, arrays, objects) is decoded, anything else is
// taken as a literal string.
func ParseValue(s string) any {
	if gjson.Valid(s) {
		if v, err := decodeExactJSON([]byte(s)); err == nil {
			return v
		}
	}
	return s
}
