package app

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/tether/internal/binding"
	"github.com/dshills/tether/internal/codec"
)

// BindingSpec is one entry of a bindings document. Exactly one of Path
// and Expression is set.
type BindingSpec struct {
	// Name identifies the bound value.
	Name string `json:"name" yaml:"name" toml:"name"`

	// Path follows a property path through the data.
	Path string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`

	// Default is used while the path does not resolve.
	Default any `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty"`

	// Expression computes the value from {path} placeholders.
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty" toml:"expression,omitempty"`

	// Mode is "oneway" (the default), "twoway" or "onetime".
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`
}

// bindingsDocument is the top level of a bindings file.
type bindingsDocument struct {
	Bindings []BindingSpec `json:"bindings" yaml:"bindings" toml:"bindings"`
}

// Validate checks the entry on its own.
func (s BindingSpec) Validate() error {
	switch {
	case s.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidBinding)
	case s.Path == "" && s.Expression == "":
		return fmt.Errorf("%w: one of path or expression is required", ErrInvalidBinding)
	case s.Path != "" && s.Expression != "":
		return fmt.Errorf("%w: path and expression are exclusive", ErrInvalidBinding)
	}
	mode, err := binding.ParseMode(s.Mode)
	if err != nil {
		return err
	}
	if s.Expression != "" && mode == binding.TwoWay {
		return fmt.Errorf("%w: expressions cannot be two-way", ErrInvalidBinding)
	}
	return nil
}

// ParseBindings decodes a bindings document:
//
//	[[bindings]]
//	name = "title"
//	path = "user.name"
//	default = "anonymous"
//
//	[[bindings]]
//	name = "remaining"
//	expression = "{todos}.length + ' left'"
func ParseBindings(data []byte, f codec.Format) ([]BindingSpec, error) {
	var doc bindingsDocument
	var err error
	switch f {
	case codec.FormatJSON:
		err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &doc)
	case codec.FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case codec.FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("%w: %v", codec.ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, &codec.DecodeError{Format: f, Err: err}
	}

	seen := make(map[string]bool, len(doc.Bindings))
	for i, spec := range doc.Bindings {
		if err := spec.Validate(); err != nil {
			return nil, &SpecError{Index: i, Name: spec.Name, Err: err}
		}
		if seen[spec.Name] {
			return nil, &SpecError{Index: i, Name: spec.Name, Err: fmt.Errorf("%w: duplicate name", ErrInvalidBinding)}
		}
		seen[spec.Name] = true
	}
	return doc.Bindings, nil
}

// LoadBindings reads a bindings file in any supported format.
func LoadBindings(path string) ([]BindingSpec, error) {
	f, err := codec.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bindings: %w", err)
	}
	specs, err := ParseBindings(data, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return specs, nil
}
