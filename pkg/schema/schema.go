package schema

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// SortOption is one entry of the sort-by select.
type SortOption struct {
	Title string `json:"title" yaml:"title"`
	Value string `json:"value" yaml:"value"`
}

// Schema is a declarative filter form.
type Schema struct {
	// BaseURL overrides the page URL as the source of the initial state and
	// the target of commits.
	BaseURL string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`

	SortBy   []SortOption      `json:"sortby,omitempty" yaml:"sortby,omitempty"`
	Elements []FieldDescriptor `json:"elements" yaml:"elements"`
}

// Format is the encoding of a schema document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// DetectFormat picks the format from a file name or object key.
// Anything other than .yaml/.yml is treated as JSON.
func DetectFormat(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes a schema document.
func Parse(data []byte, format Format) (*Schema, error) {
	var s Schema
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	default:
		err = json.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, format, err)
	}
	return &s, nil
}

// Field returns the descriptor for key.
func (s *Schema) Field(key string) (FieldDescriptor, bool) {
	if s == nil {
		return FieldDescriptor{}, false
	}
	for _, f := range s.Elements {
		if f.Key == key {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Unsupported returns the fields whose type no renderer understands.
func (s *Schema) Unsupported() []FieldDescriptor {
	if s == nil {
		return nil
	}
	var out []FieldDescriptor
	for _, f := range s.Elements {
		if f.Type == FieldUnknown {
			out = append(out, f)
		}
	}
	return out
}
