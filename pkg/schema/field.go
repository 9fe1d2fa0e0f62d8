package schema

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FieldType is the control discriminator of a field descriptor.
type FieldType uint8

const (
	FieldUnknown     FieldType = iota // Unrecognized type name
	FieldText                         // Single text input
	FieldRangeSlider                  // Slider with optional tick labels
	FieldRangeText                    // Paired min/max text inputs
	FieldRating                       // Star rating radios
	FieldImage                        // Image gallery, exclusive choice
	FieldCheckList                    // Multi-select checkboxes
	FieldOptionList                   // Single-select radios
)

var fieldTypeNames = map[FieldType]string{
	FieldText:        "TEXT",
	FieldRangeSlider: "RANGE_SLIDER",
	FieldRangeText:   "RANGE_TEXT",
	FieldRating:      "RATING",
	FieldImage:       "IMAGE",
	FieldCheckList:   "CHK_LIST",
	FieldOptionList:  "OPT_LIST",
}

// String returns the schema name of the type.
func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsRange reports whether the field stores a combined "min-max" value.
func (t FieldType) IsRange() bool {
	return t == FieldRangeSlider || t == FieldRangeText
}

// ParseFieldType maps a schema type name to its FieldType.
// It returns FieldUnknown and false for names outside the closed set.
func ParseFieldType(name string) (FieldType, bool) {
	for t, n := range fieldTypeNames {
		if n == name {
			return t, true
		}
	}
	return FieldUnknown, false
}

// Number is a numeric schema attribute. It accepts JSON/YAML numbers and
// numeric strings such as "1.0".
type Number float64

// Float returns the value as a float64.
func (n Number) Float() float64 { return float64(n) }

// String formats the number without trailing zeros.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*n = Number(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("schema: invalid number %q", v)
		}
		*n = Number(f)
	default:
		return fmt.Errorf("schema: invalid number %s", data)
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Number) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("schema: line %d: number must be a scalar", node.Line)
	}
	f, err := strconv.ParseFloat(node.Value, 64)
	if err != nil {
		return fmt.Errorf("schema: line %d: invalid number %q", node.Line, node.Value)
	}
	*n = Number(f)
	return nil
}

// FieldDescriptor describes one filter control.
type FieldDescriptor struct {
	Title string
	Type  FieldType

	// RawType is the type name as written in the source document.
	RawType string

	// Key is the filter key the control reads and writes.
	Key string

	Min  *Number
	Max  *Number
	Step *Number

	Choices Choices

	// FilterBy names another filter whose current value selects the
	// choice set of a nested CHK_LIST.
	FilterBy string

	// Ticks enables tick labels on a RANGE_SLIDER.
	Ticks bool
}

// fieldWire is the serialized shape shared by JSON and YAML.
type fieldWire struct {
	Title    string  `json:"title" yaml:"title"`
	Type     string  `json:"type" yaml:"type"`
	Key      string  `json:"key" yaml:"key"`
	Min      *Number `json:"min,omitempty" yaml:"min,omitempty"`
	Max      *Number `json:"max,omitempty" yaml:"max,omitempty"`
	Step     *Number `json:"step,omitempty" yaml:"step,omitempty"`
	Choices  Choices `json:"choices,omitempty" yaml:"choices,omitempty"`
	FilterBy string  `json:"filterBy,omitempty" yaml:"filterBy,omitempty"`
	Ticks    bool    `json:"ticks,omitempty" yaml:"ticks,omitempty"`
}

func (f *FieldDescriptor) fromWire(w fieldWire) {
	t, _ := ParseFieldType(w.Type)
	*f = FieldDescriptor{
		Title:    w.Title,
		Type:     t,
		RawType:  w.Type,
		Key:      w.Key,
		Min:      w.Min,
		Max:      w.Max,
		Step:     w.Step,
		Choices:  w.Choices,
		FilterBy: w.FilterBy,
		Ticks:    w.Ticks,
	}
}

func (f FieldDescriptor) toWire() fieldWire {
	name := f.RawType
	if f.Type != FieldUnknown {
		name = f.Type.String()
	}
	return fieldWire{
		Title:    f.Title,
		Type:     name,
		Key:      f.Key,
		Min:      f.Min,
		Max:      f.Max,
		Step:     f.Step,
		Choices:  f.Choices,
		FilterBy: f.FilterBy,
		Ticks:    f.Ticks,
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FieldDescriptor) UnmarshalJSON(data []byte) error {
	var w fieldWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	f.fromWire(w)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FieldDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.toWire())
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *FieldDescriptor) UnmarshalYAML(node *yaml.Node) error {
	var w fieldWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	f.fromWire(w)
	return nil
}

// MinOr returns the lower bound, or def when unset.
func (f FieldDescriptor) MinOr(def float64) float64 {
	if f.Min == nil {
		return def
	}
	return f.Min.Float()
}

// MaxOr returns the upper bound, or def when unset.
func (f FieldDescriptor) MaxOr(def float64) float64 {
	if f.Max == nil {
		return def
	}
	return f.Max.Float()
}

// StepOr returns the slider step, or def when unset.
func (f FieldDescriptor) StepOr(def float64) float64 {
	if f.Step == nil {
		return def
	}
	return f.Step.Float()
}

// MinKey returns the shadow key holding the lower half of a range value.
func (f FieldDescriptor) MinKey() string { return f.Key + "_Min" }

// MaxKey returns the shadow key holding the upper half of a range value.
func (f FieldDescriptor) MaxKey() string { return f.Key + "_Max" }
