package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ChoiceKind discriminates the Choices union.
type ChoiceKind uint8

const (
	ChoicesNone   ChoiceKind = iota // No choices declared
	ChoicesList                     // Plain values
	ChoicesImages                   // {url,value} pairs
	ChoicesNested                   // Mapping of mappings, selected by filterBy
)

// ImageChoice is one selectable image of an IMAGE field.
type ImageChoice struct {
	URL   string
	Value string
}

// NestedGroup is one entry of a nested choice mapping. Keys are the
// choices offered when the group is selected, in source order.
type NestedGroup struct {
	Name string
	Keys []string
}

// Choices is the choice set of a field.
type Choices struct {
	Kind   ChoiceKind
	List   []string
	Images []ImageChoice
	Nested []NestedGroup
}

// ListChoices builds a plain choice list.
func ListChoices(values ...string) Choices {
	return Choices{Kind: ChoicesList, List: values}
}

// ImageChoices builds an image choice list.
func ImageChoices(images ...ImageChoice) Choices {
	return Choices{Kind: ChoicesImages, Images: images}
}

// NestedChoices builds a nested choice mapping.
func NestedChoices(groups ...NestedGroup) Choices {
	return Choices{Kind: ChoicesNested, Nested: groups}
}

// IsZero reports whether no choices are declared.
func (c Choices) IsZero() bool { return c.Kind == ChoicesNone }

// Group returns the keys of the nested group with the given name.
func (c Choices) Group(name string) ([]string, bool) {
	for _, g := range c.Nested {
		if g.Name == name {
			return g.Keys, true
		}
	}
	return nil, false
}

// Resolve returns the values offered by a list-style control. For nested
// choices the group is picked by selector, the current value of the field
// named by filterBy; an unknown selector yields no choices.
func (c Choices) Resolve(selector string) []string {
	switch c.Kind {
	case ChoicesList:
		return c.List
	case ChoicesNested:
		keys, _ := c.Group(selector)
		return keys
	case ChoicesImages:
		values := make([]string, len(c.Images))
		for i, img := range c.Images {
			values[i] = img.Value
		}
		return values
	default:
		return nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Choices) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Choices{}
		return nil
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		return c.fromJSONList(items)
	case '{':
		groups, err := decodeNestedJSON(data)
		if err != nil {
			return err
		}
		*c = NestedChoices(groups...)
		return nil
	default:
		return fmt.Errorf("schema: choices must be a list or a mapping, got %s", data)
	}
}

func (c *Choices) fromJSONList(items []json.RawMessage) error {
	if len(items) > 0 && bytes.HasPrefix(bytes.TrimSpace(items[0]), []byte("{")) {
		images := make([]ImageChoice, 0, len(items))
		for _, item := range items {
			var wire struct {
				URL   string          `json:"url"`
				Value json.RawMessage `json:"value"`
			}
			if err := json.Unmarshal(item, &wire); err != nil {
				return fmt.Errorf("schema: image choice: %w", err)
			}
			value, err := jsonScalar(wire.Value)
			if err != nil {
				return fmt.Errorf("schema: image choice value: %w", err)
			}
			images = append(images, ImageChoice{URL: wire.URL, Value: value})
		}
		*c = ImageChoices(images...)
		return nil
	}

	values := make([]string, 0, len(items))
	for _, item := range items {
		v, err := jsonScalar(item)
		if err != nil {
			return fmt.Errorf("schema: choice: %w", err)
		}
		values = append(values, v)
	}
	*c = ListChoices(values...)
	return nil
}

// decodeNestedJSON walks a mapping of mappings token by token so that key
// order survives decoding.
func decodeNestedJSON(data []byte) ([]NestedGroup, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var groups []NestedGroup
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("schema: unexpected token %v in choices", tok)
		}
		var inner json.RawMessage
		if err := dec.Decode(&inner); err != nil {
			return nil, err
		}
		keys, err := orderedKeys(inner)
		if err != nil {
			return nil, fmt.Errorf("schema: choices %q: %w", name, err)
		}
		groups = append(groups, NestedGroup{Name: name, Keys: keys})
	}
	return groups, nil
}

func orderedKeys(data json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a mapping")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// jsonScalar renders a JSON string, number or bool as its plain text form.
func jsonScalar(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected a scalar, got %s", raw)
	}
}

// MarshalJSON implements json.Marshaler.
func (c Choices) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ChoicesList:
		return json.Marshal(c.List)
	case ChoicesImages:
		type image struct {
			URL   string `json:"url"`
			Value string `json:"value"`
		}
		out := make([]image, len(c.Images))
		for i, img := range c.Images {
			out[i] = image{URL: img.URL, Value: img.Value}
		}
		return json.Marshal(out)
	case ChoicesNested:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, g := range c.Nested {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, _ := json.Marshal(g.Name)
			buf.Write(name)
			buf.WriteString(":{")
			for j, k := range g.Keys {
				if j > 0 {
					buf.WriteByte(',')
				}
				key, _ := json.Marshal(k)
				buf.Write(key)
				buf.WriteString(":true")
			}
			buf.WriteByte('}')
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Choices) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.MappingNode {
			images := make([]ImageChoice, 0, len(node.Content))
			for _, item := range node.Content {
				var wire struct {
					URL   string `yaml:"url"`
					Value string `yaml:"value"`
				}
				if err := item.Decode(&wire); err != nil {
					return fmt.Errorf("schema: image choice: %w", err)
				}
				images = append(images, ImageChoice{URL: wire.URL, Value: wire.Value})
			}
			*c = ImageChoices(images...)
			return nil
		}
		values := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("schema: line %d: choice must be a scalar", item.Line)
			}
			values = append(values, item.Value)
		}
		*c = ListChoices(values...)
		return nil

	case yaml.MappingNode:
		groups := make([]NestedGroup, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			name, inner := node.Content[i], node.Content[i+1]
			if inner.Kind != yaml.MappingNode {
				return fmt.Errorf("schema: line %d: choices %q must be a mapping", inner.Line, name.Value)
			}
			keys := make([]string, 0, len(inner.Content)/2)
			for j := 0; j+1 < len(inner.Content); j += 2 {
				keys = append(keys, inner.Content[j].Value)
			}
			groups = append(groups, NestedGroup{Name: name.Value, Keys: keys})
		}
		*c = NestedChoices(groups...)
		return nil

	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*c = Choices{}
			return nil
		}
	}
	return fmt.Errorf("schema: line %d: choices must be a list or a mapping", node.Line)
}
