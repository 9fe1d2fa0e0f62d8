package vdom

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement VKind = iota // <div>, <input>, etc.
	KindText                 // Plain text node
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind              // Node type
	Tag      string             // Element tag name (e.g., "div")
	Props    Props              // Attributes
	Handlers map[string]Handler // Event handlers keyed by "on<event>"
	Children []*VNode           // Child nodes
	Key      string             // Stable identity among siblings
	Text     string             // For KindText
	HID      string             // Hydration ID (assigned during render)
}

// Props holds element attributes.
type Props map[string]any

// IsInteractive returns true if this node has event handlers and needs a HID.
func (v *VNode) IsInteractive() bool {
	return v != nil && v.Kind == KindElement && len(v.Handlers) > 0
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// Walk visits node and its descendants depth-first, in document order.
// Returning false from fn skips the node's children.
func Walk(node *VNode, fn func(*VNode) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for _, child := range node.Children {
		Walk(child, fn)
	}
}

// Find returns the first node, in document order, for which match is true.
func Find(node *VNode, match func(*VNode) bool) *VNode {
	var found *VNode
	Walk(node, func(n *VNode) bool {
		if found != nil {
			return false
		}
		if match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node for which match is true, in document order.
func FindAll(node *VNode, match func(*VNode) bool) []*VNode {
	var out []*VNode
	Walk(node, func(n *VNode) bool {
		if match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Attr returns the string form of an attribute, or "" when unset.
func (v *VNode) Attr(key string) string {
	if v == nil || v.Props == nil {
		return ""
	}
	switch val := v.Props[key].(type) {
	case string:
		return val
	case nil:
		return ""
	case bool:
		if val {
			return "true"
		}
		return ""
	default:
		return stringify(val)
	}
}

// TextContent returns the concatenated text of all descendant text nodes.
func (v *VNode) TextContent() string {
	var out string
	Walk(v, func(n *VNode) bool {
		if n.Kind == KindText {
			out += n.Text
		}
		return true
	})
	return out
}
