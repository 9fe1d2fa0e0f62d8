package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"img":   true,
	"input": true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// createElement creates a new VNode with the given tag and arguments.
// Arguments can be: nil, Attr, []Attr, *VNode, []*VNode, string, EventHandler.
func createElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Props:    make(Props),
		Children: make([]*VNode, 0),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case Attr:
			node.setAttr(v)
		case []Attr:
			for _, a := range v {
				node.setAttr(a)
			}
		case EventHandler:
			if v.Handler == nil {
				continue
			}
			if node.Handlers == nil {
				node.Handlers = make(map[string]Handler)
			}
			node.Handlers[v.Event] = v.Handler
		default:
			node.appendChild(arg)
		}
	}

	return node
}

func (v *VNode) setAttr(a Attr) {
	if a.IsEmpty() {
		return
	}
	if a.Key == "key" {
		if s, ok := a.Value.(string); ok {
			v.Key = s
		}
		return
	}
	v.Props[a.Key] = a.Value
}

// appendChild adds child content. nil and unknown values are ignored, which
// allows conditional children.
func (v *VNode) appendChild(child any) {
	switch c := child.(type) {
	case *VNode:
		if c != nil {
			v.Children = append(v.Children, c)
		}
	case []*VNode:
		for _, n := range c {
			if n != nil {
				v.Children = append(v.Children, n)
			}
		}
	case string:
		v.Children = append(v.Children, Text(c))
	}
}

// Structure

func Div(args ...any) *VNode   { return createElement("div", args) }
func Table(args ...any) *VNode { return createElement("table", args) }
func Thead(args ...any) *VNode { return createElement("thead", args) }
func Tbody(args ...any) *VNode { return createElement("tbody", args) }
func Tr(args ...any) *VNode    { return createElement("tr", args) }
func Td(args ...any) *VNode    { return createElement("td", args) }
func Img(args ...any) *VNode   { return createElement("img", args) }

// Forms

func Form(args ...any) *VNode     { return createElement("form", args) }
func Label(args ...any) *VNode    { return createElement("label", args) }
func Input(args ...any) *VNode    { return createElement("input", args) }
func Button(args ...any) *VNode   { return createElement("button", args) }
func Select(args ...any) *VNode   { return createElement("select", args) }
func Option(args ...any) *VNode   { return createElement("option", args) }
func Datalist(args ...any) *VNode { return createElement("datalist", args) }
func Output(args ...any) *VNode   { return createElement("output", args) }
