package render

import "github.com/vango-dev/filters/pkg/vdom"

// inlineElements stay on one line in pretty-printed output.
var inlineElements = map[string]bool{
	"a":      true,
	"b":      true,
	"label":  true,
	"option": true,
	"output": true,
	"span":   true,
	"td":     true,
	"th":     true,
	"title":  true,
	"button": true,
}

// isInlineElement returns true if the tag is an inline element.
func isInlineElement(tag string) bool {
	return inlineElements[tag]
}

// booleanAttrs are attributes that don't need a value.
// When true, they're rendered as just the attribute name.
var booleanAttrs = map[string]bool{
	"async":    true,
	"checked":  true,
	"defer":    true,
	"disabled": true,
	"hidden":   true,
	"multiple": true,
	"readonly": true,
	"required": true,
	"selected": true,
}

// isBooleanAttr returns true if the attribute is a boolean attribute.
func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}

func isVoidElement(tag string) bool {
	return vdom.IsVoidElement(tag)
}
