package vdom

import (
	"strconv"
	"strings"
)

// attr creates an attribute with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Global attributes

// ID sets the element id.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute. Empty class names are skipped.
func Class(classes ...string) Attr {
	nonEmpty := make([]string, 0, len(classes))
	for _, c := range classes {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	return attr("class", strings.Join(nonEmpty, " "))
}

// Form attributes

func Name(name string) Attr        { return attr("name", name) }
func Value(value string) Attr      { return attr("value", value) }
func Type(t string) Attr           { return attr("type", t) }
func Placeholder(text string) Attr { return attr("placeholder", text) }
func Checked() Attr                { return attr("checked", true) }
func Selected() Attr               { return attr("selected", true) }
func Min(value string) Attr        { return attr("min", value) }
func Max(value string) Attr        { return attr("max", value) }
func Step(value string) Attr       { return attr("step", value) }
func For(id string) Attr           { return attr("for", id) }
func List(id string) Attr          { return attr("list", id) }
func Size(n int) Attr              { return attr("size", n) }

// Media attributes

func Src(url string) Attr  { return attr("src", url) }
func Alt(text string) Attr { return attr("alt", text) }
func Width(w int) Attr     { return attr("width", w) }
func Height(h int) Attr    { return attr("height", h) }

// Conditional attributes

// AttrIf returns the attribute only if the condition is true.
func AttrIf(condition bool, a Attr) Attr {
	if condition {
		return a
	}
	return Attr{}
}

// stringify converts a non-string attribute value to its HTML form.
func stringify(v any) string {
	switch val := v.(type) {
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	case interface{ String() string }:
		return val.String()
	default:
		return ""
	}
}
