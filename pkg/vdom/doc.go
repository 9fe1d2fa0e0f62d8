// Package vdom provides the virtual DOM used to build filter forms.
//
// Widgets are built on the server as VNode trees and rendered to HTML by
// package render. Elements are created with variadic factory functions that
// accept attributes, children, text and event handlers in any order:
//
//	Div(Class("rangeDiv"),
//	    Input(Type("range"), ID("maxprice"), Min("0"), Max("100"),
//	        OnInput(func(e Event) { ... }),
//	    ),
//	    Output(For("maxprice"), Text("100")),
//	)
//
// Event handlers are plain Go functions. They are not rendered as HTML
// attributes; the renderer assigns the element a hydration ID (HID) and
// registers its handlers under that ID so the host can dispatch client
// events back to them.
package vdom
