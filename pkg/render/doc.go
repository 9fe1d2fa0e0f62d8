// Package render provides server-side rendering of filter forms.
//
// The render package converts VNode trees into HTML, handling:
//
//   - Text and attribute escaping
//   - Void and boolean attributes (input, checked, selected)
//   - Hydration IDs for elements with event handlers
//   - Full page rendering with the thin client script
//
// # Basic Usage
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// # Hydration IDs
//
// Elements with event handlers receive a data-hid attribute and one
// data-on-<event> marker per handler. The handlers are collected during
// rendering and can be looked up by HID and event name:
//
//	fn, ok := renderer.Handlers().Lookup("h3", "change")
package render
