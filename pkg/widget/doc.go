// Package widget builds the filter form for a schema.
//
// A Renderer maps every field descriptor to a control bound to its entry in a
// filterstate.State and wires the control's events to a Controller. The
// result is a vdom tree that package render turns into HTML:
//
//	r := widget.New(widget.WithApplyMode(true))
//	tree, report := r.Form(s, state, sync)
//
// Field types the renderer does not know are skipped and listed in the
// Report as UnsupportedFieldError values.
package widget
