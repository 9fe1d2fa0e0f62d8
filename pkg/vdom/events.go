package vdom

// Event is a client event dispatched back to a server-side handler.
type Event struct {
	Type    string // "click", "input", "change", "blur", "keydown"
	Value   string // Current value of the target control
	Checked bool   // Checkbox/radio checked state
	Key     string // Key name for keyboard events
}

// Handler handles a client event.
type Handler func(Event)

// EventHandler binds a Handler to an event name.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler Handler
}

// event creates an EventHandler with the given name and handler.
// The name is prefixed with "on" (e.g., "click" becomes "onclick").
func event(name string, handler Handler) EventHandler {
	return EventHandler{Event: "on" + name, Handler: handler}
}

// OnClick handles click events.
func OnClick(handler Handler) EventHandler { return event("click", handler) }

// OnInput handles input events (fired when value changes).
func OnInput(handler Handler) EventHandler { return event("input", handler) }

// OnChange handles change events (fired when value is committed).
func OnChange(handler Handler) EventHandler { return event("change", handler) }

// OnBlur handles blur events.
func OnBlur(handler Handler) EventHandler { return event("blur", handler) }

// OnKeyDown handles keydown events.
func OnKeyDown(handler Handler) EventHandler { return event("keydown", handler) }
