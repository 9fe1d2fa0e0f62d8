package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/filters/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables pretty-printed HTML output with indentation.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string
}

// Renderer renders VNode trees to HTML and collects their event handlers.
//
// A Renderer is not safe for concurrent use. HIDs are assigned in document
// order starting at h1, so rendering the same tree twice after Reset yields
// the same IDs.
type Renderer struct {
	config     RendererConfig
	hidCounter uint32
	handlers   Handlers
}

// Handlers maps "hid_onevent" keys (e.g., "h3_onchange") to handlers.
type Handlers map[string]vdom.Handler

// Lookup returns the handler registered for the element and event.
// event may be given with or without the "on" prefix.
func (h Handlers) Lookup(hid, event string) (vdom.Handler, bool) {
	if !strings.HasPrefix(event, "on") {
		event = "on" + event
	}
	fn, ok := h[hid+"_"+event]
	return fn, ok
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{
		config:   config,
		handlers: make(Handlers),
	}
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a VNode tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	ew := &errWriter{w: w}
	r.renderNode(ew, node, 0)
	return ew.err
}

// Handlers returns the handler registry collected during rendering.
func (r *Renderer) Handlers() Handlers {
	return r.handlers
}

// Reset clears the HID counter and handler registry.
func (r *Renderer) Reset() {
	r.hidCounter = 0
	r.handlers = make(Handlers)
}

// errWriter remembers the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) WriteString(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) fail(err error) {
	if ew.err == nil {
		ew.err = err
	}
}

// renderNode dispatches rendering based on node kind.
func (r *Renderer) renderNode(w *errWriter, node *vdom.VNode, depth int) {
	if node == nil || w.err != nil {
		return
	}

	switch node.Kind {
	case vdom.KindElement:
		r.renderElement(w, node, depth)
	case vdom.KindText:
		w.WriteString(escapeHTML(node.Text))
	default:
		w.fail(fmt.Errorf("render: unknown node kind: %d", node.Kind))
	}
}

// renderElement renders an HTML element with its attributes and children.
func (r *Renderer) renderElement(w *errWriter, node *vdom.VNode, depth int) {
	tag := node.Tag
	if tag == "" {
		w.fail(fmt.Errorf("render: element without tag"))
		return
	}

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	w.WriteString("<" + tag)
	r.renderAttributes(w, node)

	if node.IsInteractive() {
		node.HID = r.nextHID()
		w.WriteString(` data-hid="` + node.HID + `"`)
		r.registerHandlers(node)
	}
	w.WriteString(">")

	if isVoidElement(tag) {
		if r.config.Pretty {
			w.WriteString("\n")
		}
		return
	}

	block := r.config.Pretty && len(node.Children) > 0 && !isInlineElement(tag)
	if block {
		w.WriteString("\n")
	}
	childDepth := depth + 1
	if !block {
		childDepth = 0
	}
	for _, child := range node.Children {
		r.renderNode(w, child, childDepth)
	}
	if block {
		r.writeIndent(w, depth)
	}

	w.WriteString("</" + tag + ">")
	if r.config.Pretty {
		w.WriteString("\n")
	}
}

// renderAttributes renders attributes in sorted order followed by the
// data-on-* markers the client uses to bind listeners.
func (r *Renderer) renderAttributes(w *errWriter, node *vdom.VNode) {
	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := node.Props[key]

		if isBooleanAttr(key) {
			if b, ok := value.(bool); ok {
				if b {
					w.WriteString(" " + key)
				}
				continue
			}
		}

		if s, ok := attrToString(value); ok {
			w.WriteString(" " + key + `="` + escapeAttr(s) + `"`)
		}
	}

	events := make([]string, 0, len(node.Handlers))
	for key := range node.Handlers {
		events = append(events, strings.TrimPrefix(key, "on"))
	}
	sort.Strings(events)
	for _, ev := range events {
		w.WriteString(` data-on-` + ev + `="true"`)
	}
}

// nextHID generates the next sequential hydration ID.
func (r *Renderer) nextHID() string {
	r.hidCounter++
	return "h" + strconv.FormatUint(uint64(r.hidCounter), 10)
}

// registerHandlers stores handler references for the node's HID.
func (r *Renderer) registerHandlers(node *vdom.VNode) {
	for key, fn := range node.Handlers {
		r.handlers[node.HID+"_"+key] = fn
	}
}

// attrToString converts an attribute value to a string. Values of
// unsupported types, and nil, are not rendered.
func attrToString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}

// writeIndent writes indentation for pretty printing.
func (r *Renderer) writeIndent(w *errWriter, depth int) {
	w.WriteString(strings.Repeat(r.config.Indent, depth))
}
