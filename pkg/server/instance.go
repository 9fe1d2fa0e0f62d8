package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vango-dev/filters/pkg/filters"
	"github.com/vango-dev/filters/pkg/render"
	"github.com/vango-dev/filters/pkg/vdom"
)

// rootID is the id of the element the client replaces on every re-render.
const rootID = "filters-root"

// Outbound message types.
const (
	msgHTML     = "html"
	msgNavigate = "navigate"
	msgResult   = "result"
	msgError    = "error"
)

// clientEvent is one DOM event forwarded by the thin client.
type clientEvent struct {
	HID     string `json:"hid"`
	Event   string `json:"event"`
	Value   string `json:"value"`
	Checked bool   `json:"checked"`
	Key     string `json:"key"`
	Seq     uint64 `json:"seq"` // echoed by the html reply
}

// serverMessage is one message pushed to the thin client.
type serverMessage struct {
	Type    string `json:"type"`
	HTML    string `json:"html,omitempty"`
	URL     string `json:"url,omitempty"`
	Body    string `json:"body,omitempty"`
	Message string `json:"message,omitempty"`
	Seq     uint64 `json:"seq,omitempty"`
}

// Instance is one live widget bound to a page view.
type Instance struct {
	ID     string
	Widget string

	syncer *filters.Synchronizer
	pretty bool
	logger *zap.Logger

	mu         sync.Mutex
	handlers   render.Handlers
	lastActive time.Time

	// connMu serializes writes; navigations and results arrive from
	// other goroutines than the read loop.
	connMu       sync.Mutex
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func newInstance(id string, w Widget, pretty bool, logger *zap.Logger) *Instance {
	return &Instance{
		ID:         id,
		Widget:     w.Name,
		pretty:     pretty,
		logger:     logger.With(zap.String("instance", id), zap.String("widget", w.Name)),
		lastActive: time.Now(),
	}
}

// Synchronizer returns the widget state machine.
func (i *Instance) Synchronizer() *filters.Synchronizer {
	return i.syncer
}

// LastActive returns the time of the last page render or event.
func (i *Instance) LastActive() time.Time {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastActive
}

// RenderPage writes the full HTML document for the instance.
func (i *Instance) RenderPage(w io.Writer, page render.PageData) error {
	tree, _ := i.syncer.Render()
	page.Body = vdom.Div(vdom.ID(rootID), tree)
	page.InstanceID = i.ID

	r := i.renderer()
	if err := r.RenderPage(w, page); err != nil {
		return err
	}
	i.setHandlers(r.Handlers())
	return nil
}

// RenderHTML renders the widget tree and refreshes the handler table.
func (i *Instance) RenderHTML() (string, error) {
	tree, _ := i.syncer.Render()
	r := i.renderer()
	html, err := r.RenderToString(tree)
	if err != nil {
		return "", err
	}
	i.setHandlers(r.Handlers())
	return html, nil
}

func (i *Instance) renderer() *render.Renderer {
	return render.NewRenderer(render.RendererConfig{Pretty: i.pretty})
}

func (i *Instance) setHandlers(h render.Handlers) {
	i.mu.Lock()
	i.handlers = h
	i.lastActive = time.Now()
	i.mu.Unlock()
}

// Dispatch runs the handler registered for ev. Handler panics are
// recovered and returned as errors.
func (i *Instance) Dispatch(ev clientEvent) (err error) {
	i.mu.Lock()
	h, ok := i.handlers.Lookup(ev.HID, ev.Event)
	i.lastActive = time.Now()
	i.mu.Unlock()

	if !ok {
		return &EventError{Instance: i.ID, HID: ev.HID, Event: ev.Event, Err: ErrHandlerNotFound}
	}

	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("handler panic",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
			err = &EventError{Instance: i.ID, HID: ev.HID, Event: ev.Event, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	h(vdom.Event{Type: ev.Event, Value: ev.Value, Checked: ev.Checked, Key: ev.Key})
	return nil
}

// attach makes conn the instance's client connection. A previously
// attached connection is closed; its read loop then ends without removing
// the instance.
func (i *Instance) attach(conn *websocket.Conn, writeTimeout time.Duration) {
	i.connMu.Lock()
	prev := i.conn
	i.conn = conn
	i.writeTimeout = writeTimeout
	i.connMu.Unlock()
	if prev != nil && prev != conn {
		prev.Close()
	}
}

// detach clears conn if it is still the attached connection and reports
// whether it was.
func (i *Instance) detach(conn *websocket.Conn) bool {
	i.connMu.Lock()
	defer i.connMu.Unlock()
	if i.conn != conn {
		return false
	}
	i.conn = nil
	return true
}

// send writes one message to the attached client.
func (i *Instance) send(msg serverMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	i.connMu.Lock()
	defer i.connMu.Unlock()
	if i.conn == nil {
		return ErrNoConnection
	}
	i.conn.SetWriteDeadline(time.Now().Add(i.writeTimeout))
	return i.conn.WriteMessage(websocket.TextMessage, data)
}

// navigate is the Synchronizer's navigation callback.
func (i *Instance) navigate(url string) {
	if err := i.send(serverMessage{Type: msgNavigate, URL: url}); err != nil {
		i.logger.Warn("navigation not delivered", zap.String("url", url), zap.Error(err))
	}
}

// result is the Synchronizer's result callback in fetch mode.
func (i *Instance) result(_ context.Context, body []byte) {
	if err := i.send(serverMessage{Type: msgResult, Body: string(body)}); err != nil {
		i.logger.Warn("result not delivered", zap.Int("bytes", len(body)), zap.Error(err))
	}
}

// Close closes the widget and the client connection.
func (i *Instance) Close() {
	i.syncer.Close()

	i.connMu.Lock()
	conn := i.conn
	i.conn = nil
	i.connMu.Unlock()
	if conn != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}
}
