package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vango-dev/filters/pkg/middleware"
)

// SocketPath is the WebSocket endpoint of the thin client.
const SocketPath = "/_filters/ws"

func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	inst, err := s.instances.Get(r.URL.Query().Get("instance"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied.
		middleware.RecordWebSocketError("upgrade")
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(s.cfg.MaxMessageSize)

	inst.attach(conn, s.cfg.WriteTimeout)
	s.readLoop(r, inst, conn)
}

// readLoop dispatches client events until the connection closes. The
// instance ends with its page, so it is removed on return unless a newer
// connection has taken it over.
func (s *Server) readLoop(r *http.Request, inst *Instance, conn *websocket.Conn) {
	defer func() {
		owned := inst.detach(conn)
		conn.Close()
		if owned {
			s.instances.Remove(inst.ID)
		}
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				middleware.RecordWebSocketError("read")
				inst.logger.Warn("read error", zap.Error(err))
			}
			return
		}

		var ev clientEvent
		if err := json.Unmarshal(msg, &ev); err != nil || ev.HID == "" || ev.Event == "" {
			middleware.RecordWebSocketError("decode")
			s.reply(inst, serverMessage{Type: msgError, Message: "invalid event"})
			continue
		}

		s.handleEvent(r, inst, ev)
	}
}

func (s *Server) handleEvent(r *http.Request, inst *Instance, ev clientEvent) {
	_, span := middleware.StartEventSpan(r.Context(), inst.ID, ev.HID, ev.Event)
	err := inst.Dispatch(ev)
	middleware.RecordEvent(ev.Event, err)
	middleware.EndEventSpan(span, err)

	if err != nil {
		inst.logger.Debug("event rejected", zap.String("hid", ev.HID), zap.String("event", ev.Event), zap.Error(err))
		s.reply(inst, serverMessage{Type: msgError, Message: err.Error(), Seq: ev.Seq})
		return
	}

	html, err := inst.RenderHTML()
	if err != nil {
		inst.logger.Error("render failed", zap.Error(err))
		s.reply(inst, serverMessage{Type: msgError, Message: "render failed", Seq: ev.Seq})
		return
	}
	s.reply(inst, serverMessage{Type: msgHTML, HTML: html, Seq: ev.Seq})
}

func (s *Server) reply(inst *Instance, msg serverMessage) {
	if err := inst.send(msg); err != nil && !errors.Is(err, ErrNoConnection) {
		middleware.RecordWebSocketError("write")
		inst.logger.Debug("write failed", zap.String("type", msg.Type), zap.Error(err))
	}
}
