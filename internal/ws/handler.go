package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/smartdaycare/chat-service/internal/observability"
)

// Handler is the gateway endpoint: one long-lived connection per client
// session. Durable writes go through the REST API first; the live channel
// only relays.
type Handler struct {
	hub *Hub
	log *zap.Logger
}

func NewHandler(hub *Hub, log *zap.Logger) *Handler {
	return &Handler{hub: hub, log: log}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	session := NewSession(uuid.NewString(), conn, h.log)
	session.Start()
	observability.WebSocketConnectionsActive.Inc()
	h.log.Info("connection opened", zap.String("session_id", session.ID))

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go h.readLoop(session)
}

func (h *Handler) readLoop(s *Session) {
	defer func() {
		h.hub.Disconnect(s)
		s.Close()
		observability.WebSocketConnectionsActive.Dec()
		h.log.Info("connection closed",
			zap.String("session_id", s.ID), zap.String("user_id", s.UserID()))
	}()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				h.log.Warn("read loop error",
					zap.String("session_id", s.ID), zap.Error(err))
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.log.Warn("malformed frame dropped",
				zap.String("session_id", s.ID), zap.Error(err))
			continue
		}

		h.dispatch(s, frame)
	}
}

func (h *Handler) dispatch(s *Session, frame Frame) {
	switch frame.Event {
	case EventUserOnline:
		var p OnlinePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return
		}
		h.hub.Announce(s, p.UserID, p.Role)

	case EventJoinChat:
		h.hub.Join(s, joinRoomID(frame.Data))

	case EventSendMessage:
		var env messageEnvelope
		if err := json.Unmarshal(frame.Data, &env); err != nil {
			return
		}
		if room := env.roomID(); room != "" {
			h.hub.BroadcastMessage(s, room, frame.Data)
		}

	case EventTyping:
		var p TypingPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return
		}
		if p.ChatID != "" {
			h.hub.BroadcastTyping(s, p)
		}

	default:
		h.log.Debug("unknown event ignored",
			zap.String("session_id", s.ID), zap.String("event", frame.Event))
	}
}

// joinRoomID accepts both {"chatId": "..."} and a bare string id.
func joinRoomID(data json.RawMessage) string {
	var p JoinPayload
	if err := json.Unmarshal(data, &p); err == nil && p.ChatID != "" {
		return p.ChatID
	}
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return id
	}
	return ""
}
