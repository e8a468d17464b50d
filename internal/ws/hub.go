package ws

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/smartdaycare/chat-service/internal/domain"
	"github.com/smartdaycare/chat-service/internal/observability"
)

// Hub is the presence and room broadcaster. It owns the registry and room
// table; fan-out is best-effort and never blocks or fails a durable write.
type Hub struct {
	registry *Registry
	rooms    *Rooms
	log      *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		registry: NewRegistry(),
		rooms:    NewRooms(),
		log:      log,
	}
}

func (h *Hub) Registry() *Registry { return h.registry }

// Announce transitions the identity online and tells everyone else.
func (h *Hub) Announce(s *Session, userID string, role domain.Role) {
	if userID == "" {
		return
	}
	s.SetIdentity(userID, role)
	h.registry.Add(userID, s)

	h.broadcastStatus(s, userID, StatusOnline)
	h.log.Info("user online",
		zap.String("user_id", userID), zap.String("role", string(role)))
}

// Join subscribes the session to a conversation's live events. Joining is
// accepted before announcement; it just stays presence-silent.
func (h *Hub) Join(s *Session, conversationID string) {
	if conversationID == "" {
		return
	}
	h.rooms.Join(conversationID, s)
}

// BroadcastMessage relays a delivered message to every other room member and
// echoes it to the sender, so one client code path handles both directions.
func (h *Hub) BroadcastMessage(sender *Session, conversationID string, payload json.RawMessage) {
	event, err := encodeEvent(EventReceiveMessage, payload)
	if err != nil {
		h.log.Error("encode receive_message", zap.Error(err))
		return
	}

	for _, member := range h.rooms.Members(conversationID) {
		if member == sender {
			continue
		}
		h.deliver(member, EventReceiveMessage, event)
	}
	h.deliver(sender, EventReceiveMessage, event)
}

// BroadcastTyping relays a typing signal to other room members only; the
// sender never receives its own typing echo.
func (h *Hub) BroadcastTyping(sender *Session, p TypingPayload) {
	event, err := encodeEvent(EventUserTyping, p)
	if err != nil {
		h.log.Error("encode user_typing", zap.Error(err))
		return
	}

	for _, member := range h.rooms.Members(p.ChatID) {
		if member == sender {
			continue
		}
		h.deliver(member, EventUserTyping, event)
	}
}

// Disconnect tears the session down: implicit leave from every room, and the
// offline transition exactly once. A session that was replaced by a newer
// connection for the same identity does not broadcast offline.
func (h *Hub) Disconnect(s *Session) {
	h.rooms.LeaveAll(s)

	if wentOffline := h.registry.Remove(s); wentOffline {
		userID := s.UserID()
		h.broadcastStatus(s, userID, StatusOffline)
		h.log.Info("user offline", zap.String("user_id", userID))
	}
}

func (h *Hub) broadcastStatus(exclude *Session, userID, status string) {
	event, err := encodeEvent(EventUserStatus, StatusPayload{UserID: userID, Status: status})
	if err != nil {
		h.log.Error("encode user_status", zap.Error(err))
		return
	}

	for _, s := range h.registry.All() {
		if s == exclude {
			continue
		}
		h.deliver(s, EventUserStatus, event)
	}
}

func (h *Hub) deliver(s *Session, eventType string, payload []byte) {
	if s == nil {
		return
	}
	if s.TrySend(payload) {
		observability.EventsBroadcastTotal.WithLabelValues(eventType).Inc()
	}
}
