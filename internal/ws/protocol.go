package ws

import (
	"encoding/json"

	"github.com/smartdaycare/chat-service/internal/domain"
)

// Inbound client signals.
const (
	EventUserOnline  = "user_online"
	EventJoinChat    = "join_chat"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
)

// Outbound server events.
const (
	EventReceiveMessage = "receive_message"
	EventUserStatus     = "user_status"
	EventUserTyping     = "user_typing"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Frame is the wire envelope in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type OnlinePayload struct {
	UserID string      `json:"userId"`
	Role   domain.Role `json:"role"`
}

type JoinPayload struct {
	ChatID string `json:"chatId"`
}

type StatusPayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

type TypingPayload struct {
	ChatID   string `json:"chatId"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// messageEnvelope extracts the room id from a send_message payload; the rest
// of the payload is relayed verbatim.
type messageEnvelope struct {
	ChatID         string `json:"chatId"`
	ConversationID string `json:"conversationId"`
}

func (m messageEnvelope) roomID() string {
	if m.ChatID != "" {
		return m.ChatID
	}
	return m.ConversationID
}

func encodeEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}
