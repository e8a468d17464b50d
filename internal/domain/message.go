package domain

import (
	"strings"
	"time"
)

const MaxMessageSize = 5000

type ReadReceipt struct {
	UserID string    `json:"userId"`
	ReadAt time.Time `json:"readAt"`
}

// Message Invariants:
// 1. Ordering: messages within a conversation are sorted by Timestamp,
//    insertion order breaking ties.
// 2. Immutability: only Read and ReadBy may change after insert.
// 3. ReadBy is an append-only set keyed by UserID.
type Message struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversationId"`
	SenderID       string        `json:"senderId"`
	SenderRole     Role          `json:"senderRole"`
	Content        string        `json:"content"`
	Timestamp      time.Time     `json:"timestamp"`
	Read           bool          `json:"read"`
	ReadBy         []ReadReceipt `json:"readBy,omitempty"`
}

func NewMessage(id, conversationID, senderID string, senderRole Role, content string, ts time.Time) (*Message, error) {
	if id == "" || conversationID == "" {
		return nil, ErrInvalidInput
	}
	if senderID == "" || !senderRole.Valid() {
		return nil, ErrMissingSender
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > MaxMessageSize {
		return nil, ErrMessageTooLarge
	}
	return &Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderRole:     senderRole,
		Content:        content,
		Timestamp:      ts,
	}, nil
}
