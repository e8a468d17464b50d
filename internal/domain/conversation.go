package domain

import (
	"time"
	"unicode/utf8"
)

const PreviewMaxLen = 100

// Conversation Invariants:
// 1. Membership: exactly 2 participants, pair unique regardless of order.
// 2. LastMessageTime is monotonically non-decreasing.
// 3. UnreadCount is never negative; +1 per appended message, 0 after MarkRead.
type Conversation struct {
	ID                 string        `json:"id"`
	Participants       []Participant `json:"participants"`
	CreatedAt          time.Time     `json:"createdAt"`
	LastMessageTime    time.Time     `json:"lastMessageTime"`
	LastMessagePreview string        `json:"lastMessagePreview"`
	UnreadCount        int           `json:"unreadCount"`
}

func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// PairKey normalizes an unordered participant pair into the unique lookup key
// the store indexes on.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return "pair:" + a + ":" + b
}

// Preview truncates a message body for the conversation list.
func Preview(content string) string {
	if utf8.RuneCountInString(content) <= PreviewMaxLen {
		return content
	}
	return string([]rune(content)[:PreviewMaxLen]) + "..."
}
