package application

import (
	"context"

	"github.com/smartdaycare/chat-service/internal/domain"
)

const (
	defaultMessageLimit = 100
	maxMessageLimit     = 500
)

// ListMessages returns a conversation's messages oldest first. A well-formed
// id with no messages yields an empty result, not an error; only malformed
// ids are rejected.
func (s *Service) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*domain.Message, error) {
	if !validConversationID(conversationID) {
		return nil, domain.ErrInvalidConversationID
	}

	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}
	if offset < 0 {
		offset = 0
	}

	return retryRead(ctx, func() ([]*domain.Message, error) {
		return s.repo.ListMessages(ctx, conversationID, limit, offset)
	})
}
