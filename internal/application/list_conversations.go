package application

import (
	"context"

	"github.com/smartdaycare/chat-service/internal/domain"
)

// ListForUser returns every conversation the user participates in, most
// recent activity first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	return retryRead(ctx, func() ([]*domain.Conversation, error) {
		return s.repo.ListConversationsByUser(ctx, userID)
	})
}

// GetConversation looks up a single conversation, e.g. for its participants.
func (s *Service) GetConversation(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	if !validConversationID(conversationID) {
		return nil, domain.ErrInvalidConversationID
	}
	return retryRead(ctx, func() (*domain.Conversation, error) {
		return s.repo.GetConversation(ctx, nil, conversationID)
	})
}
