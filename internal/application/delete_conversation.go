package application

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/smartdaycare/chat-service/internal/domain"
)

// Delete removes a conversation and every message it owns. Deleting an id
// that no longer exists is a no-op.
func (s *Service) Delete(ctx context.Context, conversationID string) error {
	if !validConversationID(conversationID) {
		return domain.ErrInvalidConversationID
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// Messages first; the conversation row going last means a crash
		// mid-delete is retryable from the conversation list.
		if err := s.repo.DeleteMessagesByConversation(ctx, tx, conversationID); err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if err := s.repo.DeleteConversation(ctx, tx, conversationID); err != nil {
			return fmt.Errorf("delete conversation: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("conversation deleted", zap.String("conversation_id", conversationID))
	return nil
}
