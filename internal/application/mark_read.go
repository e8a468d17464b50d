package application

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smartdaycare/chat-service/internal/domain"
)

// MarkRead flags every message in the conversation not authored by readerID
// as read, records a read receipt per message, and resets the conversation's
// unread counter. Idempotent: re-marking an already-read conversation leaves
// state unchanged.
func (s *Service) MarkRead(ctx context.Context, conversationID, readerID string) error {
	if !validConversationID(conversationID) {
		return domain.ErrInvalidConversationID
	}
	if readerID == "" {
		return domain.ErrInvalidInput
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.repo.GetConversation(ctx, tx, conversationID); err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := s.repo.MarkMessagesRead(ctx, tx, conversationID, readerID, now); err != nil {
			return fmt.Errorf("mark messages read: %w", err)
		}

		// Counter reset happens after the receipts inside the same tx, so a
		// failure can never leave an under-counted conversation.
		if err := s.repo.ResetUnread(ctx, tx, conversationID); err != nil {
			return fmt.Errorf("reset unread count: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("conversation marked read",
		zap.String("conversation_id", conversationID),
		zap.String("reader_id", readerID),
	)
	return nil
}
