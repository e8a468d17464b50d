package application

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartdaycare/chat-service/internal/domain"
)

type AppendMessageCommand struct {
	ConversationID string
	SenderID       string
	SenderRole     domain.Role
	Content        string
	// Timestamp is client-supplied; zero means server time.
	Timestamp time.Time
}

// AppendMessage persists a message and refreshes the owning conversation's
// derived fields. The message insert comes first: it is the source of truth,
// and the conversation row is a cache that may lag by at most one retry.
func (s *Service) AppendMessage(
	ctx context.Context,
	cmd AppendMessageCommand,
) (*domain.Message, error) {

	if !validConversationID(cmd.ConversationID) {
		return nil, domain.ErrInvalidConversationID
	}

	ts := cmd.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	msg, err := domain.NewMessage(
		uuid.NewString(),
		cmd.ConversationID,
		cmd.SenderID,
		cmd.SenderRole,
		cmd.Content,
		ts,
	)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.repo.GetConversation(ctx, tx, cmd.ConversationID); err != nil {
			return err
		}

		if err := s.repo.InsertMessage(ctx, tx, msg); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		if err := s.repo.TouchConversation(ctx, tx, cmd.ConversationID, msg.Timestamp, domain.Preview(msg.Content)); err != nil {
			return fmt.Errorf("update conversation after message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("message appended",
		zap.String("conversation_id", msg.ConversationID),
		zap.String("message_id", msg.ID),
		zap.String("sender_id", msg.SenderID),
	)
	return msg, nil
}
