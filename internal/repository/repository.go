package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/smartdaycare/chat-service/internal/domain"
)

// ErrDuplicatePair is returned by InsertConversation when the unique index on
// the normalized participant pair rejects the row. The service resolves it by
// refetching the winner; it is never surfaced to callers.
var ErrDuplicatePair = errors.New("duplicate conversation pair")

// Repository is the sole writer of conversation and message state. Mutating
// calls take an optional *sql.Tx so the service layer can group them into one
// transaction; implementations that have no transaction concept ignore it.
type Repository interface {
	// Conversations
	InsertConversation(ctx context.Context, tx *sql.Tx, conv *domain.Conversation, pairKey string) error
	GetConversation(ctx context.Context, tx *sql.Tx, id string) (*domain.Conversation, error)
	GetConversationByPairKey(ctx context.Context, tx *sql.Tx, pairKey string) (*domain.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID string) ([]*domain.Conversation, error)
	// TouchConversation refreshes the derived last-message fields and bumps the
	// unread counter by one.
	TouchConversation(ctx context.Context, tx *sql.Tx, id string, at time.Time, preview string) error
	ResetUnread(ctx context.Context, tx *sql.Tx, id string) error
	DeleteConversation(ctx context.Context, tx *sql.Tx, id string) error
	UserStats(ctx context.Context, userID string) (*domain.Stats, error)

	// Messages
	InsertMessage(ctx context.Context, tx *sql.Tx, msg *domain.Message) error
	ListMessages(ctx context.Context, convID string, limit, offset int) ([]*domain.Message, error)
	// MarkMessagesRead flags every message not authored by readerID and appends
	// a read receipt unless one already exists for that reader.
	MarkMessagesRead(ctx context.Context, tx *sql.Tx, convID, readerID string, at time.Time) error
	DeleteMessagesByConversation(ctx context.Context, tx *sql.Tx, convID string) error
}
