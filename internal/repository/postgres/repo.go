package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/smartdaycare/chat-service/internal/domain"
	"github.com/smartdaycare/chat-service/internal/repository"
)

type Repository struct {
	DB *sql.DB
}

type queryable interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *Repository) getter(tx *sql.Tx) queryable {
	if tx != nil {
		return tx
	}
	return r.DB
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// translateErr maps retryable driver failures to domain.ErrTransientStore.
// Class 08 is a connection exception, class 57 an operator intervention such
// as admin_shutdown; a dead pooled connection surfaces as driver.ErrBadConn.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", domain.ErrTransientStore, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "57":
			return fmt.Errorf("%w: %v", domain.ErrTransientStore, err)
		}
	}
	return err
}

func (r *Repository) InsertConversation(
	ctx context.Context,
	tx *sql.Tx,
	conv *domain.Conversation,
	pairKey string,
) error {
	p1, p2 := conv.Participants[0], conv.Participants[1]

	q := r.getter(tx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO conversations (
			id, pair_key,
			participant1_id, participant1_role, participant1_name,
			participant2_id, participant2_role, participant2_name,
			created_at, last_message_time, last_message_preview, unread_count
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		conv.ID, pairKey,
		p1.ID, p1.Role, p1.Name,
		p2.ID, p2.Role, p2.Name,
		conv.CreatedAt, conv.LastMessageTime, conv.LastMessagePreview, conv.UnreadCount,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicatePair
	}
	return translateErr(err)
}

const conversationColumns = `
	id,
	participant1_id, participant1_role, participant1_name,
	participant2_id, participant2_role, participant2_name,
	created_at, last_message_time, last_message_preview, unread_count
`

func scanConversation(row interface{ Scan(...interface{}) error }) (*domain.Conversation, error) {
	var conv domain.Conversation
	var p1, p2 domain.Participant

	err := row.Scan(
		&conv.ID,
		&p1.ID, &p1.Role, &p1.Name,
		&p2.ID, &p2.Role, &p2.Name,
		&conv.CreatedAt, &conv.LastMessageTime, &conv.LastMessagePreview, &conv.UnreadCount,
	)
	if err != nil {
		return nil, err
	}
	conv.Participants = []domain.Participant{p1, p2}
	return &conv, nil
}

func (r *Repository) GetConversation(ctx context.Context, tx *sql.Tx, id string) (*domain.Conversation, error) {
	q := r.getter(tx)
	conv, err := scanConversation(q.QueryRowContext(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrConversationNotFound
	}
	return conv, translateErr(err)
}

func (r *Repository) GetConversationByPairKey(ctx context.Context, tx *sql.Tx, pairKey string) (*domain.Conversation, error) {
	q := r.getter(tx)
	conv, err := scanConversation(q.QueryRowContext(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE pair_key = $1
	`, pairKey))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrConversationNotFound
	}
	return conv, translateErr(err)
}

func (r *Repository) ListConversationsByUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE participant1_id = $1 OR participant2_id = $1
		ORDER BY last_message_time DESC
	`, userID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var convs []*domain.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, translateErr(rows.Err())
}

func (r *Repository) TouchConversation(
	ctx context.Context,
	tx *sql.Tx,
	id string,
	at time.Time,
	preview string,
) error {
	q := r.getter(tx)
	_, err := q.ExecContext(ctx, `
		UPDATE conversations
		SET last_message_time    = GREATEST(last_message_time, $2),
		    last_message_preview = $3,
		    unread_count         = unread_count + 1
		WHERE id = $1
	`, id, at, preview)
	return translateErr(err)
}

func (r *Repository) ResetUnread(ctx context.Context, tx *sql.Tx, id string) error {
	q := r.getter(tx)
	_, err := q.ExecContext(ctx, `
		UPDATE conversations SET unread_count = 0 WHERE id = $1
	`, id)
	return translateErr(err)
}

func (r *Repository) DeleteConversation(ctx context.Context, tx *sql.Tx, id string) error {
	q := r.getter(tx)
	_, err := q.ExecContext(ctx, `
		DELETE FROM conversations WHERE id = $1
	`, id)
	return translateErr(err)
}

func (r *Repository) UserStats(ctx context.Context, userID string) (*domain.Stats, error) {
	var stats domain.Stats
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(unread_count), 0)
		FROM conversations
		WHERE participant1_id = $1 OR participant2_id = $1
	`, userID).Scan(&stats.TotalConversations, &stats.UnreadMessages)
	if err != nil {
		return nil, translateErr(err)
	}
	return &stats, nil
}

func (r *Repository) InsertMessage(ctx context.Context, tx *sql.Tx, msg *domain.Message) error {
	q := r.getter(tx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO messages (
			id, conversation_id, sender_id, sender_role, content, ts, read
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		msg.ID,
		msg.ConversationID,
		msg.SenderID,
		msg.SenderRole,
		msg.Content,
		msg.Timestamp,
		msg.Read,
	)
	return translateErr(err)
}

func (r *Repository) ListMessages(ctx context.Context, convID string, limit, offset int) ([]*domain.Message, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, sender_role, content, ts, read
		FROM messages
		WHERE conversation_id = $1
		ORDER BY ts ASC, seq ASC
		LIMIT $2 OFFSET $3
	`, convID, limit, offset)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var messages []*domain.Message
	var ids []string
	byID := make(map[string]*domain.Message)

	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.SenderID,
			&msg.SenderRole,
			&msg.Content,
			&msg.Timestamp,
			&msg.Read,
		); err != nil {
			return nil, err
		}
		messages = append(messages, &msg)
		ids = append(ids, msg.ID)
		byID[msg.ID] = &msg
	}
	if err := rows.Err(); err != nil {
		return nil, translateErr(err)
	}
	if len(ids) == 0 {
		return messages, nil
	}

	return messages, r.attachReceipts(ctx, ids, byID)
}

func (r *Repository) attachReceipts(ctx context.Context, ids []string, byID map[string]*domain.Message) error {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT message_id, user_id, read_at
		FROM message_reads
		WHERE message_id = ANY($1)
		ORDER BY read_at ASC
	`, pq.Array(ids))
	if err != nil {
		return translateErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var msgID string
		var receipt domain.ReadReceipt
		if err := rows.Scan(&msgID, &receipt.UserID, &receipt.ReadAt); err != nil {
			return err
		}
		if msg, ok := byID[msgID]; ok {
			msg.ReadBy = append(msg.ReadBy, receipt)
		}
	}
	return translateErr(rows.Err())
}

func (r *Repository) MarkMessagesRead(
	ctx context.Context,
	tx *sql.Tx,
	convID, readerID string,
	at time.Time,
) error {
	q := r.getter(tx)

	if _, err := q.ExecContext(ctx, `
		UPDATE messages
		SET read = TRUE
		WHERE conversation_id = $1 AND sender_id <> $2
	`, convID, readerID); err != nil {
		return translateErr(err)
	}

	// Append-only receipt set; re-marking is a no-op per message.
	_, err := q.ExecContext(ctx, `
		INSERT INTO message_reads (message_id, user_id, read_at)
		SELECT id, $2, $3
		FROM messages
		WHERE conversation_id = $1 AND sender_id <> $2
		ON CONFLICT (message_id, user_id) DO NOTHING
	`, convID, readerID, at)
	return translateErr(err)
}

func (r *Repository) DeleteMessagesByConversation(ctx context.Context, tx *sql.Tx, convID string) error {
	q := r.getter(tx)

	if _, err := q.ExecContext(ctx, `
		DELETE FROM message_reads
		WHERE message_id IN (SELECT id FROM messages WHERE conversation_id = $1)
	`, convID); err != nil {
		return translateErr(err)
	}

	_, err := q.ExecContext(ctx, `
		DELETE FROM messages WHERE conversation_id = $1
	`, convID)
	return translateErr(err)
}
