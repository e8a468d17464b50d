// Package memory holds an in-process Repository used by tests and by the
// server's store=memory mode. It enforces the same pair-uniqueness and
// ordering guarantees as the postgres implementation.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/smartdaycare/chat-service/internal/domain"
	"github.com/smartdaycare/chat-service/internal/repository"
)

type storedMessage struct {
	msg *domain.Message
	seq int64
}

type Repository struct {
	mu      sync.RWMutex
	convs   map[string]*domain.Conversation
	pairs   map[string]string // pair_key -> conversation id
	msgs    map[string][]storedMessage
	nextSeq int64
}

func New() *Repository {
	return &Repository{
		convs: make(map[string]*domain.Conversation),
		pairs: make(map[string]string),
		msgs:  make(map[string][]storedMessage),
	}
}

func copyConversation(c *domain.Conversation) *domain.Conversation {
	out := *c
	out.Participants = append([]domain.Participant(nil), c.Participants...)
	return &out
}

func copyMessage(m *domain.Message) *domain.Message {
	out := *m
	out.ReadBy = append([]domain.ReadReceipt(nil), m.ReadBy...)
	return &out
}

func (r *Repository) InsertConversation(ctx context.Context, _ *sql.Tx, conv *domain.Conversation, pairKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pairs[pairKey]; exists {
		return repository.ErrDuplicatePair
	}
	r.convs[conv.ID] = copyConversation(conv)
	r.pairs[pairKey] = conv.ID
	return nil
}

func (r *Repository) GetConversation(ctx context.Context, _ *sql.Tx, id string) (*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.convs[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	return copyConversation(conv), nil
}

func (r *Repository) GetConversationByPairKey(ctx context.Context, _ *sql.Tx, pairKey string) (*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.pairs[pairKey]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	return copyConversation(r.convs[id]), nil
}

func (r *Repository) ListConversationsByUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Conversation
	for _, conv := range r.convs {
		if conv.HasParticipant(userID) {
			out = append(out, copyConversation(conv))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessageTime.After(out[j].LastMessageTime)
	})
	return out, nil
}

func (r *Repository) TouchConversation(ctx context.Context, _ *sql.Tx, id string, at time.Time, preview string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.convs[id]
	if !ok {
		return domain.ErrConversationNotFound
	}
	if at.After(conv.LastMessageTime) {
		conv.LastMessageTime = at
	}
	conv.LastMessagePreview = preview
	conv.UnreadCount++
	return nil
}

func (r *Repository) ResetUnread(ctx context.Context, _ *sql.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conv, ok := r.convs[id]; ok {
		conv.UnreadCount = 0
	}
	return nil
}

func (r *Repository) DeleteConversation(ctx context.Context, _ *sql.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.convs[id]
	if !ok {
		return nil
	}
	delete(r.pairs, domain.PairKey(conv.Participants[0].ID, conv.Participants[1].ID))
	delete(r.convs, id)
	return nil
}

func (r *Repository) UserStats(ctx context.Context, userID string) (*domain.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats domain.Stats
	for _, conv := range r.convs {
		if conv.HasParticipant(userID) {
			stats.TotalConversations++
			stats.UnreadMessages += conv.UnreadCount
		}
	}
	return &stats, nil
}

func (r *Repository) InsertMessage(ctx context.Context, _ *sql.Tx, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSeq++
	r.msgs[msg.ConversationID] = append(r.msgs[msg.ConversationID], storedMessage{
		msg: copyMessage(msg),
		seq: r.nextSeq,
	})
	return nil
}

func (r *Repository) ListMessages(ctx context.Context, convID string, limit, offset int) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := append([]storedMessage(nil), r.msgs[convID]...)
	sort.SliceStable(stored, func(i, j int) bool {
		ti, tj := stored[i].msg.Timestamp, stored[j].msg.Timestamp
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return stored[i].seq < stored[j].seq
	})

	if offset >= len(stored) {
		return nil, nil
	}
	stored = stored[offset:]
	if limit > 0 && limit < len(stored) {
		stored = stored[:limit]
	}

	out := make([]*domain.Message, 0, len(stored))
	for _, s := range stored {
		out = append(out, copyMessage(s.msg))
	}
	return out, nil
}

func (r *Repository) MarkMessagesRead(ctx context.Context, _ *sql.Tx, convID, readerID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.msgs[convID] {
		if s.msg.SenderID == readerID {
			continue
		}
		s.msg.Read = true
		if !hasReceipt(s.msg, readerID) {
			s.msg.ReadBy = append(s.msg.ReadBy, domain.ReadReceipt{UserID: readerID, ReadAt: at})
		}
	}
	return nil
}

func hasReceipt(m *domain.Message, userID string) bool {
	for _, rr := range m.ReadBy {
		if rr.UserID == userID {
			return true
		}
	}
	return false
}

func (r *Repository) DeleteMessagesByConversation(ctx context.Context, _ *sql.Tx, convID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.msgs, convID)
	return nil
}
