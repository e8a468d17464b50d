package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartdaycare/chat-service/internal/domain"
	"github.com/smartdaycare/chat-service/internal/repository"
)

// CreateOrGet returns the conversation between the two participants, creating
// it if the pair has never talked. The order of the pair is irrelevant; the
// store's unique index on the normalized pair key guarantees that two
// concurrent calls converge on a single row.
func (s *Service) CreateOrGet(
	ctx context.Context,
	a, b domain.Participant,
) (*domain.Conversation, error) {

	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		return nil, domain.ErrInvalidInput
	}

	var err error
	if a, err = s.completeParticipant(ctx, a); err != nil {
		return nil, err
	}
	if b, err = s.completeParticipant(ctx, b); err != nil {
		return nil, err
	}

	pairKey := domain.PairKey(a.ID, b.ID)

	// Best-effort lookup before opening a transaction.
	if existing, err := s.repo.GetConversationByPairKey(ctx, nil, pairKey); err == nil {
		return existing, nil
	}

	var result *domain.Conversation
	txErr := s.tx.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// Double-check inside the transaction.
		if existing, err := s.repo.GetConversationByPairKey(ctx, tx, pairKey); err == nil {
			result = existing
			return nil
		}

		now := time.Now().UTC()
		conv := &domain.Conversation{
			ID:              uuid.NewString(),
			Participants:    []domain.Participant{a, b},
			CreatedAt:       now,
			LastMessageTime: now,
		}

		if err := s.repo.InsertConversation(ctx, tx, conv, pairKey); err != nil {
			if errors.Is(err, repository.ErrDuplicatePair) {
				// Lost the race; return the winner.
				existing, errRefetch := s.repo.GetConversationByPairKey(ctx, tx, pairKey)
				if errRefetch != nil {
					return fmt.Errorf("refetch after duplicate pair: %w", errRefetch)
				}
				result = existing
				return nil
			}
			return fmt.Errorf("insert conversation: %w", err)
		}

		s.log.Info("conversation created",
			zap.String("conversation_id", conv.ID),
			zap.String("pair_key", pairKey),
		)
		result = conv
		return nil
	})

	return result, txErr
}

// completeParticipant fills missing role/name from the identity directory.
func (s *Service) completeParticipant(ctx context.Context, p domain.Participant) (domain.Participant, error) {
	if p.Role.Valid() && p.Name != "" {
		return p, nil
	}

	resolved, err := s.identity.Resolve(ctx, p.ID)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("resolve participant %s: %w", p.ID, err)
	}
	if !p.Role.Valid() {
		p.Role = resolved.Role
	}
	if p.Name == "" {
		p.Name = resolved.Name
	}
	if !p.Role.Valid() {
		return domain.Participant{}, domain.ErrInvalidInput
	}
	return p, nil
}
