package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartdaycare/chat-service/internal/domain"
	"github.com/smartdaycare/chat-service/internal/identity"
	"github.com/smartdaycare/chat-service/internal/repository"
	"github.com/smartdaycare/chat-service/internal/tx"
)

// Service is the conversation service: all durable chat state flows through
// it. Live fan-out is layered on top by the gateway and never mutates state.
type Service struct {
	repo     repository.Repository
	tx       tx.Transactor
	identity identity.Resolver
	log      *zap.Logger
}

func New(repo repository.Repository, transactor tx.Transactor, resolver identity.Resolver, log *zap.Logger) *Service {
	return &Service{repo: repo, tx: transactor, identity: resolver, log: log}
}

// Conversation ids are server-assigned UUIDs; anything else is rejected
// before touching the store.
func validConversationID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

const transientRetryDelay = 100 * time.Millisecond

// retryRead runs an idempotent read and retries it once after a short pause
// when the store reports a transient failure. Writes never retry here; the
// caller decides whether re-submitting is safe.
func retryRead[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	v, err := fn()
	if !errors.Is(err, domain.ErrTransientStore) {
		return v, err
	}

	select {
	case <-time.After(transientRetryDelay):
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	return fn()
}
