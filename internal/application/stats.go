package application

import (
	"context"

	"github.com/smartdaycare/chat-service/internal/domain"
)

// StatsForUser reports the user's conversation count and total unread
// messages across all of them.
func (s *Service) StatsForUser(ctx context.Context, userID string) (*domain.Stats, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	return retryRead(ctx, func() (*domain.Stats, error) {
		return s.repo.UserStats(ctx, userID)
	})
}
