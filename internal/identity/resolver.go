// Package identity resolves participant ids against the external user/staff
// registry. The chat service never hardcodes identities; callers may send a
// bare id and the resolver fills in role and display name.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/smartdaycare/chat-service/internal/domain"
)

type Resolver interface {
	Resolve(ctx context.Context, userID string) (domain.Participant, error)
}

// Static is a fixed directory, used in tests and in memory mode.
type Static struct {
	mu    sync.RWMutex
	users map[string]domain.Participant
}

func NewStatic(participants ...domain.Participant) *Static {
	s := &Static{users: make(map[string]domain.Participant)}
	for _, p := range participants {
		s.users[p.ID] = p
	}
	return s
}

func (s *Static) Add(p domain.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[p.ID] = p
}

func (s *Static) Resolve(ctx context.Context, userID string) (domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.users[userID]
	if !ok {
		return domain.Participant{}, domain.ErrUnknownParticipant
	}
	return p, nil
}

// Directory resolves ids against the user admin HTTP API.
type Directory struct {
	BaseURL string
	Client  *http.Client
}

func NewDirectory(baseURL string) *Directory {
	return &Directory{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (d *Directory) Resolve(ctx context.Context, userID string) (domain.Participant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		d.BaseURL+"/api/users/"+url.PathEscape(userID), nil)
	if err != nil {
		return domain.Participant{}, err
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("directory lookup: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return domain.Participant{}, domain.ErrUnknownParticipant
	default:
		return domain.Participant{}, fmt.Errorf("directory lookup: unexpected status %d", resp.StatusCode)
	}

	var p domain.Participant
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return domain.Participant{}, fmt.Errorf("directory lookup: decode: %w", err)
	}
	if p.ID == "" {
		p.ID = userID
	}
	return p, nil
}
