package ws

import "sync"

// Registry tracks announced sessions, one active connection per identity.
// Announcing on a new connection replaces and closes the previous one.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add binds userID to s. Any previous session for the identity is closed with
// a session_replaced close frame; its late Remove must not evict s.
func (r *Registry) Add(userID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.sessions[userID]; ok && old.ID != s.ID {
		old.CloseWithReason(4000, "session_replaced")
	}
	r.sessions[userID] = s
}

// Remove unbinds s from its identity and reports whether the identity went
// offline. A session that was already replaced removes nothing, so the
// replacement keeps the identity online.
func (r *Registry) Remove(s *Session) bool {
	userID := s.UserID()
	if userID == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[userID]
	if !ok || current.ID != s.ID {
		return false
	}
	delete(r.sessions, userID)
	return true
}

func (r *Registry) Get(userID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// All returns every announced session.
func (r *Registry) All() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		s.Close()
	}
}
