package ws

import "sync"

// Rooms maps each conversation to the set of sessions subscribed to its live
// events. A session's room set dies with the session; there is no explicit
// leave.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[*Session]struct{}
	joined  map[*Session]map[string]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[*Session]struct{}),
		joined:  make(map[*Session]map[string]struct{}),
	}
}

func (r *Rooms) Join(conversationID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.members[conversationID] == nil {
		r.members[conversationID] = make(map[*Session]struct{})
	}
	r.members[conversationID][s] = struct{}{}

	if r.joined[s] == nil {
		r.joined[s] = make(map[string]struct{})
	}
	r.joined[s][conversationID] = struct{}{}
}

// LeaveAll drops the session from every room it joined.
func (r *Rooms) LeaveAll(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for conversationID := range r.joined[s] {
		delete(r.members[conversationID], s)
		if len(r.members[conversationID]) == 0 {
			delete(r.members, conversationID)
		}
	}
	delete(r.joined, s)
}

func (r *Rooms) Members(conversationID string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.members[conversationID]))
	for s := range r.members[conversationID] {
		out = append(out, s)
	}
	return out
}
