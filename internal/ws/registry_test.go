package ws

import (
	"testing"

	"go.uber.org/zap"

	"github.com/smartdaycare/chat-service/internal/domain"
)

func newTestSession(id, userID string) *Session {
	s := NewSession(id, nil, zap.NewNop())
	if userID != "" {
		s.SetIdentity(userID, domain.RoleParent)
	}
	return s
}

func TestRegistry_SessionReplacement(t *testing.T) {
	r := NewRegistry()

	s1 := newTestSession("s1", "user1")
	r.Add("user1", s1)

	got, ok := r.Get("user1")
	if !ok || got.ID != "s1" {
		t.Fatalf("expected session s1, got %v", got)
	}

	// A second connection for the same identity replaces the first.
	s2 := newTestSession("s2", "user1")
	r.Add("user1", s2)

	select {
	case <-s1.Done():
	default:
		t.Error("old session s1 should have been closed")
	}

	// The late Remove from the replaced session must not evict s2, and must
	// not report the identity as gone offline.
	if wentOffline := r.Remove(s1); wentOffline {
		t.Error("replaced session reported offline transition")
	}
	if got, ok := r.Get("user1"); !ok || got.ID != "s2" {
		t.Errorf("s2 evicted by late Remove(s1): %v", got)
	}

	if wentOffline := r.Remove(s2); !wentOffline {
		t.Error("removing the live session must report the offline transition")
	}
	if _, ok := r.Get("user1"); ok {
		t.Error("user1 still registered after removal")
	}
}

func TestRegistry_RemoveUnannounced(t *testing.T) {
	r := NewRegistry()

	s := newTestSession("s1", "")
	if r.Remove(s) {
		t.Error("unannounced session cannot go offline")
	}
}
