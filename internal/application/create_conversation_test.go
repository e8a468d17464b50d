package application

import (
	"context"
	"sync"
	"testing"

	"github.com/smartdaycare/chat-service/internal/domain"
)

func TestCreateOrGet_PairOrderIrrelevant(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	c1, err := s.CreateOrGet(ctx, parent, staff)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if c1.UnreadCount != 0 {
		t.Errorf("new conversation unread = %d, want 0", c1.UnreadCount)
	}
	if len(c1.Participants) != 2 {
		t.Fatalf("participants = %d, want 2", len(c1.Participants))
	}

	// Same pair, reversed order: must return the existing record.
	c2, err := s.CreateOrGet(ctx, staff, parent)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if c1.ID != c2.ID {
		t.Errorf("expected same conversation for reversed pair, got %s != %s", c1.ID, c2.ID)
	}
}

func TestCreateOrGet_Concurrent(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	const callers = 16
	ids := make([]string, callers)
	var wg sync.WaitGroup

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conv, err := s.CreateOrGet(ctx, parent, staff)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
				return
			}
			ids[i] = conv.ID
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("caller %d got conversation %s, caller 0 got %s", i, ids[i], ids[0])
		}
	}

	convs, err := s.ListForUser(ctx, parent.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(convs) != 1 {
		t.Errorf("persisted conversations = %d, want exactly 1", len(convs))
	}
}

func TestCreateOrGet_ResolvesIncompleteParticipants(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	// Caller sends bare ids; the directory fills role and name.
	conv, err := s.CreateOrGet(ctx,
		domain.Participant{ID: parent.ID},
		domain.Participant{ID: staff.ID},
	)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, p := range conv.Participants {
		if p.Name == "" || !p.Role.Valid() {
			t.Errorf("participant %s not resolved: %+v", p.ID, p)
		}
	}
}

func TestCreateOrGet_Validation(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	cases := []struct {
		name string
		a, b domain.Participant
	}{
		{"missing id", domain.Participant{}, staff},
		{"same identity", parent, parent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.CreateOrGet(ctx, tc.a, tc.b); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}

	// Unknown id that the directory cannot resolve.
	_, err := s.CreateOrGet(ctx, domain.Participant{ID: "ghost"}, staff)
	if err == nil {
		t.Error("expected resolver error for unknown participant")
	}
}
