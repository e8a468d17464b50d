package application

import (
	"context"
	"testing"
	"time"

	"github.com/smartdaycare/chat-service/internal/domain"
)

func TestListForUser_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	s, _, dir := newTestService(t)

	other := domain.Participant{ID: "staff-2", Role: domain.RoleStaff, Name: "Mr Ortiz"}
	dir.Add(other)

	c1, _ := s.CreateOrGet(ctx, parent, staff)
	c2, _ := s.CreateOrGet(ctx, parent, other)

	// Activity in c1 after c2 was created moves it to the front.
	s.AppendMessage(ctx, AppendMessageCommand{
		ConversationID: c1.ID,
		SenderID:       staff.ID,
		SenderRole:     staff.Role,
		Content:        "newest",
		Timestamp:      time.Now().UTC().Add(time.Minute),
	})

	convs, err := s.ListForUser(ctx, parent.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("conversations = %d, want 2", len(convs))
	}
	if convs[0].ID != c1.ID || convs[1].ID != c2.ID {
		t.Errorf("order = [%s %s], want most recent first", convs[0].ID, convs[1].ID)
	}

	// A non-participant sees nothing.
	none, _ := s.ListForUser(ctx, "stranger")
	if len(none) != 0 {
		t.Errorf("stranger sees %d conversations", len(none))
	}
}

func TestStatsForUser(t *testing.T) {
	ctx := context.Background()
	s, _, dir := newTestService(t)

	other := domain.Participant{ID: "staff-2", Role: domain.RoleStaff, Name: "Mr Ortiz"}
	dir.Add(other)

	c1, _ := s.CreateOrGet(ctx, parent, staff)
	c2, _ := s.CreateOrGet(ctx, parent, other)

	for i := 0; i < 2; i++ {
		s.AppendMessage(ctx, AppendMessageCommand{
			ConversationID: c1.ID, SenderID: staff.ID, SenderRole: staff.Role, Content: "a",
		})
	}
	s.AppendMessage(ctx, AppendMessageCommand{
		ConversationID: c2.ID, SenderID: other.ID, SenderRole: other.Role, Content: "b",
	})

	stats, err := s.StatsForUser(ctx, parent.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalConversations != 2 {
		t.Errorf("totalChats = %d, want 2", stats.TotalConversations)
	}
	if stats.UnreadMessages != 3 {
		t.Errorf("unreadCount = %d, want 3", stats.UnreadMessages)
	}

	// Reading one conversation drops its share of the total.
	s.MarkRead(ctx, c1.ID, parent.ID)
	stats, _ = s.StatsForUser(ctx, parent.ID)
	if stats.UnreadMessages != 1 {
		t.Errorf("unreadCount after mark read = %d, want 1", stats.UnreadMessages)
	}
}
