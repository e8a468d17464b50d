package application

import (
	"context"
	"errors"
	"testing"

	"github.com/smartdaycare/chat-service/internal/domain"
)

func TestDelete_CascadesToMessages(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	conv, _ := s.CreateOrGet(ctx, parent, staff)
	for i := 0; i < 3; i++ {
		s.AppendMessage(ctx, AppendMessageCommand{
			ConversationID: conv.ID, SenderID: staff.ID, SenderRole: staff.Role, Content: "bye",
		})
	}

	if err := s.Delete(ctx, conv.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Messages are gone; listing the deleted id is empty, not an error.
	msgs, err := s.ListMessages(ctx, conv.ID, 0, 0)
	if err != nil {
		t.Errorf("list after delete: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("messages survived delete: %d", len(msgs))
	}

	if _, err := s.GetConversation(ctx, conv.ID); !errors.Is(err, domain.ErrConversationNotFound) {
		t.Errorf("conversation survived delete: err = %v", err)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	conv, _ := s.CreateOrGet(ctx, parent, staff)
	if err := s.Delete(ctx, conv.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := s.Delete(ctx, conv.ID); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}

func TestDelete_FreesPairForRecreation(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	c1, _ := s.CreateOrGet(ctx, parent, staff)
	s.Delete(ctx, c1.ID)

	c2, err := s.CreateOrGet(ctx, parent, staff)
	if err != nil {
		t.Fatalf("recreate after delete: %v", err)
	}
	if c2.ID == c1.ID {
		t.Errorf("recreated conversation reused deleted id")
	}
}
