package application

import (
	"testing"

	"go.uber.org/zap"

	"github.com/smartdaycare/chat-service/internal/domain"
	"github.com/smartdaycare/chat-service/internal/identity"
	"github.com/smartdaycare/chat-service/internal/repository/memory"
	"github.com/smartdaycare/chat-service/internal/tx"
)

var (
	parent = domain.Participant{ID: "parent-1", Role: domain.RoleParent, Name: "Dana"}
	staff  = domain.Participant{ID: "staff-1", Role: domain.RoleStaff, Name: "Miss Riley"}
)

func newTestService(t *testing.T) (*Service, *memory.Repository, *identity.Static) {
	t.Helper()
	repo := memory.New()
	dir := identity.NewStatic(parent, staff)
	return New(repo, tx.Nop{}, dir, zap.NewNop()), repo, dir
}
