package domain

type Role string

const (
	RoleParent Role = "parent"
	RoleStaff  Role = "staff"
)

func (r Role) Valid() bool {
	return r == RoleParent || r == RoleStaff
}

// Participant is a denormalized identity snapshot embedded in a conversation.
// Role and Name are captured at conversation-creation time; identity is by ID.
type Participant struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	Name string `json:"name"`
}
