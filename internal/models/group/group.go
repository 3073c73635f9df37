package group

import (
	"time"

	"github.com/google/uuid"
)

const DefaultMaxMembers = 50

type Group struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	InviteCode  string    `json:"invite_code" db:"invite_code"`
	IsPublic    bool      `json:"is_public" db:"is_public"`
	MaxMembers  int       `json:"max_members" db:"max_members"`
	CreatedBy   uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// CanManage владелец и администраторы могут менять группу и удалять участников
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

type Membership struct {
	ID       uuid.UUID `json:"id" db:"id"`
	GroupID  uuid.UUID `json:"group_id" db:"group_id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	Role     Role      `json:"role" db:"role"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

type SharedTask struct {
	ID       uuid.UUID `json:"id" db:"id"`
	GroupID  uuid.UUID `json:"group_id" db:"group_id"`
	TaskID   uuid.UUID `json:"task_id" db:"task_id"`
	SharedBy uuid.UUID `json:"shared_by" db:"shared_by"`
	SharedAt time.Time `json:"shared_at" db:"shared_at"`
}

// GroupWithRole группа вместе с ролью текущего пользователя и числом участников
type GroupWithRole struct {
	Group
	Role        Role `json:"user_role"`
	MemberCount int  `json:"member_count"`
}
