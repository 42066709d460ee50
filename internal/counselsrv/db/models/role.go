package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/counseldesk/counseldesk/pkg/types"
)

// Role is a named bundle of actions within one tenant. Grants are
// expressed by assigning roles to users; a user's permission set is
// the union of its roles' actions.
type Role struct {
	RoleID      uuid.UUID
	TenantID    types.TenantId
	Name        string
	Description string
	Actions     []types.Action
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoleAssignment binds a user to a role within the tenant.
type RoleAssignment struct {
	UserID     types.UserId
	RoleID     uuid.UUID
	TenantID   types.TenantId
	AssignedAt time.Time
}
