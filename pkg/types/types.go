// Package types holds identifiers and enumerations shared between the
// server packages and API clients.
package types

type TenantId string
type UserId string

func (t TenantId) IsNil() bool {
	return t == ""
}

func (u UserId) IsNil() bool {
	return u == ""
}

// TenantStatus is the lifecycle state of a tenant partition.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusTrial     TenantStatus = "trial"
	TenantStatusSuspended TenantStatus = "suspended"
)

// IsServable reports whether requests may resolve to a tenant in this
// status. Trial tenants are servable; suspended ones are not.
func (s TenantStatus) IsServable() bool {
	return s == TenantStatusActive || s == TenantStatusTrial
}

// UserStatus mirrors TenantStatus for principals.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusLocked   UserStatus = "locked"
)

// Action names a permission-checked operation. Actions are the unit of
// grant in role definitions.
type Action string

const (
	ActionTenantAdmin  Action = "tenant.admin"
	ActionUserRead     Action = "user.read"
	ActionUserWrite    Action = "user.write"
	ActionClientRead   Action = "client.read"
	ActionClientWrite  Action = "client.write"
	ActionMatterRead   Action = "matter.read"
	ActionMatterWrite  Action = "matter.write"
	ActionDocRead      Action = "document.read"
	ActionDocWrite     Action = "document.write"
	ActionTaskRead     Action = "task.read"
	ActionTaskWrite    Action = "task.write"
	ActionBillingRead  Action = "billing.read"
	ActionBillingWrite Action = "billing.write"
	ActionTimeRead     Action = "time.read"
	ActionTimeWrite    Action = "time.write"
)

// PermissionSet is the union of actions a principal may perform
// within one tenant. The zero value permits nothing.
type PermissionSet map[Action]struct{}

func NewPermissionSet(actions ...Action) PermissionSet {
	ps := make(PermissionSet, len(actions))
	for _, a := range actions {
		ps[a] = struct{}{}
	}
	return ps
}

func (ps PermissionSet) Has(a Action) bool {
	_, ok := ps[a]
	return ok
}

func (ps PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(ps))
	for a := range ps {
		out[a] = struct{}{}
	}
	return out
}

// AllActions returns the full action set, granted to elevated
// principals.
func AllActions() PermissionSet {
	return NewPermissionSet(
		ActionTenantAdmin,
		ActionUserRead, ActionUserWrite,
		ActionClientRead, ActionClientWrite,
		ActionMatterRead, ActionMatterWrite,
		ActionDocRead, ActionDocWrite,
		ActionTaskRead, ActionTaskWrite,
		ActionBillingRead, ActionBillingWrite,
		ActionTimeRead, ActionTimeWrite,
	)
}

// ScopeState is the lifecycle state of a request scope.
type ScopeState int

const (
	ScopeUnresolved ScopeState = iota
	ScopeResolving
	ScopeResolved
	ScopeAuthorized
	ScopeActive
	ScopeDisposed
)

func (s ScopeState) String() string {
	switch s {
	case ScopeUnresolved:
		return "unresolved"
	case ScopeResolving:
		return "resolving"
	case ScopeResolved:
		return "resolved"
	case ScopeAuthorized:
		return "authorized"
	case ScopeActive:
		return "active"
	case ScopeDisposed:
		return "disposed"
	}
	return "unknown"
}
