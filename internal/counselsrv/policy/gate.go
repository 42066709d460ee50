// Package policy materializes per-tenant permission sets during scope
// setup and enforces them per route. Decisions are deny-by-default and
// never cached across requests; every decision emits a structured
// authz_decision log entry.
package policy

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
	"github.com/counseldesk/counseldesk/internal/counselsrv/tenancy"
	"github.com/counseldesk/counseldesk/pkg/types"
)

// Membership is a principal's standing within one tenant: its user
// status there and the union of actions granted through its roles.
type Membership struct {
	UserID   types.UserId
	TenantID types.TenantId
	Status   types.UserStatus
	Actions  []types.Action
}

// GrantSource loads memberships from storage. Implementations must
// return ErrNoMembership-compatible errors when the user does not
// belong to the tenant rather than an empty membership.
type GrantSource interface {
	GetMembership(ctx context.Context, tenantID types.TenantId, userID types.UserId) (*Membership, apperrors.Error)
}

// Gate materializes the permission set for a principal in a tenant.
// It holds no per-request state and is safe for concurrent use.
type Gate struct {
	grants GrantSource
}

func NewGate(grants GrantSource) *Gate {
	return &Gate{grants: grants}
}

// Materialize computes the permission set the scope will carry. The
// result reflects grants as stored at this instant; a revocation takes
// effect on the next request, never retroactively within this one.
//
// Elevated principals bypass membership entirely and receive the full
// action set. The bypass is audited.
func (g *Gate) Materialize(ctx context.Context, principal *tenancy.Principal, tenantID types.TenantId) (types.PermissionSet, apperrors.Error) {
	if principal == nil {
		return nil, ErrNotAuthorized
	}

	if principal.Elevated {
		log.Ctx(ctx).Warn().
			Str("principal", string(principal.UserID)).
			Str("tenant", string(tenantID)).
			Str("decision", "allow").
			Bool("elevated", true).
			Msg("authz_decision: elevated bypass")
		return types.AllActions(), nil
	}

	membership, err := g.grants.GetMembership(ctx, tenantID, principal.UserID)
	if err != nil {
		if err.StatusCode() >= 500 {
			log.Ctx(ctx).Error().Err(err).
				Str("principal", string(principal.UserID)).
				Str("tenant", string(tenantID)).
				Msg("unable to load membership")
			return nil, ErrGrantLoad.Err(err)
		}
		logDecision(ctx, principal.UserID, tenantID, "", false, false, "no membership")
		return nil, ErrNoMembership
	}
	if membership.Status != types.UserStatusActive {
		logDecision(ctx, principal.UserID, tenantID, "", false, false, "membership not active")
		return nil, ErrInactiveMember
	}

	return types.NewPermissionSet(membership.Actions...), nil
}

func logDecision(ctx context.Context, principal types.UserId, tenant types.TenantId, action types.Action, allowed, elevated bool, reason string) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	ev := log.Ctx(ctx).Info()
	if !allowed {
		ev = log.Ctx(ctx).Warn()
	}
	ev.Str("principal", string(principal)).
		Str("tenant", string(tenant)).
		Str("action", string(action)).
		Str("decision", decision).
		Bool("elevated", elevated).
		Msg("authz_decision: " + reason)
}
