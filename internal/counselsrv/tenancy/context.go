package tenancy

import (
	"context"

	"github.com/counseldesk/counseldesk/pkg/types"
)

type ctxKeyType string

const (
	ctxScopeKey     ctxKeyType = "TenancyRequestScope"
	ctxPrincipalKey ctxKeyType = "TenancyPrincipal"
)

// Principal is the authenticated identity attached to a request before
// tenant resolution completes. TenantID is the tenant asserted by the
// credential, not yet validated against the resolved tenant.
type Principal struct {
	UserID   types.UserId
	TenantID types.TenantId
	// Elevated marks platform administrators, who belong to no tenant
	// and may act across tenants.
	Elevated bool
}

// WithScope attaches a request scope to the context. The scope is the
// only mutable object on the context and is owned by the middleware
// that created it.
func WithScope(ctx context.Context, scope *RequestScope) context.Context {
	return context.WithValue(ctx, ctxScopeKey, scope)
}

// ScopeFromContext retrieves the request scope, or nil outside a
// request.
func ScopeFromContext(ctx context.Context) *RequestScope {
	if scope, ok := ctx.Value(ctxScopeKey).(*RequestScope); ok {
		return scope
	}
	return nil
}

// WithPrincipal attaches the authenticated principal to the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

// PrincipalFromContext retrieves the authenticated principal, or nil
// for anonymous requests.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(ctxPrincipalKey).(*Principal); ok {
		return p
	}
	return nil
}

// WithSystemScope derives a context carrying a fresh system scope.
// The original request scope, if any, is shadowed, not mutated.
func WithSystemScope(ctx context.Context, correlationID string) context.Context {
	return WithScope(ctx, SystemScope(correlationID))
}
