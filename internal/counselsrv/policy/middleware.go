package policy

import (
	"net/http"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
	"github.com/counseldesk/counseldesk/internal/counselsrv/tenancy"
	"github.com/counseldesk/counseldesk/pkg/types"
)

// Enforce wraps a handler with a permission check against the request
// scope. Every required action must be held; the check re-reads the
// scope on each request, so decisions are never reused across
// requests. Denials return the uniform forbidden error.
func Enforce(required []types.Action, handler httpx.RequestHandler) httpx.RequestHandler {
	return func(r *http.Request) (*httpx.Response, error) {
		ctx := r.Context()
		scope := tenancy.ScopeFromContext(ctx)
		if scope == nil {
			return nil, ErrNoActiveScope
		}

		for _, action := range required {
			if !scope.Can(action) {
				logDecision(ctx, scope.PrincipalID(), scope.TenantID(), action,
					false, scope.Elevated(), "missing grant")
				return nil, ErrForbidden
			}
		}

		for _, action := range required {
			logDecision(ctx, scope.PrincipalID(), scope.TenantID(), action,
				true, scope.Elevated(), "granted")
		}
		return handler(r)
	}
}

// EnforceFunc is Enforce for a single action, the common case.
func EnforceFunc(action types.Action, handler httpx.RequestHandler) httpx.RequestHandler {
	return Enforce([]types.Action{action}, handler)
}
