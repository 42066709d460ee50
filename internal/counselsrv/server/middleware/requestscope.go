// Package middleware wires the request scope lifecycle into the
// router: scope creation, tenant resolution, permission
// materialization, and guaranteed disposal.
package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
	commonmiddleware "github.com/counseldesk/counseldesk/internal/common/middleware"
	"github.com/counseldesk/counseldesk/internal/counselsrv/config"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db"
	"github.com/counseldesk/counseldesk/internal/counselsrv/policy"
	"github.com/counseldesk/counseldesk/internal/counselsrv/tenancy"
	"github.com/counseldesk/counseldesk/pkg/types"
)

func newResolver() *tenancy.Resolver {
	return tenancy.NewResolver(db.Directory(),
		config.Config().BaseDomain, config.Config().ReservedSubdomains)
}

// TenantScope runs the scope lifecycle for authenticated tenant
// routes: resolve the tenant, pin it on the db connection, materialize
// the principal's permissions, and activate the scope. The deferred
// Dispose runs on every exit path, including panics unwinding through
// the panic handler.
func TenantScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		principal := tenancy.PrincipalFromContext(ctx)
		if principal == nil {
			httpx.ErrUnAuthorized().Send(w)
			return
		}

		scope := tenancy.NewScope(commonmiddleware.CorrelationIDFromContext(ctx))
		defer scope.Dispose()
		ctx = tenancy.WithScope(ctx, scope)

		if err := scope.BeginResolution(); err != nil {
			httpx.SendError(w, err)
			return
		}
		tenantID, err := newResolver().Resolve(ctx, r.Header.Get(tenancy.TenantHeader), r.Host, principal)
		if err != nil {
			log.Ctx(ctx).Info().Err(err).Str("host", r.Host).Msg("tenant resolution failed")
			httpx.SendError(w, err)
			return
		}
		if err := scope.Resolve(tenantID); err != nil {
			httpx.SendError(w, err)
			return
		}
		if err := db.SetTenantScope(ctx, tenantID); err != nil {
			httpx.SendError(w, err)
			return
		}

		perms, err := policy.NewGate(db.Grants()).Materialize(ctx, principal, tenantID)
		if err != nil {
			httpx.SendError(w, err)
			return
		}
		if err := scope.Authorize(principal.UserID, perms, principal.Elevated); err != nil {
			httpx.SendError(w, err)
			return
		}
		if err := scope.Activate(); err != nil {
			httpx.SendError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AnonymousTenantScope runs the scope lifecycle for routes that accept
// unauthenticated requests, such as login. The tenant still resolves
// from request signals; the scope activates with an empty permission
// set, so handlers can reach tenant-filtered data but nothing
// permission-gated.
func AnonymousTenantScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		scope := tenancy.NewScope(commonmiddleware.CorrelationIDFromContext(ctx))
		defer scope.Dispose()
		ctx = tenancy.WithScope(ctx, scope)

		if err := scope.BeginResolution(); err != nil {
			httpx.SendError(w, err)
			return
		}
		tenantID, err := newResolver().Resolve(ctx, r.Header.Get(tenancy.TenantHeader), r.Host, nil)
		if err != nil {
			log.Ctx(ctx).Info().Err(err).Str("host", r.Host).Msg("tenant resolution failed")
			httpx.SendError(w, err)
			return
		}
		if err := scope.Resolve(tenantID); err != nil {
			httpx.SendError(w, err)
			return
		}
		if err := db.SetTenantScope(ctx, tenantID); err != nil {
			httpx.SendError(w, err)
			return
		}
		if err := scope.Authorize("", types.NewPermissionSet(), false); err != nil {
			httpx.SendError(w, err)
			return
		}
		if err := scope.Activate(); err != nil {
			httpx.SendError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SystemScope admits elevated principals to the platform routes. The
// scope is bound to no tenant; every admission is audited.
func SystemScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		principal := tenancy.PrincipalFromContext(ctx)
		if principal == nil {
			httpx.ErrUnAuthorized().Send(w)
			return
		}
		if !principal.Elevated {
			log.Ctx(ctx).Warn().
				Str("principal", string(principal.UserID)).
				Str("path", r.URL.Path).
				Msg("non-elevated principal attempted platform route")
			httpx.ErrForbidden().Send(w)
			return
		}

		policy.AuditSystemScope(ctx, principal.UserID, "platform route "+r.URL.Path)

		scope := tenancy.SystemScope(commonmiddleware.CorrelationIDFromContext(ctx))
		defer scope.Dispose()
		ctx = tenancy.WithScope(ctx, scope)

		if err := scope.Activate(); err != nil {
			httpx.SendError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
