package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
	"github.com/counseldesk/counseldesk/internal/counselsrv/tenancy"
)

const (
	authHeaderPrefix = "Bearer "
	genericAuthError = "authentication failed"
)

// ContextMiddleware authenticates the bearer token and attaches the
// principal to the request context. Tenant resolution runs after this
// middleware so the resolver can check the principal's membership.
func ContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := log.Ctx(ctx)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.Debug().Msg("missing authorization header")
			httpx.ErrUnAuthorized(genericAuthError).Send(w)
			return
		}
		if !strings.HasPrefix(authHeader, authHeaderPrefix) {
			logger.Debug().Msg("invalid authorization header format")
			httpx.ErrUnAuthorized(genericAuthError).Send(w)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, authHeaderPrefix))
		if token == "" {
			logger.Debug().Msg("empty token")
			httpx.ErrUnAuthorized(genericAuthError).Send(w)
			return
		}

		principal, err := ValidateToken(ctx, token)
		if err != nil {
			logger.Debug().Err(err).Msg("token validation failed")
			httpx.ErrUnAuthorized(genericAuthError).Send(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(tenancy.WithPrincipal(ctx, principal)))
	})
}
