package db

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
)

// LoadScopedDBMiddleware pins a db connection onto the request context
// and returns it to the pool after the request is served. It runs
// before tenant resolution because the resolver and the policy gate
// both read from the database.
func LoadScopedDBMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := ConnCtx(r.Context())
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("unable to get db connection")
			httpx.ErrApplicationError("unable to service request at this time").Send(w)
			return
		}
		defer func() {
			if dbConn := dbFromContext(ctx); dbConn != nil {
				dbConn.Close(context.Background()) // use background to avoid canceled context
			}
		}()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
