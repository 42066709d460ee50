package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
)

// PanicHandler recovers handler panics and returns a generic 500. The
// panic is logged with the request's correlation id.
func PanicHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Ctx(r.Context()).Error().Msgf("panic occurred: %v", err)
				httpx.ErrApplicationError("Unable to process request. Please try again later.").Send(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
