package middleware

import (
	"context"
	"fmt"
	"net/http"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"
)

type correlationIdContextKey string

const correlationIdKey = correlationIdContextKey("correlationId")

// CorrelationIDHeader is echoed back on every response so callers can
// reference a request in support tickets.
const CorrelationIDHeader = "X-Correlation-ID"

// RequestLogger assigns a correlation id to the request, installs a
// zerolog sub-logger carrying it on the context, and logs the request
// line.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		correlationID := newCorrelationId()
		ctx = context.WithValue(ctx, correlationIdKey, correlationID)
		ctx = log.With().Str("correlation_id", correlationID).Logger().WithContext(ctx)
		w.Header().Set(CorrelationIDHeader, correlationID)

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		requestFields := map[string]interface{}{
			"requestURL":    fmt.Sprintf("%s://%s%s", scheme, r.Host, r.RequestURI),
			"requestMethod": r.Method,
			"requestPath":   r.URL.Path,
			"remoteIP":      r.RemoteAddr,
			"proto":         r.Proto,
		}
		log.Ctx(ctx).Info().Fields(requestFields).Msg("")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CorrelationIDFromContext returns the correlation id set by
// RequestLogger, or "" when called outside a request.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIdKey).(string); ok {
		return id
	}
	return ""
}

func newCorrelationId() string {
	id, err := gonanoid.New()
	if err != nil {
		return ""
	}
	return id
}
