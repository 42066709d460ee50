package middleware

import (
	"net/http"

	"github.com/counseldesk/counseldesk/internal/counselsrv/db"
)

func LoadScopedDB(next http.Handler) http.Handler {
	return db.LoadScopedDBMiddleware(next)
}
