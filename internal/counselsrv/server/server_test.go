package server

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counseldesk/counseldesk/internal/counselsrv/config"
)

func init() {
	config.TestInit()
}

func TestMountHandlers(t *testing.T) {
	s, err := CreateNewServer()
	require.NoError(t, err)
	s.MountHandlers()

	routes := make(map[string]bool)
	walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		routes[method+" "+route] = true
		return nil
	}
	require.NoError(t, chi.Walk(s.Router, walkFunc))

	for _, want := range []string{
		"GET /version",
		"POST /auth/login",
		"POST /auth/platform/login",
		"POST /tenants/",
		"GET /tenants/{tenantID}",
		"POST /clients",
		"GET /clients/{clientID}",
		"POST /matters",
		"PUT /matters/{matterID}",
		"POST /documents",
		"PUT /tasks/{taskID}/status",
		"PUT /invoices/{invoiceID}/status",
		"POST /time-entries",
		"PUT /roles/{roleID}/users/{userID}",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}
