package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
	"github.com/counseldesk/counseldesk/internal/counselsrv/auth"
	"github.com/counseldesk/counseldesk/internal/counselsrv/policy"
	"github.com/counseldesk/counseldesk/internal/counselsrv/server/middleware"
	"github.com/counseldesk/counseldesk/pkg/types"
)

// routeParam binds one route to its handler and the actions the
// request scope must hold. An empty action list means the route is
// open to any activated scope.
type routeParam struct {
	Method  string
	Path    string
	Actions []types.Action
	Handler httpx.RequestHandler
}

var authHandlers = []routeParam{
	{
		Method:  http.MethodPost,
		Path:    "/login",
		Handler: login,
	},
}

// platformAuthHandlers mount outside the tenant scope: platform
// administrators belong to no tenant, so resolution cannot run.
var platformAuthHandlers = []routeParam{
	{
		Method:  http.MethodPost,
		Path:    "/platform/login",
		Handler: platformLogin,
	},
}

var platformHandlers = []routeParam{
	{
		Method:  http.MethodPost,
		Path:    "/",
		Actions: []types.Action{types.ActionTenantAdmin},
		Handler: createTenant,
	},
	{
		Method:  http.MethodGet,
		Path:    "/",
		Actions: []types.Action{types.ActionTenantAdmin},
		Handler: listTenants,
	},
	{
		Method:  http.MethodGet,
		Path:    "/{tenantID}",
		Actions: []types.Action{types.ActionTenantAdmin},
		Handler: getTenant,
	},
	{
		Method:  http.MethodPut,
		Path:    "/{tenantID}/status",
		Actions: []types.Action{types.ActionTenantAdmin},
		Handler: updateTenantStatus,
	},
	{
		Method:  http.MethodDelete,
		Path:    "/{tenantID}",
		Actions: []types.Action{types.ActionTenantAdmin},
		Handler: deleteTenant,
	},
}

var tenantHandlers = []routeParam{
	// users and roles
	{Method: http.MethodPost, Path: "/users", Actions: []types.Action{types.ActionUserWrite}, Handler: createUser},
	{Method: http.MethodGet, Path: "/users", Actions: []types.Action{types.ActionUserRead}, Handler: listUsers},
	{Method: http.MethodGet, Path: "/users/{userID}", Actions: []types.Action{types.ActionUserRead}, Handler: getUser},
	{Method: http.MethodPut, Path: "/users/{userID}/status", Actions: []types.Action{types.ActionUserWrite}, Handler: updateUserStatus},
	{Method: http.MethodDelete, Path: "/users/{userID}", Actions: []types.Action{types.ActionUserWrite}, Handler: deleteUser},
	{Method: http.MethodPost, Path: "/roles", Actions: []types.Action{types.ActionUserWrite}, Handler: createRole},
	{Method: http.MethodGet, Path: "/roles", Actions: []types.Action{types.ActionUserRead}, Handler: listRoles},
	{Method: http.MethodGet, Path: "/roles/{roleID}", Actions: []types.Action{types.ActionUserRead}, Handler: getRole},
	{Method: http.MethodDelete, Path: "/roles/{roleID}", Actions: []types.Action{types.ActionUserWrite}, Handler: deleteRole},
	{Method: http.MethodPut, Path: "/roles/{roleID}/users/{userID}", Actions: []types.Action{types.ActionUserWrite}, Handler: assignRole},
	{Method: http.MethodDelete, Path: "/roles/{roleID}/users/{userID}", Actions: []types.Action{types.ActionUserWrite}, Handler: revokeRole},

	// clients
	{Method: http.MethodPost, Path: "/clients", Actions: []types.Action{types.ActionClientWrite}, Handler: createClient},
	{Method: http.MethodGet, Path: "/clients", Actions: []types.Action{types.ActionClientRead}, Handler: listClients},
	{Method: http.MethodGet, Path: "/clients/{clientID}", Actions: []types.Action{types.ActionClientRead}, Handler: getClient},
	{Method: http.MethodPut, Path: "/clients/{clientID}", Actions: []types.Action{types.ActionClientWrite}, Handler: updateClient},
	{Method: http.MethodDelete, Path: "/clients/{clientID}", Actions: []types.Action{types.ActionClientWrite}, Handler: deleteClient},

	// matters
	{Method: http.MethodPost, Path: "/matters", Actions: []types.Action{types.ActionMatterWrite}, Handler: createMatter},
	{Method: http.MethodGet, Path: "/matters", Actions: []types.Action{types.ActionMatterRead}, Handler: listMatters},
	{Method: http.MethodGet, Path: "/matters/{matterID}", Actions: []types.Action{types.ActionMatterRead}, Handler: getMatter},
	{Method: http.MethodPut, Path: "/matters/{matterID}", Actions: []types.Action{types.ActionMatterWrite}, Handler: updateMatter},
	{Method: http.MethodDelete, Path: "/matters/{matterID}", Actions: []types.Action{types.ActionMatterWrite}, Handler: deleteMatter},

	// documents
	{Method: http.MethodPost, Path: "/documents", Actions: []types.Action{types.ActionDocWrite}, Handler: createDocument},
	{Method: http.MethodGet, Path: "/documents", Actions: []types.Action{types.ActionDocRead}, Handler: listDocuments},
	{Method: http.MethodGet, Path: "/documents/{documentID}", Actions: []types.Action{types.ActionDocRead}, Handler: getDocument},
	{Method: http.MethodDelete, Path: "/documents/{documentID}", Actions: []types.Action{types.ActionDocWrite}, Handler: deleteDocument},

	// tasks
	{Method: http.MethodPost, Path: "/tasks", Actions: []types.Action{types.ActionTaskWrite}, Handler: createTask},
	{Method: http.MethodGet, Path: "/tasks", Actions: []types.Action{types.ActionTaskRead}, Handler: listTasks},
	{Method: http.MethodGet, Path: "/tasks/{taskID}", Actions: []types.Action{types.ActionTaskRead}, Handler: getTask},
	{Method: http.MethodPut, Path: "/tasks/{taskID}/status", Actions: []types.Action{types.ActionTaskWrite}, Handler: updateTaskStatus},
	{Method: http.MethodDelete, Path: "/tasks/{taskID}", Actions: []types.Action{types.ActionTaskWrite}, Handler: deleteTask},

	// invoices
	{Method: http.MethodPost, Path: "/invoices", Actions: []types.Action{types.ActionBillingWrite}, Handler: createInvoice},
	{Method: http.MethodGet, Path: "/invoices", Actions: []types.Action{types.ActionBillingRead}, Handler: listInvoices},
	{Method: http.MethodGet, Path: "/invoices/{invoiceID}", Actions: []types.Action{types.ActionBillingRead}, Handler: getInvoice},
	{Method: http.MethodPut, Path: "/invoices/{invoiceID}/status", Actions: []types.Action{types.ActionBillingWrite}, Handler: updateInvoiceStatus},
	{Method: http.MethodDelete, Path: "/invoices/{invoiceID}", Actions: []types.Action{types.ActionBillingWrite}, Handler: deleteInvoice},

	// time entries
	{Method: http.MethodPost, Path: "/time-entries", Actions: []types.Action{types.ActionTimeWrite}, Handler: createTimeEntry},
	{Method: http.MethodGet, Path: "/time-entries", Actions: []types.Action{types.ActionTimeRead}, Handler: listTimeEntries},
	{Method: http.MethodGet, Path: "/time-entries/{entryID}", Actions: []types.Action{types.ActionTimeRead}, Handler: getTimeEntry},
	{Method: http.MethodDelete, Path: "/time-entries/{entryID}", Actions: []types.Action{types.ActionTimeWrite}, Handler: deleteTimeEntry},
}

func mountRoutes(router chi.Router, routes []routeParam) {
	for _, route := range routes {
		handler := route.Handler
		if len(route.Actions) > 0 {
			handler = policy.Enforce(route.Actions, handler)
		}
		router.Method(route.Method, route.Path, httpx.WrapHttpRsp(handler))
	}
}

// AuthRouter serves login. Tenant login resolves the tenant from
// request signals under an anonymous scope; platform login bypasses
// tenant resolution entirely.
func AuthRouter(r chi.Router) chi.Router {
	router := chi.NewRouter()
	router.Group(func(g chi.Router) {
		g.Use(middleware.AnonymousTenantScope)
		mountRoutes(g, authHandlers)
	})
	mountRoutes(router, platformAuthHandlers)
	return router
}

// PlatformRouter serves tenant administration for elevated principals
// under the system scope.
func PlatformRouter(r chi.Router) chi.Router {
	router := chi.NewRouter()
	router.Use(auth.ContextMiddleware)
	router.Use(middleware.SystemScope)
	mountRoutes(router, platformHandlers)
	return router
}

// TenantRouter serves the tenant-partitioned resources. Every request
// runs the full scope lifecycle before its handler.
func TenantRouter(r chi.Router) chi.Router {
	router := chi.NewRouter()
	router.Use(auth.ContextMiddleware)
	router.Use(middleware.TenantScope)
	mountRoutes(router, tenantHandlers)
	return router
}
