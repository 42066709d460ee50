package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
	"github.com/counseldesk/counseldesk/internal/common/logtrace"
	commonmiddleware "github.com/counseldesk/counseldesk/internal/common/middleware"
	"github.com/counseldesk/counseldesk/internal/counselsrv/apis"
	"github.com/counseldesk/counseldesk/internal/counselsrv/config"
	"github.com/counseldesk/counseldesk/internal/counselsrv/server/middleware"
	"github.com/counseldesk/counseldesk/internal/counselsrv/tenancy"
)

type CounselDeskServer struct {
	Router *chi.Mux
}

func CreateNewServer() (*CounselDeskServer, error) {
	s := &CounselDeskServer{}
	s.Router = chi.NewRouter()
	return s, nil
}

func (s *CounselDeskServer) MountHandlers() {
	s.Router.Use(commonmiddleware.RequestLogger)
	s.Router.Use(commonmiddleware.PanicHandler)
	if config.Config().HandleCORS {
		s.Router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"https://*." + config.Config().BaseDomain},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", tenancy.TenantHeader},
			MaxAge:         300,
		}))
	}
	s.Router.Route("/", s.mountResourceHandlers)
	if logtrace.IsTraceEnabled() {
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			fmt.Printf("%s %s\n", method, route)
			return nil
		}
		if err := chi.Walk(s.Router, walkFunc); err != nil {
			fmt.Printf("Logging err: %s\n", err.Error())
		}
	}
}

func (s *CounselDeskServer) mountResourceHandlers(r chi.Router) {
	r.Use(middleware.LoadScopedDB)
	r.Mount("/auth", apis.AuthRouter(r))
	r.Mount("/tenants", apis.PlatformRouter(r))
	r.Mount("/", apis.TenantRouter(r))
	r.Get("/version", s.getVersion)
}

type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"`
	ApiVersion    string `json:"apiVersion"`
}

func (s *CounselDeskServer) getVersion(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("GetVersion")
	rsp := &GetVersionRsp{
		ServerVersion: "CounselDesk Server: 0.1.0",
		ApiVersion:    "v1",
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, rsp)
}
