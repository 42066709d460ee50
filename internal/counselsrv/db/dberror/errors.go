package dberror

import (
	"net/http"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
)

var (
	ErrDatabase        apperrors.Error = apperrors.New("db error").SetStatusCode(http.StatusInternalServerError)
	ErrAlreadyExists   apperrors.Error = ErrDatabase.New("already exists").SetStatusCode(http.StatusConflict)
	ErrNotFound        apperrors.Error = ErrDatabase.New("not found").SetStatusCode(http.StatusNotFound)
	ErrInvalidInput    apperrors.Error = ErrDatabase.New("invalid input").SetStatusCode(http.StatusBadRequest)
	ErrMissingTenantID apperrors.Error = ErrInvalidInput.New("missing tenant ID").SetStatusCode(http.StatusBadRequest)

	// ErrNoActiveScope is returned at accessor construction time, never
	// at query time. A query path that sees it indicates a bug in the
	// request middleware.
	ErrNoActiveScope apperrors.Error = ErrDatabase.New("no active request scope").SetStatusCode(http.StatusInternalServerError)

	// ErrSystemScopeRequired guards platform operations that run outside
	// a tenant partition.
	ErrSystemScopeRequired apperrors.Error = ErrDatabase.New("operation requires system scope").SetStatusCode(http.StatusForbidden)
)
