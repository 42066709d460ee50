package tenancy

import (
	"net/http"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
)

var (
	ErrTenancy apperrors.Error = apperrors.New("tenancy error").SetStatusCode(http.StatusInternalServerError)
)

// Resolution failures. Messages intentionally say nothing about which
// tenants exist.
var (
	ErrTenantNotResolved apperrors.Error = ErrTenancy.New("tenant information is required").SetStatusCode(http.StatusBadRequest)
	ErrTenantUnavailable apperrors.Error = ErrTenancy.New("tenant unavailable").SetStatusCode(http.StatusForbidden)
	ErrTenantMismatch    apperrors.Error = ErrTenancy.New("tenant mismatch").SetStatusCode(http.StatusForbidden)

	// ErrDirectoryUnavailable is an infrastructure failure while
	// consulting the tenant directory. It is a server fault and says
	// nothing about whether the tenant exists.
	ErrDirectoryUnavailable apperrors.Error = ErrTenancy.New("tenant resolution failed").SetStatusCode(http.StatusInternalServerError)
)

// Scope lifecycle violations. These indicate a programming error in
// the middleware chain, not a client mistake.
var (
	ErrInvalidScopeTransition apperrors.Error = ErrTenancy.New("invalid scope transition").SetStatusCode(http.StatusInternalServerError)
	ErrScopeDisposed          apperrors.Error = ErrTenancy.New("request scope already disposed").SetStatusCode(http.StatusInternalServerError)
)
