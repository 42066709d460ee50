package policy

import (
	"net/http"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
)

var (
	ErrPolicy apperrors.Error = apperrors.New("policy error").SetStatusCode(http.StatusInternalServerError)

	// ErrForbidden is the uniform deny for authorization failures. The
	// message never distinguishes a missing grant from a missing
	// membership.
	ErrForbidden      apperrors.Error = ErrPolicy.New("access denied").SetStatusCode(http.StatusForbidden)
	ErrNotAuthorized  apperrors.Error = ErrPolicy.New("request is not authorized").SetStatusCode(http.StatusForbidden)
	ErrGrantLoad      apperrors.Error = ErrPolicy.New("unable to load permissions").SetStatusCode(http.StatusInternalServerError)
	ErrNoActiveScope  apperrors.Error = ErrPolicy.New("no active request scope").SetStatusCode(http.StatusInternalServerError)
	ErrNoMembership   apperrors.Error = ErrPolicy.New("access denied").SetStatusCode(http.StatusForbidden)
	ErrInactiveMember apperrors.Error = ErrPolicy.New("access denied").SetStatusCode(http.StatusForbidden)
)
