package auth

import (
	"net/http"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
)

var (
	ErrAuth apperrors.Error = apperrors.New("auth error").SetStatusCode(http.StatusInternalServerError)
)

var (
	ErrUnauthorized       apperrors.Error = ErrAuth.New("unauthorized access").SetStatusCode(http.StatusUnauthorized)
	ErrInvalidToken       apperrors.Error = ErrAuth.New("invalid authorization token").SetStatusCode(http.StatusUnauthorized)
	ErrInvalidCredentials apperrors.Error = ErrAuth.New("invalid credentials").SetStatusCode(http.StatusUnauthorized)
	ErrTokenGeneration    apperrors.Error = ErrAuth.New("failed to generate token").SetStatusCode(http.StatusInternalServerError)
)
