package apis

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
	"github.com/counseldesk/counseldesk/internal/counselsrv/auth"
	"github.com/counseldesk/counseldesk/internal/counselsrv/config"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db"
	"github.com/counseldesk/counseldesk/pkg/types"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	TenantID  string    `json:"tenant_id"`
}

// login authenticates a user within the resolved tenant and issues a
// token. The lookup is tenant-filtered, so the same email in another
// tenant can never match, and all failures return the same error.
func login(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &loginRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	d, err := db.Scoped(ctx)
	if err != nil {
		return nil, err
	}
	user, err := d.GetUserByEmail(ctx, req.Email)
	if err != nil {
		log.Ctx(ctx).Info().Str("email", req.Email).Msg("login failed: unknown user")
		return nil, auth.ErrInvalidCredentials
	}

	ok, verifyErr := auth.VerifyPassword(req.Password, user.PasswordHash)
	if verifyErr != nil || !ok {
		log.Ctx(ctx).Info().Str("user", string(user.UserID)).Msg("login failed: bad password")
		return nil, auth.ErrInvalidCredentials
	}
	if user.Status != types.UserStatusActive {
		log.Ctx(ctx).Info().Str("user", string(user.UserID)).Msg("login failed: user not active")
		return nil, auth.ErrInvalidCredentials
	}

	token, expiresAt, tokenErr := auth.CreateToken(ctx, user.UserID, user.TenantID, false)
	if tokenErr != nil {
		return nil, tokenErr
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: &loginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			UserID:    string(user.UserID),
			TenantID:  string(user.TenantID),
		},
	}, nil
}

// platformLogin authenticates the configured platform administrator
// and issues an elevated token bound to no tenant. This is the
// bootstrap path for tenant administration; no tenant resolution runs
// on it, and when no credential is configured it always fails.
func platformLogin(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &loginRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	admin := config.Config().PlatformAdmin
	if admin.Email == "" || admin.PasswordHash == "" {
		log.Ctx(ctx).Info().Msg("platform login attempted but no credential is configured")
		return nil, auth.ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(req.Email), []byte(admin.Email)) != 1 {
		log.Ctx(ctx).Info().Str("email", req.Email).Msg("platform login failed: unknown account")
		return nil, auth.ErrInvalidCredentials
	}
	ok, verifyErr := auth.VerifyPassword(req.Password, admin.PasswordHash)
	if verifyErr != nil || !ok {
		log.Ctx(ctx).Info().Str("email", req.Email).Msg("platform login failed: bad password")
		return nil, auth.ErrInvalidCredentials
	}

	token, expiresAt, tokenErr := auth.CreateToken(ctx, types.UserId(admin.Email), "", true)
	if tokenErr != nil {
		return nil, tokenErr
	}
	log.Ctx(ctx).Warn().Str("email", admin.Email).Msg("platform administrator authenticated")

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: &loginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			UserID:    admin.Email,
		},
	}, nil
}
