package apis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counseldesk/counseldesk/internal/counselsrv/auth"
	"github.com/counseldesk/counseldesk/internal/counselsrv/config"
)

func init() {
	config.TestInit()
}

func platformLoginRequest(t *testing.T, email, password string) *http.Request {
	t.Helper()
	body := `{"email": "` + email + `", "password": "` + password + `"}`
	r := httptest.NewRequest(http.MethodPost, "/auth/platform/login", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestPlatformLogin(t *testing.T) {
	hash, err := auth.HashPassword("correct-horse-battery-staple")
	require.NoError(t, err)
	config.Config().PlatformAdmin = config.PlatformAdminConfig{
		Email:        "ops@counseldesk.local",
		PasswordHash: hash,
	}
	defer func() { config.Config().PlatformAdmin = config.PlatformAdminConfig{} }()

	rsp, loginErr := platformLogin(platformLoginRequest(t, "ops@counseldesk.local", "correct-horse-battery-staple"))
	require.NoError(t, loginErr)
	assert.Equal(t, http.StatusOK, rsp.StatusCode)

	lr, ok := rsp.Response.(*loginResponse)
	require.True(t, ok)
	assert.Empty(t, lr.TenantID)

	// the issued token must admit the principal to the platform routes
	principal, vErr := auth.ValidateToken(context.Background(), lr.Token)
	require.Nil(t, vErr)
	assert.True(t, principal.Elevated)
	assert.True(t, principal.TenantID.IsNil())
	assert.Equal(t, "ops@counseldesk.local", string(principal.UserID))
}

func TestPlatformLoginBadPassword(t *testing.T) {
	hash, err := auth.HashPassword("correct-horse-battery-staple")
	require.NoError(t, err)
	config.Config().PlatformAdmin = config.PlatformAdminConfig{
		Email:        "ops@counseldesk.local",
		PasswordHash: hash,
	}
	defer func() { config.Config().PlatformAdmin = config.PlatformAdminConfig{} }()

	_, loginErr := platformLogin(platformLoginRequest(t, "ops@counseldesk.local", "wrong"))
	require.Error(t, loginErr)
	assert.ErrorIs(t, loginErr, auth.ErrInvalidCredentials)

	_, loginErr = platformLogin(platformLoginRequest(t, "someone@counseldesk.local", "correct-horse-battery-staple"))
	require.Error(t, loginErr)
	assert.ErrorIs(t, loginErr, auth.ErrInvalidCredentials)
}

func TestPlatformLoginDisabledWithoutCredential(t *testing.T) {
	config.Config().PlatformAdmin = config.PlatformAdminConfig{}

	_, loginErr := platformLogin(platformLoginRequest(t, "ops@counseldesk.local", "anything"))
	require.Error(t, loginErr)
	assert.ErrorIs(t, loginErr, auth.ErrInvalidCredentials)
}
