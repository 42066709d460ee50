package policy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
	"github.com/counseldesk/counseldesk/internal/common/httpx"
	"github.com/counseldesk/counseldesk/internal/counselsrv/tenancy"
	"github.com/counseldesk/counseldesk/pkg/types"
)

type fakeGrants struct {
	memberships map[string]*Membership
	loadErr     apperrors.Error
}

func (f *fakeGrants) GetMembership(_ context.Context, tenantID types.TenantId, userID types.UserId) (*Membership, apperrors.Error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	m, ok := f.memberships[string(tenantID)+"/"+string(userID)]
	if !ok {
		return nil, ErrNoMembership
	}
	return m, nil
}

func TestMaterializeGrants(t *testing.T) {
	gate := NewGate(&fakeGrants{memberships: map[string]*Membership{
		"TACME1/user-1": {
			UserID:   "user-1",
			TenantID: "TACME1",
			Status:   types.UserStatusActive,
			Actions:  []types.Action{types.ActionClientRead, types.ActionMatterRead},
		},
	}})

	perms, err := gate.Materialize(context.Background(),
		&tenancy.Principal{UserID: "user-1", TenantID: "TACME1"}, "TACME1")
	require.Nil(t, err)
	assert.True(t, perms.Has(types.ActionClientRead))
	assert.True(t, perms.Has(types.ActionMatterRead))
	assert.False(t, perms.Has(types.ActionClientWrite))
	assert.False(t, perms.Has(types.ActionTenantAdmin))
}

func TestMaterializeDenyByDefault(t *testing.T) {
	gate := NewGate(&fakeGrants{memberships: map[string]*Membership{}})

	_, err := gate.Materialize(context.Background(),
		&tenancy.Principal{UserID: "stranger", TenantID: "TACME1"}, "TACME1")
	require.NotNil(t, err)
	assert.Equal(t, http.StatusForbidden, err.StatusCode())
}

func TestMaterializeInactiveMember(t *testing.T) {
	gate := NewGate(&fakeGrants{memberships: map[string]*Membership{
		"TACME1/user-1": {
			UserID:   "user-1",
			TenantID: "TACME1",
			Status:   types.UserStatusLocked,
			Actions:  []types.Action{types.ActionClientRead},
		},
	}})

	_, err := gate.Materialize(context.Background(),
		&tenancy.Principal{UserID: "user-1", TenantID: "TACME1"}, "TACME1")
	require.NotNil(t, err)
	assert.Equal(t, http.StatusForbidden, err.StatusCode())
}

func TestMaterializeElevatedBypass(t *testing.T) {
	// Elevated principals never consult the grant source.
	gate := NewGate(&fakeGrants{loadErr: ErrGrantLoad})

	perms, err := gate.Materialize(context.Background(),
		&tenancy.Principal{UserID: "ops-1", Elevated: true}, "TACME1")
	require.Nil(t, err)
	for action := range types.AllActions() {
		assert.True(t, perms.Has(action), "elevated missing %s", action)
	}
}

func TestMaterializeLoadFailure(t *testing.T) {
	gate := NewGate(&fakeGrants{loadErr: ErrGrantLoad})

	_, err := gate.Materialize(context.Background(),
		&tenancy.Principal{UserID: "user-1", TenantID: "TACME1"}, "TACME1")
	require.NotNil(t, err)
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode())
}

func TestMaterializeDeterministic(t *testing.T) {
	gate := NewGate(&fakeGrants{memberships: map[string]*Membership{
		"TACME1/user-1": {
			UserID:   "user-1",
			TenantID: "TACME1",
			Status:   types.UserStatusActive,
			Actions:  []types.Action{types.ActionTaskRead},
		},
	}})

	principal := &tenancy.Principal{UserID: "user-1", TenantID: "TACME1"}
	first, err := gate.Materialize(context.Background(), principal, "TACME1")
	require.Nil(t, err)
	second, err := gate.Materialize(context.Background(), principal, "TACME1")
	require.Nil(t, err)
	assert.Equal(t, first, second)
}

func authorizedRequest(t *testing.T, perms types.PermissionSet) *http.Request {
	t.Helper()
	scope := tenancy.NewScope("test-corr")
	require.Nil(t, scope.BeginResolution())
	require.Nil(t, scope.Resolve("TACME1"))
	require.Nil(t, scope.Authorize("user-1", perms, false))
	require.Nil(t, scope.Activate())

	r := httptest.NewRequest(http.MethodGet, "/clients", nil)
	return r.WithContext(tenancy.WithScope(r.Context(), scope))
}

func TestEnforceAllows(t *testing.T) {
	called := false
	handler := Enforce([]types.Action{types.ActionClientRead}, func(r *http.Request) (*httpx.Response, error) {
		called = true
		return &httpx.Response{StatusCode: http.StatusOK}, nil
	})

	rsp, err := handler(authorizedRequest(t, types.NewPermissionSet(types.ActionClientRead)))
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rsp.StatusCode)
}

func TestEnforceDeniesMissingGrant(t *testing.T) {
	called := false
	handler := Enforce([]types.Action{types.ActionClientWrite}, func(r *http.Request) (*httpx.Response, error) {
		called = true
		return &httpx.Response{StatusCode: http.StatusOK}, nil
	})

	_, err := handler(authorizedRequest(t, types.NewPermissionSet(types.ActionClientRead)))
	require.Error(t, err)
	assert.False(t, called)
	appErr, ok := err.(apperrors.Error)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, appErr.StatusCode())
}

func TestEnforceRequiresAllActions(t *testing.T) {
	handler := Enforce([]types.Action{types.ActionClientRead, types.ActionClientWrite},
		func(r *http.Request) (*httpx.Response, error) {
			return &httpx.Response{StatusCode: http.StatusOK}, nil
		})

	_, err := handler(authorizedRequest(t, types.NewPermissionSet(types.ActionClientRead)))
	require.Error(t, err)
}

func TestEnforceWithoutScope(t *testing.T) {
	handler := EnforceFunc(types.ActionClientRead, func(r *http.Request) (*httpx.Response, error) {
		return &httpx.Response{StatusCode: http.StatusOK}, nil
	})

	r := httptest.NewRequest(http.MethodGet, "/clients", nil)
	_, err := handler(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoActiveScope)
}

func TestEnforceDisposedScope(t *testing.T) {
	scope := tenancy.NewScope("test-corr")
	require.Nil(t, scope.BeginResolution())
	require.Nil(t, scope.Resolve("TACME1"))
	require.Nil(t, scope.Authorize("user-1", types.NewPermissionSet(types.ActionClientRead), false))
	require.Nil(t, scope.Activate())
	scope.Dispose()

	r := httptest.NewRequest(http.MethodGet, "/clients", nil)
	r = r.WithContext(tenancy.WithScope(r.Context(), scope))

	handler := EnforceFunc(types.ActionClientRead, func(r *http.Request) (*httpx.Response, error) {
		return &httpx.Response{StatusCode: http.StatusOK}, nil
	})
	_, err := handler(r)
	require.Error(t, err)
}
