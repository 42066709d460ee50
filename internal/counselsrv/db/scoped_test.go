package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counseldesk/counseldesk/internal/counselsrv/db/dberror"
	"github.com/counseldesk/counseldesk/internal/counselsrv/tenancy"
	"github.com/counseldesk/counseldesk/pkg/types"
)

// Accessor construction must fail before any query runs: no scope, an
// unauthorized scope, and a disposed scope are all rejected at
// construction time.

func TestScopedRequiresScope(t *testing.T) {
	_, err := Scoped(context.Background())
	require.NotNil(t, err)
	assert.ErrorIs(t, err, dberror.ErrNoActiveScope)
}

func TestScopedRequiresAuthorizedScope(t *testing.T) {
	scope := tenancy.NewScope("test-corr")
	ctx := tenancy.WithScope(context.Background(), scope)

	_, err := Scoped(ctx)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, dberror.ErrNoActiveScope)

	require.Nil(t, scope.BeginResolution())
	require.Nil(t, scope.Resolve("TACME1"))

	// Resolved but not yet authorized.
	_, err = Scoped(ctx)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, dberror.ErrNoActiveScope)
}

func TestScopedRejectsDisposedScope(t *testing.T) {
	scope := tenancy.NewScope("test-corr")
	require.Nil(t, scope.BeginResolution())
	require.Nil(t, scope.Resolve("TACME1"))
	require.Nil(t, scope.Authorize("user-1", types.NewPermissionSet(types.ActionClientRead), false))
	require.Nil(t, scope.Activate())
	scope.Dispose()

	ctx := tenancy.WithScope(context.Background(), scope)
	_, err := Scoped(ctx)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, dberror.ErrNoActiveScope)
}

func TestScopedRequiresConnection(t *testing.T) {
	// An authorized scope without a pinned connection still fails at
	// construction; the scope check runs first.
	scope := tenancy.NewScope("test-corr")
	require.Nil(t, scope.BeginResolution())
	require.Nil(t, scope.Resolve("TACME1"))
	require.Nil(t, scope.Authorize("user-1", types.NewPermissionSet(types.ActionClientRead), false))
	require.Nil(t, scope.Activate())

	ctx := tenancy.WithScope(context.Background(), scope)
	_, err := Scoped(ctx)
	require.NotNil(t, err)
	assert.NotErrorIs(t, err, dberror.ErrNoActiveScope)
}

func TestSystemDerivesSystemScope(t *testing.T) {
	// System fails without a pinned connection, but the context it
	// derives must carry a tenantless system scope either way.
	scope := tenancy.NewScope("test-corr")
	require.Nil(t, scope.BeginResolution())
	require.Nil(t, scope.Resolve("TACME1"))
	require.Nil(t, scope.Authorize("ops@counseldesk.local", types.NewPermissionSet(), true))
	require.Nil(t, scope.Activate())
	ctx := tenancy.WithScope(context.Background(), scope)

	_, _, err := System(ctx, "tenant administration")
	require.NotNil(t, err)
	assert.NotErrorIs(t, err, dberror.ErrNoActiveScope)

	sysCtx := tenancy.WithSystemScope(ctx, scope.CorrelationID())
	sysScope := tenancy.ScopeFromContext(sysCtx)
	require.NotNil(t, sysScope)
	assert.True(t, sysScope.IsSystem())
	assert.True(t, sysScope.TenantID().IsNil())
}

func TestDirectoryWithoutConnection(t *testing.T) {
	_, err := Directory().GetTenant(context.Background(), "TACME1")
	require.NotNil(t, err)

	_, err = Directory().GetTenantBySubdomain(context.Background(), "acme")
	require.NotNil(t, err)
}

func TestGrantsWithoutConnection(t *testing.T) {
	_, err := Grants().GetMembership(context.Background(), "TACME1", "user-1")
	require.NotNil(t, err)
}
