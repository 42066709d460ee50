package db

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counseldesk/counseldesk/internal/counselsrv/db/dberror"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/models"
	"github.com/counseldesk/counseldesk/internal/counselsrv/tenancy"
	"github.com/counseldesk/counseldesk/pkg/types"
)

func newTestDb(t *testing.T) context.Context {
	t.Helper()
	base := log.Logger.WithContext(context.Background())
	if err := Init(base); err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	return base
}

func newTestTenant(t *testing.T, sysCtx context.Context, d DB_, name string) *models.Tenant {
	t.Helper()
	tenantID := types.TenantId(tenancy.NewAccountNumber())
	tenant := &models.Tenant{
		TenantID:  tenantID,
		Subdomain: "pt-" + strings.ToLower(string(tenantID)),
		Name:      name,
		Status:    types.TenantStatusActive,
	}
	require.Nil(t, d.CreateTenant(sysCtx, tenant))
	t.Cleanup(func() { d.DeleteTenant(sysCtx, tenant.TenantID) })
	return tenant
}

// authorizedCtx pins a fresh connection and runs the full scope
// lifecycle for the given tenant, the way the middleware chain does.
func authorizedCtx(t *testing.T, base context.Context, tenantID types.TenantId) context.Context {
	t.Helper()
	ctx, err := ConnCtx(base)
	require.NoError(t, err)
	scope := tenancy.NewScope("")
	require.Nil(t, scope.BeginResolution())
	require.Nil(t, scope.Resolve(tenantID))
	require.Nil(t, scope.Authorize("partition-user", types.NewPermissionSet(
		types.ActionClientRead, types.ActionClientWrite), false))
	require.Nil(t, scope.Activate())
	ctx = tenancy.WithScope(ctx, scope)
	require.Nil(t, SetTenantScope(ctx, tenantID))
	return ctx
}

func TestTenantPartitionIsolation(t *testing.T) {
	base := newTestDb(t)

	sysCtx, err := ConnCtx(base)
	require.NoError(t, err)
	sysCtx = tenancy.WithSystemScope(sysCtx, "")
	sysDb := dbFromContext(sysCtx)
	require.NotNil(t, sysDb)
	defer sysDb.Close(sysCtx)

	tenantA := newTestTenant(t, sysCtx, sysDb, "Partition A")
	tenantB := newTestTenant(t, sysCtx, sysDb, "Partition B")

	ctxA := authorizedCtx(t, base, tenantA.TenantID)
	dA, errA := Scoped(ctxA)
	require.Nil(t, errA)
	defer dA.Close(ctxA)

	ctxB := authorizedCtx(t, base, tenantB.TenantID)
	dB, errB := Scoped(ctxB)
	require.Nil(t, errB)
	defer dB.Close(ctxB)

	// a write under A lands stamped with A's tenant, regardless of what
	// the caller put on the model
	client := &models.Client{Name: "Aria Chen", TenantID: tenantB.TenantID}
	require.Nil(t, dA.CreateClient(ctxA, client))
	defer dA.DeleteClient(ctxA, client.ClientID)
	assert.Equal(t, tenantA.TenantID, client.TenantID)

	// A sees its own row
	got, getErr := dA.GetClient(ctxA, client.ClientID)
	require.Nil(t, getErr)
	assert.Equal(t, tenantA.TenantID, got.TenantID)
	assert.Equal(t, "Aria Chen", got.Name)

	// B never sees A's row, by id or by listing
	_, getErr = dB.GetClient(ctxB, client.ClientID)
	require.NotNil(t, getErr)
	assert.ErrorIs(t, getErr, dberror.ErrNotFound)

	clients, listErr := dB.ListClients(ctxB)
	require.Nil(t, listErr)
	for _, c := range clients {
		assert.NotEqual(t, client.ClientID, c.ClientID)
		assert.Equal(t, tenantB.TenantID, c.TenantID)
	}

	// a delete attempted from B leaves A's row intact
	delErr := dB.DeleteClient(ctxB, client.ClientID)
	require.NotNil(t, delErr)
	assert.ErrorIs(t, delErr, dberror.ErrNotFound)

	got, getErr = dA.GetClient(ctxA, client.ClientID)
	require.Nil(t, getErr)
	assert.Equal(t, client.ClientID, got.ClientID)
}
