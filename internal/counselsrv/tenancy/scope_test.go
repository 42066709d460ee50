package tenancy

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counseldesk/counseldesk/pkg/types"
)

func TestScopeLifecycle(t *testing.T) {
	s := NewScope("corr-1")
	assert.Equal(t, types.ScopeUnresolved, s.State())

	require.Nil(t, s.BeginResolution())
	require.Nil(t, s.Resolve("TACME1"))
	assert.Equal(t, types.ScopeResolved, s.State())
	assert.Equal(t, types.TenantId("TACME1"), s.TenantID())

	require.Nil(t, s.Authorize("u1", types.NewPermissionSet(types.ActionMatterRead), false))
	require.Nil(t, s.Activate())
	assert.Equal(t, types.ScopeActive, s.State())
	assert.True(t, s.Can(types.ActionMatterRead))
	assert.False(t, s.Can(types.ActionMatterWrite))

	s.Dispose()
	assert.Equal(t, types.ScopeDisposed, s.State())
	assert.False(t, s.Can(types.ActionMatterRead))
	assert.False(t, s.DataAccessAllowed())
}

func TestScopeCannotSkipResolved(t *testing.T) {
	s := NewScope("corr-2")

	// authorization is unreachable before resolution
	err := s.Authorize("u1", types.NewPermissionSet(), false)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrInvalidScopeTransition)

	require.Nil(t, s.BeginResolution())
	err = s.Activate()
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrInvalidScopeTransition)
}

func TestScopeResolveRequiresTenant(t *testing.T) {
	s := NewScope("corr-3")
	require.Nil(t, s.BeginResolution())

	err := s.Resolve("")
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrTenantNotResolved)
}

func TestScopeDisposeIsTerminal(t *testing.T) {
	s := NewScope("corr-4")
	s.Dispose()
	s.Dispose() // idempotent

	err := s.BeginResolution()
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrScopeDisposed)
}

func TestScopeDataAccessGating(t *testing.T) {
	s := NewScope("corr-5")
	assert.False(t, s.DataAccessAllowed())
	require.Nil(t, s.BeginResolution())
	require.Nil(t, s.Resolve("TACME1"))
	assert.False(t, s.DataAccessAllowed())
	require.Nil(t, s.Authorize("u1", types.NewPermissionSet(), false))
	assert.True(t, s.DataAccessAllowed())
}

func TestSystemScope(t *testing.T) {
	s := SystemScope("corr-6")
	assert.True(t, s.IsSystem())
	assert.True(t, s.Elevated())
	assert.True(t, s.DataAccessAllowed())
	assert.True(t, s.Can(types.ActionTenantAdmin))
	assert.True(t, s.TenantID().IsNil())
}

func TestAuthorizeCopiesPermissions(t *testing.T) {
	s := NewScope("corr-7")
	require.Nil(t, s.BeginResolution())
	require.Nil(t, s.Resolve("TACME1"))

	perms := types.NewPermissionSet(types.ActionMatterRead)
	require.Nil(t, s.Authorize("u1", perms, false))

	perms[types.ActionTenantAdmin] = struct{}{}
	assert.False(t, s.Can(types.ActionTenantAdmin))
}

// Two concurrently handled requests must never observe each other's
// scope.
func TestConcurrentScopeIsolation(t *testing.T) {
	base := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 64; i++ {
		tenant := types.TenantId("TACME1")
		user := types.UserId("acme-user")
		if i%2 == 1 {
			tenant = "TBETA1"
			user = "beta-user"
		}
		wg.Add(1)
		go func(tenant types.TenantId, user types.UserId) {
			defer wg.Done()
			s := NewScope("corr")
			ctx := WithScope(base, s)
			assert.Nil(t, s.BeginResolution())
			assert.Nil(t, s.Resolve(tenant))
			assert.Nil(t, s.Authorize(user, types.NewPermissionSet(), false))

			got := ScopeFromContext(ctx)
			if !assert.NotNil(t, got) {
				return
			}
			assert.Equal(t, tenant, got.TenantID())
			assert.Equal(t, user, got.PrincipalID())
			got.Dispose()
		}(tenant, user)
	}
	wg.Wait()

	// the base context never carries any scope
	assert.Nil(t, ScopeFromContext(base))
}

func TestWithSystemScopeShadowsRequestScope(t *testing.T) {
	reqScope := NewScope("corr-8")
	ctx := WithScope(context.Background(), reqScope)

	sysCtx := WithSystemScope(ctx, "corr-8")
	assert.True(t, ScopeFromContext(sysCtx).IsSystem())

	// the original context and its scope are untouched
	assert.False(t, ScopeFromContext(ctx).IsSystem())
	assert.Equal(t, types.ScopeUnresolved, reqScope.State())
}

func TestNewAccountNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := NewAccountNumber()
		require.Len(t, n, 7)
		assert.Equal(t, byte('T'), n[0])
		seen[n] = true
	}
	// collisions in 100 draws would be astonishing
	assert.Greater(t, len(seen), 95)
}
