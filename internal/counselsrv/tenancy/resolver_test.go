package tenancy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
	"github.com/counseldesk/counseldesk/pkg/types"
)

type fakeDirectory struct {
	tenants map[types.TenantId]*TenantRecord
}

func (d *fakeDirectory) GetTenant(_ context.Context, tenantID types.TenantId) (*TenantRecord, apperrors.Error) {
	if t, ok := d.tenants[tenantID]; ok {
		return t, nil
	}
	return nil, ErrTenantUnavailable
}

func (d *fakeDirectory) GetTenantBySubdomain(_ context.Context, subdomain string) (*TenantRecord, apperrors.Error) {
	for _, t := range d.tenants {
		if t.Subdomain == subdomain {
			return t, nil
		}
	}
	return nil, ErrTenantUnavailable
}

func newTestResolver() *Resolver {
	dir := &fakeDirectory{
		tenants: map[types.TenantId]*TenantRecord{
			"TACME1": {TenantID: "TACME1", Subdomain: "acme", Status: types.TenantStatusActive},
			"TBETA1": {TenantID: "TBETA1", Subdomain: "beta", Status: types.TenantStatusActive},
			"TTRIA1": {TenantID: "TTRIA1", Subdomain: "trial", Status: types.TenantStatusTrial},
			"TSUSP1": {TenantID: "TSUSP1", Subdomain: "frozen", Status: types.TenantStatusSuspended},
		},
	}
	return NewResolver(dir, "app.example", []string{"api", "www", "localhost"})
}

func TestResolveSubdomain(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	tenantID, err := r.Resolve(ctx, "", "acme.app.example", nil)
	require.Nil(t, err)
	assert.Equal(t, types.TenantId("TACME1"), tenantID)

	// port is stripped before matching
	tenantID, err = r.Resolve(ctx, "", "acme.app.example:8290", nil)
	require.Nil(t, err)
	assert.Equal(t, types.TenantId("TACME1"), tenantID)
}

func TestResolveReservedSubdomain(t *testing.T) {
	r := newTestResolver()

	_, err := r.Resolve(context.Background(), "", "api.app.example", nil)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrTenantNotResolved)
}

func TestResolveNoSignal(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	for _, host := range []string{"", "app.example", "10.0.0.1", "10.0.0.1:8290", "other.example"} {
		_, err := r.Resolve(ctx, "", host, nil)
		require.NotNil(t, err, "host %q", host)
		assert.ErrorIs(t, err, ErrTenantNotResolved, "host %q", host)
	}
}

func TestResolveAmbiguousHostFails(t *testing.T) {
	r := newTestResolver()

	// multi-level subdomains never resolve; ambiguity is a failure,
	// not a guess
	_, err := r.Resolve(context.Background(), "", "foo.bar.app.example", nil)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrTenantNotResolved)
}

func TestResolveHeaderMismatch(t *testing.T) {
	r := newTestResolver()
	principal := &Principal{UserID: "u1", TenantID: "TACME1"}

	_, err := r.Resolve(context.Background(), "TBETA1", "acme.app.example", principal)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrTenantMismatch)
}

func TestResolveHeaderMismatchBeforeExistence(t *testing.T) {
	r := newTestResolver()
	principal := &Principal{UserID: "u1", TenantID: "TACME1"}

	// A nonexistent asserted tenant must produce the same mismatch
	// error as an existing one, so the response does not reveal which
	// tenants exist.
	_, err := r.Resolve(context.Background(), "TNOPE1", "", principal)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrTenantMismatch)
}

func TestResolveHeaderMatchesPrincipal(t *testing.T) {
	r := newTestResolver()
	principal := &Principal{UserID: "u1", TenantID: "TACME1"}

	tenantID, err := r.Resolve(context.Background(), "TACME1", "", principal)
	require.Nil(t, err)
	assert.Equal(t, types.TenantId("TACME1"), tenantID)
}

func TestResolveElevatedHeaderOverride(t *testing.T) {
	r := newTestResolver()
	admin := &Principal{UserID: "ops1", Elevated: true}

	tenantID, err := r.Resolve(context.Background(), "TBETA1", "", admin)
	require.Nil(t, err)
	assert.Equal(t, types.TenantId("TBETA1"), tenantID)
}

func TestResolveUnknownHeaderTenant(t *testing.T) {
	r := newTestResolver()

	_, err := r.Resolve(context.Background(), "TNOPE1", "", nil)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrTenantUnavailable)
}

func TestResolveSuspendedTenant(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	_, err := r.Resolve(ctx, "TSUSP1", "", nil)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrTenantUnavailable)

	_, err = r.Resolve(ctx, "", "frozen.app.example", nil)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrTenantUnavailable)
}

func TestResolveTrialTenantServable(t *testing.T) {
	r := newTestResolver()

	tenantID, err := r.Resolve(context.Background(), "", "trial.app.example", nil)
	require.Nil(t, err)
	assert.Equal(t, types.TenantId("TTRIA1"), tenantID)
}

func TestResolveUnknownSubdomainDoesNotFallThrough(t *testing.T) {
	r := newTestResolver()
	principal := &Principal{UserID: "u1", TenantID: "TACME1"}

	// an unknown subdomain is a definite failed signal even though the
	// principal fallback could have produced a tenant
	_, err := r.Resolve(context.Background(), "", "ghost.app.example", principal)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrTenantUnavailable)
}

func TestResolvePrincipalFallback(t *testing.T) {
	r := newTestResolver()
	principal := &Principal{UserID: "u1", TenantID: "TBETA1"}

	tenantID, err := r.Resolve(context.Background(), "", "app.example", principal)
	require.Nil(t, err)
	assert.Equal(t, types.TenantId("TBETA1"), tenantID)
}

func TestResolveSubdomainMismatchWithPrincipal(t *testing.T) {
	r := newTestResolver()
	principal := &Principal{UserID: "u1", TenantID: "TACME1"}

	_, err := r.Resolve(context.Background(), "", "beta.app.example", principal)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrTenantMismatch)
}

type failingDirectory struct{}

func (failingDirectory) GetTenant(context.Context, types.TenantId) (*TenantRecord, apperrors.Error) {
	return nil, ErrTenancy.New("connection refused")
}

func (failingDirectory) GetTenantBySubdomain(context.Context, string) (*TenantRecord, apperrors.Error) {
	return nil, ErrTenancy.New("connection refused")
}

func TestResolveDirectoryFailureIsNotUnavailable(t *testing.T) {
	// a directory outage is a server fault, not a statement about the
	// tenant; it must not surface as the 403 unavailable error
	r := NewResolver(failingDirectory{}, "app.example", nil)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "TACME1", "", nil)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
	assert.Equal(t, 500, err.StatusCode())

	_, err = r.Resolve(ctx, "", "acme.app.example", nil)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
	assert.Equal(t, 500, err.StatusCode())
}

func TestResolveDeterministic(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		tenantID, err := r.Resolve(ctx, "", "acme.app.example", nil)
		require.Nil(t, err)
		assert.Equal(t, types.TenantId("TACME1"), tenantID)
	}
}
