package tenancy

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
	"github.com/counseldesk/counseldesk/pkg/types"
)

// TenantHeader is the explicit tenant override header used by trusted
// internal callers.
const TenantHeader = "X-Tenant-ID"

// TenantRecord is the subset of the tenant row the resolver needs.
type TenantRecord struct {
	TenantID  types.TenantId
	Subdomain string
	Status    types.TenantStatus
}

// TenantDirectory looks up tenants for resolution. Implemented by the
// persistence layer; faked in tests.
type TenantDirectory interface {
	GetTenant(ctx context.Context, tenantID types.TenantId) (*TenantRecord, apperrors.Error)
	GetTenantBySubdomain(ctx context.Context, subdomain string) (*TenantRecord, apperrors.Error)
}

// Resolver derives a tenant identifier from request signals. It is
// stateless and safe for concurrent use; the same inputs always
// resolve the same tenant.
type Resolver struct {
	dir        TenantDirectory
	baseDomain string
	reserved   map[string]bool
}

func NewResolver(dir TenantDirectory, baseDomain string, reservedSubdomains []string) *Resolver {
	reserved := make(map[string]bool, len(reservedSubdomains))
	for _, s := range reservedSubdomains {
		reserved[strings.ToLower(s)] = true
	}
	return &Resolver{
		dir:        dir,
		baseDomain: strings.ToLower(baseDomain),
		reserved:   reserved,
	}
}

// Resolve determines the tenant for a request. Signals are tried in
// order: explicit header, host subdomain, authenticated principal.
// A signal that names a tenant conflicting with the principal's
// membership fails with ErrTenantMismatch; it is never silently
// preferred or ignored.
func (r *Resolver) Resolve(ctx context.Context, headerTenantID, host string, principal *Principal) (types.TenantId, apperrors.Error) {
	if headerTenantID != "" {
		return r.resolveAsserted(ctx, types.TenantId(headerTenantID), principal)
	}

	if slug, ok := r.subdomainFromHost(host); ok {
		return r.resolveSubdomain(ctx, slug, principal)
	}

	if principal != nil && !principal.Elevated && !principal.TenantID.IsNil() {
		return r.checkServable(ctx, principal.TenantID)
	}

	log.Ctx(ctx).Debug().Str("host", host).Msg("no resolvable tenant signal")
	return "", ErrTenantNotResolved
}

// resolveAsserted handles the explicit header. The mismatch check
// against the authenticated principal is mandatory: it runs before any
// directory lookup so the response cannot reveal whether the asserted
// tenant exists.
func (r *Resolver) resolveAsserted(ctx context.Context, asserted types.TenantId, principal *Principal) (types.TenantId, apperrors.Error) {
	if principal != nil && !principal.Elevated && principal.TenantID != asserted {
		log.Ctx(ctx).Warn().
			Str("asserted_tenant", string(asserted)).
			Str("principal", string(principal.UserID)).
			Msg("tenant header conflicts with principal membership")
		return "", ErrTenantMismatch
	}
	return r.checkServable(ctx, asserted)
}

func (r *Resolver) resolveSubdomain(ctx context.Context, slug string, principal *Principal) (types.TenantId, apperrors.Error) {
	tenant, err := r.dir.GetTenantBySubdomain(ctx, slug)
	if err != nil && err.StatusCode() >= http.StatusInternalServerError {
		log.Ctx(ctx).Error().Err(err).Str("subdomain", slug).Msg("tenant directory lookup failed")
		return "", ErrDirectoryUnavailable.Err(err)
	}
	if err != nil || tenant == nil {
		// An unreserved subdomain is a definite signal; an unknown one
		// is a failure, not a fall-through to weaker signals.
		return "", ErrTenantUnavailable
	}
	if !tenant.Status.IsServable() {
		return "", ErrTenantUnavailable
	}
	if principal != nil && !principal.Elevated && principal.TenantID != tenant.TenantID {
		log.Ctx(ctx).Warn().
			Str("subdomain", slug).
			Str("principal", string(principal.UserID)).
			Msg("host subdomain conflicts with principal membership")
		return "", ErrTenantMismatch
	}
	return tenant.TenantID, nil
}

func (r *Resolver) checkServable(ctx context.Context, tenantID types.TenantId) (types.TenantId, apperrors.Error) {
	tenant, err := r.dir.GetTenant(ctx, tenantID)
	if err != nil && err.StatusCode() >= http.StatusInternalServerError {
		log.Ctx(ctx).Error().Err(err).Msg("tenant directory lookup failed")
		return "", ErrDirectoryUnavailable.Err(err)
	}
	if err != nil || tenant == nil {
		return "", ErrTenantUnavailable
	}
	if !tenant.Status.IsServable() {
		return "", ErrTenantUnavailable
	}
	return tenant.TenantID, nil
}

// subdomainFromHost extracts a candidate tenant slug. Only hosts of
// exactly the form <slug>.<base_domain> qualify; reserved slugs, bare
// IPs, and hosts outside the base domain are not tenant signals.
// Ambiguous hosts (multi-level subdomains) do not resolve.
func (r *Resolver) subdomainFromHost(host string) (string, bool) {
	if host == "" {
		return "", false
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if net.ParseIP(host) != nil {
		return "", false
	}
	suffix := "." + r.baseDomain
	if !strings.HasSuffix(host, suffix) {
		return "", false
	}
	slug := strings.TrimSuffix(host, suffix)
	if slug == "" || strings.Contains(slug, ".") {
		return "", false
	}
	if r.reserved[slug] {
		return "", false
	}
	return slug, true
}
