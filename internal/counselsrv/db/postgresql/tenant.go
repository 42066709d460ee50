package postgresql

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/dberror"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/models"
	"github.com/counseldesk/counseldesk/pkg/types"
)

// CreateTenant inserts a new tenant partition. Runs under the system
// scope only.
func (pm *platformManager) CreateTenant(ctx context.Context, tenant *models.Tenant) apperrors.Error {
	if err := requireSystemScope(ctx); err != nil {
		return err
	}
	if tenant.TenantID.IsNil() || tenant.Subdomain == "" {
		return dberror.ErrInvalidInput.Msg("tenant ID and subdomain are required")
	}
	if tenant.Status == "" {
		tenant.Status = types.TenantStatusTrial
	}

	query := `
		INSERT INTO tenants (tenant_id, subdomain, name, status, subscription_plan, contact_email, info)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (subdomain) DO NOTHING
		RETURNING tenant_id;
	`
	var insertedID types.TenantId
	errDb := pm.conn().QueryRowContext(ctx, query,
		tenant.TenantID, tenant.Subdomain, tenant.Name, tenant.Status,
		tenant.SubscriptionPlan, tenant.ContactEmail, tenant.Info).Scan(&insertedID)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("subdomain", tenant.Subdomain).Msg("tenant subdomain already exists")
			return dberror.ErrAlreadyExists.Msg("subdomain already in use")
		}
		log.Ctx(ctx).Error().Err(errDb).Str("tenant_id", string(tenant.TenantID)).Msg("failed to insert tenant")
		return dberror.ErrDatabase.Err(errDb)
	}
	return nil
}

// GetTenant retrieves a tenant by ID. Runs under the system scope; the
// resolver uses it through the directory adapter.
func (pm *platformManager) GetTenant(ctx context.Context, tenantID types.TenantId) (*models.Tenant, apperrors.Error) {
	if err := requireSystemScope(ctx); err != nil {
		return nil, err
	}
	query := `
		SELECT tenant_id, subdomain, name, status, subscription_plan, contact_email, info, created_at, updated_at
		FROM tenants
		WHERE tenant_id = $1;
	`
	return pm.scanTenant(ctx, pm.conn().QueryRowContext(ctx, query, tenantID))
}

// GetTenantBySubdomain retrieves a tenant by its subdomain slug.
func (pm *platformManager) GetTenantBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, apperrors.Error) {
	if err := requireSystemScope(ctx); err != nil {
		return nil, err
	}
	query := `
		SELECT tenant_id, subdomain, name, status, subscription_plan, contact_email, info, created_at, updated_at
		FROM tenants
		WHERE subdomain = $1;
	`
	return pm.scanTenant(ctx, pm.conn().QueryRowContext(ctx, query, subdomain))
}

func (pm *platformManager) scanTenant(ctx context.Context, row *sql.Row) (*models.Tenant, apperrors.Error) {
	tenant := &models.Tenant{}
	errDb := row.Scan(&tenant.TenantID, &tenant.Subdomain, &tenant.Name, &tenant.Status,
		&tenant.SubscriptionPlan, &tenant.ContactEmail, &tenant.Info, &tenant.CreatedAt, &tenant.UpdatedAt)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("tenant not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to retrieve tenant")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return tenant, nil
}

// ListTenants returns all tenants. Platform administration only.
func (pm *platformManager) ListTenants(ctx context.Context) ([]*models.Tenant, apperrors.Error) {
	if err := requireSystemScope(ctx); err != nil {
		return nil, err
	}
	query := `
		SELECT tenant_id, subdomain, name, status, subscription_plan, contact_email, info, created_at, updated_at
		FROM tenants
		ORDER BY created_at;
	`
	rows, errDb := pm.conn().QueryContext(ctx, query)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to list tenants")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant := &models.Tenant{}
		if errDb := rows.Scan(&tenant.TenantID, &tenant.Subdomain, &tenant.Name, &tenant.Status,
			&tenant.SubscriptionPlan, &tenant.ContactEmail, &tenant.Info, &tenant.CreatedAt, &tenant.UpdatedAt); errDb != nil {
			log.Ctx(ctx).Error().Err(errDb).Msg("failed to scan tenant")
			return nil, dberror.ErrDatabase.Err(errDb)
		}
		tenants = append(tenants, tenant)
	}
	if errDb := rows.Err(); errDb != nil {
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return tenants, nil
}

// UpdateTenantStatus transitions a tenant's lifecycle status. A
// suspended tenant stops resolving on the next request.
func (pm *platformManager) UpdateTenantStatus(ctx context.Context, tenantID types.TenantId, status types.TenantStatus) apperrors.Error {
	if err := requireSystemScope(ctx); err != nil {
		return err
	}
	query := `
		UPDATE tenants
		SET status = $2, updated_at = NOW()
		WHERE tenant_id = $1;
	`
	result, errDb := pm.conn().ExecContext(ctx, query, tenantID, status)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Str("tenant_id", string(tenantID)).Msg("failed to update tenant status")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("tenant not found")
	}
	return nil
}

// DeleteTenant removes a tenant row. Partitioned data is removed by
// cascading foreign keys.
func (pm *platformManager) DeleteTenant(ctx context.Context, tenantID types.TenantId) apperrors.Error {
	if err := requireSystemScope(ctx); err != nil {
		return err
	}
	query := `DELETE FROM tenants WHERE tenant_id = $1;`
	result, errDb := pm.conn().ExecContext(ctx, query, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Str("tenant_id", string(tenantID)).Msg("failed to delete tenant")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("tenant not found")
	}
	return nil
}
