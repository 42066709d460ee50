package postgresql

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/dberror"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/models"
)

const matterColumns = `matter_id, tenant_id, client_id, title, description, status, lead_user_id, opened_at, closed_at, info, created_at, updated_at`

var mattersTable = models.ScopedTable("matters")

// CreateMatter inserts a matter into the scope's tenant. The client
// reference is validated against the same tenant so a matter can never
// point at another tenant's client.
func (xm *practiceManager) CreateMatter(ctx context.Context, matter *models.Matter) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	matter.TenantID = tenantID
	if matter.MatterID == uuid.Nil {
		matter.MatterID = uuid.New()
	}
	if matter.Status == "" {
		matter.Status = models.MatterStatusOpen
	}
	if matter.Title == "" || matter.ClientID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("matter title and client are required")
	}

	query := `
		INSERT INTO ` + mattersTable + ` (matter_id, tenant_id, client_id, title, description, status, lead_user_id, opened_at, info)
		SELECT $1, $2, c.client_id, $4, $5, $6, $7, NOW(), $8
		FROM ` + clientsTable + ` c
		WHERE c.client_id = $3 AND c.tenant_id = $2
		RETURNING matter_id;
	`
	var insertedID uuid.UUID
	errDb := xm.conn().QueryRowContext(ctx, query,
		matter.MatterID, tenantID, matter.ClientID, matter.Title, matter.Description,
		matter.Status, matter.LeadUserID, matter.Info).Scan(&insertedID)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return dberror.ErrNotFound.Msg("client not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to insert matter")
		return dberror.ErrDatabase.Err(errDb)
	}
	return nil
}

// GetMatter retrieves a matter within the scope's tenant.
func (xm *practiceManager) GetMatter(ctx context.Context, matterID uuid.UUID) (*models.Matter, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + matterColumns + ` FROM ` + mattersTable + ` WHERE matter_id = $1 AND tenant_id = $2;`
	matter := &models.Matter{}
	errDb := xm.conn().QueryRowContext(ctx, query, matterID, tenantID).Scan(
		&matter.MatterID, &matter.TenantID, &matter.ClientID, &matter.Title, &matter.Description,
		&matter.Status, &matter.LeadUserID, &matter.OpenedAt, &matter.ClosedAt,
		&matter.Info, &matter.CreatedAt, &matter.UpdatedAt)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("matter not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to retrieve matter")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return matter, nil
}

// ListMatters returns matters in the scope's tenant, optionally
// filtered by client.
func (xm *practiceManager) ListMatters(ctx context.Context, clientID uuid.UUID) ([]*models.Matter, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + matterColumns + ` FROM ` + mattersTable + ` WHERE tenant_id = $1`
	args := []any{tenantID}
	if clientID != uuid.Nil {
		query += ` AND client_id = $2`
		args = append(args, clientID)
	}
	query += ` ORDER BY opened_at DESC;`

	rows, errDb := xm.conn().QueryContext(ctx, query, args...)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to list matters")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	defer rows.Close()

	var matters []*models.Matter
	for rows.Next() {
		matter := &models.Matter{}
		if errDb := rows.Scan(&matter.MatterID, &matter.TenantID, &matter.ClientID, &matter.Title,
			&matter.Description, &matter.Status, &matter.LeadUserID, &matter.OpenedAt, &matter.ClosedAt,
			&matter.Info, &matter.CreatedAt, &matter.UpdatedAt); errDb != nil {
			log.Ctx(ctx).Error().Err(errDb).Msg("failed to scan matter")
			return nil, dberror.ErrDatabase.Err(errDb)
		}
		matters = append(matters, matter)
	}
	if errDb := rows.Err(); errDb != nil {
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return matters, nil
}

// UpdateMatter updates a matter's mutable fields within the scope's
// tenant. Closing a matter stamps closed_at.
func (xm *practiceManager) UpdateMatter(ctx context.Context, matter *models.Matter) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	query := `
		UPDATE ` + mattersTable + `
		SET title = $3, description = $4, status = $5, lead_user_id = $6, info = $7,
		    closed_at = CASE WHEN $5 = 'closed' AND closed_at IS NULL THEN NOW() ELSE closed_at END,
		    updated_at = NOW()
		WHERE matter_id = $1 AND tenant_id = $2;
	`
	result, errDb := xm.conn().ExecContext(ctx, query,
		matter.MatterID, tenantID, matter.Title, matter.Description,
		matter.Status, matter.LeadUserID, matter.Info)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to update matter")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("matter not found")
	}
	return nil
}

// DeleteMatter removes a matter within the scope's tenant.
func (xm *practiceManager) DeleteMatter(ctx context.Context, matterID uuid.UUID) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	query := `DELETE FROM ` + mattersTable + ` WHERE matter_id = $1 AND tenant_id = $2;`
	result, errDb := xm.conn().ExecContext(ctx, query, matterID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to delete matter")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("matter not found")
	}
	return nil
}
