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

const clientColumns = `client_id, tenant_id, name, email, phone, address, info, created_at, updated_at`

var clientsTable = models.ScopedTable("clients")

// CreateClient inserts a client into the scope's tenant.
func (xm *practiceManager) CreateClient(ctx context.Context, client *models.Client) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	client.TenantID = tenantID
	if client.ClientID == uuid.Nil {
		client.ClientID = uuid.New()
	}
	if client.Name == "" {
		return dberror.ErrInvalidInput.Msg("client name is required")
	}

	query := `
		INSERT INTO ` + clientsTable + ` (client_id, tenant_id, name, email, phone, address, info)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, errDb := xm.conn().ExecContext(ctx, query,
		client.ClientID, tenantID, client.Name, client.Email, client.Phone, client.Address, client.Info)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to insert client")
		return dberror.ErrDatabase.Err(errDb)
	}
	return nil
}

// GetClient retrieves a client within the scope's tenant. A client ID
// from another tenant yields not found, never the foreign row.
func (xm *practiceManager) GetClient(ctx context.Context, clientID uuid.UUID) (*models.Client, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + clientColumns + ` FROM ` + clientsTable + ` WHERE client_id = $1 AND tenant_id = $2;`
	client := &models.Client{}
	errDb := xm.conn().QueryRowContext(ctx, query, clientID, tenantID).Scan(
		&client.ClientID, &client.TenantID, &client.Name, &client.Email,
		&client.Phone, &client.Address, &client.Info, &client.CreatedAt, &client.UpdatedAt)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("client not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to retrieve client")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return client, nil
}

// ListClients returns all clients in the scope's tenant.
func (xm *practiceManager) ListClients(ctx context.Context) ([]*models.Client, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + clientColumns + ` FROM ` + clientsTable + ` WHERE tenant_id = $1 ORDER BY name;`
	rows, errDb := xm.conn().QueryContext(ctx, query, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to list clients")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client := &models.Client{}
		if errDb := rows.Scan(&client.ClientID, &client.TenantID, &client.Name, &client.Email,
			&client.Phone, &client.Address, &client.Info, &client.CreatedAt, &client.UpdatedAt); errDb != nil {
			log.Ctx(ctx).Error().Err(errDb).Msg("failed to scan client")
			return nil, dberror.ErrDatabase.Err(errDb)
		}
		clients = append(clients, client)
	}
	if errDb := rows.Err(); errDb != nil {
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return clients, nil
}

// UpdateClient updates a client's mutable fields within the scope's
// tenant.
func (xm *practiceManager) UpdateClient(ctx context.Context, client *models.Client) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	query := `
		UPDATE ` + clientsTable + `
		SET name = $3, email = $4, phone = $5, address = $6, info = $7, updated_at = NOW()
		WHERE client_id = $1 AND tenant_id = $2;
	`
	result, errDb := xm.conn().ExecContext(ctx, query,
		client.ClientID, tenantID, client.Name, client.Email, client.Phone, client.Address, client.Info)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to update client")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("client not found")
	}
	return nil
}

// DeleteClient removes a client within the scope's tenant.
func (xm *practiceManager) DeleteClient(ctx context.Context, clientID uuid.UUID) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	query := `DELETE FROM ` + clientsTable + ` WHERE client_id = $1 AND tenant_id = $2;`
	result, errDb := xm.conn().ExecContext(ctx, query, clientID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to delete client")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("client not found")
	}
	return nil
}
