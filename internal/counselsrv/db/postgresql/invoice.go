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

const invoiceColumns = `invoice_id, tenant_id, client_id, matter_id, number, status, amount_cents, currency, issued_at, due_at, created_at, updated_at`

var invoicesTable = models.ScopedTable("invoices")

// CreateInvoice inserts an invoice into the scope's tenant. Both the
// client and matter references are validated against the same tenant.
func (xm *practiceManager) CreateInvoice(ctx context.Context, inv *models.Invoice) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	inv.TenantID = tenantID
	if inv.InvoiceID == uuid.Nil {
		inv.InvoiceID = uuid.New()
	}
	if inv.Status == "" {
		inv.Status = models.InvoiceStatusDraft
	}
	if inv.Currency == "" {
		inv.Currency = "USD"
	}
	if inv.Number == "" || inv.ClientID == uuid.Nil || inv.MatterID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("invoice number, client, and matter are required")
	}

	query := `
		INSERT INTO ` + invoicesTable + ` (invoice_id, tenant_id, client_id, matter_id, number, status, amount_cents, currency, issued_at, due_at)
		SELECT $1, $2, c.client_id, m.matter_id, $5, $6, $7, $8, $9, $10
		FROM ` + clientsTable + ` c, ` + mattersTable + ` m
		WHERE c.client_id = $3 AND c.tenant_id = $2
		  AND m.matter_id = $4 AND m.tenant_id = $2
		RETURNING invoice_id;
	`
	var insertedID uuid.UUID
	errDb := xm.conn().QueryRowContext(ctx, query,
		inv.InvoiceID, tenantID, inv.ClientID, inv.MatterID, inv.Number,
		inv.Status, inv.AmountCents, inv.Currency, inv.IssuedAt, inv.DueAt).Scan(&insertedID)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return dberror.ErrNotFound.Msg("client or matter not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to insert invoice")
		return dberror.ErrDatabase.Err(errDb)
	}
	return nil
}

// GetInvoice retrieves an invoice within the scope's tenant.
func (xm *practiceManager) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + invoiceColumns + ` FROM ` + invoicesTable + ` WHERE invoice_id = $1 AND tenant_id = $2;`
	inv := &models.Invoice{}
	errDb := xm.conn().QueryRowContext(ctx, query, invoiceID, tenantID).Scan(
		&inv.InvoiceID, &inv.TenantID, &inv.ClientID, &inv.MatterID, &inv.Number,
		&inv.Status, &inv.AmountCents, &inv.Currency, &inv.IssuedAt, &inv.DueAt,
		&inv.CreatedAt, &inv.UpdatedAt)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("invoice not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to retrieve invoice")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return inv, nil
}

// ListInvoices returns invoices in the scope's tenant, optionally
// filtered by client.
func (xm *practiceManager) ListInvoices(ctx context.Context, clientID uuid.UUID) ([]*models.Invoice, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + invoiceColumns + ` FROM ` + invoicesTable + ` WHERE tenant_id = $1`
	args := []any{tenantID}
	if clientID != uuid.Nil {
		query += ` AND client_id = $2`
		args = append(args, clientID)
	}
	query += ` ORDER BY created_at DESC;`

	rows, errDb := xm.conn().QueryContext(ctx, query, args...)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to list invoices")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		inv := &models.Invoice{}
		if errDb := rows.Scan(&inv.InvoiceID, &inv.TenantID, &inv.ClientID, &inv.MatterID, &inv.Number,
			&inv.Status, &inv.AmountCents, &inv.Currency, &inv.IssuedAt, &inv.DueAt,
			&inv.CreatedAt, &inv.UpdatedAt); errDb != nil {
			log.Ctx(ctx).Error().Err(errDb).Msg("failed to scan invoice")
			return nil, dberror.ErrDatabase.Err(errDb)
		}
		invoices = append(invoices, inv)
	}
	if errDb := rows.Err(); errDb != nil {
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return invoices, nil
}

// UpdateInvoiceStatus transitions an invoice within the scope's
// tenant. Sending stamps issued_at.
func (xm *practiceManager) UpdateInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, status models.InvoiceStatus) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	query := `
		UPDATE ` + invoicesTable + `
		SET status = $3,
		    issued_at = CASE WHEN $3 = 'sent' AND issued_at IS NULL THEN NOW() ELSE issued_at END,
		    updated_at = NOW()
		WHERE invoice_id = $1 AND tenant_id = $2;
	`
	result, errDb := xm.conn().ExecContext(ctx, query, invoiceID, tenantID, status)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to update invoice status")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("invoice not found")
	}
	return nil
}

// DeleteInvoice removes a draft invoice within the scope's tenant.
// Issued invoices are voided, not deleted.
func (xm *practiceManager) DeleteInvoice(ctx context.Context, invoiceID uuid.UUID) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	query := `DELETE FROM ` + invoicesTable + ` WHERE invoice_id = $1 AND tenant_id = $2 AND status = 'draft';`
	result, errDb := xm.conn().ExecContext(ctx, query, invoiceID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to delete invoice")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("draft invoice not found")
	}
	return nil
}
