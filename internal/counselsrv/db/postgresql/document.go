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

const documentColumns = `document_id, tenant_id, matter_id, title, storage_path, content_type, size_bytes, uploaded_by, created_at, updated_at`

var documentsTable = models.ScopedTable("documents")

// CreateDocument records a document against a matter in the scope's
// tenant. The matter reference is validated against the same tenant.
func (xm *practiceManager) CreateDocument(ctx context.Context, doc *models.Document) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	doc.TenantID = tenantID
	if doc.DocumentID == uuid.Nil {
		doc.DocumentID = uuid.New()
	}
	if doc.Title == "" || doc.MatterID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("document title and matter are required")
	}

	query := `
		INSERT INTO ` + documentsTable + ` (document_id, tenant_id, matter_id, title, storage_path, content_type, size_bytes, uploaded_by)
		SELECT $1, $2, m.matter_id, $4, $5, $6, $7, $8
		FROM ` + mattersTable + ` m
		WHERE m.matter_id = $3 AND m.tenant_id = $2
		RETURNING document_id;
	`
	var insertedID uuid.UUID
	errDb := xm.conn().QueryRowContext(ctx, query,
		doc.DocumentID, tenantID, doc.MatterID, doc.Title, doc.StoragePath,
		doc.ContentType, doc.SizeBytes, doc.UploadedBy).Scan(&insertedID)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return dberror.ErrNotFound.Msg("matter not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to insert document")
		return dberror.ErrDatabase.Err(errDb)
	}
	return nil
}

// GetDocument retrieves a document within the scope's tenant.
func (xm *practiceManager) GetDocument(ctx context.Context, documentID uuid.UUID) (*models.Document, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + documentColumns + ` FROM ` + documentsTable + ` WHERE document_id = $1 AND tenant_id = $2;`
	doc := &models.Document{}
	errDb := xm.conn().QueryRowContext(ctx, query, documentID, tenantID).Scan(
		&doc.DocumentID, &doc.TenantID, &doc.MatterID, &doc.Title, &doc.StoragePath,
		&doc.ContentType, &doc.SizeBytes, &doc.UploadedBy, &doc.CreatedAt, &doc.UpdatedAt)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("document not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to retrieve document")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return doc, nil
}

// ListDocuments returns a matter's documents within the scope's
// tenant.
func (xm *practiceManager) ListDocuments(ctx context.Context, matterID uuid.UUID) ([]*models.Document, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + documentColumns + ` FROM ` + documentsTable + ` WHERE matter_id = $1 AND tenant_id = $2 ORDER BY created_at DESC;`
	rows, errDb := xm.conn().QueryContext(ctx, query, matterID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to list documents")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		if errDb := rows.Scan(&doc.DocumentID, &doc.TenantID, &doc.MatterID, &doc.Title, &doc.StoragePath,
			&doc.ContentType, &doc.SizeBytes, &doc.UploadedBy, &doc.CreatedAt, &doc.UpdatedAt); errDb != nil {
			log.Ctx(ctx).Error().Err(errDb).Msg("failed to scan document")
			return nil, dberror.ErrDatabase.Err(errDb)
		}
		docs = append(docs, doc)
	}
	if errDb := rows.Err(); errDb != nil {
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return docs, nil
}

// DeleteDocument removes a document record within the scope's tenant.
func (xm *practiceManager) DeleteDocument(ctx context.Context, documentID uuid.UUID) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	query := `DELETE FROM ` + documentsTable + ` WHERE document_id = $1 AND tenant_id = $2;`
	result, errDb := xm.conn().ExecContext(ctx, query, documentID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to delete document")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("document not found")
	}
	return nil
}
