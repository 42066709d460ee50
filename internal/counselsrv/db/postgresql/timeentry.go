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

const timeEntryColumns = `entry_id, tenant_id, matter_id, user_id, description, minutes, rate_cents, occurred_on, created_at`

var timeEntriesTable = models.ScopedTable("time_entries")

// CreateTimeEntry records billable time against a matter in the
// scope's tenant.
func (xm *practiceManager) CreateTimeEntry(ctx context.Context, entry *models.TimeEntry) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	entry.TenantID = tenantID
	if entry.EntryID == uuid.Nil {
		entry.EntryID = uuid.New()
	}
	if entry.MatterID == uuid.Nil || entry.Minutes <= 0 {
		return dberror.ErrInvalidInput.Msg("time entry requires a matter and positive minutes")
	}

	query := `
		INSERT INTO ` + timeEntriesTable + ` (entry_id, tenant_id, matter_id, user_id, description, minutes, rate_cents, occurred_on)
		SELECT $1, $2, m.matter_id, $4, $5, $6, $7, $8
		FROM ` + mattersTable + ` m
		WHERE m.matter_id = $3 AND m.tenant_id = $2
		RETURNING entry_id;
	`
	var insertedID uuid.UUID
	errDb := xm.conn().QueryRowContext(ctx, query,
		entry.EntryID, tenantID, entry.MatterID, entry.UserID, entry.Description,
		entry.Minutes, entry.RateCents, entry.OccurredOn).Scan(&insertedID)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return dberror.ErrNotFound.Msg("matter not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to insert time entry")
		return dberror.ErrDatabase.Err(errDb)
	}
	return nil
}

// GetTimeEntry retrieves a time entry within the scope's tenant.
func (xm *practiceManager) GetTimeEntry(ctx context.Context, entryID uuid.UUID) (*models.TimeEntry, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + timeEntryColumns + ` FROM ` + timeEntriesTable + ` WHERE entry_id = $1 AND tenant_id = $2;`
	entry := &models.TimeEntry{}
	errDb := xm.conn().QueryRowContext(ctx, query, entryID, tenantID).Scan(
		&entry.EntryID, &entry.TenantID, &entry.MatterID, &entry.UserID,
		&entry.Description, &entry.Minutes, &entry.RateCents, &entry.OccurredOn, &entry.CreatedAt)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("time entry not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to retrieve time entry")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return entry, nil
}

// ListTimeEntries returns a matter's time entries within the scope's
// tenant.
func (xm *practiceManager) ListTimeEntries(ctx context.Context, matterID uuid.UUID) ([]*models.TimeEntry, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + timeEntryColumns + ` FROM ` + timeEntriesTable + ` WHERE matter_id = $1 AND tenant_id = $2 ORDER BY occurred_on DESC;`
	rows, errDb := xm.conn().QueryContext(ctx, query, matterID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to list time entries")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	defer rows.Close()

	var entries []*models.TimeEntry
	for rows.Next() {
		entry := &models.TimeEntry{}
		if errDb := rows.Scan(&entry.EntryID, &entry.TenantID, &entry.MatterID, &entry.UserID,
			&entry.Description, &entry.Minutes, &entry.RateCents, &entry.OccurredOn, &entry.CreatedAt); errDb != nil {
			log.Ctx(ctx).Error().Err(errDb).Msg("failed to scan time entry")
			return nil, dberror.ErrDatabase.Err(errDb)
		}
		entries = append(entries, entry)
	}
	if errDb := rows.Err(); errDb != nil {
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return entries, nil
}

// DeleteTimeEntry removes a time entry within the scope's tenant.
func (xm *practiceManager) DeleteTimeEntry(ctx context.Context, entryID uuid.UUID) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	query := `DELETE FROM ` + timeEntriesTable + ` WHERE entry_id = $1 AND tenant_id = $2;`
	result, errDb := xm.conn().ExecContext(ctx, query, entryID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to delete time entry")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("time entry not found")
	}
	return nil
}
