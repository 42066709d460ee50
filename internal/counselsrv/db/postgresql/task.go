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

const taskColumns = `task_id, tenant_id, matter_id, assignee_id, title, status, due_at, created_at, updated_at`

var tasksTable = models.ScopedTable("tasks")

// CreateTask inserts a task against a matter in the scope's tenant.
func (xm *practiceManager) CreateTask(ctx context.Context, task *models.Task) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	task.TenantID = tenantID
	if task.TaskID == uuid.Nil {
		task.TaskID = uuid.New()
	}
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	if task.Title == "" || task.MatterID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("task title and matter are required")
	}

	query := `
		INSERT INTO ` + tasksTable + ` (task_id, tenant_id, matter_id, assignee_id, title, status, due_at)
		SELECT $1, $2, m.matter_id, $4, $5, $6, $7
		FROM ` + mattersTable + ` m
		WHERE m.matter_id = $3 AND m.tenant_id = $2
		RETURNING task_id;
	`
	var insertedID uuid.UUID
	errDb := xm.conn().QueryRowContext(ctx, query,
		task.TaskID, tenantID, task.MatterID, task.AssigneeID,
		task.Title, task.Status, task.DueAt).Scan(&insertedID)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return dberror.ErrNotFound.Msg("matter not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to insert task")
		return dberror.ErrDatabase.Err(errDb)
	}
	return nil
}

// GetTask retrieves a task within the scope's tenant.
func (xm *practiceManager) GetTask(ctx context.Context, taskID uuid.UUID) (*models.Task, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + taskColumns + ` FROM ` + tasksTable + ` WHERE task_id = $1 AND tenant_id = $2;`
	task := &models.Task{}
	errDb := xm.conn().QueryRowContext(ctx, query, taskID, tenantID).Scan(
		&task.TaskID, &task.TenantID, &task.MatterID, &task.AssigneeID,
		&task.Title, &task.Status, &task.DueAt, &task.CreatedAt, &task.UpdatedAt)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("task not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to retrieve task")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return task, nil
}

// ListTasks returns a matter's tasks within the scope's tenant.
func (xm *practiceManager) ListTasks(ctx context.Context, matterID uuid.UUID) ([]*models.Task, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + taskColumns + ` FROM ` + tasksTable + ` WHERE matter_id = $1 AND tenant_id = $2 ORDER BY due_at NULLS LAST, created_at;`
	rows, errDb := xm.conn().QueryContext(ctx, query, matterID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to list tasks")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{}
		if errDb := rows.Scan(&task.TaskID, &task.TenantID, &task.MatterID, &task.AssigneeID,
			&task.Title, &task.Status, &task.DueAt, &task.CreatedAt, &task.UpdatedAt); errDb != nil {
			log.Ctx(ctx).Error().Err(errDb).Msg("failed to scan task")
			return nil, dberror.ErrDatabase.Err(errDb)
		}
		tasks = append(tasks, task)
	}
	if errDb := rows.Err(); errDb != nil {
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return tasks, nil
}

// UpdateTaskStatus transitions a task within the scope's tenant.
func (xm *practiceManager) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatus) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	query := `
		UPDATE ` + tasksTable + `
		SET status = $3, updated_at = NOW()
		WHERE task_id = $1 AND tenant_id = $2;
	`
	result, errDb := xm.conn().ExecContext(ctx, query, taskID, tenantID, status)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to update task status")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("task not found")
	}
	return nil
}

// DeleteTask removes a task within the scope's tenant.
func (xm *practiceManager) DeleteTask(ctx context.Context, taskID uuid.UUID) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	query := `DELETE FROM ` + tasksTable + ` WHERE task_id = $1 AND tenant_id = $2;`
	result, errDb := xm.conn().ExecContext(ctx, query, taskID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to delete task")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("task not found")
	}
	return nil
}
