package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/counseldesk/counseldesk/pkg/types"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

type Task struct {
	TaskID     uuid.UUID
	TenantID   types.TenantId
	MatterID   uuid.UUID
	AssigneeID types.UserId
	Title      string
	Status     TaskStatus
	DueAt      sql.NullTime
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
