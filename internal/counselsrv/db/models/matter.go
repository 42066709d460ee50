package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"

	"github.com/counseldesk/counseldesk/pkg/types"
)

type MatterStatus string

const (
	MatterStatusOpen     MatterStatus = "open"
	MatterStatusClosed   MatterStatus = "closed"
	MatterStatusArchived MatterStatus = "archived"
)

type Matter struct {
	MatterID    uuid.UUID
	TenantID    types.TenantId
	ClientID    uuid.UUID
	Title       string
	Description string
	Status      MatterStatus
	LeadUserID  types.UserId
	OpenedAt    time.Time
	ClosedAt    sql.NullTime
	Info        pgtype.JSONB
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
