package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/counseldesk/counseldesk/pkg/types"
)

type TimeEntry struct {
	EntryID     uuid.UUID
	TenantID    types.TenantId
	MatterID    uuid.UUID
	UserID      types.UserId
	Description string
	Minutes     int
	RateCents   int64
	OccurredOn  time.Time
	CreatedAt   time.Time
}
