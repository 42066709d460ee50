package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/counseldesk/counseldesk/pkg/types"
)

type Document struct {
	DocumentID  uuid.UUID
	TenantID    types.TenantId
	MatterID    uuid.UUID
	Title       string
	StoragePath string
	ContentType string
	SizeBytes   int64
	UploadedBy  types.UserId
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
