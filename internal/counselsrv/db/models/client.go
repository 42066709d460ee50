package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"

	"github.com/counseldesk/counseldesk/pkg/types"
)

type Client struct {
	ClientID  uuid.UUID
	TenantID  types.TenantId
	Name      string
	Email     string
	Phone     string
	Address   string
	Info      pgtype.JSONB
	CreatedAt time.Time
	UpdatedAt time.Time
}
