package models

import (
	"time"

	"github.com/jackc/pgtype"

	"github.com/counseldesk/counseldesk/pkg/types"
)

type User struct {
	UserID       types.UserId
	TenantID     types.TenantId
	Email        string
	FullName     string
	PasswordHash string
	Status       types.UserStatus
	Info         pgtype.JSONB
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
