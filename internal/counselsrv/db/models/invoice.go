package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/counseldesk/counseldesk/pkg/types"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
	InvoiceStatusVoid  InvoiceStatus = "void"
)

type Invoice struct {
	InvoiceID   uuid.UUID
	TenantID    types.TenantId
	ClientID    uuid.UUID
	MatterID    uuid.UUID
	Number      string
	Status      InvoiceStatus
	AmountCents int64
	Currency    string
	IssuedAt    sql.NullTime
	DueAt       sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
