// Package models defines the row types stored by the postgresql
// package. Every tenant-partitioned model carries a TenantID column;
// the accessor stamps it on writes and filters on it for reads.
package models

import (
	"time"

	"github.com/jackc/pgtype"

	"github.com/counseldesk/counseldesk/pkg/types"
)

type Tenant struct {
	TenantID         types.TenantId
	Subdomain        string
	Name             string
	Status           types.TenantStatus
	SubscriptionPlan string
	ContactEmail     string
	Info             pgtype.JSONB
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
