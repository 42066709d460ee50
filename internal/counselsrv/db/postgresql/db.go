// Package postgresql implements the scoped data accessors against
// PostgreSQL. Every tenant-partitioned query stamps tenant_id on
// writes and filters on it for reads; the tenant comes from the
// request scope, never from caller-supplied row data.
package postgresql

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/dberror"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/dbmanager"
	"github.com/counseldesk/counseldesk/internal/counselsrv/tenancy"
	"github.com/counseldesk/counseldesk/pkg/types"
)

// platformManager serves tenant administration, which runs under the
// system scope and is the only path that queries across partitions.
type platformManager struct {
	c dbmanager.ScopedConn
}

// identityManager serves users, roles, and grants within one tenant.
type identityManager struct {
	c dbmanager.ScopedConn
}

// practiceManager serves the practice entities: clients, matters,
// documents, tasks, invoices, and time entries.
type practiceManager struct {
	c dbmanager.ScopedConn
}

type connectionManager struct {
	c dbmanager.ScopedConn
}

func NewCounselDeskDb(c dbmanager.ScopedConn) (*platformManager, *identityManager, *practiceManager, *connectionManager) {
	return &platformManager{c: c}, &identityManager{c: c}, &practiceManager{c: c}, &connectionManager{c: c}
}

func (pm *platformManager) conn() *sql.Conn { return pm.c.Conn() }
func (im *identityManager) conn() *sql.Conn { return im.c.Conn() }
func (xm *practiceManager) conn() *sql.Conn { return xm.c.Conn() }

// tenantFromScope returns the tenant the request scope is bound to.
// System scopes have no tenant and must not reach tenant-partitioned
// queries through this helper.
func tenantFromScope(ctx context.Context) (types.TenantId, apperrors.Error) {
	scope := tenancy.ScopeFromContext(ctx)
	if scope == nil {
		log.Ctx(ctx).Error().Msg("no request scope on context")
		return "", dberror.ErrNoActiveScope
	}
	tenantID := scope.TenantID()
	if tenantID.IsNil() {
		log.Ctx(ctx).Error().Msg("request scope has no tenant")
		return "", dberror.ErrMissingTenantID
	}
	return tenantID, nil
}

// requireSystemScope guards the cross-partition platform queries.
func requireSystemScope(ctx context.Context) apperrors.Error {
	scope := tenancy.ScopeFromContext(ctx)
	if scope == nil {
		return dberror.ErrNoActiveScope
	}
	if !scope.IsSystem() {
		log.Ctx(ctx).Error().Msg("platform operation attempted outside system scope")
		return dberror.ErrSystemScopeRequired
	}
	return nil
}

func (cm *connectionManager) AddScopes(ctx context.Context, scopes map[string]string) error {
	return cm.c.AddScopes(ctx, scopes)
}

func (cm *connectionManager) DropScopes(ctx context.Context, scopes []string) error {
	return cm.c.DropScopes(ctx, scopes)
}

func (cm *connectionManager) AddScope(ctx context.Context, scope, value string) error {
	return cm.c.AddScope(ctx, scope, value)
}

func (cm *connectionManager) DropScope(ctx context.Context, scope string) error {
	return cm.c.DropScope(ctx, scope)
}

func (cm *connectionManager) DropAllScopes(ctx context.Context) error {
	return cm.c.DropAllScopes(ctx)
}

func (cm *connectionManager) Close(ctx context.Context) {
	cm.c.Close(ctx)
}
