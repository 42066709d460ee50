// Package db is the scoped data access front-end. Accessors are
// constructed per request from the request scope; construction fails
// when no authorized scope is active, so a query can never run outside
// a tenant partition. As defense in depth the pinned connection also
// carries the tenant in a session variable, which row level security
// policies consult in the database itself.
package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/dberror"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/dbmanager"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/models"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/postgresql"
	"github.com/counseldesk/counseldesk/internal/counselsrv/policy"
	"github.com/counseldesk/counseldesk/internal/counselsrv/tenancy"
	"github.com/counseldesk/counseldesk/pkg/types"
)

// PlatformManager is tenant administration. Its operations run under
// the system scope and are the only queries that cross partitions.
type PlatformManager interface {
	CreateTenant(ctx context.Context, tenant *models.Tenant) apperrors.Error
	GetTenant(ctx context.Context, tenantID types.TenantId) (*models.Tenant, apperrors.Error)
	GetTenantBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, apperrors.Error)
	ListTenants(ctx context.Context) ([]*models.Tenant, apperrors.Error)
	UpdateTenantStatus(ctx context.Context, tenantID types.TenantId, status types.TenantStatus) apperrors.Error
	DeleteTenant(ctx context.Context, tenantID types.TenantId) apperrors.Error
}

// IdentityManager is users, roles, and grants within the scope's
// tenant.
type IdentityManager interface {
	CreateUser(ctx context.Context, user *models.User) apperrors.Error
	GetUser(ctx context.Context, userID types.UserId) (*models.User, apperrors.Error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, apperrors.Error)
	ListUsers(ctx context.Context) ([]*models.User, apperrors.Error)
	UpdateUserStatus(ctx context.Context, userID types.UserId, status types.UserStatus) apperrors.Error
	DeleteUser(ctx context.Context, userID types.UserId) apperrors.Error

	CreateRole(ctx context.Context, role *models.Role) apperrors.Error
	GetRole(ctx context.Context, roleID uuid.UUID) (*models.Role, apperrors.Error)
	ListRoles(ctx context.Context) ([]*models.Role, apperrors.Error)
	DeleteRole(ctx context.Context, roleID uuid.UUID) apperrors.Error
	AssignRole(ctx context.Context, userID types.UserId, roleID uuid.UUID) apperrors.Error
	RevokeRole(ctx context.Context, userID types.UserId, roleID uuid.UUID) apperrors.Error
	GetMembership(ctx context.Context, tenantID types.TenantId, userID types.UserId) (types.UserStatus, []types.Action, apperrors.Error)
}

// PracticeManager is the practice entities within the scope's tenant.
type PracticeManager interface {
	CreateClient(ctx context.Context, client *models.Client) apperrors.Error
	GetClient(ctx context.Context, clientID uuid.UUID) (*models.Client, apperrors.Error)
	ListClients(ctx context.Context) ([]*models.Client, apperrors.Error)
	UpdateClient(ctx context.Context, client *models.Client) apperrors.Error
	DeleteClient(ctx context.Context, clientID uuid.UUID) apperrors.Error

	CreateMatter(ctx context.Context, matter *models.Matter) apperrors.Error
	GetMatter(ctx context.Context, matterID uuid.UUID) (*models.Matter, apperrors.Error)
	ListMatters(ctx context.Context, clientID uuid.UUID) ([]*models.Matter, apperrors.Error)
	UpdateMatter(ctx context.Context, matter *models.Matter) apperrors.Error
	DeleteMatter(ctx context.Context, matterID uuid.UUID) apperrors.Error

	CreateDocument(ctx context.Context, doc *models.Document) apperrors.Error
	GetDocument(ctx context.Context, documentID uuid.UUID) (*models.Document, apperrors.Error)
	ListDocuments(ctx context.Context, matterID uuid.UUID) ([]*models.Document, apperrors.Error)
	DeleteDocument(ctx context.Context, documentID uuid.UUID) apperrors.Error

	CreateTask(ctx context.Context, task *models.Task) apperrors.Error
	GetTask(ctx context.Context, taskID uuid.UUID) (*models.Task, apperrors.Error)
	ListTasks(ctx context.Context, matterID uuid.UUID) ([]*models.Task, apperrors.Error)
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatus) apperrors.Error
	DeleteTask(ctx context.Context, taskID uuid.UUID) apperrors.Error

	CreateInvoice(ctx context.Context, inv *models.Invoice) apperrors.Error
	GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, apperrors.Error)
	ListInvoices(ctx context.Context, clientID uuid.UUID) ([]*models.Invoice, apperrors.Error)
	UpdateInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, status models.InvoiceStatus) apperrors.Error
	DeleteInvoice(ctx context.Context, invoiceID uuid.UUID) apperrors.Error

	CreateTimeEntry(ctx context.Context, entry *models.TimeEntry) apperrors.Error
	GetTimeEntry(ctx context.Context, entryID uuid.UUID) (*models.TimeEntry, apperrors.Error)
	ListTimeEntries(ctx context.Context, matterID uuid.UUID) ([]*models.TimeEntry, apperrors.Error)
	DeleteTimeEntry(ctx context.Context, entryID uuid.UUID) apperrors.Error
}

type ConnectionManager interface {
	AddScopes(ctx context.Context, scopes map[string]string) error
	DropScopes(ctx context.Context, scopes []string) error
	AddScope(ctx context.Context, scope, value string) error
	DropScope(ctx context.Context, scope string) error
	DropAllScopes(ctx context.Context) error
	Close(ctx context.Context)
}

type DB_ interface {
	PlatformManager
	IdentityManager
	PracticeManager
	ConnectionManager
}

// Scope_TenantId is the session variable carrying the current tenant
// on a pinned connection.
const Scope_TenantId string = "counseldesk.curr_tenantid"

var configuredScopes = []string{
	Scope_TenantId,
}

var pool dbmanager.ScopedDb

// Init opens the connection pool. Call once at startup, after config
// is loaded.
func Init(ctx context.Context) error {
	pg, err := dbmanager.NewScopedDb(ctx, "postgresql", configuredScopes)
	if err != nil {
		return err
	}
	pool = pg
	return nil
}

func Conn(ctx context.Context) (dbmanager.ScopedConn, error) {
	if pool == nil {
		return nil, dberror.ErrDatabase.Msg("db pool not initialized")
	}
	return pool.Conn(ctx)
}

type ctxDbKeyType string

const ctxDbKey ctxDbKeyType = "CounselDeskDb"

// ConnCtx pins a connection and attaches it to the context for the
// rest of the request.
func ConnCtx(ctx context.Context) (context.Context, error) {
	conn, err := Conn(ctx)
	if err != nil {
		return ctx, err
	}
	return context.WithValue(ctx, ctxDbKey, conn), nil
}

type counselDeskDb struct {
	PlatformManager
	IdentityManager
	PracticeManager
	ConnectionManager
}

func dbFromContext(ctx context.Context) DB_ {
	if conn, ok := ctx.Value(ctxDbKey).(dbmanager.ScopedConn); ok {
		pm, im, xm, cm := postgresql.NewCounselDeskDb(conn)
		return &counselDeskDb{
			PlatformManager:   pm,
			IdentityManager:   im,
			PracticeManager:   xm,
			ConnectionManager: cm,
		}
	}
	return nil
}

// Scoped constructs the tenant-scoped accessor for the active request
// scope. Construction fails when the scope is absent, not yet
// authorized, or disposed; there is no query-time fallback.
func Scoped(ctx context.Context) (DB_, apperrors.Error) {
	scope := tenancy.ScopeFromContext(ctx)
	if scope == nil || !scope.DataAccessAllowed() {
		log.Ctx(ctx).Error().Msg("scoped accessor requested without an authorized scope")
		return nil, dberror.ErrNoActiveScope
	}
	d := dbFromContext(ctx)
	if d == nil {
		log.Ctx(ctx).Error().Msg("no db connection on context")
		return nil, dberror.ErrDatabase.Msg("no db connection")
	}
	return d, nil
}

// System derives a system-scoped context and accessor for platform
// operations that run outside a tenant partition. Every use is
// audited.
func System(ctx context.Context, reason string) (DB_, context.Context, apperrors.Error) {
	var actor types.UserId
	if p := tenancy.PrincipalFromContext(ctx); p != nil {
		actor = p.UserID
	}
	policy.AuditSystemScope(ctx, actor, reason)

	correlationID := ""
	if scope := tenancy.ScopeFromContext(ctx); scope != nil {
		correlationID = scope.CorrelationID()
	}
	sysCtx := tenancy.WithSystemScope(ctx, correlationID)

	d := dbFromContext(sysCtx)
	if d == nil {
		log.Ctx(ctx).Error().Msg("no db connection on context")
		return nil, ctx, dberror.ErrDatabase.Msg("no db connection")
	}
	return d, sysCtx, nil
}

// unscoped returns the raw accessor for infrastructure paths that run
// before the scope is authorized: tenant directory lookups and grant
// materialization. Both take their tenant explicitly and read only
// what resolution needs.
func unscoped(ctx context.Context) (DB_, apperrors.Error) {
	d := dbFromContext(ctx)
	if d == nil {
		return nil, dberror.ErrDatabase.Msg("no db connection")
	}
	return d, nil
}

// SetTenantScope pins the tenant session variable on the request's
// connection. The scope middleware calls it right after resolution;
// row level security policies in the database read the variable.
func SetTenantScope(ctx context.Context, tenantID types.TenantId) apperrors.Error {
	d, err := unscoped(ctx)
	if err != nil {
		return err
	}
	if errDb := d.AddScope(ctx, Scope_TenantId, string(tenantID)); errDb != nil {
		return dberror.ErrDatabase.Err(errDb)
	}
	return nil
}

type tenantDirectory struct{}

// Directory returns the resolver's view of the tenant table.
func Directory() tenancy.TenantDirectory {
	return tenantDirectory{}
}

func (tenantDirectory) GetTenant(ctx context.Context, tenantID types.TenantId) (*tenancy.TenantRecord, apperrors.Error) {
	d, err := unscoped(ctx)
	if err != nil {
		return nil, err
	}
	// Directory lookups are platform metadata reads; they run under a
	// transient system scope without touching partitioned data.
	sysCtx := tenancy.WithSystemScope(ctx, "")
	tenant, err := d.GetTenant(sysCtx, tenantID)
	if err != nil {
		return nil, err
	}
	return &tenancy.TenantRecord{
		TenantID:  tenant.TenantID,
		Subdomain: tenant.Subdomain,
		Status:    tenant.Status,
	}, nil
}

func (tenantDirectory) GetTenantBySubdomain(ctx context.Context, subdomain string) (*tenancy.TenantRecord, apperrors.Error) {
	d, err := unscoped(ctx)
	if err != nil {
		return nil, err
	}
	sysCtx := tenancy.WithSystemScope(ctx, "")
	tenant, err := d.GetTenantBySubdomain(sysCtx, subdomain)
	if err != nil {
		return nil, err
	}
	return &tenancy.TenantRecord{
		TenantID:  tenant.TenantID,
		Subdomain: tenant.Subdomain,
		Status:    tenant.Status,
	}, nil
}

type grantSource struct{}

// Grants returns the policy gate's view of memberships and role
// grants.
func Grants() policy.GrantSource {
	return grantSource{}
}

func (grantSource) GetMembership(ctx context.Context, tenantID types.TenantId, userID types.UserId) (*policy.Membership, apperrors.Error) {
	d, err := unscoped(ctx)
	if err != nil {
		return nil, err
	}
	status, actions, err := d.GetMembership(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return &policy.Membership{
		UserID:   userID,
		TenantID: tenantID,
		Status:   status,
		Actions:  actions,
	}, nil
}
