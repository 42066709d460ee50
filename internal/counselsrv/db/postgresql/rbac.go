package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/dberror"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/models"
	"github.com/counseldesk/counseldesk/pkg/types"
)

var (
	rolesTable     = models.ScopedTable("roles")
	userRolesTable = models.ScopedTable("user_roles")
)

// CreateRole inserts a role into the scope's tenant.
func (im *identityManager) CreateRole(ctx context.Context, role *models.Role) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	role.TenantID = tenantID
	if role.RoleID == uuid.Nil {
		role.RoleID = uuid.New()
	}
	actions, errJson := json.Marshal(role.Actions)
	if errJson != nil {
		return dberror.ErrInvalidInput.Err(errJson)
	}

	query := `
		INSERT INTO ` + rolesTable + ` (role_id, tenant_id, name, description, actions)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, name) DO NOTHING
		RETURNING role_id;
	`
	var insertedID uuid.UUID
	errDb := im.conn().QueryRowContext(ctx, query,
		role.RoleID, tenantID, role.Name, role.Description, actions).Scan(&insertedID)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return dberror.ErrAlreadyExists.Msg("role name already exists")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to insert role")
		return dberror.ErrDatabase.Err(errDb)
	}
	return nil
}

// GetRole retrieves a role within the scope's tenant.
func (im *identityManager) GetRole(ctx context.Context, roleID uuid.UUID) (*models.Role, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT role_id, tenant_id, name, description, actions, created_at, updated_at
		FROM ` + rolesTable + `
		WHERE role_id = $1 AND tenant_id = $2;
	`
	role := &models.Role{}
	var actions []byte
	errDb := im.conn().QueryRowContext(ctx, query, roleID, tenantID).Scan(
		&role.RoleID, &role.TenantID, &role.Name, &role.Description,
		&actions, &role.CreatedAt, &role.UpdatedAt)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("role not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to retrieve role")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	if errJson := json.Unmarshal(actions, &role.Actions); errJson != nil {
		return nil, dberror.ErrDatabase.Err(errJson)
	}
	return role, nil
}

// ListRoles returns all roles in the scope's tenant.
func (im *identityManager) ListRoles(ctx context.Context) ([]*models.Role, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT role_id, tenant_id, name, description, actions, created_at, updated_at
		FROM ` + rolesTable + `
		WHERE tenant_id = $1
		ORDER BY name;
	`
	rows, errDb := im.conn().QueryContext(ctx, query, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to list roles")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		role := &models.Role{}
		var actions []byte
		if errDb := rows.Scan(&role.RoleID, &role.TenantID, &role.Name, &role.Description,
			&actions, &role.CreatedAt, &role.UpdatedAt); errDb != nil {
			log.Ctx(ctx).Error().Err(errDb).Msg("failed to scan role")
			return nil, dberror.ErrDatabase.Err(errDb)
		}
		if errJson := json.Unmarshal(actions, &role.Actions); errJson != nil {
			return nil, dberror.ErrDatabase.Err(errJson)
		}
		roles = append(roles, role)
	}
	if errDb := rows.Err(); errDb != nil {
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return roles, nil
}

// DeleteRole removes a role and its assignments within the scope's
// tenant.
func (im *identityManager) DeleteRole(ctx context.Context, roleID uuid.UUID) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	query := `DELETE FROM ` + rolesTable + ` WHERE role_id = $1 AND tenant_id = $2;`
	result, errDb := im.conn().ExecContext(ctx, query, roleID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to delete role")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("role not found")
	}
	return nil
}

// AssignRole grants a role to a user. Both must belong to the scope's
// tenant; the tenant filter on the subselects enforces that.
func (im *identityManager) AssignRole(ctx context.Context, userID types.UserId, roleID uuid.UUID) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO ` + userRolesTable + ` (user_id, role_id, tenant_id)
		SELECT u.user_id, r.role_id, $3
		FROM ` + usersTable + ` u, ` + rolesTable + ` r
		WHERE u.user_id = $1 AND u.tenant_id = $3
		  AND r.role_id = $2 AND r.tenant_id = $3
		ON CONFLICT (user_id, role_id) DO NOTHING;
	`
	result, errDb := im.conn().ExecContext(ctx, query, userID, roleID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to assign role")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("user or role not found")
	}
	return nil
}

// RevokeRole removes a role assignment within the scope's tenant.
func (im *identityManager) RevokeRole(ctx context.Context, userID types.UserId, roleID uuid.UUID) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	query := `DELETE FROM ` + userRolesTable + ` WHERE user_id = $1 AND role_id = $2 AND tenant_id = $3;`
	result, errDb := im.conn().ExecContext(ctx, query, userID, roleID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to revoke role")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("assignment not found")
	}
	return nil
}

// GetMembership loads a user's standing in a tenant for permission
// materialization. It takes the tenant explicitly because it runs
// during scope setup, before the scope is authorized.
func (im *identityManager) GetMembership(ctx context.Context, tenantID types.TenantId, userID types.UserId) (types.UserStatus, []types.Action, apperrors.Error) {
	if tenantID.IsNil() || userID.IsNil() {
		return "", nil, dberror.ErrInvalidInput
	}

	var status types.UserStatus
	query := `SELECT status FROM ` + usersTable + ` WHERE user_id = $1 AND tenant_id = $2;`
	errDb := im.conn().QueryRowContext(ctx, query, userID, tenantID).Scan(&status)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return "", nil, dberror.ErrNotFound.Msg("no membership")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to load membership")
		return "", nil, dberror.ErrDatabase.Err(errDb)
	}

	rolesQuery := `
		SELECT r.actions
		FROM ` + rolesTable + ` r
		JOIN ` + userRolesTable + ` ur ON ur.role_id = r.role_id
		WHERE ur.user_id = $1 AND ur.tenant_id = $2 AND r.tenant_id = $2;
	`
	rows, errDb := im.conn().QueryContext(ctx, rolesQuery, userID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to load role grants")
		return "", nil, dberror.ErrDatabase.Err(errDb)
	}
	defer rows.Close()

	seen := make(map[types.Action]struct{})
	var actions []types.Action
	for rows.Next() {
		var raw []byte
		if errDb := rows.Scan(&raw); errDb != nil {
			return "", nil, dberror.ErrDatabase.Err(errDb)
		}
		var roleActions []types.Action
		if errJson := json.Unmarshal(raw, &roleActions); errJson != nil {
			return "", nil, dberror.ErrDatabase.Err(errJson)
		}
		for _, a := range roleActions {
			if _, ok := seen[a]; !ok {
				seen[a] = struct{}{}
				actions = append(actions, a)
			}
		}
	}
	if errDb := rows.Err(); errDb != nil {
		return "", nil, dberror.ErrDatabase.Err(errDb)
	}
	return status, actions, nil
}
