package postgresql

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/dberror"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/models"
	"github.com/counseldesk/counseldesk/pkg/types"
)

const userColumns = `user_id, tenant_id, email, full_name, password_hash, status, info, created_at, updated_at`

var usersTable = models.ScopedTable("users")

// CreateUser inserts a user into the scope's tenant. The tenant comes
// from the request scope; any tenant value on the model is overwritten.
func (im *identityManager) CreateUser(ctx context.Context, user *models.User) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	user.TenantID = tenantID
	if user.UserID.IsNil() {
		user.UserID = types.UserId(uuid.NewString())
	}
	if user.Status == "" {
		user.Status = types.UserStatusActive
	}

	query := `
		INSERT INTO ` + usersTable + ` (user_id, tenant_id, email, full_name, password_hash, status, info)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, email) DO NOTHING
		RETURNING user_id;
	`
	var insertedID types.UserId
	errDb := im.conn().QueryRowContext(ctx, query,
		user.UserID, tenantID, user.Email, user.FullName,
		user.PasswordHash, user.Status, user.Info).Scan(&insertedID)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("email", user.Email).Msg("user email already exists in tenant")
			return dberror.ErrAlreadyExists.Msg("email already in use")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to insert user")
		return dberror.ErrDatabase.Err(errDb)
	}
	return nil
}

// GetUser retrieves a user within the scope's tenant.
func (im *identityManager) GetUser(ctx context.Context, userID types.UserId) (*models.User, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + userColumns + ` FROM ` + usersTable + ` WHERE user_id = $1 AND tenant_id = $2;`
	return scanUser(ctx, im.conn().QueryRowContext(ctx, query, userID, tenantID))
}

// GetUserByEmail retrieves a user by email within the scope's tenant.
// The login flow uses it after tenant resolution, so a credential
// valid in one tenant can never authenticate against another.
func (im *identityManager) GetUserByEmail(ctx context.Context, email string) (*models.User, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + userColumns + ` FROM ` + usersTable + ` WHERE email = $1 AND tenant_id = $2;`
	return scanUser(ctx, im.conn().QueryRowContext(ctx, query, email, tenantID))
}

func scanUser(ctx context.Context, row *sql.Row) (*models.User, apperrors.Error) {
	user := &models.User{}
	errDb := row.Scan(&user.UserID, &user.TenantID, &user.Email, &user.FullName,
		&user.PasswordHash, &user.Status, &user.Info, &user.CreatedAt, &user.UpdatedAt)
	if errDb != nil {
		if errDb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("user not found")
		}
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to retrieve user")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return user, nil
}

// ListUsers returns all users in the scope's tenant.
func (im *identityManager) ListUsers(ctx context.Context) ([]*models.User, apperrors.Error) {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + userColumns + ` FROM ` + usersTable + ` WHERE tenant_id = $1 ORDER BY created_at;`
	rows, errDb := im.conn().QueryContext(ctx, query, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to list users")
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if errDb := rows.Scan(&user.UserID, &user.TenantID, &user.Email, &user.FullName,
			&user.PasswordHash, &user.Status, &user.Info, &user.CreatedAt, &user.UpdatedAt); errDb != nil {
			log.Ctx(ctx).Error().Err(errDb).Msg("failed to scan user")
			return nil, dberror.ErrDatabase.Err(errDb)
		}
		users = append(users, user)
	}
	if errDb := rows.Err(); errDb != nil {
		return nil, dberror.ErrDatabase.Err(errDb)
	}
	return users, nil
}

// UpdateUserStatus transitions a user's status within the scope's
// tenant. Locking a user denies authorization on the next request.
func (im *identityManager) UpdateUserStatus(ctx context.Context, userID types.UserId, status types.UserStatus) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	query := `
		UPDATE ` + usersTable + `
		SET status = $3, updated_at = NOW()
		WHERE user_id = $1 AND tenant_id = $2;
	`
	result, errDb := im.conn().ExecContext(ctx, query, userID, tenantID, status)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to update user status")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("user not found")
	}
	return nil
}

// DeleteUser removes a user and its role assignments within the
// scope's tenant.
func (im *identityManager) DeleteUser(ctx context.Context, userID types.UserId) apperrors.Error {
	tenantID, err := tenantFromScope(ctx)
	if err != nil {
		return err
	}
	query := `DELETE FROM ` + usersTable + ` WHERE user_id = $1 AND tenant_id = $2;`
	result, errDb := im.conn().ExecContext(ctx, query, userID, tenantID)
	if errDb != nil {
		log.Ctx(ctx).Error().Err(errDb).Msg("failed to delete user")
		return dberror.ErrDatabase.Err(errDb)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("user not found")
	}
	return nil
}
