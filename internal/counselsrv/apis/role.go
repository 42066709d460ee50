package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/models"
	"github.com/counseldesk/counseldesk/pkg/types"
)

type createRoleRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Actions     []string `json:"actions" validate:"required,min=1"`
}

type roleResponse struct {
	RoleID      string   `json:"role_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

func roleRsp(role *models.Role) *roleResponse {
	actions := make([]string, 0, len(role.Actions))
	for _, a := range role.Actions {
		actions = append(actions, string(a))
	}
	return &roleResponse{
		RoleID:      role.RoleID.String(),
		Name:        role.Name,
		Description: role.Description,
		Actions:     actions,
	}
}

// knownActions guards role creation against typo'd action names, which
// would otherwise silently grant nothing.
var knownActions = types.AllActions()

func createRole(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &createRoleRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	actions := make([]types.Action, 0, len(req.Actions))
	for _, a := range req.Actions {
		action := types.Action(a)
		if !knownActions.Has(action) {
			return nil, httpx.ErrInvalidRequest("unknown action: " + a)
		}
		actions = append(actions, action)
	}

	d, err := db.Scoped(ctx)
	if err != nil {
		return nil, err
	}
	role := &models.Role{
		Name:        req.Name,
		Description: req.Description,
		Actions:     actions,
	}
	if err := d.CreateRole(ctx, role); err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/roles/" + role.RoleID.String(),
		Response:   roleRsp(role),
	}, nil
}

func getRole(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	roleID, err := uuidParam(r, chi.URLParam(r, "roleID"))
	if err != nil {
		return nil, err
	}
	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	role, dbErr := d.GetRole(ctx, roleID)
	if dbErr != nil {
		return nil, dbErr
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: roleRsp(role)}, nil
}

func listRoles(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	d, err := db.Scoped(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := d.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	rsp := make([]*roleResponse, 0, len(roles))
	for _, role := range roles {
		rsp = append(rsp, roleRsp(role))
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: rsp}, nil
}

func deleteRole(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	roleID, err := uuidParam(r, chi.URLParam(r, "roleID"))
	if err != nil {
		return nil, err
	}
	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	if err := d.DeleteRole(ctx, roleID); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}

func assignRole(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	roleID, err := uuidParam(r, chi.URLParam(r, "roleID"))
	if err != nil {
		return nil, err
	}
	userID := types.UserId(chi.URLParam(r, "userID"))

	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	if err := d.AssignRole(ctx, userID, roleID); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}

func revokeRole(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	roleID, err := uuidParam(r, chi.URLParam(r, "roleID"))
	if err != nil {
		return nil, err
	}
	userID := types.UserId(chi.URLParam(r, "userID"))

	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	if err := d.RevokeRole(ctx, userID, roleID); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}
