package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
	"github.com/counseldesk/counseldesk/internal/counselsrv/auth"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/models"
	"github.com/counseldesk/counseldesk/pkg/types"
)

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required,min=12"`
}

type userResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Status   string `json:"status"`
}

func userRsp(u *models.User) *userResponse {
	return &userResponse{
		UserID:   string(u.UserID),
		Email:    u.Email,
		FullName: u.FullName,
		Status:   string(u.Status),
	}
}

func createUser(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &createUserRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	hash, hashErr := auth.HashPassword(req.Password)
	if hashErr != nil {
		return nil, httpx.ErrApplicationError()
	}

	d, err := db.Scoped(ctx)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Status:       types.UserStatusActive,
	}
	if err := d.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/users/" + string(user.UserID),
		Response:   userRsp(user),
	}, nil
}

func getUser(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	d, err := db.Scoped(ctx)
	if err != nil {
		return nil, err
	}
	user, err := d.GetUser(ctx, types.UserId(chi.URLParam(r, "userID")))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: userRsp(user)}, nil
}

func listUsers(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	d, err := db.Scoped(ctx)
	if err != nil {
		return nil, err
	}
	users, err := d.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	rsp := make([]*userResponse, 0, len(users))
	for _, u := range users {
		rsp = append(rsp, userRsp(u))
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: rsp}, nil
}

type updateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive locked"`
}

func updateUserStatus(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &updateUserStatusRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	d, err := db.Scoped(ctx)
	if err != nil {
		return nil, err
	}
	userID := types.UserId(chi.URLParam(r, "userID"))
	if err := d.UpdateUserStatus(ctx, userID, types.UserStatus(req.Status)); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}

func deleteUser(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	d, err := db.Scoped(ctx)
	if err != nil {
		return nil, err
	}
	if err := d.DeleteUser(ctx, types.UserId(chi.URLParam(r, "userID"))); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}
