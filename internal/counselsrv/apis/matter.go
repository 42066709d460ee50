package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/models"
	"github.com/counseldesk/counseldesk/pkg/types"
)

type matterRequest struct {
	ClientID    string `json:"client_id" validate:"required,uuid"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	LeadUserID  string `json:"lead_user_id"`
	Status      string `json:"status" validate:"omitempty,oneof=open closed archived"`
}

type matterResponse struct {
	MatterID    string `json:"matter_id"`
	ClientID    string `json:"client_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	LeadUserID  string `json:"lead_user_id"`
}

func matterRsp(m *models.Matter) *matterResponse {
	return &matterResponse{
		MatterID:    m.MatterID.String(),
		ClientID:    m.ClientID.String(),
		Title:       m.Title,
		Description: m.Description,
		Status:      string(m.Status),
		LeadUserID:  string(m.LeadUserID),
	}
}

func createMatter(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &matterRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	clientID, parseErr := uuid.Parse(req.ClientID)
	if parseErr != nil {
		return nil, httpx.ErrInvalidRequest("invalid client_id")
	}

	d, err := db.Scoped(ctx)
	if err != nil {
		return nil, err
	}
	matter := &models.Matter{
		ClientID:    clientID,
		Title:       req.Title,
		Description: req.Description,
		LeadUserID:  types.UserId(req.LeadUserID),
		Status:      models.MatterStatus(req.Status),
	}
	if err := d.CreateMatter(ctx, matter); err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/matters/" + matter.MatterID.String(),
		Response:   matterRsp(matter),
	}, nil
}

func getMatter(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	matterID, err := uuidParam(r, chi.URLParam(r, "matterID"))
	if err != nil {
		return nil, err
	}
	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	matter, dbErr := d.GetMatter(ctx, matterID)
	if dbErr != nil {
		return nil, dbErr
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: matterRsp(matter)}, nil
}

func listMatters(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	clientID := uuid.Nil
	if q := r.URL.Query().Get("client_id"); q != "" {
		id, parseErr := uuid.Parse(q)
		if parseErr != nil {
			return nil, httpx.ErrInvalidRequest("invalid client_id")
		}
		clientID = id
	}

	d, err := db.Scoped(ctx)
	if err != nil {
		return nil, err
	}
	matters, err := d.ListMatters(ctx, clientID)
	if err != nil {
		return nil, err
	}
	rsp := make([]*matterResponse, 0, len(matters))
	for _, m := range matters {
		rsp = append(rsp, matterRsp(m))
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: rsp}, nil
}

func updateMatter(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	matterID, err := uuidParam(r, chi.URLParam(r, "matterID"))
	if err != nil {
		return nil, err
	}
	req := &matterRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	status := models.MatterStatus(req.Status)
	if status == "" {
		status = models.MatterStatusOpen
	}
	matter := &models.Matter{
		MatterID:    matterID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		LeadUserID:  types.UserId(req.LeadUserID),
	}
	if err := d.UpdateMatter(ctx, matter); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: matterRsp(matter)}, nil
}

func deleteMatter(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	matterID, err := uuidParam(r, chi.URLParam(r, "matterID"))
	if err != nil {
		return nil, err
	}
	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	if err := d.DeleteMatter(ctx, matterID); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}
