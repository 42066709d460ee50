package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/models"
)

type clientRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type clientResponse struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func clientRsp(c *models.Client) *clientResponse {
	return &clientResponse{
		ClientID: c.ClientID.String(),
		Name:     c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		Address:  c.Address,
	}
}

func createClient(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &clientRequest{}
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
	client := &models.Client{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := d.CreateClient(ctx, client); err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/clients/" + client.ClientID.String(),
		Response:   clientRsp(client),
	}, nil
}

func getClient(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	clientID, err := uuidParam(r, chi.URLParam(r, "clientID"))
	if err != nil {
		return nil, err
	}
	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	client, dbErr := d.GetClient(ctx, clientID)
	if dbErr != nil {
		return nil, dbErr
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: clientRsp(client)}, nil
}

func listClients(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	d, err := db.Scoped(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := d.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	rsp := make([]*clientResponse, 0, len(clients))
	for _, c := range clients {
		rsp = append(rsp, clientRsp(c))
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: rsp}, nil
}

func updateClient(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	clientID, err := uuidParam(r, chi.URLParam(r, "clientID"))
	if err != nil {
		return nil, err
	}
	req := &clientRequest{}
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
	client := &models.Client{
		ClientID: clientID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	}
	if err := d.UpdateClient(ctx, client); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: clientRsp(client)}, nil
}

func deleteClient(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	clientID, err := uuidParam(r, chi.URLParam(r, "clientID"))
	if err != nil {
		return nil, err
	}
	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	if err := d.DeleteClient(ctx, clientID); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}
