package apis

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/models"
)

type invoiceRequest struct {
	ClientID    string     `json:"client_id" validate:"required,uuid"`
	MatterID    string     `json:"matter_id" validate:"required,uuid"`
	Number      string     `json:"number" validate:"required"`
	AmountCents int64      `json:"amount_cents" validate:"min=0"`
	Currency    string     `json:"currency" validate:"omitempty,iso4217"`
	DueAt       *time.Time `json:"due_at"`
}

type invoiceResponse struct {
	InvoiceID   string     `json:"invoice_id"`
	ClientID    string     `json:"client_id"`
	MatterID    string     `json:"matter_id"`
	Number      string     `json:"number"`
	Status      string     `json:"status"`
	AmountCents int64      `json:"amount_cents"`
	Currency    string     `json:"currency"`
	IssuedAt    *time.Time `json:"issued_at,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
}

func invoiceRsp(inv *models.Invoice) *invoiceResponse {
	rsp := &invoiceResponse{
		InvoiceID:   inv.InvoiceID.String(),
		ClientID:    inv.ClientID.String(),
		MatterID:    inv.MatterID.String(),
		Number:      inv.Number,
		Status:      string(inv.Status),
		AmountCents: inv.AmountCents,
		Currency:    inv.Currency,
	}
	if inv.IssuedAt.Valid {
		rsp.IssuedAt = &inv.IssuedAt.Time
	}
	if inv.DueAt.Valid {
		rsp.DueAt = &inv.DueAt.Time
	}
	return rsp
}

func createInvoice(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &invoiceRequest{}
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
	matterID, parseErr := uuid.Parse(req.MatterID)
	if parseErr != nil {
		return nil, httpx.ErrInvalidRequest("invalid matter_id")
	}

	d, err := db.Scoped(ctx)
	if err != nil {
		return nil, err
	}
	inv := &models.Invoice{
		ClientID:    clientID,
		MatterID:    matterID,
		Number:      req.Number,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
	}
	if req.DueAt != nil {
		inv.DueAt = sql.NullTime{Time: *req.DueAt, Valid: true}
	}
	if err := d.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/invoices/" + inv.InvoiceID.String(),
		Response:   invoiceRsp(inv),
	}, nil
}

func getInvoice(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	invoiceID, err := uuidParam(r, chi.URLParam(r, "invoiceID"))
	if err != nil {
		return nil, err
	}
	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	inv, dbErr := d.GetInvoice(ctx, invoiceID)
	if dbErr != nil {
		return nil, dbErr
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: invoiceRsp(inv)}, nil
}

func listInvoices(r *http.Request) (*httpx.Response, error) {
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
	invoices, err := d.ListInvoices(ctx, clientID)
	if err != nil {
		return nil, err
	}
	rsp := make([]*invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		rsp = append(rsp, invoiceRsp(inv))
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: rsp}, nil
}

type updateInvoiceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent paid void"`
}

func updateInvoiceStatus(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	invoiceID, err := uuidParam(r, chi.URLParam(r, "invoiceID"))
	if err != nil {
		return nil, err
	}
	req := &updateInvoiceStatusRequest{}
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
	if err := d.UpdateInvoiceStatus(ctx, invoiceID, models.InvoiceStatus(req.Status)); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}

func deleteInvoice(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	invoiceID, err := uuidParam(r, chi.URLParam(r, "invoiceID"))
	if err != nil {
		return nil, err
	}
	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	if err := d.DeleteInvoice(ctx, invoiceID); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}
