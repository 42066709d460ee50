package apis

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/models"
	"github.com/counseldesk/counseldesk/internal/counselsrv/tenancy"
)

type timeEntryRequest struct {
	MatterID    string    `json:"matter_id" validate:"required,uuid"`
	Description string    `json:"description"`
	Minutes     int       `json:"minutes" validate:"required,min=1"`
	RateCents   int64     `json:"rate_cents" validate:"min=0"`
	OccurredOn  time.Time `json:"occurred_on" validate:"required"`
}

type timeEntryResponse struct {
	EntryID     string    `json:"entry_id"`
	MatterID    string    `json:"matter_id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	Minutes     int       `json:"minutes"`
	RateCents   int64     `json:"rate_cents"`
	OccurredOn  time.Time `json:"occurred_on"`
}

func timeEntryRsp(entry *models.TimeEntry) *timeEntryResponse {
	return &timeEntryResponse{
		EntryID:     entry.EntryID.String(),
		MatterID:    entry.MatterID.String(),
		UserID:      string(entry.UserID),
		Description: entry.Description,
		Minutes:     entry.Minutes,
		RateCents:   entry.RateCents,
		OccurredOn:  entry.OccurredOn,
	}
}

// createTimeEntry records time for the authenticated principal; the
// recording user comes from the scope, not the request body.
func createTimeEntry(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &timeEntryRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	matterID, parseErr := uuid.Parse(req.MatterID)
	if parseErr != nil {
		return nil, httpx.ErrInvalidRequest("invalid matter_id")
	}

	d, err := db.Scoped(ctx)
	if err != nil {
		return nil, err
	}
	entry := &models.TimeEntry{
		MatterID:    matterID,
		Description: req.Description,
		Minutes:     req.Minutes,
		RateCents:   req.RateCents,
		OccurredOn:  req.OccurredOn,
	}
	if scope := tenancy.ScopeFromContext(ctx); scope != nil {
		entry.UserID = scope.PrincipalID()
	}
	if err := d.CreateTimeEntry(ctx, entry); err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/time-entries/" + entry.EntryID.String(),
		Response:   timeEntryRsp(entry),
	}, nil
}

func getTimeEntry(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	entryID, err := uuidParam(r, chi.URLParam(r, "entryID"))
	if err != nil {
		return nil, err
	}
	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	entry, dbErr := d.GetTimeEntry(ctx, entryID)
	if dbErr != nil {
		return nil, dbErr
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: timeEntryRsp(entry)}, nil
}

func listTimeEntries(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	matterID, err := uuidParam(r, r.URL.Query().Get("matter_id"))
	if err != nil {
		return nil, httpx.ErrInvalidRequest("matter_id query parameter is required")
	}

	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	entries, dbErr := d.ListTimeEntries(ctx, matterID)
	if dbErr != nil {
		return nil, dbErr
	}
	rsp := make([]*timeEntryResponse, 0, len(entries))
	for _, entry := range entries {
		rsp = append(rsp, timeEntryRsp(entry))
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: rsp}, nil
}

func deleteTimeEntry(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	entryID, err := uuidParam(r, chi.URLParam(r, "entryID"))
	if err != nil {
		return nil, err
	}
	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	if err := d.DeleteTimeEntry(ctx, entryID); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}
