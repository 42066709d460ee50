package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/models"
	"github.com/counseldesk/counseldesk/internal/counselsrv/tenancy"
)

type documentRequest struct {
	MatterID    string `json:"matter_id" validate:"required,uuid"`
	Title       string `json:"title" validate:"required"`
	StoragePath string `json:"storage_path" validate:"required"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes" validate:"min=0"`
}

type documentResponse struct {
	DocumentID  string `json:"document_id"`
	MatterID    string `json:"matter_id"`
	Title       string `json:"title"`
	StoragePath string `json:"storage_path"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	UploadedBy  string `json:"uploaded_by"`
}

func documentRsp(doc *models.Document) *documentResponse {
	return &documentResponse{
		DocumentID:  doc.DocumentID.String(),
		MatterID:    doc.MatterID.String(),
		Title:       doc.Title,
		StoragePath: doc.StoragePath,
		ContentType: doc.ContentType,
		SizeBytes:   doc.SizeBytes,
		UploadedBy:  string(doc.UploadedBy),
	}
}

func createDocument(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &documentRequest{}
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
	doc := &models.Document{
		MatterID:    matterID,
		Title:       req.Title,
		StoragePath: req.StoragePath,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	}
	if scope := tenancy.ScopeFromContext(ctx); scope != nil {
		doc.UploadedBy = scope.PrincipalID()
	}
	if err := d.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/documents/" + doc.DocumentID.String(),
		Response:   documentRsp(doc),
	}, nil
}

func getDocument(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	documentID, err := uuidParam(r, chi.URLParam(r, "documentID"))
	if err != nil {
		return nil, err
	}
	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	doc, dbErr := d.GetDocument(ctx, documentID)
	if dbErr != nil {
		return nil, dbErr
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: documentRsp(doc)}, nil
}

func listDocuments(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	matterID, err := uuidParam(r, r.URL.Query().Get("matter_id"))
	if err != nil {
		return nil, httpx.ErrInvalidRequest("matter_id query parameter is required")
	}

	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	docs, dbErr := d.ListDocuments(ctx, matterID)
	if dbErr != nil {
		return nil, dbErr
	}
	rsp := make([]*documentResponse, 0, len(docs))
	for _, doc := range docs {
		rsp = append(rsp, documentRsp(doc))
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: rsp}, nil
}

func deleteDocument(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	documentID, err := uuidParam(r, chi.URLParam(r, "documentID"))
	if err != nil {
		return nil, err
	}
	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	if err := d.DeleteDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}
