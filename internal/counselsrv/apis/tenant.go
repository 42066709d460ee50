package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/models"
	"github.com/counseldesk/counseldesk/internal/counselsrv/tenancy"
	"github.com/counseldesk/counseldesk/pkg/types"
)

type createTenantRequest struct {
	Name             string `json:"name" validate:"required"`
	Subdomain        string `json:"subdomain" validate:"required,hostname_rfc1123,lowercase"`
	SubscriptionPlan string `json:"subscription_plan"`
	ContactEmail     string `json:"contact_email" validate:"omitempty,email"`
}

type tenantResponse struct {
	TenantID         string `json:"tenant_id"`
	Subdomain        string `json:"subdomain"`
	Name             string `json:"name"`
	Status           string `json:"status"`
	SubscriptionPlan string `json:"subscription_plan"`
	ContactEmail     string `json:"contact_email"`
}

func tenantRsp(t *models.Tenant) *tenantResponse {
	return &tenantResponse{
		TenantID:         string(t.TenantID),
		Subdomain:        t.Subdomain,
		Name:             t.Name,
		Status:           string(t.Status),
		SubscriptionPlan: t.SubscriptionPlan,
		ContactEmail:     t.ContactEmail,
	}
}

func createTenant(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &createTenantRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	d, ctx, err := db.System(ctx, "create tenant")
	if err != nil {
		return nil, err
	}
	tenant := &models.Tenant{
		TenantID:         types.TenantId(tenancy.NewAccountNumber()),
		Subdomain:        req.Subdomain,
		Name:             req.Name,
		Status:           types.TenantStatusTrial,
		SubscriptionPlan: req.SubscriptionPlan,
		ContactEmail:     req.ContactEmail,
	}
	if err := d.CreateTenant(ctx, tenant); err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/tenants/" + string(tenant.TenantID),
		Response:   tenantRsp(tenant),
	}, nil
}

func getTenant(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	d, ctx, err := db.System(ctx, "get tenant")
	if err != nil {
		return nil, err
	}
	tenant, err := d.GetTenant(ctx, types.TenantId(chi.URLParam(r, "tenantID")))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: tenantRsp(tenant)}, nil
}

func listTenants(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	d, ctx, err := db.System(ctx, "list tenants")
	if err != nil {
		return nil, err
	}
	tenants, err := d.ListTenants(ctx)
	if err != nil {
		return nil, err
	}
	rsp := make([]*tenantResponse, 0, len(tenants))
	for _, t := range tenants {
		rsp = append(rsp, tenantRsp(t))
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: rsp}, nil
}

type updateTenantStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active trial suspended"`
}

func updateTenantStatus(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &updateTenantStatusRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	d, ctx, err := db.System(ctx, "update tenant status")
	if err != nil {
		return nil, err
	}
	tenantID := types.TenantId(chi.URLParam(r, "tenantID"))
	if err := d.UpdateTenantStatus(ctx, tenantID, types.TenantStatus(req.Status)); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}

func deleteTenant(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	d, ctx, err := db.System(ctx, "delete tenant")
	if err != nil {
		return nil, err
	}
	if err := d.DeleteTenant(ctx, types.TenantId(chi.URLParam(r, "tenantID"))); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}
