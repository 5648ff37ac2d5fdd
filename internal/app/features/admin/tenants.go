// internal/app/features/admin/tenants.go
package admin

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/condopay/condopay/internal/app/store/users"
	"github.com/condopay/condopay/internal/app/system/authz"
	"github.com/condopay/condopay/internal/app/system/formutil"
	"github.com/condopay/condopay/internal/app/system/inputval"
	"github.com/condopay/condopay/internal/app/system/normalize"
	"github.com/condopay/condopay/internal/app/system/search"
	"github.com/condopay/condopay/internal/app/system/timeouts"
	"github.com/condopay/condopay/internal/app/system/viewdata"
	"github.com/condopay/condopay/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type tenantRow struct {
	models.User
	Name        string `json:"name"`
	StatusLabel string `json:"statusLabel"`
}

type tenantsData struct {
	viewdata.BaseVM
	Query   string      `json:"q,omitempty"`
	Status  string      `json:"status,omitempty"`
	Tenants []tenantRow `json:"tenants"`
}

type statusInput struct {
	Status string `form:"status" validate:"required,oneof=active pending inactive" label:"Status"`
}

type tenantStatusVM struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	StatusLabel string `json:"statusLabel"`
}

// ServeTenants handles GET /admin/tenants?q=&status=.
func (h *Handler) ServeTenants(w http.ResponseWriter, r *http.Request) {
	b, ok := h.building(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	tenants, err := h.Users.ListTenants(ctx, b)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: list tenants", err, "Failed to load tenants", "/dashboard")
		return
	}

	q := r.URL.Query().Get("q")
	status := r.URL.Query().Get("status")
	tenants = search.Tenants(tenants, q, status)

	data := tenantsData{
		BaseVM:  viewdata.NewBaseVM(r, "Tenants", "/dashboard"),
		Query:   q,
		Status:  status,
		Tenants: make([]tenantRow, 0, len(tenants)),
	}
	for _, u := range tenants {
		data.Tenants = append(data.Tenants, tenantRow{
			User:        u,
			Name:        u.FullName(),
			StatusLabel: models.StatusLabel(u.Status),
		})
	}
	viewdata.JSON(w, http.StatusOK, data)
}

// HandleTenantStatus handles POST /admin/tenants/{uid}/status.
func (h *Handler) HandleTenantStatus(w http.ResponseWriter, r *http.Request) {
	b, ok := h.building(w, r)
	if !ok {
		return
	}
	uid := chi.URLParam(r, "uid")

	var in statusInput
	if err := formutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "admin: decode status form", err, "Invalid form submission.", "/admin/tenants")
		return
	}
	in.Status = normalize.Status(in.Status)
	if res := inputval.Validate(in); res.HasErrors() {
		viewdata.FormError(w, http.StatusBadRequest, res.First(), res.Map())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tenant, ok := h.loadTenant(ctx, w, r, b, uid)
	if !ok {
		return
	}

	if err := h.Users.SetTenantStatus(ctx, b, uid, in.Status); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "admin: tenant vanished", err, "Tenant not found", "/admin/tenants")
			return
		}
		h.ErrLog.LogServerError(w, r, "admin: set tenant status", err, "Failed to update tenant status", "/admin/tenants")
		return
	}

	_, _, actorID, _ := authz.UserCtx(r)
	h.AuditLog.TenantStatusChanged(ctx, r, actorID, uid, b, tenant.Status, in.Status)

	viewdata.JSON(w, http.StatusOK, tenantStatusVM{
		ID:          uid,
		Status:      in.Status,
		StatusLabel: models.StatusLabel(in.Status),
	})
}

// HandleRemoveTenant handles DELETE /admin/tenants/{uid}. The profile is
// deleted and every open session of the tenant is revoked. Payment history
// is kept.
func (h *Handler) HandleRemoveTenant(w http.ResponseWriter, r *http.Request) {
	b, ok := h.building(w, r)
	if !ok {
		return
	}
	uid := chi.URLParam(r, "uid")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	tenant, ok := h.loadTenant(ctx, w, r, b, uid)
	if !ok {
		return
	}

	n, err := h.Users.DeleteTenant(ctx, b, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: delete tenant", err, "Failed to remove tenant", "/admin/tenants")
		return
	}
	if n == 0 {
		h.ErrLog.LogNotFound(w, r, "admin: tenant vanished", nil, "Tenant not found", "/admin/tenants")
		return
	}

	if h.Provider != nil {
		if err := h.Provider.RevokeUser(ctx, uid); err != nil {
			h.Log.Warn("admin: revoke tenant sessions", zap.String("uid", uid), zap.Error(err))
		}
	}

	_, _, actorID, _ := authz.UserCtx(r)
	h.AuditLog.TenantRemoved(ctx, r, actorID, uid, b, tenant.Email)

	viewdata.Next(w, r, "/admin/tenants", "Tenant removed.")
}

// loadTenant fetches uid and checks it is a tenant of buildingID, answering
// 404 otherwise.
func (h *Handler) loadTenant(ctx context.Context, w http.ResponseWriter, r *http.Request, buildingID, uid string) (*models.User, bool) {
	u, err := h.Users.GetByID(ctx, uid)
	if err == nil && (u.BuildingID != buildingID || u.Role != models.RoleTenant) {
		err = userstore.ErrNotFound
	}
	if errors.Is(err, userstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "admin: tenant not in building", err, "Tenant not found", "/admin/tenants")
		return nil, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: load tenant", err, "Failed to load tenant", "/admin/tenants")
		return nil, false
	}
	return u, true
}
