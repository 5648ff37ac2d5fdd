// internal/app/features/dashboard/admin.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/condopay/condopay/internal/app/store/queries/paymentqueries"
	"github.com/condopay/condopay/internal/app/system/authz"
	"github.com/condopay/condopay/internal/app/system/timeouts"
	"github.com/condopay/condopay/internal/app/system/viewdata"
	"github.com/condopay/condopay/internal/domain/models"
	"go.uber.org/zap"
)

type recentTenantVM struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	UnitNo      string    `json:"unitNo"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"statusLabel"`
	CreatedAt   time.Time `json:"createdAt"`
}

type adminData struct {
	viewdata.BaseVM
	paymentqueries.TenantCounts
	RecentTenants []recentTenantVM `json:"recentTenants"`
}

func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	buildingID, err := authz.AdminBuilding(r)
	if err != nil {
		h.ErrLog.LogUnprocessable(w, r, "dashboard: admin without building", err, authz.ErrNoBuilding.Error(), "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	counts, err := paymentqueries.CountTenantsByStatus(ctx, h.DB, buildingID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: count tenants", err, "Failed to load dashboard data", "/")
		return
	}
	recent, err := h.Users.RecentTenants(ctx, buildingID, recentTenantsLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: recent tenants", err, "Failed to load dashboard data", "/")
		return
	}

	data := adminData{
		BaseVM:        viewdata.NewBaseVM(r, "Admin Dashboard", "/"),
		TenantCounts:  counts,
		RecentTenants: make([]recentTenantVM, 0, len(recent)),
	}
	for _, u := range recent {
		data.RecentTenants = append(data.RecentTenants, recentTenantVM{
			ID:          u.ID,
			Name:        u.FullName(),
			Email:       u.Email,
			UnitNo:      u.UnitNo,
			Status:      u.Status,
			StatusLabel: models.StatusLabel(u.Status),
			CreatedAt:   u.CreatedAt,
		})
	}

	h.Log.Debug("admin dashboard served",
		zap.String("user", data.UserName),
		zap.String("building_id", buildingID))

	viewdata.JSON(w, http.StatusOK, data)
}
