// internal/app/features/dashboard/tenant.go
package dashboard

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/condopay/condopay/internal/app/store/users"
	"github.com/condopay/condopay/internal/app/system/authz"
	"github.com/condopay/condopay/internal/app/system/paystats"
	"github.com/condopay/condopay/internal/app/system/timeouts"
	"github.com/condopay/condopay/internal/app/system/viewdata"
	"github.com/condopay/condopay/internal/domain/models"
)

const recentPaymentsLimit = 5

type tenantData struct {
	viewdata.BaseVM
	Profile        models.User       `json:"profile"`
	StatusLabel    string            `json:"statusLabel"`
	Standing       paystats.Standing `json:"standing"`
	RecentPayments []models.Payment  `json:"recentPayments"`
}

func (h *Handler) ServeTenant(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if errors.Is(err, userstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "dashboard: tenant profile missing", err, "Profile not found", "/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: load profile", err, "Failed to load dashboard data", "/")
		return
	}

	payments, err := h.Payments.ListByTenant(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: load payments", err, "Failed to load dashboard data", "/")
		return
	}

	recent := payments
	if len(recent) > recentPaymentsLimit {
		recent = recent[:recentPaymentsLimit]
	}

	viewdata.JSON(w, http.StatusOK, tenantData{
		BaseVM:         viewdata.NewBaseVM(r, "Dashboard", "/"),
		Profile:        *u,
		StatusLabel:    models.StatusLabel(u.Status),
		Standing:       paystats.StandingOf(*u, payments, h.Now()),
		RecentPayments: recent,
	})
}
