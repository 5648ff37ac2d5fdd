// internal/app/features/payments/payments.go
package payments

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/condopay/condopay/internal/app/store/users"
	"github.com/condopay/condopay/internal/app/system/authz"
	"github.com/condopay/condopay/internal/app/system/formutil"
	"github.com/condopay/condopay/internal/app/system/htmlsanitize"
	"github.com/condopay/condopay/internal/app/system/inputval"
	"github.com/condopay/condopay/internal/app/system/paystats"
	"github.com/condopay/condopay/internal/app/system/timeouts"
	"github.com/condopay/condopay/internal/app/system/viewdata"
	"github.com/condopay/condopay/internal/domain/models"
	"go.uber.org/zap"
)

type listData struct {
	viewdata.BaseVM
	Payments  []models.Payment  `json:"payments"`
	Standing  paystats.Standing `json:"standing"`
	Reminders []models.Reminder `json:"reminders"`
}

type createInput struct {
	Notes string `form:"notes" validate:"max=2000" label:"Notes"`
}

// ServeList handles GET /payments.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := h.profile(ctx, w, r)
	if !ok {
		return
	}

	payments, err := h.Payments.ListByTenant(ctx, u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "payments: list", err, "Failed to load payments", "/dashboard")
		return
	}
	rems, err := h.Reminders.ListByTenant(ctx, u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "payments: list reminders", err, "Failed to load payments", "/dashboard")
		return
	}

	viewdata.JSON(w, http.StatusOK, listData{
		BaseVM:    viewdata.NewBaseVM(r, "Payments", "/dashboard"),
		Payments:  payments,
		Standing:  paystats.StandingOf(*u, payments, h.Now()),
		Reminders: rems,
	})
}

// HandleCreate handles POST /payments. It records a pending payment of the
// tenant's current monthly rent; an admin later marks it paid.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := formutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "payments: decode form", err, "Invalid form submission.", "/payments")
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		viewdata.FormError(w, http.StatusBadRequest, res.First(), res.Map())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := h.profile(ctx, w, r)
	if !ok {
		return
	}
	if u.Role != models.RoleTenant || u.BuildingID == "" {
		h.ErrLog.LogForbidden(w, r, "payments: not a tenant", nil, "Only tenants can submit payments", "/dashboard")
		return
	}
	if u.Status == models.StatusInactive {
		h.ErrLog.LogForbidden(w, r, "payments: inactive tenant", nil, "Your account is inactive", "/dashboard")
		return
	}

	p, err := h.Payments.Create(ctx, models.Payment{
		TenantID:    u.ID,
		TenantName:  u.FullName(),
		TenantEmail: u.Email,
		BuildingID:  u.BuildingID,
		UnitNo:      u.UnitNo,
		MonthlyRent: u.MonthlyRent,
		Status:      models.PaymentPending,
		Timestamp:   h.Now().UTC(),
		Notes:       htmlsanitize.Note(in.Notes),
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "payments: create", err, "Failed to submit payment", "/payments")
		return
	}

	h.Log.Info("payment submitted",
		zap.String("uid", u.ID),
		zap.String("building_id", u.BuildingID),
		zap.String("payment_id", p.ID.Hex()))

	viewdata.JSON(w, http.StatusCreated, p)
}

func (h *Handler) profile(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	_, _, uid, _ := authz.UserCtx(r)
	u, err := h.Users.GetByID(ctx, uid)
	if errors.Is(err, userstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "payments: profile missing", err, "Profile not found", "/dashboard")
		return nil, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "payments: load profile", err, "Failed to load payments", "/dashboard")
		return nil, false
	}
	return u, true
}
