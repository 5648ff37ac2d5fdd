// internal/app/features/admin/payments.go
package admin

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	paymentstore "github.com/condopay/condopay/internal/app/store/payments"
	"github.com/condopay/condopay/internal/app/store/queries/paymentqueries"
	"github.com/condopay/condopay/internal/app/system/authz"
	"github.com/condopay/condopay/internal/app/system/formutil"
	"github.com/condopay/condopay/internal/app/system/htmlsanitize"
	"github.com/condopay/condopay/internal/app/system/inputval"
	"github.com/condopay/condopay/internal/app/system/paystats"
	"github.com/condopay/condopay/internal/app/system/timeouts"
	"github.com/condopay/condopay/internal/app/system/txn"
	"github.com/condopay/condopay/internal/app/system/viewdata"
	"github.com/condopay/condopay/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errBadMonth = errors.New("month must be 1-12 and year must be a four digit year")

type paymentsData struct {
	viewdata.BaseVM
	Month    int              `json:"month"`
	Year     int              `json:"year"`
	Payments []models.Payment `json:"payments"`
	paystats.Result
}

type markPaidVM struct {
	Payment models.Payment `json:"payment"`
	Receipt models.Receipt `json:"receipt"`
}

type discountInput struct {
	Amount float64 `form:"amount" validate:"gt=0" label:"Discount amount"`
	Reason string  `form:"reason" validate:"max=2000" label:"Reason"`
}

type discountVM struct {
	Payment  models.Payment  `json:"payment"`
	Discount models.Discount `json:"discount"`
}

// monthFilter reads ?month=&year= and reports whether either was given.
// Missing values default to the current month in h.Location.
func (h *Handler) monthFilter(r *http.Request) (paystats.Filter, bool, error) {
	f := paystats.MonthOf(h.Now(), h.Location)
	q := r.URL.Query()
	ms, ys := strings.TrimSpace(q.Get("month")), strings.TrimSpace(q.Get("year"))
	if ms != "" {
		m, err := strconv.Atoi(ms)
		if err != nil || m < 1 || m > 12 {
			return f, true, errBadMonth
		}
		f.Month = time.Month(m)
	}
	if ys != "" {
		y, err := strconv.Atoi(ys)
		if err != nil || y < 1000 || y > 9999 {
			return f, true, errBadMonth
		}
		f.Year = y
	}
	return f, ms != "" || ys != "", nil
}

// ServePayments handles GET /admin/payments. Stats use the selected month
// (current month by default); the overdue list is not month scoped. The
// payment list is limited to the month only when one was requested.
func (h *Handler) ServePayments(w http.ResponseWriter, r *http.Request) {
	b, ok := h.building(w, r)
	if !ok {
		return
	}
	f, explicit, err := h.monthFilter(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "admin: bad month filter", err, "Invalid month or year.", "/admin/payments")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	snap, err := paymentqueries.BuildingSnapshot(ctx, h.DB, b)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: load payments", err, "Failed to fetch payment data", "/dashboard")
		return
	}

	list := snap.Payments
	if explicit {
		list = inMonth(snap.Payments, f)
	}

	viewdata.JSON(w, http.StatusOK, paymentsData{
		BaseVM:   viewdata.NewBaseVM(r, "Payments", "/dashboard"),
		Month:    int(f.Month),
		Year:     f.Year,
		Payments: list,
		Result:   paystats.Compute(snap.Tenants, snap.Payments, h.Now(), f),
	})
}

func inMonth(payments []models.Payment, f paystats.Filter) []models.Payment {
	out := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if f.Contains(p.Timestamp) {
			out = append(out, p)
		}
	}
	return out
}

func paymentID(r *http.Request) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
}

// HandleMarkPaid handles POST /admin/payments/{id}/paid. The payment is
// completed and a receipt issued in one transaction where supported.
func (h *Handler) HandleMarkPaid(w http.ResponseWriter, r *http.Request) {
	b, ok := h.building(w, r)
	if !ok {
		return
	}
	id, err := paymentID(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "admin: bad payment id", err, "Invalid payment ID.", "/admin/payments")
		return
	}
	_, _, actorID, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	txID := uuid.NewString()
	var out markPaidVM
	err = txn.Run(ctx, h.Client, h.Log, func(ctx context.Context) error {
		p, err := h.Payments.MarkPaid(ctx, b, id, h.Now().UTC(), txID)
		if err != nil {
			return err
		}
		rc, err := h.Receipts.Issue(ctx, p, actorID)
		if err != nil {
			return err
		}
		out = markPaidVM{Payment: p, Receipt: rc}
		return nil
	})
	switch {
	case errors.Is(err, paymentstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "admin: mark paid", err, "Payment not found", "/admin/payments")
		return
	case errors.Is(err, paymentstore.ErrAlreadyCompleted):
		h.ErrLog.LogConflict(w, r, "admin: mark paid", err, "Payment is already marked as paid", "/admin/payments")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "admin: mark paid", err, "Failed to mark payment as paid", "/admin/payments")
		return
	}

	h.AuditLog.PaymentMarkedPaid(ctx, r, actorID, out.Payment.TenantID, b, id.Hex(), txID)
	viewdata.JSON(w, http.StatusOK, out)
}

// HandleDiscount handles POST /admin/payments/{id}/discount. The payment
// amount is reduced by the discount, never below zero, and the discount is
// recorded with the original amount.
func (h *Handler) HandleDiscount(w http.ResponseWriter, r *http.Request) {
	b, ok := h.building(w, r)
	if !ok {
		return
	}
	id, err := paymentID(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "admin: bad payment id", err, "Invalid payment ID.", "/admin/payments")
		return
	}

	var in discountInput
	if err := formutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "admin: decode discount form", err, "Invalid form submission.", "/admin/payments")
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		viewdata.FormError(w, http.StatusBadRequest, res.First(), res.Map())
		return
	}
	in.Reason = htmlsanitize.Note(in.Reason)
	_, _, actorID, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Payments.GetByID(ctx, id)
	if err == nil && p.BuildingID != b {
		err = paymentstore.ErrNotFound
	}
	if errors.Is(err, paymentstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "admin: discount", err, "Payment not found", "/admin/payments")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: load payment", err, "Failed to apply discount", "/admin/payments")
		return
	}
	if p.Status == models.PaymentCompleted {
		h.ErrLog.LogConflict(w, r, "admin: discount on completed payment", nil, "Cannot discount a completed payment", "/admin/payments")
		return
	}

	original := p.MonthlyRent
	discounted := math.Max(0, original-in.Amount)

	var out discountVM
	err = txn.Run(ctx, h.Client, h.Log, func(ctx context.Context) error {
		if err := h.Payments.SetAmount(ctx, b, id, discounted, ""); err != nil {
			return err
		}
		d, err := h.Discounts.Create(ctx, models.Discount{
			PaymentID:      id,
			TenantID:       p.TenantID,
			BuildingID:     b,
			Amount:         original - discounted,
			OriginalAmount: original,
			Reason:         in.Reason,
			CreatedBy:      actorID,
		})
		if err != nil {
			return err
		}
		p.MonthlyRent = discounted
		out = discountVM{Payment: p, Discount: d}
		return nil
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: apply discount", err, "Failed to apply discount", "/admin/payments")
		return
	}

	h.AuditLog.DiscountApplied(ctx, r, actorID, p.TenantID, b, id.Hex(), original, discounted)
	viewdata.JSON(w, http.StatusOK, out)
}
