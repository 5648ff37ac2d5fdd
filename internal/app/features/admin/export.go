// internal/app/features/admin/export.go
package admin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/condopay/condopay/internal/app/system/csvutil"
	"github.com/condopay/condopay/internal/app/system/timeouts"
	"github.com/condopay/condopay/internal/app/system/xlsxutil"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ServePaymentsCSV handles GET /admin/payments.csv.
func (h *Handler) ServePaymentsCSV(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.exportRows(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(h.exportFilename(r, ".csv"))))
	if err := csvutil.WritePayments(w, rows); err != nil {
		h.Log.Warn("admin: write csv export", zap.Error(err))
	}
}

// ServePaymentsXLSX handles GET /admin/payments.xlsx.
func (h *Handler) ServePaymentsXLSX(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.exportRows(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(h.exportFilename(r, ".xlsx"))))
	if err := xlsxutil.WritePayments(w, rows); err != nil {
		h.Log.Warn("admin: write xlsx export", zap.Error(err))
	}
}

// exportRows loads the building's payments, limited to ?month=&year= when
// given, newest first.
func (h *Handler) exportRows(w http.ResponseWriter, r *http.Request) ([]csvutil.PaymentRow, bool) {
	b, ok := h.building(w, r)
	if !ok {
		return nil, false
	}
	f, explicit, err := h.monthFilter(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "admin: bad month filter", err, "Invalid month or year.", "/admin/payments")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	payments, err := h.Payments.ListByBuilding(ctx, b)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: export payments", err, "Failed to export payments", "/admin/payments")
		return nil, false
	}
	if explicit {
		payments = inMonth(payments, f)
	}
	return csvutil.PaymentRows(payments, h.Location), true
}

// exportFilename returns the "filename" query param with ext enforced, or
// payments_<timestamp><ext>.
func (h *Handler) exportFilename(r *http.Request, ext string) string {
	filename := strings.TrimSpace(r.URL.Query().Get("filename"))
	if filename == "" {
		filename = "payments_" + h.Now().UTC().Format("20060102_150405")
	}
	if !strings.HasSuffix(strings.ToLower(filename), ext) {
		filename += ext
	}
	return filename
}
