// internal/app/features/admin/routes.go
package admin

import (
	"github.com/condopay/condopay/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the admin feature (typically at "/admin").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireAdmin)

		pr.Get("/", h.ServeIndex)

		pr.Get("/tenants", h.ServeTenants)
		pr.Post("/tenants/{uid}/status", h.HandleTenantStatus)
		pr.Delete("/tenants/{uid}", h.HandleRemoveTenant)

		pr.Get("/payments", h.ServePayments)
		pr.Get("/payments.csv", h.ServePaymentsCSV)
		pr.Get("/payments.xlsx", h.ServePaymentsXLSX)
		pr.Post("/payments/{id}/paid", h.HandleMarkPaid)
		pr.Post("/payments/{id}/discount", h.HandleDiscount)

		pr.Post("/reminders", h.HandleReminders)
	})

	return r
}
