// internal/app/features/payments/routes.go
package payments

import (
	"github.com/condopay/condopay/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the tenant payment pages (typically at "/payments").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
	})

	return r
}
