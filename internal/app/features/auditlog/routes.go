// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/condopay/condopay/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the activity feed under the path where this router is
// mounted (typically "/admin/activity" from bootstrap). Admins only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireAdmin)
		pr.Get("/", h.ServeList)
	})

	return r
}
