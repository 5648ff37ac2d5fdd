// internal/app/features/register/routes.go
package register

import (
	"github.com/condopay/condopay/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes adds both registration steps to r. Only signed-out users may
// reach them.
func MountRoutes(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.Group(func(gr chi.Router) {
		gr.Use(sm.RequireGuest)
		gr.Post(AccountPath, h.HandleAccount)
		gr.Get(RentalPath, h.ServeRental)
		gr.Post(RentalPath, h.HandleRental)
	})
}
