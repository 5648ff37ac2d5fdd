// internal/app/features/login/routes.go
package login

import (
	"github.com/condopay/condopay/internal/app/system/auth"
	"github.com/condopay/condopay/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// MountRoutes adds the sign-in entry at / to r. Only signed-out users may
// reach it; POST is throttled per client IP.
func MountRoutes(r chi.Router, h *Handler, sm *auth.SessionManager, limiter *ratelimit.LoginLimiter) {
	r.Group(func(gr chi.Router) {
		gr.Use(sm.RequireGuest)
		gr.Get("/", h.ServeLogin)
		gr.With(limiter.Middleware).Post("/", h.HandleLoginPost)
	})
}
