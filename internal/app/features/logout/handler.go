// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	"github.com/condopay/condopay/internal/app/system/auditlog"
	"github.com/condopay/condopay/internal/app/system/auth"
	"github.com/condopay/condopay/internal/app/system/authprovider"
	"github.com/condopay/condopay/internal/app/system/timeouts"
	"github.com/condopay/condopay/internal/app/system/viewdata"
	"go.uber.org/zap"
)

type Handler struct {
	Provider   authprovider.Provider
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(provider authprovider.Provider, sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Provider:   provider,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
		Log:        logger,
	}
}

// ServeLogout handles POST /logout. It always clears the cookie, even when
// the provider call fails.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	token := auth.SessionToken(r)
	if token == "" {
		token = h.SessionMgr.Token(r)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if token != "" {
		if err := h.Provider.SignOut(ctx, token); err != nil {
			h.Log.Warn("logout: provider sign out failed", zap.Error(err))
		}
	}

	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Logout(ctx, r, u.ID, u.BuildingID)
	}

	if err := h.SessionMgr.Clear(w, r); err != nil {
		h.Log.Error("logout: clear session", zap.Error(err))
	}

	viewdata.Next(w, r, "/", "Signed out.")
}
