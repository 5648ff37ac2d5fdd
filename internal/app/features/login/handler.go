// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"

	uierrors "github.com/condopay/condopay/internal/app/features/errors"
	"github.com/condopay/condopay/internal/app/system/auditlog"
	"github.com/condopay/condopay/internal/app/system/auth"
	"github.com/condopay/condopay/internal/app/system/authprovider"
	"github.com/condopay/condopay/internal/app/system/formutil"
	"github.com/condopay/condopay/internal/app/system/inputval"
	"github.com/condopay/condopay/internal/app/system/normalize"
	"github.com/condopay/condopay/internal/app/system/timeouts"
	"github.com/condopay/condopay/internal/app/system/viewdata"
	"go.uber.org/zap"
)

type Handler struct {
	Provider   authprovider.Provider
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(provider authprovider.Provider, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Provider:   provider,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
		Log:        logger,
	}
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email" label:"Email"`
	Password string `form:"password" validate:"required" label:"Password"`
}

type loginVM struct {
	viewdata.BaseVM
	Fields      []string `json:"fields"`
	RegisterURL string   `json:"registerUrl"`
}

// ServeLogin handles GET /.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	viewdata.JSON(w, http.StatusOK, loginVM{
		BaseVM:      viewdata.NewBaseVM(r, "Sign in", ""),
		Fields:      []string{"email", "password"},
		RegisterURL: "/register",
	})
}

// HandleLoginPost handles POST /.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	var in loginForm
	if err := formutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "login: decode form", err, "Invalid form submission.", "/")
		return
	}
	in.Email = normalize.Email(in.Email)

	if res := inputval.Validate(in); res.HasErrors() {
		viewdata.FormError(w, http.StatusBadRequest, res.First(), res.Map())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, err := h.Provider.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		status := uierrors.AuthStatus(err)
		if status == http.StatusInternalServerError {
			h.Log.Error("login: sign in", zap.Error(err))
		}
		reason := string(authprovider.CodeOf(err))
		if reason == "" {
			reason = "error"
		}
		h.AuditLog.LoginFailed(ctx, r, in.Email, reason)
		viewdata.FormError(w, status, authprovider.Message(err, "Failed to sign in"), nil)
		return
	}

	if err := h.SessionMgr.Issue(w, r, s); err != nil {
		h.ErrLog.LogServerError(w, r, "login: save session", err, "Failed to sign in", "/")
		return
	}

	buildingID := ""
	if res := h.SessionMgr.Resolver(); res != nil {
		if st := res.Wait(ctx, s.ID); st.User != nil {
			buildingID = st.User.BuildingID
		}
	}
	h.AuditLog.LoginSuccess(ctx, r, s.Identity.UID, buildingID, s.Identity.Email)

	viewdata.Next(w, r, "/dashboard", "Signed in.")
}
