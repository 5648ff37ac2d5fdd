// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/condopay/condopay/internal/app/system/authz"
	"github.com/condopay/condopay/internal/app/system/viewdata"
)

// ErrorVM is the body of every error response.
type ErrorVM struct {
	Error      string `json:"error"`
	BackURL    string `json:"backUrl,omitempty"`
	IsLoggedIn bool   `json:"isLoggedIn"`
	Role       string `json:"role,omitempty"`
}

// Handler is the errors feature handler.
// No DB needed; it only writes JSON.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden reports that access was denied.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderForbidden(w, r, "You don't have permission to view this page.", "/dashboard")
}

// NotFound is the router's fallback.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	write(w, r, http.StatusNotFound, "Page not found.", "/")
}

// MethodNotAllowed is the router's 405 handler.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	write(w, r, http.StatusMethodNotAllowed, "Method not allowed.", "")
}

func write(w http.ResponseWriter, r *http.Request, status int, msg, backURL string) {
	role, _, _, signedIn := authz.UserCtx(r)
	if !signedIn {
		role = ""
	}
	viewdata.JSON(w, status, ErrorVM{
		Error:      msg,
		BackURL:    backURL,
		IsLoggedIn: signedIn,
		Role:       role,
	})
}
