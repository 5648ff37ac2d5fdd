// internal/app/system/auth/guard.go
package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/condopay/condopay/internal/app/system/session"
)

// Guard kinds.
type Kind int

const (
	Authenticated Kind = iota
	Admin
	Guest
)

// Action is what a guard does with a request.
type Action int

const (
	Render Action = iota
	Redirect
	Loading
)

// Outcome is the guard decision for one request.
type Outcome struct {
	Action   Action
	Location string // for Redirect
	Message  string // for Loading
}

// Loading messages.
const (
	MsgCheckingAuth  = "Checking authentication..."
	MsgCheckingAdmin = "Checking admin privileges..."
)

// Decide is the single decision function behind every guard. While the
// state is loading no redirect is issued.
func Decide(kind Kind, st session.State) Outcome {
	if st.Loading {
		msg := MsgCheckingAuth
		if kind == Admin {
			msg = MsgCheckingAdmin
		}
		return Outcome{Action: Loading, Message: msg}
	}

	switch kind {
	case Authenticated:
		if st.User == nil {
			return Outcome{Action: Redirect, Location: "/"}
		}
	case Admin:
		if st.User == nil || !st.IsAdmin {
			return Outcome{Action: Redirect, Location: "/dashboard"}
		}
	case Guest:
		if st.User != nil {
			return Outcome{Action: Redirect, Location: "/dashboard"}
		}
	}
	return Outcome{Action: Render}
}

// RequireSignedIn lets only signed-in users through.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return guard(Authenticated, next)
}

// RequireAdmin lets only admins through.
func (m *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return guard(Admin, next)
}

// RequireGuest lets only signed-out visitors through.
func (m *SessionManager) RequireGuest(next http.Handler) http.Handler {
	return guard(Guest, next)
}

func guard(kind Kind, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, _ := CurrentState(r)
		out := Decide(kind, st)

		switch out.Action {
		case Render:
			next.ServeHTTP(w, r)
		case Loading:
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusAccepted, map[string]any{
				"loading": true,
				"message": out.Message,
			})
		case Redirect:
			redirect(w, r, out.Location, deniedStatus(kind, st))
		}
	})
}

// deniedStatus is the status API callers get instead of a redirect.
// Guests being sent onward are simply redirected.
func deniedStatus(kind Kind, st session.State) int {
	switch {
	case kind == Guest:
		return http.StatusSeeOther
	case st.User == nil:
		return http.StatusUnauthorized
	default:
		return http.StatusForbidden
	}
}

// redirect sends the caller to dest.
//   - HTMX: HX-Redirect header with apiStatus (200 for guests).
//   - HTML: 303 redirect.
//   - API:  apiStatus with a JSON body naming the redirect target.
func redirect(w http.ResponseWriter, r *http.Request, dest string, apiStatus int) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		if apiStatus == http.StatusSeeOther {
			apiStatus = http.StatusOK
		}
		w.WriteHeader(apiStatus)
		return
	}

	if wantsHTML(r) || apiStatus == http.StatusSeeOther {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}

	msg := "unauthorized"
	if apiStatus == http.StatusForbidden {
		msg = "forbidden"
	}
	writeJSON(w, apiStatus, map[string]string{"error": msg, "redirect": dest})
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
