package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/condopay/condopay/internal/app/system/auth"
	"github.com/condopay/condopay/internal/app/system/authprovider"
	"github.com/condopay/condopay/internal/app/system/session"
	"github.com/condopay/condopay/internal/domain/models"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		logger,
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("protected content"))
	})
}

var (
	adminState  = session.State{User: &models.User{ID: "a1", Role: models.RoleAdmin}, IsAdmin: true}
	tenantState = session.State{User: &models.User{ID: "t1", Role: models.RoleTenant}}
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		kind   auth.Kind
		state  session.State
		action auth.Action
		loc    string
	}{
		{"auth: signed out", auth.Authenticated, session.State{}, auth.Redirect, "/"},
		{"auth: tenant", auth.Authenticated, tenantState, auth.Render, ""},
		{"auth: loading", auth.Authenticated, session.State{Loading: true}, auth.Loading, ""},
		{"admin: signed out", auth.Admin, session.State{}, auth.Redirect, "/dashboard"},
		{"admin: tenant", auth.Admin, tenantState, auth.Redirect, "/dashboard"},
		{"admin: admin", auth.Admin, adminState, auth.Render, ""},
		{"admin: loading", auth.Admin, session.State{Loading: true}, auth.Loading, ""},
		{"guest: signed out", auth.Guest, session.State{}, auth.Render, ""},
		{"guest: signed in", auth.Guest, tenantState, auth.Redirect, "/dashboard"},
		{"guest: loading", auth.Guest, session.State{Loading: true}, auth.Loading, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := auth.Decide(tt.kind, tt.state)
			if out.Action != tt.action {
				t.Errorf("Action: got %v, want %v", out.Action, tt.action)
			}
			if out.Location != tt.loc {
				t.Errorf("Location: got %q, want %q", out.Location, tt.loc)
			}
		})
	}
}

func TestDecide_LoadingMessages(t *testing.T) {
	loading := session.State{Loading: true}
	if got := auth.Decide(auth.Authenticated, loading).Message; got != auth.MsgCheckingAuth {
		t.Errorf("authenticated loading message: %q", got)
	}
	if got := auth.Decide(auth.Admin, loading).Message; got != auth.MsgCheckingAdmin {
		t.Errorf("admin loading message: %q", got)
	}
}

func TestRequireSignedIn_NoUser_HTML_RedirectsHome(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(okHandler())

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %q", loc)
	}
}

func TestRequireSignedIn_NoUser_API_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(okHandler())

	req := httptest.NewRequest("GET", "/payments", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_NoUser_HTMX_ReturnsHXRedirect(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(okHandler())

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if hx := rec.Header().Get("HX-Redirect"); hx != "/" {
		t.Errorf("expected HX-Redirect to /, got %q", hx)
	}
}

func TestRequireSignedIn_WithUser_Allows(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(okHandler())

	req := auth.WithTestUser(httptest.NewRequest("GET", "/dashboard", nil),
		&auth.SessionUser{ID: "t1", Name: "Test Tenant", Role: models.RoleTenant})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestRequireSignedIn_Loading_Returns202(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(okHandler())

	req := auth.WithTestState(httptest.NewRequest("GET", "/dashboard", nil), session.State{Loading: true})
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("expected status %d, got %d", http.StatusAccepted, rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Errorf("expected Retry-After: 1, got %q", rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("Location") != "" {
		t.Error("loading state must not redirect")
	}
}

func TestRequireAdmin_Tenant_API_Returns403(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireAdmin(okHandler())

	req := auth.WithTestState(httptest.NewRequest("GET", "/admin/tenants", nil), tenantState)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestRequireAdmin_Tenant_HTML_RedirectsDashboard(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireAdmin(okHandler())

	req := auth.WithTestState(httptest.NewRequest("GET", "/admin/tenants", nil), tenantState)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Errorf("expected 303 to /dashboard, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRequireAdmin_Admin_Allows(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireAdmin(okHandler())

	req := auth.WithTestState(httptest.NewRequest("GET", "/admin/tenants", nil), adminState)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestRequireGuest_SignedIn_Redirects(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireGuest(okHandler())

	req := auth.WithTestState(httptest.NewRequest("GET", "/", nil), tenantState)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Errorf("expected 303 to /dashboard, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRequireGuest_HTMX_Returns200WithHXRedirect(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireGuest(okHandler())

	req := auth.WithTestState(httptest.NewRequest("GET", "/", nil), tenantState)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Header().Get("HX-Redirect") != "/dashboard" {
		t.Errorf("expected 200 with HX-Redirect, got %d %q", rec.Code, rec.Header().Get("HX-Redirect"))
	}
}

func TestRequireGuest_SignedOut_Allows(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireGuest(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

type staticProfiles map[string]*models.User

func (p staticProfiles) FetchProfile(_ context.Context, uid string) (*models.User, error) {
	if u, ok := p[uid]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func TestLoadSession_ResolvesCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	provider := authprovider.NewMemory()
	provider.AddUser("a1", "admin@example.com", "secret1")
	resolver := session.New(provider, staticProfiles{
		"a1": {ID: "a1", FirstName: "Ada", LastName: "Admin", Role: models.RoleAdmin, BuildingID: "B1"},
	}, zap.NewNop())
	resolver.Start(context.Background())
	defer resolver.Dispose()
	sm.Attach(provider, resolver)

	s, err := provider.SignIn(context.Background(), "admin@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	// Issue the cookie and replay it on a second request.
	issueRec := httptest.NewRecorder()
	if err := sm.Issue(issueRec, httptest.NewRequest("POST", "/", nil), s); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	req := httptest.NewRequest("GET", "/admin/tenants", nil)
	for _, c := range issueRec.Result().Cookies() {
		req.AddCookie(c)
	}

	var gotUser *auth.SessionUser
	handler := sm.LoadSession(sm.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = auth.CurrentUser(r)
		if auth.SessionToken(r) != s.ID {
			t.Errorf("SessionToken: got %q", auth.SessionToken(r))
		}
		w.WriteHeader(http.StatusOK)
	})))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotUser == nil || gotUser.BuildingID != "B1" || gotUser.Name != "Ada Admin" || !gotUser.IsAdmin() {
		t.Errorf("unexpected user: %+v", gotUser)
	}
}

func TestLoadSession_ExpiredTokenClearsCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	provider := authprovider.NewMemory()
	resolver := session.New(provider, staticProfiles{}, zap.NewNop())
	defer resolver.Dispose()
	sm.Attach(provider, resolver)

	issueRec := httptest.NewRecorder()
	_ = sm.Issue(issueRec, httptest.NewRequest("POST", "/", nil), authprovider.Session{ID: "stale"})
	req := httptest.NewRequest("GET", "/dashboard", nil)
	for _, c := range issueRec.Result().Cookies() {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	sm.LoadSession(sm.RequireSignedIn(okHandler())).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected session cookie to be cleared")
	}
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "x", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Error("expected error for empty session key")
	}
}
