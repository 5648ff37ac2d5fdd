package dashboard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/condopay/condopay/internal/app/features/dashboard"
	uierrors "github.com/condopay/condopay/internal/app/features/errors"
	"github.com/condopay/condopay/internal/app/system/auth"
	"github.com/condopay/condopay/internal/domain/models"
	"github.com/condopay/condopay/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*dashboard.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return dashboard.NewHandler(db, uierrors.NewErrorLogger(logger), logger), testutil.NewFixtures(t, db)
}

func asUser(r *http.Request, u models.User) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:         u.ID,
		Name:       u.FullName(),
		Email:      u.Email,
		Role:       u.Role,
		BuildingID: u.BuildingID,
		UnitNo:     u.UnitNo,
	})
}

func TestServeDashboard_Unauthenticated(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/dashboard", nil)
	rec := httptest.NewRecorder()

	handler.ServeDashboard(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/" {
		t.Errorf("Location: got %q, want %q", location, "/")
	}
}

func TestServeDashboard_AdminOverview(t *testing.T) {
	handler, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateAdmin(ctx, "admin@example.com", "B1")
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 6; i++ {
		fx.CreateTenantAt(ctx, "t"+string(rune('a'+i))+"@example.com", "B1", base.Add(time.Duration(i)*time.Minute))
	}
	fx.CreateTenant(ctx, "p@example.com", "B1", "9", models.StatusPending, 100)
	fx.CreateTenant(ctx, "i@example.com", "B1", "10", models.StatusInactive, 100)
	fx.CreateTenant(ctx, "other@example.com", "B2", "1", models.StatusActive, 100)

	rec := httptest.NewRecorder()
	handler.ServeDashboard(rec, asUser(httptest.NewRequest("GET", "/dashboard", nil), admin))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	var vm struct {
		Title            string `json:"title"`
		TotalTenants     int64  `json:"totalTenants"`
		ActiveTenants    int64  `json:"activeTenants"`
		PendingApprovals int64  `json:"pendingApprovals"`
		RecentTenants    []struct {
			Email       string `json:"email"`
			StatusLabel string `json:"statusLabel"`
		} `json:"recentTenants"`
	}
	testutil.DecodeJSON(t, rec, &vm)

	if vm.TotalTenants != 8 || vm.ActiveTenants != 6 || vm.PendingApprovals != 1 {
		t.Errorf("counts = %d/%d/%d, want 8/6/1", vm.TotalTenants, vm.ActiveTenants, vm.PendingApprovals)
	}
	if len(vm.RecentTenants) != 5 {
		t.Fatalf("recent tenants = %d, want 5", len(vm.RecentTenants))
	}
	for _, rt := range vm.RecentTenants {
		if rt.Email == "other@example.com" {
			t.Error("tenant from another building listed")
		}
	}
}

func TestServeDashboard_AdminWithoutBuilding(t *testing.T) {
	handler, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateAdmin(ctx, "admin@example.com", "")

	rec := httptest.NewRecorder()
	handler.ServeDashboard(rec, asUser(httptest.NewRequest("GET", "/dashboard", nil), admin))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var vm uierrors.ErrorVM
	testutil.DecodeJSON(t, rec, &vm)
	if vm.Error != "No building ID found for admin user" {
		t.Errorf("error = %q", vm.Error)
	}
}

func TestServeDashboard_TenantOverview(t *testing.T) {
	handler, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	handler.Now = func() time.Time { return now }

	tenant := fx.CreateTenant(ctx, "tess@example.com", "B1", "4A", "weird", 1200)
	fx.CreatePayment(ctx, tenant, models.PaymentCompleted, now.Add(-40*24*time.Hour))
	fx.CreatePayment(ctx, tenant, models.PaymentPending, now.Add(-24*time.Hour))

	rec := httptest.NewRecorder()
	handler.ServeDashboard(rec, asUser(httptest.NewRequest("GET", "/dashboard", nil), tenant))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	var vm struct {
		Profile     models.User `json:"profile"`
		StatusLabel string      `json:"statusLabel"`
		Standing    struct {
			Overdue     bool    `json:"overdue"`
			DaysOverdue int     `json:"daysOverdue"`
			AmountDue   float64 `json:"amountDue"`
		} `json:"standing"`
		RecentPayments []models.Payment `json:"recentPayments"`
	}
	testutil.DecodeJSON(t, rec, &vm)

	if vm.Profile.Email != "tess@example.com" {
		t.Errorf("profile email = %q", vm.Profile.Email)
	}
	if vm.StatusLabel != "Pending Approval" {
		t.Errorf("status label = %q, want Pending Approval", vm.StatusLabel)
	}
	if !vm.Standing.Overdue || vm.Standing.DaysOverdue != 40 || vm.Standing.AmountDue != 1200 {
		t.Errorf("standing = %+v", vm.Standing)
	}
	if len(vm.RecentPayments) != 2 || vm.RecentPayments[0].Status != models.PaymentPending {
		t.Errorf("recent payments = %+v", vm.RecentPayments)
	}
}

func TestServeDashboard_TenantWithoutProfile(t *testing.T) {
	handler, _ := newTestHandler(t)

	ghost := models.User{ID: "missing-uid", Email: "ghost@example.com", Role: models.RoleTenant}
	rec := httptest.NewRecorder()
	handler.ServeDashboard(rec, asUser(httptest.NewRequest("GET", "/dashboard", nil), ghost))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	handler, _ := newTestHandler(t)
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-0123456789", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	dashboard.Routes(handler, sm).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("got %d Location=%q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestStatusLabel(t *testing.T) {
	cases := map[string]string{
		models.StatusActive:   "Active",
		models.StatusPending:  "Pending Approval",
		models.StatusInactive: "Inactive",
		"":                    "Pending Approval",
		"archived":            "Pending Approval",
	}
	for in, want := range cases {
		if got := models.StatusLabel(in); got != want {
			t.Errorf("StatusLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
