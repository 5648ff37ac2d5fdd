package auditlog_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/condopay/condopay/internal/app/features/auditlog"
	uierrors "github.com/condopay/condopay/internal/app/features/errors"
	"github.com/condopay/condopay/internal/app/store/audit"
	"github.com/condopay/condopay/internal/app/system/auth"
	"github.com/condopay/condopay/internal/testutil"
	"go.uber.org/zap"
)

type listResponse struct {
	Items []struct {
		EventType  string `json:"eventType"`
		ActorName  string `json:"actorName"`
		TargetName string `json:"targetName"`
	} `json:"items"`
	EventTypes []string `json:"eventTypes"`
	Total      int64    `json:"total"`
	TotalPages int      `json:"totalPages"`
}

func newTestHandler(t *testing.T) (*auditlog.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return auditlog.NewHandler(db, uierrors.NewErrorLogger(logger), logger), testutil.NewFixtures(t, db)
}

func adminRequest(target, uid, buildingID string) *http.Request {
	return auth.WithTestUser(httptest.NewRequest("GET", target, nil), &auth.SessionUser{
		ID:         uid,
		Name:       "Ada Admin",
		Role:       "admin",
		BuildingID: buildingID,
	})
}

func TestServeList_ScopedToBuilding(t *testing.T) {
	handler, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateAdmin(ctx, "admin@example.com", "B1")
	tenant := fx.CreateTenant(ctx, "tess@example.com", "B1", "1", "active", 900)

	store := audit.New(fx.DB())
	for _, e := range []audit.Event{
		{BuildingID: "B1", Category: audit.CategoryAdmin, EventType: audit.EventTenantStatusChanged, ActorID: admin.ID, UserID: tenant.ID, Success: true},
		{BuildingID: "B1", Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: tenant.ID, Success: true},
		{BuildingID: "B2", Category: audit.CategoryAdmin, EventType: audit.EventTenantRemoved, Success: true},
	} {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeList(rec, adminRequest("/admin/activity", admin.ID, "B1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}

	var vm listResponse
	testutil.DecodeJSON(t, rec, &vm)
	if vm.Total != 2 || len(vm.Items) != 2 {
		t.Fatalf("got %d items (total %d), want 2", len(vm.Items), vm.Total)
	}
	for _, it := range vm.Items {
		if it.EventType == audit.EventTenantStatusChanged {
			if it.ActorName != "Ada Admin" || it.TargetName != "Tess Tenant" {
				t.Errorf("names not resolved: actor=%q target=%q", it.ActorName, it.TargetName)
			}
		}
	}
}

func TestServeList_CategoryFilter(t *testing.T) {
	handler, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := audit.New(fx.DB())
	_ = store.Log(ctx, audit.Event{BuildingID: "B1", Category: audit.CategoryAuth, EventType: audit.EventLogout, Success: true})
	_ = store.Log(ctx, audit.Event{BuildingID: "B1", Category: audit.CategorySystem, EventType: audit.EventRemindersScheduled, Success: true})

	rec := httptest.NewRecorder()
	handler.ServeList(rec, adminRequest("/admin/activity?category=system", "admin-1", "B1"))

	var vm listResponse
	testutil.DecodeJSON(t, rec, &vm)
	if len(vm.Items) != 1 || vm.Items[0].EventType != audit.EventRemindersScheduled {
		t.Errorf("items = %+v", vm.Items)
	}
	if len(vm.EventTypes) != 1 {
		t.Errorf("event types = %v", vm.EventTypes)
	}
}

func TestServeList_DateRange(t *testing.T) {
	handler, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := audit.New(fx.DB())
	day := time.Date(2025, 5, 10, 23, 30, 0, 0, time.UTC)
	_ = store.Log(ctx, audit.Event{BuildingID: "B1", Category: audit.CategoryAuth, EventType: audit.EventLogout, Timestamp: day})
	_ = store.Log(ctx, audit.Event{BuildingID: "B1", Category: audit.CategoryAuth, EventType: audit.EventLogout, Timestamp: day.Add(time.Hour)})

	rec := httptest.NewRecorder()
	handler.ServeList(rec, adminRequest("/admin/activity?start_date=2025-05-10&end_date=2025-05-10", "admin-1", "B1"))

	var vm listResponse
	testutil.DecodeJSON(t, rec, &vm)
	if vm.Total != 1 {
		t.Errorf("total = %d, want 1", vm.Total)
	}
}

func TestServeList_AdminWithoutBuilding(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeList(rec, adminRequest("/admin/activity", "admin-1", ""))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}
