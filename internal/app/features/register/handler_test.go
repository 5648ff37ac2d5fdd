package register_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	uierrors "github.com/condopay/condopay/internal/app/features/errors"
	"github.com/condopay/condopay/internal/app/features/register"
	userstore "github.com/condopay/condopay/internal/app/store/users"
	"github.com/condopay/condopay/internal/app/system/auth"
	"github.com/condopay/condopay/internal/app/system/authprovider"
	"github.com/condopay/condopay/internal/app/system/viewdata"
	"github.com/condopay/condopay/internal/domain/models"
	"github.com/condopay/condopay/internal/testutil"
	"github.com/condopay/condopay/internal/testutil/authtest"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type env struct {
	h     *register.Handler
	stack *authtest.Stack
	db    *mongo.Database
}

func newEnv(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	stack := authtest.New(t, userstore.NewFetcher(db))
	logger := zap.NewNop()
	h := register.NewHandler(db, stack.Provider, stack.SessionMgr,
		register.NewDrafts("register-test-secret-0123456789abcdef", false),
		uierrors.NewErrorLogger(logger), nil, logger)
	return env{h: h, stack: stack, db: db}
}

func accountForm() url.Values {
	return url.Values{
		"firstName":   {"Jane"},
		"lastName":    {"Doe"},
		"phoneNumber": {"555-0100"},
		"email":       {"Jane@Example.com"},
		"password":    {"secret123"},
	}
}

func rentalForm(rent string) url.Values {
	return url.Values{
		"buildingId":     {"B1"},
		"unitNo":         {"4A"},
		"leaseStartDate": {"2025-01-01"},
		"leaseEndDate":   {"2025-12-31"},
		"monthlyRent":    {rent},
	}
}

func postAccount(t *testing.T, e env, form url.Values) (*httptest.ResponseRecorder, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.h.HandleAccount(rec, testutil.NewFormRequest(http.MethodPost, register.AccountPath, form))
	if rec.Code != http.StatusOK {
		return rec, nil
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == register.DraftCookieName {
			return rec, c
		}
	}
	t.Fatal("draft cookie not set")
	return rec, nil
}

func TestHandleAccount_StoresDraftAndUserName(t *testing.T) {
	e := newEnv(t)

	rec, cookie := postAccount(t, e, accountForm())
	if rec.Code != http.StatusOK || cookie == nil {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	var vm struct {
		Redirect string `json:"redirect"`
		UserName string `json:"userName"`
	}
	testutil.DecodeJSON(t, rec, &vm)
	if vm.Redirect != register.RentalPath || vm.UserName != "jane.doe" {
		t.Errorf("got %+v", vm)
	}
}

func TestHandleAccount_UserNameSuffix(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	users := userstore.New(e.db)
	for _, name := range []string{"jane.doe", "jane.doe1"} {
		if _, err := users.Create(ctx, models.User{ID: name, Email: name + "@x.co", UserName: name}); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	rec, _ := postAccount(t, e, accountForm())
	var vm struct {
		UserName string `json:"userName"`
	}
	testutil.DecodeJSON(t, rec, &vm)
	if vm.UserName != "jane.doe2" {
		t.Errorf("userName = %q, want jane.doe2", vm.UserName)
	}
}

func TestHandleAccount_RequiresAllFields(t *testing.T) {
	e := newEnv(t)

	form := accountForm()
	form.Del("phoneNumber")
	rec, _ := postAccount(t, e, form)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var vm viewdata.FormErrorVM
	testutil.DecodeJSON(t, rec, &vm)
	if vm.Error != "Phone number is required." {
		t.Errorf("error = %q", vm.Error)
	}
}

func TestServeRental_WithoutDraftRedirects(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodGet, register.RentalPath, nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	e.h.ServeRental(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != register.AccountPath {
		t.Errorf("got %d Location=%q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestServeRental_ShowsDraftWithoutPassword(t *testing.T) {
	e := newEnv(t)
	_, cookie := postAccount(t, e, accountForm())

	req := httptest.NewRequest(http.MethodGet, register.RentalPath, nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.h.ServeRental(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	testutil.DecodeJSON(t, rec, &body)
	if body["email"] != "jane@example.com" {
		t.Errorf("email = %v", body["email"])
	}
	if _, ok := body["password"]; ok {
		t.Error("password must not be returned")
	}
}

func TestHandleRental_CompletesRegistration(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, draft := postAccount(t, e, accountForm())

	req := testutil.NewFormRequest(http.MethodPost, register.RentalPath, rentalForm("1500"))
	req.AddCookie(draft)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	e.h.HandleRental(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("got %d Location=%q body=%s", rec.Code, rec.Header().Get("Location"), rec.Body.String())
	}

	u, err := userstore.New(e.db).GetByEmail(ctx, "jane@example.com")
	if err != nil {
		t.Fatalf("profile not created: %v", err)
	}
	if u.Role != models.RoleTenant || u.Status != models.StatusActive {
		t.Errorf("role/status = %s/%s", u.Role, u.Status)
	}
	if u.MonthlyRent != 1500 || u.UnitNo != "4A" || u.BuildingID != "B1" || u.UserName != "jane.doe" {
		t.Errorf("unexpected profile: %+v", u)
	}

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case register.DraftCookieName:
			if c.MaxAge >= 0 {
				t.Error("draft cookie should be cleared")
			}
		case authtest.CookieName:
			session = c
		}
	}
	if session == nil {
		t.Fatal("expected session cookie")
	}

	next := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	next.AddCookie(session)
	var got *auth.SessionUser
	e.stack.Serve(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), next)
	if got == nil || got.Role != models.RoleTenant || got.BuildingID != "B1" {
		t.Errorf("session user = %+v", got)
	}
}

func TestHandleRental_NonNumericRentIsZero(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, draft := postAccount(t, e, accountForm())
	req := testutil.NewFormRequest(http.MethodPost, register.RentalPath, rentalForm("lots"))
	req.AddCookie(draft)
	rec := httptest.NewRecorder()
	e.h.HandleRental(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	u, err := userstore.New(e.db).GetByEmail(ctx, "jane@example.com")
	if err != nil || u.MonthlyRent != 0 {
		t.Errorf("profile = %+v, %v", u, err)
	}
}

func TestHandleRental_ProviderErrors(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(e env)
		password string
		status   int
		msg      string
	}{
		{
			name:     "email in use",
			prepare:  func(e env) { e.stack.Provider.AddUser("existing", "jane@example.com", "whatever1") },
			password: "secret123",
			status:   http.StatusConflict,
			msg:      "An account already exists with this email address",
		},
		{
			name:     "weak password",
			prepare:  func(env) {},
			password: "abc",
			status:   http.StatusBadRequest,
			msg:      "Password is too weak",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			tt.prepare(e)

			form := accountForm()
			form.Set("password", tt.password)
			_, draft := postAccount(t, e, form)

			req := testutil.NewFormRequest(http.MethodPost, register.RentalPath, rentalForm("1000"))
			req.AddCookie(draft)
			rec := httptest.NewRecorder()
			e.h.HandleRental(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			var vm viewdata.FormErrorVM
			testutil.DecodeJSON(t, rec, &vm)
			if vm.Error != tt.msg {
				t.Errorf("error = %q, want %q", vm.Error, tt.msg)
			}
		})
	}
}

func TestHandleRental_ProfileFailureReleasesEmail(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// A validator no tenant profile satisfies makes the insert fail.
	err := e.db.CreateCollection(ctx, "users",
		options.CreateCollection().SetValidator(bson.M{"role": "nobody"}))
	if err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}

	_, draft := postAccount(t, e, accountForm())
	post := func() *httptest.ResponseRecorder {
		req := testutil.NewFormRequest(http.MethodPost, register.RentalPath, rentalForm("1000"))
		req.AddCookie(draft)
		rec := httptest.NewRecorder()
		e.h.HandleRental(rec, req)
		return rec
	}

	if rec := post(); rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500; body %s", rec.Code, rec.Body.String())
	}
	if _, err := e.stack.Provider.SignIn(ctx, "jane@example.com", "secret123"); !errors.Is(err, authprovider.ErrInvalidCredential) {
		t.Fatalf("identity should be removed, SignIn err = %v", err)
	}

	if err := e.db.Collection("users").Drop(ctx); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if rec := post(); rec.Code != http.StatusOK {
		t.Fatalf("retry status = %d; body %s", rec.Code, rec.Body.String())
	}
	if _, err := userstore.New(e.db).GetByEmail(ctx, "jane@example.com"); err != nil {
		t.Errorf("profile not created on retry: %v", err)
	}
}

func TestHandleRental_LeaseOrder(t *testing.T) {
	e := newEnv(t)
	_, draft := postAccount(t, e, accountForm())

	form := rentalForm("1000")
	form.Set("leaseEndDate", "2024-12-31")
	req := testutil.NewFormRequest(http.MethodPost, register.RentalPath, form)
	req.AddCookie(draft)
	rec := httptest.NewRecorder()
	e.h.HandleRental(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
