package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/condopay/condopay/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateAdmin inserts an active admin assigned to buildingID.
func (f *Fixtures) CreateAdmin(ctx context.Context, email, buildingID string) models.User {
	f.t.Helper()
	return f.insertUser(ctx, models.User{
		Email:      email,
		UserName:   "admin." + uuid.NewString()[:8],
		FirstName:  "Ada",
		LastName:   "Admin",
		Role:       models.RoleAdmin,
		Status:     models.StatusActive,
		BuildingID: buildingID,
	})
}

// CreateTenant inserts a tenant with the given status and rent.
func (f *Fixtures) CreateTenant(ctx context.Context, email, buildingID, unitNo, status string, rent float64) models.User {
	f.t.Helper()
	return f.insertUser(ctx, models.User{
		Email:       email,
		UserName:    "tenant." + uuid.NewString()[:8],
		FirstName:   "Tess",
		LastName:    "Tenant",
		Role:        models.RoleTenant,
		Status:      status,
		BuildingID:  buildingID,
		UnitNo:      unitNo,
		MonthlyRent: rent,
	})
}

// CreateTenantAt is CreateTenant with an explicit creation time.
func (f *Fixtures) CreateTenantAt(ctx context.Context, email, buildingID string, createdAt time.Time) models.User {
	f.t.Helper()
	return f.insertUser(ctx, models.User{
		Email:      email,
		UserName:   "tenant." + uuid.NewString()[:8],
		FirstName:  "Tess",
		LastName:   "Tenant",
		Role:       models.RoleTenant,
		Status:     models.StatusActive,
		BuildingID: buildingID,
		CreatedAt:  createdAt,
	})
}

func (f *Fixtures) insertUser(ctx context.Context, u models.User) models.User {
	f.t.Helper()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.UserNameCI = text.Fold(u.UserName)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.UpdatedAt = u.CreatedAt
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreatePayment inserts a payment for tenant with the given status and timestamp.
func (f *Fixtures) CreatePayment(ctx context.Context, tenant models.User, status string, ts time.Time) models.Payment {
	f.t.Helper()
	p := models.Payment{
		ID:          primitive.NewObjectID(),
		TenantID:    tenant.ID,
		TenantName:  tenant.FullName(),
		TenantEmail: tenant.Email,
		BuildingID:  tenant.BuildingID,
		UnitNo:      tenant.UnitNo,
		MonthlyRent: tenant.MonthlyRent,
		Status:      status,
		Timestamp:   ts,
	}
	if _, err := f.db.Collection("payments").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test payment: %v", err)
	}
	return p
}
