// internal/app/features/admin/handler.go
package admin

import (
	"net/http"
	"time"

	uierrors "github.com/condopay/condopay/internal/app/features/errors"
	"github.com/condopay/condopay/internal/app/store/discounts"
	paymentstore "github.com/condopay/condopay/internal/app/store/payments"
	"github.com/condopay/condopay/internal/app/store/receipts"
	userstore "github.com/condopay/condopay/internal/app/store/users"
	"github.com/condopay/condopay/internal/app/system/auditlog"
	"github.com/condopay/condopay/internal/app/system/authprovider"
	"github.com/condopay/condopay/internal/app/system/authz"
	"github.com/condopay/condopay/internal/app/system/tasks"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin pages of one building. Every operation is scoped
// to the signed-in admin's building.
type Handler struct {
	DB        *mongo.Database
	Client    *mongo.Client
	Users     *userstore.Store
	Payments  *paymentstore.Store
	Receipts  *receipts.Store
	Discounts *discounts.Store
	Reminders *tasks.Reminders
	Provider  authprovider.Provider
	ErrLog    *uierrors.ErrorLogger
	AuditLog  *auditlog.Logger
	Log       *zap.Logger

	// Location is used for the month filter and export dates.
	Location *time.Location
	Now      func() time.Time
}

func NewHandler(db *mongo.Database, provider authprovider.Provider, reminders *tasks.Reminders, loc *time.Location, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		DB:        db,
		Client:    db.Client(),
		Users:     userstore.New(db),
		Payments:  paymentstore.New(db),
		Receipts:  receipts.New(db),
		Discounts: discounts.New(db),
		Reminders: reminders,
		Provider:  provider,
		ErrLog:    errLog,
		AuditLog:  audit,
		Log:       logger,
		Location:  loc,
		Now:       time.Now,
	}
}

// ServeIndex redirects /admin to the dashboard, which shows the admin
// overview.
func (h *Handler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// building returns the admin's building, or answers 422 and returns false.
func (h *Handler) building(w http.ResponseWriter, r *http.Request) (string, bool) {
	b, err := authz.AdminBuilding(r)
	if err != nil {
		h.ErrLog.LogUnprocessable(w, r, "admin: no building assignment", err, authz.ErrNoBuilding.Error(), "/dashboard")
		return "", false
	}
	return b, true
}
