// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"
	"time"

	uierrors "github.com/condopay/condopay/internal/app/features/errors"
	paymentstore "github.com/condopay/condopay/internal/app/store/payments"
	userstore "github.com/condopay/condopay/internal/app/store/users"
	"github.com/condopay/condopay/internal/app/system/authz"
	"github.com/condopay/condopay/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// recentTenantsLimit is how many new tenants the admin overview lists.
const recentTenantsLimit = 5

type Handler struct {
	DB       *mongo.Database
	Users    *userstore.Store
	Payments *paymentstore.Store
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger

	// Now is the evaluation time for the tenant standing.
	Now func() time.Time
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Users:    userstore.New(db),
		Payments: paymentstore.New(db),
		ErrLog:   errLog,
		Log:      logger,
		Now:      time.Now,
	}
}

// ServeDashboard picks the overview for the signed-in user's role.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	role, _, _, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if role == models.RoleAdmin {
		h.ServeAdmin(w, r)
		return
	}
	h.ServeTenant(w, r)
}
