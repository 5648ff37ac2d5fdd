// internal/app/features/payments/handler.go
package payments

import (
	"time"

	uierrors "github.com/condopay/condopay/internal/app/features/errors"
	paymentstore "github.com/condopay/condopay/internal/app/store/payments"
	"github.com/condopay/condopay/internal/app/store/reminders"
	userstore "github.com/condopay/condopay/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the signed-in tenant's own payments.
type Handler struct {
	Users     *userstore.Store
	Payments  *paymentstore.Store
	Reminders *reminders.Store
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger

	Now func() time.Time
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:     userstore.New(db),
		Payments:  paymentstore.New(db),
		Reminders: reminders.New(db),
		ErrLog:    errLog,
		Log:       logger,
		Now:       time.Now,
	}
}
