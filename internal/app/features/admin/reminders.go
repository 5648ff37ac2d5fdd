// internal/app/features/admin/reminders.go
package admin

import (
	"fmt"
	"net/http"

	"github.com/condopay/condopay/internal/app/system/authz"
	"github.com/condopay/condopay/internal/app/system/timeouts"
	"github.com/condopay/condopay/internal/app/system/viewdata"
	"github.com/condopay/condopay/internal/domain/models"
	"go.uber.org/zap"
)

type remindersVM struct {
	Sent    int    `json:"sent"`
	Message string `json:"message"`
}

// HandleReminders handles POST /admin/reminders: one manual reminder per
// tenant that is overdue right now.
func (h *Handler) HandleReminders(w http.ResponseWriter, r *http.Request) {
	b, ok := h.building(w, r)
	if !ok {
		return
	}
	_, _, actorID, _ := authz.UserCtx(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "manual reminders")
	defer cancel()

	n, err := h.Reminders.Send(ctx, b, models.ReminderManual, actorID, h.Now())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: send reminders", err, "Failed to send reminders", "/admin/payments")
		return
	}

	h.AuditLog.RemindersSent(ctx, r, actorID, b, n)
	h.Log.Info("manual reminders sent", zap.String("building_id", b), zap.Int("count", n))

	viewdata.JSON(w, http.StatusOK, remindersVM{
		Sent:    n,
		Message: fmt.Sprintf("Sent %d reminder(s).", n),
	})
}
