// internal/app/system/tasks/reminders.go
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/condopay/condopay/internal/app/store/queries/paymentqueries"
	"github.com/condopay/condopay/internal/app/store/reminders"
	userstore "github.com/condopay/condopay/internal/app/store/users"
	"github.com/condopay/condopay/internal/app/system/auditlog"
	"github.com/condopay/condopay/internal/app/system/paystats"
	"github.com/condopay/condopay/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// OverdueReminderJobName identifies the daily reminder job.
const OverdueReminderJobName = "overdue-reminders"

// DefaultReminderSpec runs the reminder job at 00:05 every day.
const DefaultReminderSpec = "5 0 * * *"

// Reminders records overdue reminders for the tenants of a building.
type Reminders struct {
	db    *mongo.Database
	store *reminders.Store
	users *userstore.Store
	audit *auditlog.Logger
	loc   *time.Location
	log   *zap.Logger
}

// NewReminders builds a Reminders over db. audit may be nil.
func NewReminders(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Reminders {
	return &Reminders{
		db:    db,
		store: reminders.New(db),
		users: userstore.New(db),
		audit: audit,
		loc:   time.UTC,
		log:   logger,
	}
}

// InLocation sets the zone used for the reminder day and the month filter.
// nil keeps UTC.
func (r *Reminders) InLocation(loc *time.Location) *Reminders {
	if loc != nil {
		r.loc = loc
	}
	return r
}

// Send records one reminder per tenant of buildingID that is overdue at now
// and returns how many were written. Scheduled reminders are written at most
// once per tenant per calendar day in the reminders' location.
func (r *Reminders) Send(ctx context.Context, buildingID, channel, actor string, now time.Time) (int, error) {
	snap, err := paymentqueries.BuildingSnapshot(ctx, r.db, buildingID)
	if err != nil {
		return 0, err
	}
	res := paystats.Compute(snap.Tenants, snap.Payments, now, paystats.MonthOf(now, r.loc))
	day := now.In(r.loc).Format(reminders.DayLayout)

	sent := 0
	for _, o := range res.Overdue {
		ok, err := r.store.Record(ctx, models.Reminder{
			TenantID:    o.UID,
			TenantEmail: o.Email,
			BuildingID:  buildingID,
			Amount:      o.OverdueAmount,
			DaysOverdue: o.DaysOverdue,
			Channel:     channel,
			Day:         day,
			CreatedBy:   actor,
			CreatedAt:   now.UTC(),
		})
		if err != nil {
			return sent, fmt.Errorf("record reminder for %s: %w", o.UID, err)
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

// SendAll runs a scheduled Send for every building with tenants.
// A failing building is logged and skipped.
func (r *Reminders) SendAll(ctx context.Context, now time.Time) (int, error) {
	ids, err := r.users.BuildingIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list buildings: %w", err)
	}
	total := 0
	for _, id := range ids {
		n, err := r.Send(ctx, id, models.ReminderScheduled, "", now)
		total += n
		if err != nil {
			r.log.Error("scheduled reminders failed",
				zap.String("building_id", id), zap.Error(err))
			continue
		}
		if n > 0 {
			r.audit.RemindersScheduled(ctx, id, n)
		}
	}
	return total, nil
}

// Job returns the cron job that runs SendAll on spec.
func (r *Reminders) Job(spec string) Job {
	if spec == "" {
		spec = DefaultReminderSpec
	}
	return Job{
		Name: OverdueReminderJobName,
		Spec: spec,
		Run: func(ctx context.Context) error {
			n, err := r.SendAll(ctx, time.Now())
			if err != nil {
				return err
			}
			r.log.Info("overdue reminders scheduled", zap.Int("count", n))
			return nil
		},
	}
}
