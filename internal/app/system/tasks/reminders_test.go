package tasks_test

import (
	"testing"
	"time"

	"github.com/condopay/condopay/internal/app/store/reminders"
	"github.com/condopay/condopay/internal/app/system/tasks"
	"github.com/condopay/condopay/internal/domain/models"
	"github.com/condopay/condopay/internal/testutil"
	"go.uber.org/zap"
)

func TestReminders_Send_OnlyOverdueTenants(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	fx := testutil.NewFixtures(t, db)
	late := fx.CreateTenant(ctx, "late@x.co", "B1", "1A", models.StatusActive, 1200)
	paid := fx.CreateTenant(ctx, "paid@x.co", "B1", "1B", models.StatusActive, 900)
	fx.CreatePayment(ctx, late, models.PaymentCompleted, now.Add(-45*24*time.Hour))
	fx.CreatePayment(ctx, paid, models.PaymentCompleted, now.Add(-3*24*time.Hour))

	r := tasks.NewReminders(db, nil, zap.NewNop())
	n, err := r.Send(ctx, "B1", models.ReminderManual, "admin-1", now)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 reminder, got %d", n)
	}

	list, err := reminders.New(db).ListByTenant(ctx, late.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByTenant = %v, %v", list, err)
	}
	if list[0].Amount != 1200 || list[0].DaysOverdue != 45 || list[0].CreatedBy != "admin-1" {
		t.Errorf("unexpected reminder: %+v", list[0])
	}
}

func TestReminders_SendAll_ScheduledOncePerDay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := reminders.New(db).EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	fx := testutil.NewFixtures(t, db)
	fx.CreateTenant(ctx, "a@x.co", "B1", "1A", models.StatusActive, 1000)
	fx.CreateTenant(ctx, "b@x.co", "B2", "2A", models.StatusActive, 800)

	r := tasks.NewReminders(db, nil, zap.NewNop())
	now := time.Now().UTC()

	n, err := r.SendAll(ctx, now)
	if err != nil || n != 2 {
		t.Fatalf("first SendAll = %d, %v; want 2", n, err)
	}
	n, err = r.SendAll(ctx, now.Add(time.Minute))
	if err != nil || n != 0 {
		t.Fatalf("second SendAll = %d, %v; want 0", n, err)
	}
}

func TestReminders_Send_DayInLocation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := reminders.New(db).EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	fx := testutil.NewFixtures(t, db)
	late := fx.CreateTenant(ctx, "late@x.co", "B1", "1A", models.StatusActive, 1000)
	fx.CreateTenant(ctx, "moved@x.co", "B1", "1B", models.StatusInactive, 900)
	fx.CreateTenant(ctx, "new@x.co", "B1", "1C", models.StatusPending, 800)

	// 20:00 UTC is already the next morning nine hours east.
	loc := time.FixedZone("UTC+9", 9*60*60)
	now := time.Date(2025, 6, 10, 20, 0, 0, 0, time.UTC)
	r := tasks.NewReminders(db, nil, zap.NewNop()).InLocation(loc)

	n, err := r.Send(ctx, "B1", models.ReminderScheduled, "", now)
	if err != nil || n != 1 {
		t.Fatalf("Send = %d, %v; want 1", n, err)
	}
	list, err := reminders.New(db).ListByTenant(ctx, late.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByTenant = %v, %v", list, err)
	}
	if list[0].Day != "2025-06-11" {
		t.Errorf("Day = %q, want 2025-06-11", list[0].Day)
	}

	// Still the same local day five hours later, so nothing new is written.
	n, err = r.Send(ctx, "B1", models.ReminderScheduled, "", now.Add(5*time.Hour))
	if err != nil || n != 0 {
		t.Fatalf("second Send = %d, %v; want 0", n, err)
	}
	// Local midnight has passed by 15:00 UTC.
	n, err = r.Send(ctx, "B1", models.ReminderScheduled, "", now.Add(19*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("next-day Send = %d, %v; want 1", n, err)
	}
}

func TestReminders_Job_Defaults(t *testing.T) {
	j := (&tasks.Reminders{}).Job("")
	if j.Name != tasks.OverdueReminderJobName || j.Spec != tasks.DefaultReminderSpec {
		t.Errorf("job = %q %q", j.Name, j.Spec)
	}
}
