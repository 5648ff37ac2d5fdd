// internal/app/store/reminders/store.go
package reminders

import (
	"context"
	"time"

	"github.com/condopay/condopay/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DayLayout is the format of Reminder.Day.
const DayLayout = "2006-01-02"

// Store manages overdue reminders.
type Store struct {
	c *mongo.Collection
}

// New creates a reminders Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reminders")}
}

// EnsureIndexes limits scheduled reminders to one per tenant per day.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().
				SetName("uniq_reminders_scheduled_tenant_day").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"channel": models.ReminderScheduled}),
		},
		{
			Keys:    bson.D{{Key: "building_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_reminders_building"),
		},
	})
	return err
}

// Record stores a reminder. Day is derived from CreatedAt in UTC when empty.
// For scheduled reminders a second record for the same tenant and day is
// ignored; the returned bool reports whether a new reminder was written.
func (s *Store) Record(ctx context.Context, r models.Reminder) (bool, error) {
	r.ID = primitive.NewObjectID()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.Day == "" {
		r.Day = r.CreatedAt.UTC().Format(DayLayout)
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListByBuilding returns reminders for buildingID, newest first, up to limit
// (0 means no limit).
func (s *Store) ListByBuilding(ctx context.Context, buildingID string, limit int64) ([]models.Reminder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"building_id": buildingID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Reminder{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByTenant returns reminders sent to tenantID, newest first.
func (s *Store) ListByTenant(ctx context.Context, tenantID string) ([]models.Reminder, error) {
	cur, err := s.c.Find(ctx, bson.M{"tenant_id": tenantID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Reminder{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
