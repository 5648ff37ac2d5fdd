// internal/app/store/discounts/store.go
package discounts

import (
	"context"
	"time"

	"github.com/condopay/condopay/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages discount records.
type Store struct {
	c *mongo.Collection
}

// New creates a discounts Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("discounts")}
}

// EnsureIndexes creates the per-payment and per-building indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "payment_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_discounts_payment"),
		},
		{
			Keys:    bson.D{{Key: "building_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_discounts_building"),
		},
	})
	return err
}

// Create records d.
func (s *Store) Create(ctx context.Context, d models.Discount) (models.Discount, error) {
	d.ID = primitive.NewObjectID()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Discount{}, err
	}
	return d, nil
}

// ListByPayment returns the discounts applied to paymentID, newest first.
func (s *Store) ListByPayment(ctx context.Context, paymentID primitive.ObjectID) ([]models.Discount, error) {
	cur, err := s.c.Find(ctx, bson.M{"payment_id": paymentID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Discount{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
