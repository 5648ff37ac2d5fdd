// internal/app/store/payments/store.go
package paymentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/condopay/condopay/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no payment matches.
	ErrNotFound = errors.New("payment not found")
	// ErrAlreadyCompleted is returned when marking a completed payment paid.
	ErrAlreadyCompleted = errors.New("payment is already completed")

	errBadStatus = errors.New(`status must be "completed"|"pending"|"failed"|"disputed"`)
	errNoTenant  = errors.New("payment must reference a tenant")
)

// Store manages rent payment records.
type Store struct {
	c *mongo.Collection
}

// New creates a payments Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("payments")}
}

// EnsureIndexes creates the building and tenant history indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "building_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_payments_building_ts"),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_payments_tenant_ts"),
		},
	})
	return err
}

// Create records a payment. Status defaults to pending and Timestamp to now.
func (s *Store) Create(ctx context.Context, p models.Payment) (models.Payment, error) {
	if p.TenantID == "" {
		return models.Payment{}, errNoTenant
	}
	if p.Status == "" {
		p.Status = models.PaymentPending
	}
	if !models.IsValidPaymentStatus(p.Status) {
		return models.Payment{}, errBadStatus
	}
	if p.MonthlyRent < 0 {
		p.MonthlyRent = 0
	}
	p.ID = primitive.NewObjectID()
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Payment{}, fmt.Errorf("insert payment: %w", err)
	}
	return p, nil
}

// GetByID loads a payment by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Payment, error) {
	var p models.Payment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Payment{}, ErrNotFound
		}
		return models.Payment{}, err
	}
	return p, nil
}

// ListByBuilding returns every payment for buildingID, newest first.
func (s *Store) ListByBuilding(ctx context.Context, buildingID string) ([]models.Payment, error) {
	return s.list(ctx, bson.M{"building_id": buildingID})
}

// ListByTenant returns every payment for tenantID, newest first.
func (s *Store) ListByTenant(ctx context.Context, tenantID string) ([]models.Payment, error) {
	return s.list(ctx, bson.M{"tenant_id": tenantID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Payment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkPaid sets a payment in buildingID to completed with the given payment
// date and transaction id, and returns the updated document.
func (s *Store) MarkPaid(ctx context.Context, buildingID string, id primitive.ObjectID, paidAt time.Time, transactionID string) (models.Payment, error) {
	filter := bson.M{
		"_id":         id,
		"building_id": buildingID,
		"status":      bson.M{"$ne": models.PaymentCompleted},
	}
	update := bson.M{"$set": bson.M{
		"status":         models.PaymentCompleted,
		"payment_date":   paidAt,
		"transaction_id": transactionID,
	}}

	var p models.Payment
	err := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if existing, gerr := s.GetByID(ctx, id); gerr == nil && existing.BuildingID == buildingID {
			return models.Payment{}, ErrAlreadyCompleted
		}
		return models.Payment{}, ErrNotFound
	}
	if err != nil {
		return models.Payment{}, err
	}
	return p, nil
}

// SetAmount replaces the amount on a payment in buildingID.
func (s *Store) SetAmount(ctx context.Context, buildingID string, id primitive.ObjectID, amount float64, notes string) error {
	set := bson.M{"monthly_rent": amount}
	if notes != "" {
		set["notes"] = notes
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "building_id": buildingID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
