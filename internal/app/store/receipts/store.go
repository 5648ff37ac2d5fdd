// internal/app/store/receipts/store.go
package receipts

import (
	"context"
	"errors"
	"time"

	"github.com/condopay/condopay/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no receipt matches.
	ErrNotFound = errors.New("receipt not found")
	// ErrDuplicate is returned when a payment already has a receipt.
	ErrDuplicate = errors.New("payment already has a receipt")
)

// Store manages payment receipts.
type Store struct {
	c *mongo.Collection
}

// New creates a receipts Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("receipts")}
}

// EnsureIndexes makes receipts unique per payment.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "payment_id", Value: 1}},
			Options: options.Index().SetName("uniq_receipts_payment").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "issued_at", Value: -1}},
			Options: options.Index().SetName("idx_receipts_tenant"),
		},
	})
	return err
}

// Issue stores a receipt for a completed payment.
func (s *Store) Issue(ctx context.Context, p models.Payment, issuedBy string) (models.Receipt, error) {
	rc := models.Receipt{
		ID:            primitive.NewObjectID(),
		PaymentID:     p.ID,
		TenantID:      p.TenantID,
		BuildingID:    p.BuildingID,
		Amount:        p.MonthlyRent,
		TransactionID: p.TransactionID,
		IssuedBy:      issuedBy,
		IssuedAt:      time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, rc); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Receipt{}, ErrDuplicate
		}
		return models.Receipt{}, err
	}
	return rc, nil
}

// GetByPayment returns the receipt for paymentID.
func (s *Store) GetByPayment(ctx context.Context, paymentID primitive.ObjectID) (models.Receipt, error) {
	var rc models.Receipt
	if err := s.c.FindOne(ctx, bson.M{"payment_id": paymentID}).Decode(&rc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Receipt{}, ErrNotFound
		}
		return models.Receipt{}, err
	}
	return rc, nil
}
