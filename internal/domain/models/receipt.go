// internal/domain/models/receipt.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Receipt is issued when an admin marks a payment paid.
type Receipt struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PaymentID     primitive.ObjectID `bson:"payment_id" json:"paymentId"`
	TenantID      string             `bson:"tenant_id" json:"tenantId"`
	BuildingID    string             `bson:"building_id" json:"buildingId"`
	Amount        float64            `bson:"amount" json:"amount"`
	TransactionID string             `bson:"transaction_id" json:"transactionId"`
	IssuedBy      string             `bson:"issued_by" json:"issuedBy"`
	IssuedAt      time.Time          `bson:"issued_at" json:"issuedAt"`
}
