// internal/domain/models/discount.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Discount records a reduction an admin applied to a payment.
type Discount struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PaymentID      primitive.ObjectID `bson:"payment_id" json:"paymentId"`
	TenantID       string             `bson:"tenant_id" json:"tenantId"`
	BuildingID     string             `bson:"building_id" json:"buildingId"`
	Amount         float64            `bson:"amount" json:"amount"`
	OriginalAmount float64            `bson:"original_amount" json:"originalAmount"`
	Reason         string             `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedBy      string             `bson:"created_by" json:"createdBy"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
}
