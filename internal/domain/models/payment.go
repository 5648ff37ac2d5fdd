// internal/domain/models/payment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment statuses.
const (
	PaymentCompleted = "completed"
	PaymentPending   = "pending"
	PaymentFailed    = "failed"
	PaymentDisputed  = "disputed"
)

// Payment is a single rent payment event.
//
// Tenant name, email and unit are copied from the profile when the payment
// is recorded so exports keep working after a tenant is removed.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID      string             `bson:"tenant_id" json:"tenantId"`
	TenantName    string             `bson:"tenant_name" json:"tenantName"`
	TenantEmail   string             `bson:"tenant_email" json:"tenantEmail"`
	BuildingID    string             `bson:"building_id" json:"buildingId"`
	UnitNo        string             `bson:"unit_no" json:"unitNo"`
	MonthlyRent   float64            `bson:"monthly_rent" json:"monthlyRent"`
	Status        string             `bson:"status" json:"status"`
	Timestamp     time.Time          `bson:"timestamp" json:"timestamp"`
	PaymentDate   *time.Time         `bson:"payment_date,omitempty" json:"paymentDate,omitempty"`
	TransactionID string             `bson:"transaction_id,omitempty" json:"transactionId,omitempty"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// IsValidPaymentStatus reports whether s is a known payment status.
func IsValidPaymentStatus(s string) bool {
	switch s {
	case PaymentCompleted, PaymentPending, PaymentFailed, PaymentDisputed:
		return true
	}
	return false
}
