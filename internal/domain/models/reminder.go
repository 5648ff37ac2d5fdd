// internal/domain/models/reminder.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reminder channels.
const (
	ReminderManual    = "manual"
	ReminderScheduled = "scheduled"
)

// Reminder is an overdue notice sent to a tenant.
// Day is the calendar day (YYYY-MM-DD) the reminder belongs to, in the
// building time zone.
type Reminder struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID    string             `bson:"tenant_id" json:"tenantId"`
	TenantEmail string             `bson:"tenant_email" json:"tenantEmail"`
	BuildingID  string             `bson:"building_id" json:"buildingId"`
	Amount      float64            `bson:"amount" json:"amount"`
	DaysOverdue int                `bson:"days_overdue" json:"daysOverdue"`
	Channel     string             `bson:"channel" json:"channel"`
	Day         string             `bson:"day" json:"day"`
	CreatedBy   string             `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
