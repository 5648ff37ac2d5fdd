// internal/domain/models/user.go
package models

import (
	"time"
)

// Roles and statuses stored on a user profile.
const (
	RoleAdmin  = "admin"
	RoleTenant = "tenant"

	StatusActive   = "active"
	StatusPending  = "pending"
	StatusInactive = "inactive"
)

// User is the profile document for admins and tenants.
//
// ID is the UID issued by the auth provider, so the profile and the
// identity share a key. MonthlyRent decodes to 0 when the field is missing.
type User struct {
	ID          string  `bson:"_id" json:"uid"`
	Email       string  `bson:"email" json:"email"`
	UserName    string  `bson:"user_name" json:"userName"`
	UserNameCI  string  `bson:"user_name_ci" json:"-"` // folded for uniqueness checks
	FirstName   string  `bson:"first_name" json:"firstName"`
	LastName    string  `bson:"last_name" json:"lastName"`
	PhoneNumber string  `bson:"phone_number,omitempty" json:"phoneNumber,omitempty"`
	Role        string  `bson:"role" json:"role"`     // admin | tenant
	Status      string  `bson:"status" json:"status"` // active | pending | inactive
	BuildingID  string  `bson:"building_id,omitempty" json:"buildingId,omitempty"`
	UnitNo      string  `bson:"unit_no,omitempty" json:"unitNo,omitempty"`
	MonthlyRent float64 `bson:"monthly_rent,omitempty" json:"monthlyRent"`

	// Lease dates are kept as YYYY-MM-DD strings, the way they are entered.
	LeaseStartDate string `bson:"lease_start_date,omitempty" json:"leaseStartDate,omitempty"`
	LeaseEndDate   string `bson:"lease_end_date,omitempty" json:"leaseEndDate,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the profile carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// StatusLabel is the display label for a tenant status. Unknown values read
// as pending.
func StatusLabel(status string) string {
	switch status {
	case StatusActive:
		return "Active"
	case StatusInactive:
		return "Inactive"
	}
	return "Pending Approval"
}
