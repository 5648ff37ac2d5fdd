// internal/app/system/authz/authz.go
package authz

import (
	"errors"
	"net/http"
	"strings"

	"github.com/condopay/condopay/internal/app/system/auth"
	"github.com/condopay/condopay/internal/domain/models"
)

// ErrNoBuilding is returned when an admin has no building assignment.
var ErrNoBuilding = errors.New("No building ID found for admin user")

// UserCtx returns the user's role (lowercased), name, UID and a found flag.
// If no user is present it returns "visitor", "", "", false.
func UserCtx(r *http.Request) (role, name, uid string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || user.ID == "" {
		return "visitor", "", "", false
	}
	return strings.ToLower(user.Role), user.Name, user.ID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsTenant reports whether the current request's user is a tenant.
func IsTenant(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleTenant
}

// BuildingID returns the building the current user belongs to, or "".
func BuildingID(r *http.Request) string {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return ""
	}
	return strings.TrimSpace(user.BuildingID)
}

// AdminBuilding returns the admin's building or ErrNoBuilding. Admin handlers
// are scoped to that building.
func AdminBuilding(r *http.Request) (string, error) {
	if !IsAdmin(r) {
		return "", ErrNoBuilding
	}
	b := BuildingID(r)
	if b == "" {
		return "", ErrNoBuilding
	}
	return b, nil
}

// CanAccessBuilding reports whether the current user may act on buildingID.
// Admins may act on their own building only; tenants never.
func CanAccessBuilding(r *http.Request, buildingID string) bool {
	b, err := AdminBuilding(r)
	return err == nil && b == strings.TrimSpace(buildingID)
}
