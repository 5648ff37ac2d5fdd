// internal/app/system/inputval/validators.go
package inputval

import (
	"strings"
	"time"

	"github.com/condopay/condopay/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IsValidEmail performs a structural check on a bare address (no display
// name). Single-label domains are accepted.
func IsValidEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n<>") {
		return false
	}
	local, domain, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(domain, "@") {
		return false
	}
	return validDotAtom(local) && validDotAtom(domain)
}

func validDotAtom(s string) bool {
	if s == "" || strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return false
	}
	return !strings.Contains(s, "..")
}

// IsValidRole reports whether s is a known user role.
func IsValidRole(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.RoleAdmin, models.RoleTenant:
		return true
	}
	return false
}

// IsValidUserStatus reports whether s is a known account status.
func IsValidUserStatus(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.StatusActive, models.StatusPending, models.StatusInactive:
		return true
	}
	return false
}

// IsValidObjectID reports whether s is a hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

// IsValidISODate reports whether s is a YYYY-MM-DD calendar date.
func IsValidISODate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func registerRules(v *validator.Validate) {
	str := func(fn func(string) bool) validator.Func {
		return func(fl validator.FieldLevel) bool { return fn(fl.Field().String()) }
	}
	_ = v.RegisterValidation("email", str(IsValidEmail))
	_ = v.RegisterValidation("role", str(IsValidRole))
	_ = v.RegisterValidation("userstatus", str(IsValidUserStatus))
	_ = v.RegisterValidation("paymentstatus", str(models.IsValidPaymentStatus))
	_ = v.RegisterValidation("objectid", str(IsValidObjectID))
	_ = v.RegisterValidation("isodate", str(IsValidISODate))
}
