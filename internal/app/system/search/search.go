// internal/app/system/search/search.go
package search

import (
	"strings"

	"github.com/condopay/condopay/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// MatchTenant reports whether q matches u's name, user name, email or unit.
// Both sides are folded with text.Fold; a blank query matches everyone.
//
// A query containing '@' is treated as an email and only compared against
// the email address, so "a@b" does not match a unit named "a".
func MatchTenant(u models.User, q string) bool {
	q = text.Fold(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	if strings.Contains(q, "@") {
		return strings.Contains(text.Fold(u.Email), q)
	}
	for _, field := range []string{u.FullName(), u.UserName, u.Email, u.UnitNo} {
		if strings.Contains(text.Fold(field), q) {
			return true
		}
	}
	return false
}

// Tenants filters a roster by query and status. A blank status keeps all.
func Tenants(us []models.User, q, status string) []models.User {
	status = strings.TrimSpace(strings.ToLower(status))
	out := make([]models.User, 0, len(us))
	for _, u := range us {
		if status != "" && u.Status != status {
			continue
		}
		if MatchTenant(u, q) {
			out = append(out, u)
		}
	}
	return out
}
