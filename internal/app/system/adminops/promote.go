// Package adminops holds operator actions shared by startup and condopayctl.
package adminops

import (
	"context"
	"errors"
	"fmt"
	"strings"

	userstore "github.com/condopay/condopay/internal/app/store/users"
	"github.com/condopay/condopay/internal/app/system/auditlog"
	"github.com/condopay/condopay/internal/domain/models"
)

// ErrNotRegistered is returned when no profile exists for the email. Admins
// sign up like everyone else and are promoted afterwards.
var ErrNotRegistered = errors.New("no registered user with that email")

// PromoteAdmin makes the user registered under email the admin of
// buildingID. It is idempotent; an already-promoted admin of the same
// building returns changed=false and writes no audit event.
func PromoteAdmin(ctx context.Context, users *userstore.Store, audit *auditlog.Logger, email, buildingID, source string) (user models.User, changed bool, err error) {
	buildingID = strings.TrimSpace(buildingID)
	if buildingID == "" {
		return models.User{}, false, errors.New("building is required")
	}

	u, err := users.GetByEmail(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		return models.User{}, false, ErrNotRegistered
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("load user: %w", err)
	}

	if u.Role == models.RoleAdmin && u.BuildingID == buildingID {
		return *u, false, nil
	}

	if err := users.Promote(ctx, u.ID, buildingID); err != nil {
		return models.User{}, false, fmt.Errorf("promote: %w", err)
	}
	u.Role = models.RoleAdmin
	u.BuildingID = buildingID

	if audit != nil {
		audit.AdminPromoted(ctx, u.ID, buildingID, u.Email, source)
	}
	return *u, true, nil
}
