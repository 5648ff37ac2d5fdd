// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/condopay/condopay/internal/app/store/audit"
	"github.com/condopay/condopay/internal/app/system/paging"
	"github.com/condopay/condopay/internal/app/system/viewdata"
)

// listItem is a single audit event row.
type listItem struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Category   string            `json:"category"`
	EventType  string            `json:"eventType"`
	ActorName  string            `json:"actorName,omitempty"`  // resolved from ActorID
	TargetName string            `json:"targetName,omitempty"` // resolved from UserID
	IP         string            `json:"ip,omitempty"`
	Success    bool              `json:"success"`
	Reason     string            `json:"failureReason,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

// listData is the view model for the building activity feed.
type listData struct {
	viewdata.BaseVM

	Items []listItem `json:"items"`

	// Filters
	Category  string `json:"category,omitempty"`
	EventType string `json:"eventType,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`

	// Filter options
	Categories []categoryOption `json:"categories"`
	EventTypes []string         `json:"eventTypes"`

	paging.Info
}

type categoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication"},
		{Value: audit.CategoryAdmin, Label: "Administration"},
		{Value: audit.CategorySystem, Label: "System"},
	}
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailed,
		audit.EventLogout,
		audit.EventRegistered,
	}
	adminEvents := []string{
		audit.EventTenantStatusChanged,
		audit.EventTenantRemoved,
		audit.EventPaymentMarkedPaid,
		audit.EventDiscountApplied,
		audit.EventRemindersSent,
		audit.EventAdminPromoted,
	}
	systemEvents := []string{
		audit.EventRemindersScheduled,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case audit.CategorySystem:
		return systemEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents)+len(systemEvents))
		all = append(all, authEvents...)
		all = append(all, adminEvents...)
		all = append(all, systemEvents...)
		return all
	default:
		return nil
	}
}
