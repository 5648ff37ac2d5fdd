// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strings"
	"time"

	"github.com/condopay/condopay/internal/app/store/audit"
	"github.com/condopay/condopay/internal/app/system/authz"
	"github.com/condopay/condopay/internal/app/system/paging"
	"github.com/condopay/condopay/internal/app/system/timeouts"
	"github.com/condopay/condopay/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// ServeList handles GET /admin/activity. Admins see the events of their own
// building only.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	buildingID, err := authz.AdminBuilding(r)
	if err != nil {
		h.ErrLog.LogUnprocessable(w, r, "activity: admin without building", err, authz.ErrNoBuilding.Error(), "/dashboard")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "activity list")
	defer cancel()

	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	eventType := strings.TrimSpace(q.Get("event_type"))
	startDate := strings.TrimSpace(q.Get("start_date"))
	endDate := strings.TrimSpace(q.Get("end_date"))

	page := paging.ParsePage(r)

	filter := audit.QueryFilter{
		BuildingID: buildingID,
		Category:   category,
		EventType:  eventType,
		Limit:      paging.PageSize,
		Offset:     paging.Offset(page, paging.PageSize),
	}
	if startDate != "" {
		if t, err := time.Parse("2006-01-02", startDate); err == nil {
			filter.StartTime = &t
		}
	}
	if endDate != "" {
		if t, err := time.Parse("2006-01-02", endDate); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Nanosecond)
			filter.EndTime = &endOfDay
		}
	}

	events, err := h.Audit.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "activity: query events", err, "Failed to load activity", "/dashboard")
		return
	}
	total, err := h.Audit.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "activity: count events", err, "Failed to load activity", "/dashboard")
		return
	}

	// batch-resolve names for actors and targets
	seen := make(map[string]struct{})
	var ids []string
	for _, e := range events {
		for _, id := range []string{e.ActorID, e.UserID} {
			if _, ok := seen[id]; id != "" && !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	names := make(map[string]string, len(ids))
	if users, err := h.Users.GetByIDs(ctx, ids); err != nil {
		h.Log.Warn("failed to fetch user names for activity", zap.Error(err))
	} else {
		for _, u := range users {
			names[u.ID] = u.FullName()
		}
	}
	nameOf := func(id string) string {
		if n, ok := names[id]; ok && n != "" {
			return n
		}
		return id
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, listItem{
			ID:         e.ID.Hex(),
			Timestamp:  e.Timestamp,
			Category:   e.Category,
			EventType:  e.EventType,
			ActorName:  nameOf(e.ActorID),
			TargetName: nameOf(e.UserID),
			IP:         e.IP,
			Success:    e.Success,
			Reason:     e.FailureReason,
			Details:    e.Details,
		})
	}

	viewdata.JSON(w, http.StatusOK, listData{
		BaseVM:     viewdata.NewBaseVM(r, "Activity", "/dashboard"),
		Items:      items,
		Category:   category,
		EventType:  eventType,
		StartDate:  startDate,
		EndDate:    endDate,
		Categories: allCategories(),
		EventTypes: eventTypesForCategory(category),
		Info:       paging.NewInfo(page, paging.PageSize, total),
	})
}
