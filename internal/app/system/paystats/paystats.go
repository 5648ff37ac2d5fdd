// Package paystats derives payment statistics and the overdue-tenant list
// from already-fetched tenant and payment records.
//
// Everything here is a pure function of its inputs. Callers recompute on
// every request; nothing is cached or persisted.
package paystats

import (
	"time"

	"github.com/condopay/condopay/internal/domain/models"
)

// OverdueAfter is how long a tenant may go without a completed payment.
const OverdueAfter = 30 * 24 * time.Hour

// NoPaymentDays is reported as days overdue for a tenant who never paid.
const NoPaymentDays = 30

const day = 24 * time.Hour

// Filter scopes the collected and pending totals to one calendar month.
// A nil Location means UTC.
type Filter struct {
	Month    time.Month
	Year     int
	Location *time.Location
}

// MonthOf returns the filter for the month containing t.
func MonthOf(t time.Time, loc *time.Location) Filter {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return Filter{Month: lt.Month(), Year: lt.Year(), Location: loc}
}

// Contains reports whether t falls inside the filter's month.
func (f Filter) Contains(t time.Time) bool {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return lt.Month() == f.Month && lt.Year() == f.Year
}

// OverdueTenant is a tenant with no completed payment in the last 30 days.
type OverdueTenant struct {
	UID             string     `json:"uid"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	UnitNo          string     `json:"unitNo"`
	OverdueAmount   float64    `json:"overdueAmount"`
	DaysOverdue     int        `json:"daysOverdue"`
	LastPaymentDate *time.Time `json:"lastPaymentDate,omitempty"`
}

// Stats are the building-level payment totals.
type Stats struct {
	TotalTenants    int     `json:"totalTenants"`
	TotalCollected  float64 `json:"totalCollected"`
	PendingPayments float64 `json:"pendingPayments"`
	OverduePayments float64 `json:"overduePayments"`
	OverdueTenants  int     `json:"overdueTenants"`
}

// Result bundles the stats with the overdue list they were derived from.
type Result struct {
	Stats   Stats           `json:"stats"`
	Overdue []OverdueTenant `json:"overdueTenants"`
}

// Standing describes one tenant's position relative to the overdue rule.
type Standing struct {
	LastPayment *models.Payment `json:"lastPayment,omitempty"`
	DaysSince   int             `json:"daysSinceLastPayment"`
	Overdue     bool            `json:"overdue"`
	DaysOverdue int             `json:"daysOverdue"`
	AmountDue   float64         `json:"amountDue"`
}

// Compute builds the stats and overdue list. A zero asOf means now.
//
// Collected and pending totals only count payments whose timestamp falls in
// the filter month. The overdue total is not month scoped.
func Compute(tenants []models.User, payments []models.Payment, asOf time.Time, f Filter) Result {
	if asOf.IsZero() {
		asOf = time.Now()
	}

	res := Result{
		Stats:   Stats{TotalTenants: len(tenants)},
		Overdue: []OverdueTenant{},
	}

	for _, p := range payments {
		if !f.Contains(p.Timestamp) {
			continue
		}
		switch p.Status {
		case models.PaymentCompleted:
			res.Stats.TotalCollected += p.MonthlyRent
		case models.PaymentPending:
			res.Stats.PendingPayments += p.MonthlyRent
		}
	}

	last := lastCompletedByTenant(payments)
	for _, t := range tenants {
		var lp *models.Payment
		if p, ok := last[t.ID]; ok {
			lp = &p
		}
		st := standing(t, lp, asOf)
		if !st.Overdue {
			continue
		}
		ot := OverdueTenant{
			UID:           t.ID,
			Name:          t.FullName(),
			Email:         t.Email,
			UnitNo:        t.UnitNo,
			OverdueAmount: st.AmountDue,
			DaysOverdue:   st.DaysOverdue,
		}
		if lp != nil {
			ts := lp.Timestamp
			ot.LastPaymentDate = &ts
		}
		res.Overdue = append(res.Overdue, ot)
		res.Stats.OverduePayments += ot.OverdueAmount
	}
	res.Stats.OverdueTenants = len(res.Overdue)

	return res
}

// StandingOf evaluates a single tenant against their payments.
// Payments belonging to other tenants are ignored.
func StandingOf(tenant models.User, payments []models.Payment, asOf time.Time) Standing {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	var lp *models.Payment
	if p, ok := lastCompletedByTenant(payments)[tenant.ID]; ok {
		lp = &p
	}
	return standing(tenant, lp, asOf)
}

// LastCompleted returns the most recent completed payment for tenantID.
func LastCompleted(tenantID string, payments []models.Payment) (models.Payment, bool) {
	p, ok := lastCompletedByTenant(payments)[tenantID]
	return p, ok
}

func lastCompletedByTenant(payments []models.Payment) map[string]models.Payment {
	last := make(map[string]models.Payment)
	for _, p := range payments {
		if p.Status != models.PaymentCompleted {
			continue
		}
		if cur, ok := last[p.TenantID]; !ok || p.Timestamp.After(cur.Timestamp) {
			last[p.TenantID] = p
		}
	}
	return last
}

func standing(t models.User, lp *models.Payment, asOf time.Time) Standing {
	if lp == nil {
		return Standing{
			DaysSince:   NoPaymentDays,
			Overdue:     true,
			DaysOverdue: NoPaymentDays,
			AmountDue:   t.MonthlyRent,
		}
	}

	elapsed := asOf.Sub(lp.Timestamp)
	days := int(elapsed / day)
	st := Standing{LastPayment: lp, DaysSince: days}
	if elapsed > OverdueAfter {
		st.Overdue = true
		st.DaysOverdue = days
		st.AmountDue = t.MonthlyRent
	}
	return st
}
