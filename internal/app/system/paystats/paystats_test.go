package paystats_test

import (
	"testing"
	"time"

	"github.com/condopay/condopay/internal/app/system/paystats"
	"github.com/condopay/condopay/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func dayN(n int) time.Time { return day0.Add(time.Duration(n) * 24 * time.Hour) }

func tenant(id string, rent float64) models.User {
	return models.User{ID: id, FirstName: "T", LastName: id, Email: id + "@example.com", UnitNo: "U-" + id, MonthlyRent: rent, Role: models.RoleTenant}
}

func payment(tenantID, status string, ts time.Time, amount float64) models.Payment {
	return models.Payment{TenantID: tenantID, Status: status, Timestamp: ts, MonthlyRent: amount}
}

func TestCompute_EmptyTenants(t *testing.T) {
	res := paystats.Compute(nil, nil, day0, paystats.MonthOf(day0, nil))

	assert.Equal(t, paystats.Stats{}, res.Stats)
	assert.NotNil(t, res.Overdue)
	assert.Empty(t, res.Overdue)
}

func TestCompute_TenantWithoutPayments(t *testing.T) {
	res := paystats.Compute([]models.User{tenant("a", 1200)}, nil, day0, paystats.MonthOf(day0, nil))

	require.Len(t, res.Overdue, 1)
	assert.Equal(t, paystats.NoPaymentDays, res.Overdue[0].DaysOverdue)
	assert.Equal(t, 1200.0, res.Overdue[0].OverdueAmount)
	assert.Nil(t, res.Overdue[0].LastPaymentDate)
	assert.Equal(t, 1200.0, res.Stats.OverduePayments)
	assert.Equal(t, 1, res.Stats.OverdueTenants)
	assert.Equal(t, 1, res.Stats.TotalTenants)
}

func TestCompute_RecentPaymentNotOverdue(t *testing.T) {
	tenants := []models.User{tenant("a", 900)}
	payments := []models.Payment{payment("a", models.PaymentCompleted, dayN(0), 900)}

	for _, n := range []int{0, 1, 29, 30} {
		res := paystats.Compute(tenants, payments, dayN(n), paystats.MonthOf(dayN(n), nil))
		assert.Empty(t, res.Overdue, "asOf day %d", n)
	}
}

func TestCompute_PastThirtyDaysOverdue(t *testing.T) {
	tenants := []models.User{tenant("a", 900)}
	payments := []models.Payment{payment("a", models.PaymentCompleted, dayN(0), 900)}

	asOf := dayN(30).Add(time.Second)
	res := paystats.Compute(tenants, payments, asOf, paystats.MonthOf(asOf, nil))
	require.Len(t, res.Overdue, 1)
	assert.Equal(t, 30, res.Overdue[0].DaysOverdue)
	require.NotNil(t, res.Overdue[0].LastPaymentDate)
	assert.True(t, res.Overdue[0].LastPaymentDate.Equal(dayN(0)))

	res = paystats.Compute(tenants, payments, dayN(45), paystats.MonthOf(dayN(45), nil))
	require.Len(t, res.Overdue, 1)
	assert.Equal(t, 45, res.Overdue[0].DaysOverdue)
}

func TestCompute_MostRecentCompletedWins(t *testing.T) {
	tenants := []models.User{tenant("a", 1000)}
	payments := []models.Payment{
		payment("a", models.PaymentCompleted, dayN(40), 1000),
		payment("a", models.PaymentCompleted, dayN(0), 1000),
	}

	res := paystats.Compute(tenants, payments, dayN(41), paystats.MonthOf(dayN(41), nil))
	assert.Empty(t, res.Overdue)

	st := paystats.StandingOf(tenants[0], payments, dayN(41))
	require.NotNil(t, st.LastPayment)
	assert.True(t, st.LastPayment.Timestamp.Equal(dayN(40)))
	assert.Equal(t, 1, st.DaysSince)
	assert.False(t, st.Overdue)
}

func TestCompute_IgnoresNonCompletedForOverdue(t *testing.T) {
	tenants := []models.User{tenant("a", 500)}
	payments := []models.Payment{
		payment("a", models.PaymentPending, dayN(1), 500),
		payment("a", models.PaymentFailed, dayN(1), 500),
		payment("a", models.PaymentDisputed, dayN(1), 500),
	}

	res := paystats.Compute(tenants, payments, dayN(2), paystats.MonthOf(dayN(2), nil))
	require.Len(t, res.Overdue, 1)
	assert.Equal(t, paystats.NoPaymentDays, res.Overdue[0].DaysOverdue)
}

func TestCompute_MissingRentCountsAsZero(t *testing.T) {
	res := paystats.Compute([]models.User{tenant("a", 0)}, nil, day0, paystats.MonthOf(day0, nil))

	require.Len(t, res.Overdue, 1)
	assert.Zero(t, res.Overdue[0].OverdueAmount)
	assert.Zero(t, res.Stats.OverduePayments)
}

func TestCompute_MonthScopedTotals(t *testing.T) {
	tenants := []models.User{tenant("a", 100), tenant("b", 200)}
	march := dayN(3)
	april := time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 27, 0, 0, 0, 0, time.UTC)
	payments := []models.Payment{
		payment("a", models.PaymentCompleted, march, 100),
		payment("b", models.PaymentCompleted, march, 200),
		payment("b", models.PaymentCompleted, april, 200),
		payment("a", models.PaymentCompleted, feb, 100),
		payment("a", models.PaymentPending, march, 40),
		payment("b", models.PaymentPending, april, 60),
		payment("b", models.PaymentFailed, march, 999),
	}

	res := paystats.Compute(tenants, payments, march, paystats.Filter{Month: time.March, Year: 2025})
	assert.Equal(t, 300.0, res.Stats.TotalCollected)
	assert.Equal(t, 40.0, res.Stats.PendingPayments)

	res = paystats.Compute(tenants, payments, march, paystats.Filter{Month: time.March, Year: 2024})
	assert.Zero(t, res.Stats.TotalCollected)
	assert.Zero(t, res.Stats.PendingPayments)
}

func TestCompute_OverdueTotalNotMonthScoped(t *testing.T) {
	tenants := []models.User{tenant("a", 100), tenant("b", 250)}
	// Filter to a month with no payments at all; overdue still reflects asOf.
	res := paystats.Compute(tenants, nil, day0, paystats.Filter{Month: time.January, Year: 2020})
	assert.Equal(t, 350.0, res.Stats.OverduePayments)
	assert.Equal(t, 2, res.Stats.OverdueTenants)
}

func TestCompute_OverdueNeverExceedsTenants(t *testing.T) {
	tenants := []models.User{tenant("a", 1), tenant("b", 2), tenant("c", 3)}
	payments := []models.Payment{
		payment("a", models.PaymentCompleted, dayN(0), 1),
		payment("zzz", models.PaymentCompleted, dayN(0), 9),
		payment("zzz", models.PaymentPending, dayN(0), 9),
	}
	for n := 0; n < 90; n += 7 {
		res := paystats.Compute(tenants, payments, dayN(n), paystats.MonthOf(dayN(n), nil))
		assert.LessOrEqual(t, len(res.Overdue), len(tenants))
		assert.Equal(t, len(res.Overdue), res.Stats.OverdueTenants)
	}
}

func TestCompute_ZeroAsOfUsesNow(t *testing.T) {
	tenants := []models.User{tenant("a", 10)}
	payments := []models.Payment{payment("a", models.PaymentCompleted, time.Now().Add(-time.Hour), 10)}

	res := paystats.Compute(tenants, payments, time.Time{}, paystats.MonthOf(time.Now(), nil))
	assert.Empty(t, res.Overdue)
}

func TestFilter_Location(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 02:00 UTC on April 1 is still March 31 in New York.
	ts := time.Date(2025, time.April, 1, 2, 0, 0, 0, time.UTC)

	assert.True(t, paystats.Filter{Month: time.March, Year: 2025, Location: ny}.Contains(ts))
	assert.False(t, paystats.Filter{Month: time.March, Year: 2025}.Contains(ts))
}

func TestLastCompleted(t *testing.T) {
	payments := []models.Payment{
		payment("a", models.PaymentCompleted, dayN(3), 1),
		payment("a", models.PaymentPending, dayN(9), 1),
		payment("a", models.PaymentCompleted, dayN(5), 1),
	}

	p, ok := paystats.LastCompleted("a", payments)
	require.True(t, ok)
	assert.True(t, p.Timestamp.Equal(dayN(5)))

	_, ok = paystats.LastCompleted("b", payments)
	assert.False(t, ok)
}
