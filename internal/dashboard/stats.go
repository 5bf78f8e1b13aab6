// Package dashboard derives dashboard statistics and card data from
// normalized appointments and expenses. Every function is pure.
package dashboard

import (
	"math"
	"time"

	"github.com/barber-dashboard/backend/internal/storage/models"
)

// DefaultSpendingFallback is reported as spending when no expenses exist.
const DefaultSpendingFallback = 940.0

// Defaults used when there is nothing to rank.
const (
	NoData            = "No data"
	DefaultBusiestDay = "Friday"
	DefaultSlowestDay = "Monday"
)

// Calculator computes DashboardStats with a configurable spending fallback.
type Calculator struct {
	SpendingFallback float64
}

// ComputeStats computes stats with the default spending fallback.
func ComputeStats(appointments []models.Appointment, expenses []models.Expense, now time.Time) models.DashboardStats {
	return Calculator{SpendingFallback: DefaultSpendingFallback}.Compute(appointments, expenses, now)
}

// Compute derives the dashboard statistics relative to now. Bucket
// boundaries are taken in now's location.
func (c Calculator) Compute(appointments []models.Appointment, expenses []models.Expense, now time.Time) models.DashboardStats {
	stats := models.DashboardStats{
		MostCommonCut: NoData,
		SlowestDay:    DefaultSlowestDay,
		BusiestDay:    DefaultBusiestDay,
	}

	completed := 0
	for _, a := range appointments {
		if a.IsCompleted() {
			completed++
			stats.Revenue += a.Price
		}
	}

	if len(expenses) == 0 {
		stats.Spending = c.SpendingFallback
		stats.SpendingIsFallback = true
	} else {
		for _, e := range expenses {
			stats.Spending += e.Amount
		}
	}

	stats.Profit = stats.Revenue - stats.Spending

	if completed > 0 {
		stats.AvgRevenuePerCut = roundHalfUp(stats.Revenue / float64(completed))
		stats.AvgProfitPerCut = roundHalfUp(stats.Profit / float64(completed))
	}

	stats.TotalBookings = countBookings(appointments, now)

	if cut, ok := mostFrequent(haircutCounts(appointments)); ok {
		stats.MostCommonCut = cut
	}

	days := weekdayCounts(appointments, now.Location())
	if day, ok := mostFrequent(days); ok {
		stats.BusiestDay = day
	}
	if day, ok := leastFrequent(days); ok {
		stats.SlowestDay = day
	}

	return stats
}

// NextAppointment returns the earliest scheduled appointment strictly after
// now, or nil.
func NextAppointment(appointments []models.Appointment, now time.Time) *models.Appointment {
	var next *models.Appointment
	for i := range appointments {
		a := appointments[i]
		if a.IsCompleted() || !a.Date.After(now) {
			continue
		}
		if next == nil || a.Date.Before(next.Date) {
			next = &a
		}
	}
	return next
}

// Period boundaries relative to now, in now's location.

func startOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func startOfWeek(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, now.Location())
}

func startOfMonth(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}

func startOfYear(now time.Time) time.Time {
	return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

func countBookings(appointments []models.Appointment, now time.Time) models.BookingCounts {
	week, month, year := startOfWeek(now), startOfMonth(now), startOfYear(now)

	var counts models.BookingCounts
	for _, a := range appointments {
		if sameDay(now, a.Date) {
			counts.Today++
		}
		if !a.Date.Before(week) {
			counts.Week++
		}
		if !a.Date.Before(month) {
			counts.Month++
		}
		if !a.Date.Before(year) {
			counts.Year++
		}
	}
	return counts
}

// roundHalfUp rounds like JavaScript's Math.round.
func roundHalfUp(x float64) int {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return int(math.Floor(x + 0.5))
}

// tally is an insertion-ordered count table.
type tally struct {
	keys   []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(key string) {
	if _, ok := t.counts[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.counts[key]++
}

func haircutCounts(appointments []models.Appointment) *tally {
	t := newTally()
	for _, a := range appointments {
		t.add(a.HaircutType)
	}
	return t
}

func weekdayCounts(appointments []models.Appointment, loc *time.Location) *tally {
	t := newTally()
	for _, a := range appointments {
		t.add(a.Date.In(loc).Weekday().String())
	}
	return t
}

// mostFrequent returns the key with the highest count. Ties go to the key
// seen first.
func mostFrequent(t *tally) (string, bool) {
	best, found := "", false
	for _, k := range t.keys {
		if !found || t.counts[k] > t.counts[best] {
			best, found = k, true
		}
	}
	return best, found
}

// leastFrequent returns the key with the lowest count. Ties go to the key
// seen first.
func leastFrequent(t *tally) (string, bool) {
	best, found := "", false
	for _, k := range t.keys {
		if !found || t.counts[k] < t.counts[best] {
			best, found = k, true
		}
	}
	return best, found
}
