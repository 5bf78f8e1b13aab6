package dashboard

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/barber-dashboard/backend/internal/storage/models"
)

// ComparisonWindowDays is the length of each window in CompareWindows.
const ComparisonWindowDays = 30

// WindowTotals sums completed appointments in one window.
type WindowTotals struct {
	Revenue  float64 `json:"revenue"`
	Cost     float64 `json:"cost"`
	Profit   float64 `json:"profit"`
	Bookings int     `json:"bookings"`
}

// WindowChange holds whole-percent changes from the previous window.
type WindowChange struct {
	Revenue  int `json:"revenue"`
	Cost     int `json:"cost"`
	Profit   int `json:"profit"`
	Bookings int `json:"bookings"`
}

// Comparison is the quick stats card data: the last window against the one
// before it.
type Comparison struct {
	WindowDays int          `json:"window_days"`
	Current    WindowTotals `json:"current"`
	Previous   WindowTotals `json:"previous"`
	Change     WindowChange `json:"change"`
}

// CompareWindows totals completed appointments dated on or after now minus
// 30 days against those in the 30 days before that.
func CompareWindows(appointments []models.Appointment, now time.Time) Comparison {
	currentStart := now.AddDate(0, 0, -ComparisonWindowDays)
	previousStart := now.AddDate(0, 0, -2*ComparisonWindowDays)

	c := Comparison{WindowDays: ComparisonWindowDays}
	for _, a := range appointments {
		if !a.IsCompleted() {
			continue
		}
		switch {
		case !a.Date.Before(currentStart):
			c.Current.add(a)
		case !a.Date.Before(previousStart):
			c.Previous.add(a)
		}
	}

	c.Change = WindowChange{
		Revenue:  percentChange(c.Current.Revenue, c.Previous.Revenue),
		Cost:     percentChange(c.Current.Cost, c.Previous.Cost),
		Profit:   percentChange(c.Current.Profit, c.Previous.Profit),
		Bookings: percentChange(float64(c.Current.Bookings), float64(c.Previous.Bookings)),
	}
	return c
}

func (t *WindowTotals) add(a models.Appointment) {
	t.Revenue += a.Price
	t.Cost += a.Cost
	t.Profit = t.Revenue - t.Cost
	t.Bookings++
}

// percentChange is relative to the magnitude of previous. A zero previous
// reports 100 for growth and 0 otherwise.
func percentChange(current, previous float64) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return roundHalfUp((current - previous) / math.Abs(previous) * 100)
}

// topCuts is how many haircut types WeeklyCuts reports.
const topCuts = 5

// DayCuts lists one weekday's cuts of a haircut type.
type DayCuts struct {
	Day          string               `json:"day"`
	Count        int                  `json:"count"`
	Appointments []models.Appointment `json:"appointments"`
}

// CutShare is one haircut type's slice of the week.
type CutShare struct {
	HaircutType  string    `json:"haircut_type"`
	Count        int       `json:"count"`
	Percent      int       `json:"percent"`
	AveragePrice float64   `json:"average_price"`
	ByDay        []DayCuts `json:"by_day"`
}

// WeeklyCuts is the haircut stats card data for the current week.
type WeeklyCuts struct {
	WeekStart time.Time  `json:"week_start"`
	WeekEnd   time.Time  `json:"week_end"`
	Completed int        `json:"completed"`
	Top       []CutShare `json:"top"`
}

// WeeklyCutBreakdown ranks this week's completed cuts by haircut type and
// breaks each of the top five down by weekday. The week starts on Sunday
// in now's location.
func WeeklyCutBreakdown(appointments []models.Appointment, now time.Time) WeeklyCuts {
	start := startOfWeek(now)
	end := start.AddDate(0, 0, 7)

	var week []models.Appointment
	for _, a := range appointments {
		if a.IsCompleted() && !a.Date.Before(start) && a.Date.Before(end) {
			week = append(week, a)
		}
	}
	sort.SliceStable(week, func(i, j int) bool { return week[i].Date.Before(week[j].Date) })

	out := WeeklyCuts{
		WeekStart: start,
		WeekEnd:   end,
		Completed: len(week),
		Top:       make([]CutShare, 0, topCuts),
	}

	ranked := sortedCounts(haircutCounts(week))
	if len(ranked) > topCuts {
		ranked = ranked[:topCuts]
	}
	for _, r := range ranked {
		out.Top = append(out.Top, cutShare(r, week, now.Location()))
	}
	return out
}

func cutShare(r Count, week []models.Appointment, loc *time.Location) CutShare {
	share := CutShare{
		HaircutType: r.Label,
		Count:       r.Count,
		Percent:     roundHalfUp(float64(r.Count) / float64(len(week)) * 100),
		ByDay:       make([]DayCuts, 0),
	}

	var total float64
	days := make(map[string]int)
	for _, a := range week {
		if a.HaircutType != r.Label {
			continue
		}
		total += a.Price
		day := a.Date.In(loc).Weekday().String()
		i, ok := days[day]
		if !ok {
			i = len(share.ByDay)
			days[day] = i
			share.ByDay = append(share.ByDay, DayCuts{Day: day, Appointments: make([]models.Appointment, 0)})
		}
		share.ByDay[i].Count++
		share.ByDay[i].Appointments = append(share.ByDay[i].Appointments, a)
	}
	share.AveragePrice = total / float64(r.Count)
	return share
}

// SearchField selects which appointment fields PastBookings matches.
type SearchField string

// SearchField values
const (
	SearchAll     SearchField = "all"
	SearchClient  SearchField = "client"
	SearchService SearchField = "service"
)

// ParseSearchField validates a field query value. Empty means all.
func ParseSearchField(s string) (SearchField, error) {
	switch f := SearchField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return SearchAll, nil
	case SearchAll, SearchClient, SearchService:
		return f, nil
	default:
		return "", ErrInvalidFilter
	}
}

// BookingHistory is the past bookings card data.
type BookingHistory struct {
	Query        string               `json:"query"`
	Field        SearchField          `json:"field"`
	Total        int                  `json:"total"`
	Appointments []models.Appointment `json:"appointments"`
}

// PastBookings returns completed appointments newest first whose client
// name or haircut type contains query, ignoring case. Total counts every
// match; at most limit are returned when limit is positive.
func PastBookings(appointments []models.Appointment, query string, field SearchField, limit int) BookingHistory {
	q := strings.ToLower(strings.TrimSpace(query))
	out := BookingHistory{Query: query, Field: field, Appointments: make([]models.Appointment, 0)}

	for _, a := range appointments {
		if a.IsCompleted() && matchesBooking(a, q, field) {
			out.Appointments = append(out.Appointments, a)
		}
	}
	sort.SliceStable(out.Appointments, func(i, j int) bool {
		return out.Appointments[i].Date.After(out.Appointments[j].Date)
	})

	out.Total = len(out.Appointments)
	if limit > 0 && len(out.Appointments) > limit {
		out.Appointments = out.Appointments[:limit]
	}
	return out
}

func matchesBooking(a models.Appointment, q string, field SearchField) bool {
	if q == "" {
		return true
	}
	client := strings.Contains(strings.ToLower(a.ClientName), q)
	service := strings.Contains(strings.ToLower(a.HaircutType), q)
	switch field {
	case SearchClient:
		return client
	case SearchService:
		return service
	default:
		return client || service
	}
}
