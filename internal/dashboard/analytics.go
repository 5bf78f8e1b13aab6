package dashboard

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/barber-dashboard/backend/internal/storage/models"
)

// Period selects a time window for FilterAppointments.
type Period string

// Period values
const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

// StatusFilter selects appointments by status.
type StatusFilter string

// StatusFilter values
const (
	StatusAll       StatusFilter = "all"
	StatusScheduled StatusFilter = "scheduled"
	StatusCompleted StatusFilter = "completed"
)

// ErrInvalidFilter is returned by ParsePeriod and ParseStatus.
var ErrInvalidFilter = errors.New("invalid filter")

// ParsePeriod validates a period query value. Empty means week.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodWeek, nil
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear, PeriodAll:
		return p, nil
	default:
		return "", ErrInvalidFilter
	}
}

// ParseStatus validates a status query value. Empty means all.
func ParseStatus(s string) (StatusFilter, error) {
	switch f := StatusFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return StatusAll, nil
	case StatusAll, StatusScheduled, StatusCompleted:
		return f, nil
	default:
		return "", ErrInvalidFilter
	}
}

// Overview is the appointments overview card data.
type Overview struct {
	Period           Period               `json:"period"`
	Status           StatusFilter         `json:"status"`
	Appointments     []models.Appointment `json:"appointments"`
	Count            int                  `json:"count"`
	CompletedCount   int                  `json:"completed_count"`
	CompletedRevenue float64              `json:"completed_revenue"`
}

// FilterAppointments selects appointments in the period and status, sorted
// by date ascending.
func FilterAppointments(appointments []models.Appointment, period Period, status StatusFilter, now time.Time) Overview {
	out := Overview{
		Period:       period,
		Status:       status,
		Appointments: make([]models.Appointment, 0),
	}

	for _, a := range appointments {
		if !inPeriod(a.Date, period, now) {
			continue
		}
		if status != StatusAll && status != "" && string(a.Status) != string(status) {
			continue
		}
		out.Appointments = append(out.Appointments, a)
		if a.IsCompleted() {
			out.CompletedCount++
			out.CompletedRevenue += a.Price
		}
	}

	sort.SliceStable(out.Appointments, func(i, j int) bool {
		return out.Appointments[i].Date.Before(out.Appointments[j].Date)
	})
	out.Count = len(out.Appointments)
	return out
}

func inPeriod(date time.Time, period Period, now time.Time) bool {
	switch period {
	case PeriodToday:
		return sameDay(now, date)
	case PeriodWeek:
		return !date.Before(startOfWeek(now))
	case PeriodMonth:
		return !date.Before(startOfMonth(now))
	case PeriodYear:
		return !date.Before(startOfYear(now))
	default:
		return true
	}
}

// Count is a labelled occurrence count.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ServiceBreakdown counts appointments per haircut type, most popular first.
func ServiceBreakdown(appointments []models.Appointment) []Count {
	return sortedCounts(haircutCounts(appointments))
}

// DayBreakdown counts appointments per weekday in loc, busiest first.
func DayBreakdown(appointments []models.Appointment, loc *time.Location) []Count {
	if loc == nil {
		loc = time.Local
	}
	return sortedCounts(weekdayCounts(appointments, loc))
}

func sortedCounts(t *tally) []Count {
	out := make([]Count, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, Count{Label: k, Count: t.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// ClientHistory is the booking history of one client.
type ClientHistory struct {
	ClientName   string               `json:"client_name"`
	Visits       int                  `json:"visits"`
	TotalSpent   float64              `json:"total_spent"`
	LastVisit    *time.Time           `json:"last_visit,omitempty"`
	Appointments []models.Appointment `json:"appointments"`
}

// ClientDirectory is the client history card data.
type ClientDirectory struct {
	UniqueClients  int             `json:"unique_clients"`
	RecentBookings int             `json:"recent_bookings"`
	Clients        []ClientHistory `json:"clients"`
}

// recentWindow is the look-back used for RecentBookings.
const recentWindow = 30 * 24 * time.Hour

// ClientHistories groups appointments by client name. Clients keep the
// order they first appear in; each history lists visits newest first.
// query filters client names case-insensitively.
func ClientHistories(appointments []models.Appointment, query string, now time.Time) ClientDirectory {
	byClient := make(map[string][]models.Appointment)
	var names []string
	recent := 0
	cutoff := now.Add(-recentWindow)

	for _, a := range appointments {
		if _, ok := byClient[a.ClientName]; !ok {
			names = append(names, a.ClientName)
		}
		byClient[a.ClientName] = append(byClient[a.ClientName], a)
		if a.Date.After(cutoff) {
			recent++
		}
	}

	dir := ClientDirectory{
		UniqueClients:  len(names),
		RecentBookings: recent,
		Clients:        make([]ClientHistory, 0),
	}

	q := strings.ToLower(strings.TrimSpace(query))
	for _, name := range names {
		if q != "" && !strings.Contains(strings.ToLower(name), q) {
			continue
		}

		visits := append([]models.Appointment(nil), byClient[name]...)
		sort.SliceStable(visits, func(i, j int) bool { return visits[i].Date.After(visits[j].Date) })

		h := ClientHistory{ClientName: name, Visits: len(visits), Appointments: visits}
		for _, v := range visits {
			h.TotalSpent += v.Price
		}
		if len(visits) > 0 {
			last := visits[0].Date
			h.LastVisit = &last
		}
		dir.Clients = append(dir.Clients, h)
	}

	return dir
}

var phonePattern = regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)

// ValidationSummary totals a ValidationReport.
type ValidationSummary struct {
	Total             int `json:"total"`
	Scheduled         int `json:"scheduled"`
	Completed         int `json:"completed"`
	PhoneFormatIssues int `json:"phone_format_issues"`
	DateIssues        int `json:"date_issues"`
}

// ValidationReport lists data quality issues in the current appointments.
type ValidationReport struct {
	Valid   bool              `json:"valid"`
	Issues  []string          `json:"issues"`
	Summary ValidationSummary `json:"summary"`
}

// Validate checks phone format, dates and required fields.
func Validate(appointments []models.Appointment) ValidationReport {
	report := ValidationReport{Issues: make([]string, 0)}
	report.Summary.Total = len(appointments)

	for i, a := range appointments {
		n := i + 1
		switch a.Status {
		case models.StatusScheduled:
			report.Summary.Scheduled++
		case models.StatusCompleted:
			report.Summary.Completed++
		}

		if !phonePattern.MatchString(a.PhoneNumber) {
			report.Summary.PhoneFormatIssues++
			report.Issues = append(report.Issues, issuef(n, "invalid phone format %q", a.PhoneNumber))
		}
		if a.Date.IsZero() {
			report.Summary.DateIssues++
			report.Issues = append(report.Issues, issuef(n, "invalid date"))
		}
		if a.ID == "" || a.ClientName == "" || a.HaircutType == "" {
			report.Issues = append(report.Issues, issuef(n, "missing required fields"))
		}
	}

	report.Valid = len(report.Issues) == 0
	return report
}

func issuef(n int, format string, args ...any) string {
	return fmt.Sprintf("appointment %d: ", n) + fmt.Sprintf(format, args...)
}
