package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barber-dashboard/backend/internal/storage/models"
)

func cut(id, client, haircut string, date time.Time, price, cost float64, status models.AppointmentStatus) models.Appointment {
	return models.Appointment{
		ID: id, ClientName: client, HaircutType: haircut, Date: date,
		Price: price, Cost: cost, Status: status,
	}
}

func TestCompareWindows(t *testing.T) {
	now := time.Date(2025, 7, 31, 12, 0, 0, 0, time.UTC)
	appts := []models.Appointment{
		cut("1", "A", "Fade", now.AddDate(0, 0, -1), 40, 10, models.StatusCompleted),
		cut("2", "B", "Fade", now.AddDate(0, 0, -29), 20, 5, models.StatusCompleted),
		cut("3", "C", "Trim", now.AddDate(0, 0, -2), 99, 0, models.StatusScheduled),
		cut("4", "D", "Trim", now.AddDate(0, 0, -45), 40, 5, models.StatusCompleted),
		cut("5", "E", "Trim", now.AddDate(0, 0, -90), 500, 0, models.StatusCompleted),
	}

	c := CompareWindows(appts, now)
	assert.Equal(t, 30, c.WindowDays)
	assert.Equal(t, WindowTotals{Revenue: 60, Cost: 15, Profit: 45, Bookings: 2}, c.Current)
	assert.Equal(t, WindowTotals{Revenue: 40, Cost: 5, Profit: 35, Bookings: 1}, c.Previous)
	assert.Equal(t, WindowChange{Revenue: 50, Cost: 200, Profit: 29, Bookings: 100}, c.Change)
}

func TestCompareWindows_Boundary(t *testing.T) {
	now := time.Date(2025, 7, 31, 12, 0, 0, 0, time.UTC)
	edge := now.AddDate(0, 0, -30)
	appts := []models.Appointment{
		cut("1", "A", "Fade", edge, 10, 0, models.StatusCompleted),
		cut("2", "B", "Fade", edge.Add(-time.Second), 10, 0, models.StatusCompleted),
	}

	c := CompareWindows(appts, now)
	assert.Equal(t, 1, c.Current.Bookings)
	assert.Equal(t, 1, c.Previous.Bookings)
	assert.Equal(t, 0, c.Change.Revenue)
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name              string
		current, previous float64
		want              int
	}{
		{"growth from zero", 10, 0, 100},
		{"flat at zero", 0, 0, 0},
		{"loss from zero", -5, 0, 0},
		{"half again", 150, 100, 50},
		{"drop", 25, 100, -75},
		{"recovery from a loss", 10, -10, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, percentChange(tt.current, tt.previous))
		})
	}
}

func TestWeeklyCutBreakdown(t *testing.T) {
	// Wednesday; the week runs Sunday 13th to Saturday 19th.
	now := time.Date(2025, 7, 16, 15, 0, 0, 0, time.UTC)
	sun := time.Date(2025, 7, 13, 9, 0, 0, 0, time.UTC)
	appts := []models.Appointment{
		cut("1", "Ann", "Fade", sun.AddDate(0, 0, 1), 30, 0, models.StatusCompleted),
		cut("2", "Bob", "Fade", sun, 20, 0, models.StatusCompleted),
		cut("3", "Cy", "Fade", sun.AddDate(0, 0, 1).Add(2*time.Hour), 40, 0, models.StatusCompleted),
		cut("4", "Di", "Trim", sun.AddDate(0, 0, 6), 25, 0, models.StatusCompleted),
		cut("5", "Ed", "Trim", sun.AddDate(0, 0, 7), 25, 0, models.StatusCompleted),
		cut("6", "Flo", "Beard", sun.AddDate(0, 0, -1), 15, 0, models.StatusCompleted),
		cut("7", "Gus", "Beard", sun.AddDate(0, 0, 2), 15, 0, models.StatusScheduled),
	}

	w := WeeklyCutBreakdown(appts, now)
	assert.Equal(t, time.Date(2025, 7, 13, 0, 0, 0, 0, time.UTC), w.WeekStart)
	assert.Equal(t, time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC), w.WeekEnd)
	assert.Equal(t, 4, w.Completed)
	require.Len(t, w.Top, 2)

	fade := w.Top[0]
	assert.Equal(t, "Fade", fade.HaircutType)
	assert.Equal(t, 3, fade.Count)
	assert.Equal(t, 75, fade.Percent)
	assert.Equal(t, 30.0, fade.AveragePrice)
	require.Len(t, fade.ByDay, 2)
	assert.Equal(t, "Sunday", fade.ByDay[0].Day)
	assert.Equal(t, 1, fade.ByDay[0].Count)
	assert.Equal(t, "Monday", fade.ByDay[1].Day)
	assert.Equal(t, 2, fade.ByDay[1].Count)
	assert.Equal(t, "1", fade.ByDay[1].Appointments[0].ID)

	assert.Equal(t, "Trim", w.Top[1].HaircutType)
	assert.Equal(t, 25, w.Top[1].Percent)
}

func TestWeeklyCutBreakdown_TopFive(t *testing.T) {
	now := time.Date(2025, 7, 16, 15, 0, 0, 0, time.UTC)
	var appts []models.Appointment
	for i, name := range []string{"A", "B", "C", "D", "E", "F", "F"} {
		appts = append(appts, cut(string(rune('0'+i)), "X", name, now.Add(-time.Hour), 10, 0, models.StatusCompleted))
	}

	w := WeeklyCutBreakdown(appts, now)
	require.Len(t, w.Top, 5)
	assert.Equal(t, "F", w.Top[0].HaircutType)
	assert.Equal(t, "D", w.Top[4].HaircutType)
}

func TestWeeklyCutBreakdown_Empty(t *testing.T) {
	w := WeeklyCutBreakdown(nil, time.Now())
	assert.Zero(t, w.Completed)
	assert.NotNil(t, w.Top)
	assert.Empty(t, w.Top)
}

func TestParseSearchField(t *testing.T) {
	f, err := ParseSearchField("")
	require.NoError(t, err)
	assert.Equal(t, SearchAll, f)

	f, err = ParseSearchField(" Client ")
	require.NoError(t, err)
	assert.Equal(t, SearchClient, f)

	_, err = ParseSearchField("phone")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestPastBookings(t *testing.T) {
	day := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	appts := []models.Appointment{
		cut("1", "Fadeem Ali", "Trim", day, 20, 0, models.StatusCompleted),
		cut("2", "Bob", "Skin Fade", day.AddDate(0, 0, 2), 35, 0, models.StatusCompleted),
		cut("3", "Cara", "Fade", day.AddDate(0, 0, 1), 30, 0, models.StatusCompleted),
		cut("4", "Dee", "Fade", day.AddDate(0, 0, 5), 30, 0, models.StatusScheduled),
	}

	all := PastBookings(appts, "", SearchAll, 0)
	assert.Equal(t, 3, all.Total)
	require.Len(t, all.Appointments, 3)
	assert.Equal(t, []string{"2", "3", "1"}, ids(all.Appointments))

	either := PastBookings(appts, "FADE", SearchAll, 0)
	assert.Equal(t, []string{"2", "3", "1"}, ids(either.Appointments))

	byService := PastBookings(appts, "fade", SearchService, 0)
	assert.Equal(t, []string{"2", "3"}, ids(byService.Appointments))

	byClient := PastBookings(appts, " fade ", SearchClient, 0)
	assert.Equal(t, []string{"1"}, ids(byClient.Appointments))

	limited := PastBookings(appts, "", SearchAll, 2)
	assert.Equal(t, 3, limited.Total)
	assert.Equal(t, []string{"2", "3"}, ids(limited.Appointments))

	none := PastBookings(appts, "nobody", SearchClient, 0)
	assert.Zero(t, none.Total)
	assert.NotNil(t, none.Appointments)
}

func ids(appts []models.Appointment) []string {
	out := make([]string, 0, len(appts))
	for _, a := range appts {
		out = append(out, a.ID)
	}
	return out
}
