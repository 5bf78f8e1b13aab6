package handlers

import (
	"net/http"
	"strconv"

	"github.com/barber-dashboard/backend/internal/api/middleware"
	"github.com/barber-dashboard/backend/internal/dashboard"
)

// ServiceBreakdown returns booking counts per haircut type.
func ServiceBreakdown(d DashboardDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dashboard.ServiceBreakdown(d.State.Snapshot().Appointments))
	}
}

// DayBreakdown returns booking counts per weekday.
func DayBreakdown(d DashboardDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dashboard.DayBreakdown(d.State.Snapshot().Appointments, d.location()))
	}
}

// ListClients returns per-client visit history, filtered by ?q=.
func ListClients(d DashboardDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.State.Snapshot()
		writeJSON(w, http.StatusOK, dashboard.ClientHistories(snap.Appointments, r.URL.Query().Get("q"), d.now()))
	}
}

// ValidateData returns a data-quality report for the current appointments.
func ValidateData(d DashboardDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dashboard.Validate(d.State.Snapshot().Appointments))
	}
}

// CompareWindows returns completed totals for the last 30 days against the
// 30 days before.
func CompareWindows(d DashboardDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.State.Snapshot()
		writeJSON(w, http.StatusOK, dashboard.CompareWindows(snap.Appointments, d.now().In(d.location())))
	}
}

// WeeklyCuts returns this week's completed cuts by haircut type.
func WeeklyCuts(d DashboardDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.State.Snapshot()
		writeJSON(w, http.StatusOK, dashboard.WeeklyCutBreakdown(snap.Appointments, d.now().In(d.location())))
	}
}

// ListPastBookings returns completed appointments newest first, searched
// with ?q= over the ?field= column (all, client or service). ?limit= caps
// the page.
func ListPastBookings(d DashboardDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		field, err := dashboard.ParseSearchField(query.Get("field"))
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "field must be one of all, client, service")
			return
		}

		limit := 10
		if raw := query.Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 || n > 500 {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "limit must be between 1 and 500")
				return
			}
			limit = n
		}

		snap := d.State.Snapshot()
		writeJSON(w, http.StatusOK, dashboard.PastBookings(snap.Appointments, query.Get("q"), field, limit))
	}
}
