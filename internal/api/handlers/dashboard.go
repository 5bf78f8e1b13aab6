package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/barber-dashboard/backend/internal/api/middleware"
	"github.com/barber-dashboard/backend/internal/cache"
	"github.com/barber-dashboard/backend/internal/dashboard"
	"github.com/barber-dashboard/backend/internal/storage/models"
)

// CalculatorSource supplies a stats calculator with the current settings.
type CalculatorSource interface {
	Calculator(ctx context.Context) dashboard.Calculator
}

// DashboardDeps groups what the read-side dashboard handlers need.
type DashboardDeps struct {
	State       StateReader
	Calculators CalculatorSource
	Cache       cache.Cache
	CacheTTL    time.Duration
	Location    *time.Location
	Now         func() time.Time
	Log         *zap.Logger
}

func (d DashboardDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d DashboardDeps) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.Local
}

func (d DashboardDeps) calculator(ctx context.Context) dashboard.Calculator {
	if d.Calculators == nil {
		return dashboard.Calculator{SpendingFallback: dashboard.DefaultSpendingFallback}
	}
	return d.Calculators.Calculator(ctx)
}

// DashboardResponse is everything the main dashboard view renders.
type DashboardResponse struct {
	Stats           models.DashboardStats     `json:"stats"`
	NextAppointment *models.Appointment       `json:"next_appointment"`
	Insights        *models.AIInsightsSummary `json:"insights"`
	Connection      ConnectionStatus          `json:"connection"`
}

// GetDashboard returns stats, the next appointment, insights and the
// connection status in one response.
func GetDashboard(d DashboardDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.State.Snapshot()
		now := d.now().In(d.location())

		writeJSON(w, http.StatusOK, DashboardResponse{
			Stats:           d.calculator(r.Context()).Compute(snap.Appointments, snap.Expenses, now),
			NextAppointment: dashboard.NextAppointment(snap.Appointments, now),
			Insights:        snap.Insights,
			Connection:      connectionStatus(snap),
		})
	}
}

// GetStats returns the computed dashboard stats. Encoded responses are
// cached per data stamp and minute.
func GetStats(d DashboardDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		snap := d.State.Snapshot()
		now := d.now().In(d.location())
		calc := d.calculator(ctx)
		key := cache.StatsKey(cache.StatsStamp{
			Version:     snap.Version,
			LastUpdated: snap.LastUpdated,
			Fallback:    calc.SpendingFallback,
		}, now)

		if d.Cache != nil {
			data, ok, err := d.Cache.Get(ctx, key)
			if err != nil && d.Log != nil {
				d.Log.Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
			}
			if ok {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "hit")
				_, _ = w.Write(data)
				return
			}
		}

		data, err := json.Marshal(calc.Compute(snap.Appointments, snap.Expenses, now))
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to encode stats")
			return
		}
		data = append(data, '\n')

		if d.Cache != nil {
			if err := d.Cache.Set(ctx, key, data, d.CacheTTL); err != nil && d.Log != nil {
				d.Log.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "miss")
		_, _ = w.Write(data)
	}
}

// ListAppointments returns appointments filtered by ?period= and ?status=.
func ListAppointments(d DashboardDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		period, err := dashboard.ParsePeriod(q.Get("period"))
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "period must be one of today, week, month, year, all")
			return
		}
		status, err := dashboard.ParseStatus(q.Get("status"))
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "status must be one of all, scheduled, completed")
			return
		}

		snap := d.State.Snapshot()
		writeJSON(w, http.StatusOK, dashboard.FilterAppointments(snap.Appointments, period, status, d.now().In(d.location())))
	}
}

// GetNextAppointment returns the next scheduled appointment, or 404.
func GetNextAppointment(d DashboardDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next := dashboard.NextAppointment(d.State.Snapshot().Appointments, d.now())
		if next == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "No upcoming appointments")
			return
		}
		writeJSON(w, http.StatusOK, next)
	}
}

// ListExpenses returns the current expense records.
func ListExpenses(d DashboardDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.State.Snapshot().Expenses)
	}
}

// GetInsights returns the AI insights summary, or null when none was
// delivered.
func GetInsights(d DashboardDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.State.Snapshot().Insights)
	}
}
