// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/barber-dashboard/backend/internal/api/handlers"
	"github.com/barber-dashboard/backend/internal/api/middleware"
	"github.com/barber-dashboard/backend/internal/cache"
	"github.com/barber-dashboard/backend/internal/state"
	"github.com/barber-dashboard/backend/internal/storage"
	"github.com/barber-dashboard/backend/internal/websocket"
)

// Services are the components the router exposes over HTTP.
type Services struct {
	DB        *storage.DB
	State     *state.Store
	Hub       *websocket.Hub
	Syncer    handlers.Syncer
	Settings  handlers.SettingsService
	Runs      handlers.RunLister
	Inventory handlers.InventoryStore
	Cache     cache.Cache
	CacheTTL  time.Duration
	Location  *time.Location
}

// calculatorSource is a settings service that also builds calculators.
type calculatorSource interface {
	handlers.SettingsService
	handlers.CalculatorSource
}

// NewRouter creates and configures the HTTP router with all API routes.
// staticDir is served at / when non-empty.
func NewRouter(svc Services, staticDir string, log *zap.Logger) *mux.Router {
	if log == nil {
		log = zap.NewNop()
	}
	if svc.Cache == nil {
		svc.Cache = cache.NewNoop()
	}

	r := mux.NewRouter()

	r.Use(middleware.Logging(log.Named("http")))
	r.Use(middleware.ErrorRecovery(log))

	d := handlers.DashboardDeps{
		State:    svc.State,
		Cache:    svc.Cache,
		CacheTTL: svc.CacheTTL,
		Location: svc.Location,
		Log:      log.Named("api"),
	}
	if calcs, ok := svc.Settings.(calculatorSource); ok {
		d.Calculators = calcs
	}

	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(svc.DB)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(svc.State, svc.Syncer, svc.Hub)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(svc.Hub, log)).Methods("GET")

	// Dashboard data
	api.HandleFunc("/dashboard", handlers.GetDashboard(d)).Methods("GET")
	api.HandleFunc("/stats", handlers.GetStats(d)).Methods("GET")
	api.HandleFunc("/appointments", handlers.ListAppointments(d)).Methods("GET")
	api.HandleFunc("/appointments/next", handlers.GetNextAppointment(d)).Methods("GET")
	api.HandleFunc("/expenses", handlers.ListExpenses(d)).Methods("GET")
	api.HandleFunc("/insights", handlers.GetInsights(d)).Methods("GET")

	// Analytics
	api.HandleFunc("/analytics/services", handlers.ServiceBreakdown(d)).Methods("GET")
	api.HandleFunc("/analytics/days", handlers.DayBreakdown(d)).Methods("GET")
	api.HandleFunc("/analytics/comparison", handlers.CompareWindows(d)).Methods("GET")
	api.HandleFunc("/analytics/week", handlers.WeeklyCuts(d)).Methods("GET")
	api.HandleFunc("/analytics/bookings", handlers.ListPastBookings(d)).Methods("GET")
	api.HandleFunc("/clients", handlers.ListClients(d)).Methods("GET")
	api.HandleFunc("/validation", handlers.ValidateData(d)).Methods("GET")

	// Ingestion
	api.HandleFunc("/sync", handlers.TriggerSync(svc.Syncer)).Methods("POST")
	api.HandleFunc("/refresh", handlers.TriggerRefresh(svc.Syncer)).Methods("POST")
	api.HandleFunc("/ingest/runs", handlers.ListIngestRuns(svc.Runs)).Methods("GET")

	// Settings endpoints
	api.HandleFunc("/settings", handlers.GetSettings(svc.Settings)).Methods("GET")
	api.HandleFunc("/settings", handlers.UpdateSettings(svc.Settings)).Methods("PUT")

	// Inventory
	api.HandleFunc("/inventory", handlers.ListInventory(svc.Inventory)).Methods("GET")
	api.HandleFunc("/inventory/{id}", handlers.UpdateInventoryItem(svc.Inventory)).Methods("PATCH")

	// Serve static frontend files
	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}

	return r
}
