// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/barber-dashboard/backend/internal/api/middleware"
	"github.com/barber-dashboard/backend/internal/state"
	"github.com/barber-dashboard/backend/internal/storage"
)

// StateReader exposes the current application state.
type StateReader interface {
	Snapshot() state.Snapshot
}

// writeJSON encodes v with the given status. Encoding happens before the
// header is written so a failure still yields a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.PingContext(r.Context()) == nil

		status := "healthy"
		code := http.StatusOK
		if !dbConnected {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		writeJSON(w, code, HealthResponse{Status: status, DBConnected: dbConnected})
	}
}

// ConnectionStatus is the dashboard's view of the upstream feed.
type ConnectionStatus struct {
	Live          bool       `json:"live"`
	Configured    bool       `json:"configured"`
	Error         string     `json:"error,omitempty"`
	ErrorKind     string     `json:"error_kind,omitempty"`
	LastUpdated   *time.Time `json:"last_updated"`
	UsingFallback bool       `json:"using_fallback"`
	Version       uint64     `json:"version"`
}

func connectionStatus(snap state.Snapshot) ConnectionStatus {
	return ConnectionStatus{
		Live:          snap.Live,
		Configured:    snap.Configured,
		Error:         snap.LastError,
		ErrorKind:     snap.LastErrorKind,
		LastUpdated:   snap.LastUpdated,
		UsingFallback: snap.FromFallback,
		Version:       snap.Version,
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	ConnectionStatus
	NextSyncAt       *time.Time `json:"next_sync_at,omitempty"`
	PollInterval     string     `json:"poll_interval"`
	WebSocketClients int        `json:"websocket_clients"`
}

// ClientCounter reports connected WebSocket clients.
type ClientCounter interface {
	ClientCount() int
}

// Status returns a handler that provides system status information.
func Status(st StateReader, syncer Syncer, clients ClientCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, StatusResponse{
			ConnectionStatus: connectionStatus(st.Snapshot()),
			NextSyncAt:       syncer.NextRun(),
			PollInterval:     syncer.Interval().String(),
			WebSocketClients: clients.ClientCount(),
		})
	}
}
