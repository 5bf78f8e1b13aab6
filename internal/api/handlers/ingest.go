package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/barber-dashboard/backend/internal/api/middleware"
	"github.com/barber-dashboard/backend/internal/storage/models"
	"github.com/barber-dashboard/backend/internal/webhook"
)

// Syncer runs ingest cycles.
type Syncer interface {
	TriggerSync(trigger string)
	TriggerRefresh(ctx context.Context) (time.Time, error)
	NextRun() *time.Time
	Interval() time.Duration
}

// RunLister lists recorded ingest runs.
type RunLister interface {
	ListRecent(ctx context.Context, limit int) ([]models.IngestRun, error)
}

// SyncAcceptedResponse acknowledges a queued sync.
type SyncAcceptedResponse struct {
	Message string     `json:"message"`
	SyncAt  *time.Time `json:"sync_at,omitempty"`
}

// TriggerSync queues an immediate webhook fetch.
func TriggerSync(syncer Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		syncer.TriggerSync(models.TriggerManual)
		writeJSON(w, http.StatusAccepted, SyncAcceptedResponse{Message: "Sync started"})
	}
}

// TriggerRefresh asks the upstream workflow to regenerate its data and
// queues a sync once it has had time to finish.
func TriggerRefresh(syncer Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		syncAt, err := syncer.TriggerRefresh(r.Context())
		switch {
		case errors.Is(err, webhook.ErrConfig):
			middleware.WriteError(w, http.StatusServiceUnavailable, middleware.ErrNotConfigured, "Refresh webhook is not configured")
			return
		case err != nil:
			middleware.WriteError(w, http.StatusBadGateway, middleware.ErrUpstream, err.Error())
			return
		}

		writeJSON(w, http.StatusAccepted, SyncAcceptedResponse{Message: "Refresh triggered", SyncAt: &syncAt})
	}
}

// ListIngestRuns returns recent ingest history. ?limit= caps the result.
func ListIngestRuns(runs RunLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 || n > 500 {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "limit must be between 1 and 500")
				return
			}
			limit = n
		}

		list, err := runs.ListRecent(r.Context(), limit)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to list ingest runs")
			return
		}
		if list == nil {
			list = []models.IngestRun{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}
