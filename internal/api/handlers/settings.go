package handlers

import (
	"context"
	"net/http"

	"github.com/barber-dashboard/backend/internal/api/middleware"
)

// SettingsService reads and writes runtime settings.
type SettingsService interface {
	SpendingFallback(ctx context.Context) float64
	SetSpendingFallback(ctx context.Context, v float64) error
}

// SettingsResponse represents settings in API responses.
type SettingsResponse struct {
	SpendingFallback float64 `json:"spending_fallback"`
}

// UpdateSettingsRequest is the body of PUT /api/settings.
type UpdateSettingsRequest struct {
	SpendingFallback *float64 `json:"spending_fallback" validate:"required,gte=0"`
}

// GetSettings returns all settings.
func GetSettings(svc SettingsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, SettingsResponse{SpendingFallback: svc.SpendingFallback(r.Context())})
	}
}

// UpdateSettings updates settings.
func UpdateSettings(svc SettingsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateSettingsRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		if err := svc.SetSpendingFallback(r.Context(), *req.SpendingFallback); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update settings")
			return
		}

		writeJSON(w, http.StatusOK, SettingsResponse{SpendingFallback: svc.SpendingFallback(r.Context())})
	}
}
