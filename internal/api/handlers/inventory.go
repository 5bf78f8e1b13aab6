package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/barber-dashboard/backend/internal/api/middleware"
	"github.com/barber-dashboard/backend/internal/inventory"
	"github.com/barber-dashboard/backend/internal/storage/models"
)

// InventoryStore persists inventory items.
type InventoryStore interface {
	List(ctx context.Context) ([]models.InventoryItem, error)
	GetByID(ctx context.Context, id string) (*models.InventoryItem, error)
	Update(ctx context.Context, item *models.InventoryItem) error
}

// UpdateInventoryRequest is the body of PATCH /api/inventory/{id}. Only
// the fields present are changed.
type UpdateInventoryRequest struct {
	Quantity         *int     `json:"quantity" validate:"omitnil,gte=0"`
	RestockThreshold *int     `json:"restock_threshold" validate:"omitnil,gte=0"`
	AutoReorder      *bool    `json:"auto_reorder"`
	UsageRate        *float64 `json:"usage_rate" validate:"omitnil,eq=0|gte=0.001"`
}

// ListInventory returns every item with its stock status.
func ListInventory(items InventoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := items.List(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to list inventory")
			return
		}
		writeJSON(w, http.StatusOK, inventory.Summarize(list, time.Now()))
	}
}

// UpdateInventoryItem applies a partial update to one item.
func UpdateInventoryItem(items InventoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := mux.Vars(r)["id"]

		item, err := items.GetByID(ctx, id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to get inventory item")
			return
		}
		if item == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Inventory item not found")
			return
		}

		var req UpdateInventoryRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		if req.Quantity != nil {
			item.Quantity = *req.Quantity
		}
		if req.RestockThreshold != nil {
			item.RestockThreshold = *req.RestockThreshold
		}
		if req.AutoReorder != nil {
			item.AutoReorder = *req.AutoReorder
		}
		if req.UsageRate != nil {
			item.UsageRate = *req.UsageRate
		}

		if err := items.Update(ctx, item); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update inventory item")
			return
		}

		writeJSON(w, http.StatusOK, inventory.Status(*item, time.Now()))
	}
}
