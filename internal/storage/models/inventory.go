package models

import (
	"time"
)

// InventoryItem represents a stocked shop supply.
type InventoryItem struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Quantity         int       `json:"quantity"`
	Cost             float64   `json:"cost"`
	PurchaseDate     time.Time `json:"purchase_date"`
	EstimatedUsage   int       `json:"estimated_usage"`   // days until empty
	RestockThreshold int       `json:"restock_threshold"` // low stock at or below this
	AutoReorder      bool      `json:"auto_reorder"`
	UsageRate        float64   `json:"usage_rate"` // items per day
	UpdatedAt        time.Time `json:"updated_at"`
}
