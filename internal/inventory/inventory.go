// Package inventory derives stock status for shop supplies.
package inventory

import (
	"math"
	"time"

	"github.com/barber-dashboard/backend/internal/storage/models"
)

// ItemStatus is an inventory item with its derived stock status.
type ItemStatus struct {
	models.InventoryItem
	LowStock         bool       `json:"low_stock"`
	DaysUntilRestock *int       `json:"days_until_restock"`
	OutOfStockDate   *time.Time `json:"out_of_stock_date"`
}

// Summary is the inventory card data.
type Summary struct {
	Items         []ItemStatus `json:"items"`
	LowStock      []ItemStatus `json:"low_stock"`
	TotalValue    float64      `json:"total_value"`
	AutoReorderOn int          `json:"auto_reorder_on"`
}

// IsLowStock reports whether quantity is at or below the restock threshold.
func IsLowStock(item models.InventoryItem) bool {
	return item.Quantity <= item.RestockThreshold
}

// MaxRestockDays caps DaysUntilRestock. Longer horizons are reported as
// no restock needed.
const MaxRestockDays = 100 * 365

// DaysUntilRestock returns whole days of stock left at the current usage
// rate, or nil when the item is not being used or will not run out within
// MaxRestockDays.
func DaysUntilRestock(item models.InventoryItem) *int {
	if item.UsageRate <= 0 || math.IsNaN(item.UsageRate) || math.IsInf(item.UsageRate, 0) {
		return nil
	}
	days := math.Floor(float64(item.Quantity) / item.UsageRate)
	if math.IsNaN(days) || days > MaxRestockDays {
		return nil
	}
	n := int(math.Max(0, days))
	return &n
}

// Status derives the stock status of one item relative to now.
func Status(item models.InventoryItem, now time.Time) ItemStatus {
	s := ItemStatus{
		InventoryItem:    item,
		LowStock:         IsLowStock(item),
		DaysUntilRestock: DaysUntilRestock(item),
	}
	if s.DaysUntilRestock != nil {
		d := now.AddDate(0, 0, *s.DaysUntilRestock)
		s.OutOfStockDate = &d
	}
	return s
}

// Summarize derives status for every item. TotalValue is quantity times
// unit cost summed over all items.
func Summarize(items []models.InventoryItem, now time.Time) Summary {
	sum := Summary{
		Items:    make([]ItemStatus, 0, len(items)),
		LowStock: make([]ItemStatus, 0),
	}
	for _, item := range items {
		s := Status(item, now)
		sum.Items = append(sum.Items, s)
		if s.LowStock {
			sum.LowStock = append(sum.LowStock, s)
		}
		if item.AutoReorder {
			sum.AutoReorderOn++
		}
		sum.TotalValue += float64(item.Quantity) * item.Cost
	}
	return sum
}
