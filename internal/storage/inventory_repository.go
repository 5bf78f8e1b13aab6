package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/barber-dashboard/backend/internal/storage/models"
)

// InventoryRepository provides data access for shop supplies.
type InventoryRepository struct {
	BaseRepository
}

// NewInventoryRepository creates a new inventory repository.
func NewInventoryRepository(db *DB) *InventoryRepository {
	return &InventoryRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const inventoryColumns = `id, name, quantity, cost, purchase_date, estimated_usage,
	restock_threshold, auto_reorder, usage_rate, updated_at`

func scanInventoryItem(row interface{ Scan(...any) error }) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	err := row.Scan(
		&item.ID, &item.Name, &item.Quantity, &item.Cost, &item.PurchaseDate, &item.EstimatedUsage,
		&item.RestockThreshold, &item.AutoReorder, &item.UsageRate, &item.UpdatedAt,
	)
	return item, err
}

// List returns all inventory items ordered by name.
func (r *InventoryRepository) List(ctx context.Context) ([]models.InventoryItem, error) {
	rows, err := r.DB().QueryContext(ctx, "SELECT "+inventoryColumns+" FROM inventory_items ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying inventory: %w", err)
	}
	defer rows.Close()

	items := make([]models.InventoryItem, 0)
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning inventory item: %w", err)
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// GetByID retrieves an item by its ID, or nil if it does not exist.
func (r *InventoryRepository) GetByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	item, err := scanInventoryItem(r.DB().QueryRowContext(ctx,
		"SELECT "+inventoryColumns+" FROM inventory_items WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying inventory item: %w", err)
	}
	return item, nil
}

// Update writes the mutable fields of an item.
func (r *InventoryRepository) Update(ctx context.Context, item *models.InventoryItem) error {
	item.UpdatedAt = r.Now()

	res, err := r.DB().ExecContext(ctx, `
		UPDATE inventory_items
		SET quantity = ?, restock_threshold = ?, auto_reorder = ?, usage_rate = ?, updated_at = ?
		WHERE id = ?
	`, item.Quantity, item.RestockThreshold, item.AutoReorder, item.UsageRate, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("updating inventory item: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("inventory item not found: %s", item.ID)
	}

	return nil
}
