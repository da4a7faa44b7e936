package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentdesk/internal/models"
)

const itemColumns = `id, shop_id, name, sku, quantity, daily_rate_cents, deposit_cents, sort_order, is_active, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID, &item.ShopID, &item.Name, &item.SKU, &item.Quantity,
		&item.DailyRateCents, &item.DepositCents, &item.SortOrder, &item.IsActive,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (shop_id, name, sku, quantity, daily_rate_cents, deposit_cents, sort_order, is_active, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		item.ShopID, item.Name, item.SKU, item.Quantity,
		item.DailyRateCents, item.DepositCents, item.SortOrder, item.IsActive,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

// SyncItems upserts configured items by id, so the catalog follows config
// across restarts without losing booking history.
func (db *DB) SyncItems(ctx context.Context, shopID string, items []models.Item) error {
	query := `INSERT INTO items (id, shop_id, name, sku, quantity, daily_rate_cents, deposit_cents, sort_order, is_active, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                  name = excluded.name,
                  sku = excluded.sku,
                  quantity = excluded.quantity,
                  daily_rate_cents = excluded.daily_rate_cents,
                  deposit_cents = excluded.deposit_cents,
                  sort_order = excluded.sort_order,
                  is_active = excluded.is_active,
                  updated_at = excluded.updated_at`
	now := time.Now()
	for _, item := range items {
		_, err := db.ExecContext(ctx, query,
			item.ID, shopID, item.Name, item.SKU, item.Quantity,
			item.DailyRateCents, item.DepositCents, item.SortOrder, item.IsActive,
			now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to sync item %q: %w", item.Name, err)
		}
	}
	return nil
}

// GetItemByID returns an active item scoped to the shop, or ErrItemNotFound.
func (db *DB) GetItemByID(ctx context.Context, shopID string, id int64) (*models.Item, error) {
	return getActiveItem(ctx, db.DB, shopID, id)
}

func getActiveItem(ctx context.Context, q querier, shopID string, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ? AND shop_id = ? AND is_active = 1`
	item, err := scanItem(q.QueryRowContext(ctx, query, id, shopID))
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (db *DB) GetActiveItems(ctx context.Context, shopID string) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE shop_id = ? AND is_active = 1 ORDER BY sort_order, name`
	rows, err := db.QueryContext(ctx, query, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func (db *DB) DeactivateItem(ctx context.Context, shopID string, id int64) error {
	query := `UPDATE items SET is_active = 0, updated_at = ? WHERE id = ? AND shop_id = ?`
	result, err := db.ExecContext(ctx, query, time.Now(), id, shopID)
	if err != nil {
		return fmt.Errorf("failed to deactivate item: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrItemNotFound
	}
	return nil
}
