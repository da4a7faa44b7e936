package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentdesk/internal/models"
)

func (db *DB) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `INSERT INTO customers (shop_id, name, walk_in, created_at) VALUES (?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query, customer.ShopID, customer.Name, customer.WalkIn, now)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	customer.ID = id
	customer.CreatedAt = now
	return nil
}

func (db *DB) GetWalkInCustomer(ctx context.Context, shopID string) (*models.Customer, error) {
	return walkInCustomer(ctx, db.DB, shopID)
}

func walkInCustomer(ctx context.Context, q querier, shopID string) (*models.Customer, error) {
	var c models.Customer
	query := `SELECT id, shop_id, name, walk_in, created_at FROM customers WHERE shop_id = ? AND walk_in = 1`
	err := q.QueryRowContext(ctx, query, shopID).Scan(&c.ID, &c.ShopID, &c.Name, &c.WalkIn, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrCustomerResolution
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get walk-in customer: %w", err)
	}
	return &c, nil
}

// resolveCustomer creates a customer row when a name is supplied, otherwise
// falls back to the shop's walk-in customer.
func resolveCustomer(ctx context.Context, q querier, shopID, name string) (*models.Customer, error) {
	if name == "" {
		return walkInCustomer(ctx, q, shopID)
	}

	now := time.Now()
	result, err := q.ExecContext(ctx,
		`INSERT INTO customers (shop_id, name, walk_in, created_at) VALUES (?, ?, 0, ?)`,
		shopID, name, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCustomerResolution, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCustomerResolution, err)
	}
	return &models.Customer{ID: id, ShopID: shopID, Name: name, CreatedAt: now}, nil
}
