package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"rentdesk/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// timeLayout is the storage format for instants: RFC3339, UTC, second
// precision. Fixed width and zone, so lexicographic comparison in SQL equals
// instant comparison.
const timeLayout = "2006-01-02T15:04:05Z"

type DB struct {
	*sql.DB
	logger    *zerolog.Logger
	itemLocks sync.Map // item id -> *sync.Mutex
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	memory := path == ":memory:"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	if memory {
		dsn = "file::memory:?mode=memory&cache=shared&_foreign_keys=on"
	}

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if memory {
		// A shared in-memory database lives as long as one connection does.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(sqlDB); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{DB: sqlDB, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS shops (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            timezone TEXT NOT NULL DEFAULT 'UTC',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS customers (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            shop_id TEXT NOT NULL REFERENCES shops(id),
            name TEXT NOT NULL,
            walk_in BOOLEAN NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            shop_id TEXT NOT NULL REFERENCES shops(id),
            name TEXT NOT NULL,
            sku TEXT NOT NULL DEFAULT '',
            quantity INTEGER NOT NULL CHECK (quantity >= 0),
            daily_rate_cents INTEGER NOT NULL DEFAULT 0,
            deposit_cents INTEGER NOT NULL DEFAULT 0,
            sort_order INTEGER NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            reference TEXT NOT NULL UNIQUE,
            shop_id TEXT NOT NULL REFERENCES shops(id),
            customer_id INTEGER NOT NULL REFERENCES customers(id),
            start_at TEXT NOT NULL,
            end_at TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            version INTEGER NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            CHECK (start_at < end_at)
        )`,
		`CREATE TABLE IF NOT EXISTS booking_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            booking_id INTEGER NOT NULL REFERENCES bookings(id),
            item_id INTEGER NOT NULL REFERENCES items(id),
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            daily_rate_cents_snapshot INTEGER NOT NULL DEFAULT 0,
            deposit_cents_snapshot INTEGER NOT NULL DEFAULT 0
        )`,

		// One walk-in customer per shop.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_walk_in ON customers(shop_id) WHERE walk_in = 1`,

		// Overlap probe columns.
		`CREATE INDEX IF NOT EXISTS idx_bookings_shop_status ON bookings(shop_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_start_at ON bookings(start_at)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_end_at ON bookings(end_at)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_items_item_id ON booking_items(item_id)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_items_booking_id ON booking_items(booking_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// lockItem returns the mutex serializing booking writers for one item.
func (db *DB) lockItem(itemID int64) *sync.Mutex {
	v, _ := db.itemLocks.LoadOrStore(itemID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// Seed upserts the demo shop, its walk-in customer and the configured items.
// Idempotent; runs at startup.
func (db *DB) Seed(ctx context.Context, shop models.Shop, walkInName string, items []models.Item) error {
	query := `INSERT INTO shops (id, name, timezone) VALUES (?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET name = excluded.name, timezone = excluded.timezone`
	if _, err := db.ExecContext(ctx, query, shop.ID, shop.Name, shop.Timezone); err != nil {
		return fmt.Errorf("failed to seed shop: %w", err)
	}

	var walkInID int64
	err := db.QueryRowContext(ctx,
		`SELECT id FROM customers WHERE shop_id = ? AND walk_in = 1`, shop.ID).Scan(&walkInID)
	if err == sql.ErrNoRows {
		if walkInName == "" {
			walkInName = "Walk-in Customer"
		}
		_, err = db.ExecContext(ctx,
			`INSERT INTO customers (shop_id, name, walk_in) VALUES (?, ?, 1)`, shop.ID, walkInName)
	}
	if err != nil {
		return fmt.Errorf("failed to seed walk-in customer: %w", err)
	}

	return db.SyncItems(ctx, shop.ID, items)
}
