package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentdesk/internal/models"

	"github.com/google/uuid"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so the overlap
// aggregation can run standalone or against the reservation transaction's
// snapshot.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// RemainingQuantity computes the free quantity of an item over the half-open
// window [startAt, endAt). An absent or inactive item yields Exists=false,
// not an error. Pure read.
func (db *DB) RemainingQuantity(ctx context.Context, shopID string, itemID int64, startAt, endAt time.Time) (*models.RemainingQuantity, error) {
	return remainingQuantity(ctx, db.DB, shopID, itemID, startAt, endAt)
}

func remainingQuantity(ctx context.Context, q querier, shopID string, itemID int64, startAt, endAt time.Time) (*models.RemainingQuantity, error) {
	var total int64
	err := q.QueryRowContext(ctx,
		`SELECT quantity FROM items WHERE id = ? AND shop_id = ? AND is_active = 1`,
		itemID, shopID).Scan(&total)
	if err == sql.ErrNoRows {
		return &models.RemainingQuantity{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item quantity: %w", err)
	}

	// Half-open overlap: booking.start < endAt AND booking.end > startAt.
	// Adjacent windows do not collide. COALESCE turns the empty sum into 0.
	var reserved int64
	err = q.QueryRowContext(ctx, `
        SELECT COALESCE(SUM(bi.quantity), 0)
        FROM booking_items bi
        JOIN bookings b ON b.id = bi.booking_id
        WHERE bi.item_id = ?
          AND b.shop_id = ?
          AND b.status IN (?, ?)
          AND b.start_at < ?
          AND b.end_at > ?`,
		itemID, shopID, models.StatusPending, models.StatusConfirmed,
		encodeTime(endAt), encodeTime(startAt)).Scan(&reserved)
	if err != nil {
		return nil, fmt.Errorf("failed to sum reserved quantity: %w", err)
	}

	remaining := total - reserved
	if remaining < 0 {
		// Should not happen while writers serialize; clamp so the value is
		// never negative even after a transient overcommit.
		remaining = 0
	}
	return &models.RemainingQuantity{Exists: true, Remaining: remaining, Total: total}, nil
}

// CreateBookingLocked runs the whole check-then-insert sequence as one atomic
// unit. SQLite snapshot reads alone would let two writers both observe
// "remaining=1" and both commit, so writers for the same item are serialized
// by a per-item mutex held from before the transaction until after commit.
func (db *DB) CreateBookingLocked(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	if !models.ValidRange(req.StartAt, req.EndAt) {
		return nil, ErrInvalidRange
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	mu := db.lockItem(req.ItemID)
	mu.Lock()
	defer mu.Unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 1. Item must exist, be active and belong to the shop.
	item, err := getActiveItem(ctx, tx, req.ShopID, req.ItemID)
	if err != nil {
		return nil, err
	}

	// 2. Recompute remaining inside the transaction's view of booking state.
	rq, err := remainingQuantity(ctx, tx, req.ShopID, req.ItemID, req.StartAt, req.EndAt)
	if err != nil {
		return nil, err
	}
	if !rq.Exists {
		return nil, ErrItemNotFound
	}
	if rq.Remaining < req.Quantity {
		return nil, ErrNotAvailable
	}

	// 3. Resolve or create the customer.
	customer, err := resolveCustomer(ctx, tx, req.ShopID, req.CustomerName)
	if err != nil {
		return nil, err
	}

	// 4. Insert booking and line item, snapshotting the current rate/deposit.
	now := time.Now()
	booking := &models.Booking{
		Reference:    uuid.NewString(),
		ShopID:       req.ShopID,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		StartAt:      req.StartAt.UTC().Truncate(time.Second),
		EndAt:        req.EndAt.UTC().Truncate(time.Second),
		Status:       models.StatusPending,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	result, err := tx.ExecContext(ctx, `
        INSERT INTO bookings (reference, shop_id, customer_id, start_at, end_at, status, version, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.Reference, booking.ShopID, booking.CustomerID,
		encodeTime(booking.StartAt), encodeTime(booking.EndAt),
		booking.Status, booking.Version, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}
	booking.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	line := models.BookingItem{
		BookingID:              booking.ID,
		ItemID:                 item.ID,
		ItemName:               item.Name,
		Quantity:               req.Quantity,
		DailyRateCentsSnapshot: item.DailyRateCents,
		DepositCentsSnapshot:   item.DepositCents,
	}
	lineResult, err := tx.ExecContext(ctx, `
        INSERT INTO booking_items (booking_id, item_id, quantity, daily_rate_cents_snapshot, deposit_cents_snapshot)
        VALUES (?, ?, ?, ?, ?)`,
		line.BookingID, line.ItemID, line.Quantity,
		line.DailyRateCentsSnapshot, line.DepositCentsSnapshot,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking item: %w", err)
	}
	line.ID, err = lineResult.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.Items = []models.BookingItem{line}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}
	return booking, nil
}

const bookingColumns = `b.id, b.reference, b.shop_id, b.customer_id, c.name, b.start_at, b.end_at, b.status, b.version, b.created_at, b.updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	var b models.Booking
	var startStr, endStr string
	err := row.Scan(
		&b.ID, &b.Reference, &b.ShopID, &b.CustomerID, &b.CustomerName,
		&startStr, &endStr, &b.Status, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if b.StartAt, err = decodeTime(startStr); err != nil {
		return nil, fmt.Errorf("failed to parse booking start %q: %w", startStr, err)
	}
	if b.EndAt, err = decodeTime(endStr); err != nil {
		return nil, fmt.Errorf("failed to parse booking end %q: %w", endStr, err)
	}
	return &b, nil
}

func (db *DB) loadBookingItems(ctx context.Context, booking *models.Booking) error {
	rows, err := db.QueryContext(ctx, `
        SELECT bi.id, bi.booking_id, bi.item_id, i.name, bi.quantity, bi.daily_rate_cents_snapshot, bi.deposit_cents_snapshot
        FROM booking_items bi
        JOIN items i ON i.id = bi.item_id
        WHERE bi.booking_id = ?
        ORDER BY bi.id`, booking.ID)
	if err != nil {
		return fmt.Errorf("failed to load booking items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var li models.BookingItem
		if err := rows.Scan(&li.ID, &li.BookingID, &li.ItemID, &li.ItemName, &li.Quantity,
			&li.DailyRateCentsSnapshot, &li.DepositCentsSnapshot); err != nil {
			return fmt.Errorf("failed to scan booking item: %w", err)
		}
		booking.Items = append(booking.Items, li)
	}
	return rows.Err()
}

func (db *DB) GetBooking(ctx context.Context, shopID string, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN customers c ON c.id = b.customer_id
              WHERE b.id = ? AND b.shop_id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id, shopID))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if err := db.loadBookingItems(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (db *DB) GetBookingByReference(ctx context.Context, shopID, reference string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN customers c ON c.id = b.customer_id
              WHERE b.reference = ? AND b.shop_id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, reference, shopID))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if err := db.loadBookingItems(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// UpdateBookingStatusWithVersion is an optimistic status transition: it only
// applies when the caller's version is still current.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, shopID string, id, fromVersion int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND shop_id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id, shopID, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// ListBookingsForRange returns shop bookings overlapping [startAt, endAt),
// ordered by start. Completed bookings are listed even though they no longer
// consume inventory; cancelled ones are not.
func (db *DB) ListBookingsForRange(ctx context.Context, shopID string, startAt, endAt time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN customers c ON c.id = b.customer_id
              WHERE b.shop_id = ?
                AND b.status IN (?, ?, ?)
                AND b.start_at < ?
                AND b.end_at > ?
              ORDER BY b.start_at, b.id`
	rows, err := db.QueryContext(ctx, query, shopID,
		models.StatusPending, models.StatusConfirmed, models.StatusCompleted,
		encodeTime(endAt), encodeTime(startAt))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	for _, booking := range bookings {
		if err := db.loadBookingItems(ctx, booking); err != nil {
			return nil, err
		}
	}
	return bookings, nil
}
