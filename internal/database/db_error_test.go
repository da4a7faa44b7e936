package database

import (
	"context"
	"testing"

	"rentdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Operations against a closed handle must surface errors, not panic.
func TestOperationsOnClosedDB(t *testing.T) {
	db := setupTestDB(t)
	camera, _ := seedTestShop(t, db)
	require.NoError(t, db.Close())

	ctx := context.Background()

	_, err := db.GetActiveItems(ctx, testShopID)
	assert.Error(t, err)

	_, err = db.RemainingQuantity(ctx, testShopID, camera.ID, at(10), at(12))
	assert.Error(t, err)

	_, err = db.CreateBookingLocked(ctx, &models.BookingRequest{
		ShopID: testShopID, ItemID: camera.ID, StartAt: at(10), EndAt: at(12), Quantity: 1,
	})
	assert.Error(t, err)

	err = db.UpdateBookingStatusWithVersion(ctx, testShopID, 1, 1, models.StatusConfirmed)
	assert.Error(t, err)
}

func TestCreateBookingCancelledContext(t *testing.T) {
	db := setupTestDB(t)
	camera, _ := seedTestShop(t, db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.CreateBookingLocked(ctx, &models.BookingRequest{
		ShopID: testShopID, ItemID: camera.ID, StartAt: at(10), EndAt: at(12), Quantity: 1,
	})
	assert.Error(t, err)

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM bookings`).Scan(&rows))
	assert.Zero(t, rows, "a failed transaction leaves no partial rows")
}
