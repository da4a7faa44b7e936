package database

import (
	"context"
	"sync"
	"testing"

	"rentdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentBookingSingleUnit(t *testing.T) {
	db := setupTestDB(t)
	seedTestShop(t, db)

	ctx := context.Background()

	scarce := &models.Item{
		ShopID:         testShopID,
		Name:           "One-off Drone",
		Quantity:       1,
		DailyRateCents: 30000,
		IsActive:       true,
	}
	require.NoError(t, db.CreateItem(ctx, scarce))

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make(chan error, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			_, err := db.CreateBookingLocked(ctx, &models.BookingRequest{
				ShopID:   testShopID,
				ItemID:   scarce.ID,
				StartAt:  at(10),
				EndAt:    at(12),
				Quantity: 1,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err == nil {
			successCount++
		} else {
			assert.ErrorIs(t, err, ErrNotAvailable)
		}
	}
	assert.Equal(t, 1, successCount, "exactly one booking may win a single unit")

	rq, err := db.RemainingQuantity(ctx, testShopID, scarce.ID, at(10), at(12))
	require.NoError(t, err)
	assert.Equal(t, int64(0), rq.Remaining)
	assert.Equal(t, int64(1), rq.Total)
}

func TestConcurrentBookingPartialFill(t *testing.T) {
	db := setupTestDB(t)
	_, tripod := seedTestShop(t, db)

	ctx := context.Background()

	// 5 tripods, 8 competing requests for 1 each: exactly 5 must win.
	const numGoroutines = 8
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make(chan error, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			_, err := db.CreateBookingLocked(ctx, &models.BookingRequest{
				ShopID:   testShopID,
				ItemID:   tripod.ID,
				StartAt:  at(9),
				EndAt:    at(17),
				Quantity: 1,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err == nil {
			successCount++
		}
	}
	assert.Equal(t, 5, successCount)

	rq, err := db.RemainingQuantity(ctx, testShopID, tripod.ID, at(9), at(17))
	require.NoError(t, err)
	assert.Equal(t, int64(0), rq.Remaining, "the committed sum never exceeds the pool total")
}

func TestConcurrentBookingDisjointItems(t *testing.T) {
	db := setupTestDB(t)
	camera, tripod := seedTestShop(t, db)

	ctx := context.Background()

	// Writers on different items do not contend for the same lock.
	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for _, itemID := range []int64{camera.ID, tripod.ID} {
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				_, err := db.CreateBookingLocked(ctx, &models.BookingRequest{
					ShopID:   testShopID,
					ItemID:   id,
					StartAt:  at(10),
					EndAt:    at(12),
					Quantity: 1,
				})
				errs <- err
			}(itemID)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
