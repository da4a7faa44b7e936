package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"rentdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testShopID = "demo-shop"

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(zerolog.NewConsoleWriter())
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// seedTestShop loads the demo catalog: a camera with quantity 2 and a tripod
// with quantity 5.
func seedTestShop(t *testing.T, db *DB) (camera, tripod *models.Item) {
	t.Helper()
	err := db.Seed(context.Background(),
		models.Shop{ID: testShopID, Name: "Demo Rental Shop", Timezone: "UTC"},
		"Walk-in Customer",
		[]models.Item{
			{ID: 1, Name: "Sony A7SIII", SKU: "CAM-001", Quantity: 2, DailyRateCents: 15000, DepositCents: 50000, SortOrder: 1, IsActive: true},
			{ID: 2, Name: "Heavy-Duty Tripod", SKU: "TRI-001", Quantity: 5, DailyRateCents: 2500, DepositCents: 5000, SortOrder: 2, IsActive: true},
		})
	require.NoError(t, err)

	camera, err = db.GetItemByID(context.Background(), testShopID, 1)
	require.NoError(t, err)
	tripod, err = db.GetItemByID(context.Background(), testShopID, 2)
	require.NoError(t, err)
	return camera, tripod
}

// at builds an instant on a fixed day, so windows in tests read as clock hours.
func at(hour int) time.Time {
	return time.Date(2026, time.January, 1, hour, 0, 0, 0, time.UTC)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	seedTestShop(t, db)
	seedTestShop(t, db)

	ctx := context.Background()

	items, err := db.GetActiveItems(ctx, testShopID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	walkIn, err := db.GetWalkInCustomer(ctx, testShopID)
	require.NoError(t, err)
	assert.True(t, walkIn.WalkIn)
	assert.Equal(t, "Walk-in Customer", walkIn.Name)

	var customers int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers WHERE shop_id = ? AND walk_in = 1`, testShopID).Scan(&customers)
	require.NoError(t, err)
	assert.Equal(t, 1, customers, "seeding twice must not duplicate the walk-in customer")
}

func TestSeedUpdatesItemQuantities(t *testing.T) {
	db := setupTestDB(t)
	seedTestShop(t, db)

	ctx := context.Background()
	err := db.SyncItems(ctx, testShopID, []models.Item{
		{ID: 1, Name: "Sony A7SIII", SKU: "CAM-001", Quantity: 3, DailyRateCents: 16000, DepositCents: 50000, SortOrder: 1, IsActive: true},
	})
	require.NoError(t, err)

	camera, err := db.GetItemByID(ctx, testShopID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), camera.Quantity)
	assert.Equal(t, int64(16000), camera.DailyRateCents)
}

func TestTimeRoundTrip(t *testing.T) {
	moment := time.Date(2026, time.July, 14, 9, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	decoded, err := decodeTime(encodeTime(moment))
	require.NoError(t, err)
	assert.True(t, decoded.Equal(moment))
	assert.Equal(t, time.UTC, decoded.Location())
}
