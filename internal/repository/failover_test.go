package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key models.AvailabilityKey) (*models.AvailabilityResult, error) {
	return nil, errors.New("cache down")
}

func (brokenCache) Set(ctx context.Context, key models.AvailabilityKey, result *models.AvailabilityResult, ttl time.Duration) error {
	return errors.New("cache down")
}

func (brokenCache) Invalidate(ctx context.Context, shopID string, itemID int64) error {
	return errors.New("cache down")
}

func TestFailoverFallsBackOnError(t *testing.T) {
	logger := zerolog.Nop()
	fallback := NewMemoryAvailabilityCache()
	cache := NewFailoverAvailabilityCache(brokenCache{}, fallback, &logger)

	ctx := context.Background()
	key := testKey()

	require.NoError(t, cache.Set(ctx, key, testResult(), time.Minute))

	got, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got, "after primary failure the fallback serves")
	assert.Equal(t, int64(2), got.Remaining)
}

func TestFailoverPrefersHealthyPrimary(t *testing.T) {
	logger := zerolog.Nop()
	primary := NewMemoryAvailabilityCache()
	fallback := NewMemoryAvailabilityCache()
	cache := NewFailoverAvailabilityCache(primary, fallback, &logger)

	ctx := context.Background()
	key := testKey()

	require.NoError(t, cache.Set(ctx, key, testResult(), time.Minute))

	direct, err := primary.Get(ctx, key)
	require.NoError(t, err)
	assert.NotNil(t, direct, "writes land on the primary while it is healthy")
}

func TestFailoverInvalidateReachesFallback(t *testing.T) {
	logger := zerolog.Nop()
	fallback := NewMemoryAvailabilityCache()
	cache := NewFailoverAvailabilityCache(brokenCache{}, fallback, &logger)

	ctx := context.Background()
	key := testKey()

	require.NoError(t, fallback.Set(ctx, key, testResult(), time.Minute))
	require.NoError(t, cache.Invalidate(ctx, key.ShopID, key.ItemID))

	got, err := fallback.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)
}
