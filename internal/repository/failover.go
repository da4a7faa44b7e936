package repository

import (
	"context"
	"sync/atomic"
	"time"

	"rentdesk/internal/domain"
	"rentdesk/internal/models"

	"github.com/rs/zerolog"
)

// FailoverAvailabilityCache serves from the primary cache until it errors,
// then falls back and retries the primary after a cooldown.
type FailoverAvailabilityCache struct {
	primary   domain.AvailabilityCache
	fallback  domain.AvailabilityCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nano of the last failed primary attempt
}

func NewFailoverAvailabilityCache(primary, fallback domain.AvailabilityCache, logger *zerolog.Logger) *FailoverAvailabilityCache {
	return &FailoverAvailabilityCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverAvailabilityCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary availability cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverAvailabilityCache) primaryHealthy() bool {
	if !r.isDown.Load() {
		return true
	}
	// Retry the primary once per minute.
	if time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute {
		r.lastCheck.Store(time.Now().UnixNano())
		return true
	}
	return false
}

func (r *FailoverAvailabilityCache) Get(ctx context.Context, key models.AvailabilityKey) (*models.AvailabilityResult, error) {
	if r.primaryHealthy() {
		result, err := r.primary.Get(ctx, key)
		if err == nil {
			r.isDown.Store(false)
			return result, nil
		}
		r.markDown(err)
	}
	return r.fallback.Get(ctx, key)
}

func (r *FailoverAvailabilityCache) Set(ctx context.Context, key models.AvailabilityKey, result *models.AvailabilityResult, ttl time.Duration) error {
	if r.primaryHealthy() {
		err := r.primary.Set(ctx, key, result, ttl)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.Set(ctx, key, result, ttl)
}

func (r *FailoverAvailabilityCache) Invalidate(ctx context.Context, shopID string, itemID int64) error {
	// Invalidation must reach both sides: a later failback would otherwise
	// serve entries written before the booking.
	fallbackErr := r.fallback.Invalidate(ctx, shopID, itemID)

	if r.primaryHealthy() {
		if err := r.primary.Invalidate(ctx, shopID, itemID); err != nil {
			r.markDown(err)
		} else {
			r.isDown.Store(false)
		}
	}
	return fallbackErr
}
