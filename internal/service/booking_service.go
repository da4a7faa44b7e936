package service

import (
	"context"
	"time"

	"rentdesk/internal/database"
	"rentdesk/internal/domain"
	"rentdesk/internal/events"
	"rentdesk/internal/metrics"
	"rentdesk/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo     domain.Repository
	cache    domain.AvailabilityCache
	eventBus domain.EventPublisher
	exports  domain.ExportScheduler
	cacheTTL time.Duration
	logger   *zerolog.Logger
}

func NewBookingService(
	repo domain.Repository,
	cache domain.AvailabilityCache,
	eventBus domain.EventPublisher,
	exports domain.ExportScheduler,
	cacheTTL time.Duration,
	logger *zerolog.Logger,
) *BookingService {
	if cacheTTL <= 0 {
		cacheTTL = models.DefaultAvailabilityTTL
	}
	return &BookingService{
		repo:     repo,
		cache:    cache,
		eventBus: eventBus,
		exports:  exports,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func validateWindow(startAt, endAt time.Time, quantity int64) error {
	if !models.ValidRange(startAt, endAt) {
		return database.ErrInvalidRange
	}
	if quantity <= 0 {
		return database.ErrInvalidQuantity
	}
	return nil
}

// CheckAvailability answers an availability query, consulting the cache
// first. Idempotent and side-effect free apart from cache fills.
func (s *BookingService) CheckAvailability(ctx context.Context, shopID string, itemID int64, startAt, endAt time.Time, quantity int64) (*models.AvailabilityResult, error) {
	if err := validateWindow(startAt, endAt, quantity); err != nil {
		return nil, err
	}

	key := models.AvailabilityKey{
		ShopID:   shopID,
		ItemID:   itemID,
		StartAt:  startAt,
		EndAt:    endAt,
		Quantity: quantity,
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn().Err(err).Msg("availability cache read failed")
		} else if cached != nil {
			metrics.IncAvailabilityCheck("cache_hit")
			return cached, nil
		}
	}

	rq, err := s.repo.RemainingQuantity(ctx, shopID, itemID, startAt, endAt)
	if err != nil {
		return nil, err
	}

	result := &models.AvailabilityResult{
		ShopID:            shopID,
		ItemID:            itemID,
		StartAt:           startAt,
		EndAt:             endAt,
		RequestedQuantity: quantity,
		Exists:            rq.Exists,
		Remaining:         rq.Remaining,
		Total:             rq.Total,
		Available:         rq.Exists && rq.Remaining >= quantity,
	}

	switch {
	case !result.Exists:
		metrics.IncAvailabilityCheck("unknown_item")
	case result.Available:
		metrics.IncAvailabilityCheck("available")
	default:
		metrics.IncAvailabilityCheck("unavailable")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Msg("availability cache write failed")
		}
	}
	return result, nil
}

// CreateBooking validates, reserves atomically, then fans out the side
// effects. The availability re-check inside the storage transaction is
// authoritative; the cache is never consulted here.
func (s *BookingService) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	if err := validateWindow(req.StartAt, req.EndAt, req.Quantity); err != nil {
		metrics.IncBooking("rejected")
		return nil, err
	}

	booking, err := s.repo.CreateBookingLocked(ctx, req)
	if err != nil {
		switch err {
		case database.ErrNotAvailable, database.ErrItemNotFound:
			metrics.IncBooking("rejected")
		default:
			metrics.IncBooking("failed")
		}
		return nil, err
	}
	metrics.IncBooking("created")

	s.invalidate(ctx, req.ShopID, req.ItemID)
	s.publishEvent(events.EventBookingCreated, booking)
	s.enqueueExport(booking)

	s.logger.Info().
		Str("reference", booking.Reference).
		Int64("item_id", req.ItemID).
		Int64("quantity", req.Quantity).
		Msg("booking created")
	return booking, nil
}

func (s *BookingService) ConfirmBooking(ctx context.Context, shopID, reference string, version int64) (*models.Booking, error) {
	return s.transition(ctx, shopID, reference, version, models.StatusConfirmed, events.EventBookingConfirmed)
}

func (s *BookingService) CancelBooking(ctx context.Context, shopID, reference string, version int64) (*models.Booking, error) {
	return s.transition(ctx, shopID, reference, version, models.StatusCancelled, events.EventBookingCancelled)
}

func (s *BookingService) CompleteBooking(ctx context.Context, shopID, reference string, version int64) (*models.Booking, error) {
	return s.transition(ctx, shopID, reference, version, models.StatusCompleted, events.EventBookingCompleted)
}

func (s *BookingService) transition(ctx context.Context, shopID, reference string, version int64, status, eventType string) (*models.Booking, error) {
	booking, err := s.repo.GetBookingByReference(ctx, shopID, reference)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateBookingStatusWithVersion(ctx, shopID, booking.ID, version, status); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetBooking(ctx, shopID, booking.ID)
	if err != nil {
		return nil, err
	}

	// Cancellation and completion free inventory; confirmation keeps it held.
	// Either way cached windows for the item are stale now.
	for _, line := range updated.Items {
		s.invalidate(ctx, shopID, line.ItemID)
	}
	s.publishEvent(eventType, updated)
	s.enqueueExport(updated)
	return updated, nil
}

func (s *BookingService) GetBookingByReference(ctx context.Context, shopID, reference string) (*models.Booking, error) {
	return s.repo.GetBookingByReference(ctx, shopID, reference)
}

// ListBookingsForMonth lists the shop's schedule for one calendar month:
// pending, confirmed and completed bookings overlapping it.
func (s *BookingService) ListBookingsForMonth(ctx context.Context, shopID string, year int, month time.Month) ([]*models.Booking, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return s.repo.ListBookingsForRange(ctx, shopID, start, end)
}

func (s *BookingService) invalidate(ctx context.Context, shopID string, itemID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, shopID, itemID); err != nil {
		s.logger.Warn().Err(err).Int64("item_id", itemID).Msg("availability cache invalidation failed")
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:    booking.ID,
		Reference:    booking.Reference,
		ShopID:       booking.ShopID,
		CustomerID:   booking.CustomerID,
		CustomerName: booking.CustomerName,
		StartAt:      booking.StartAt,
		EndAt:        booking.EndAt,
		Status:       booking.Status,
	}
	if len(booking.Items) > 0 {
		payload.ItemID = booking.Items[0].ItemID
		payload.ItemName = booking.Items[0].ItemName
		payload.Quantity = booking.Items[0].Quantity
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueExport(booking *models.Booking) {
	if s.exports == nil {
		return
	}
	s.exports.EnqueueExport(booking.ShopID, booking.StartAt)
}
