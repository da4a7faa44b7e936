package domain

import (
	"context"
	"time"

	"rentdesk/internal/models"
)

type Repository interface {
	Seed(ctx context.Context, shop models.Shop, walkInName string, items []models.Item) error
	GetActiveItems(ctx context.Context, shopID string) ([]*models.Item, error)
	GetItemByID(ctx context.Context, shopID string, id int64) (*models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error
	SyncItems(ctx context.Context, shopID string, items []models.Item) error
	DeactivateItem(ctx context.Context, shopID string, id int64) error
	GetWalkInCustomer(ctx context.Context, shopID string) (*models.Customer, error)
	RemainingQuantity(ctx context.Context, shopID string, itemID int64, startAt, endAt time.Time) (*models.RemainingQuantity, error)
	CreateBookingLocked(ctx context.Context, req *models.BookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, shopID string, id int64) (*models.Booking, error)
	GetBookingByReference(ctx context.Context, shopID, reference string) (*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, shopID string, id, fromVersion int64, status string) error
	ListBookingsForRange(ctx context.Context, shopID string, startAt, endAt time.Time) ([]*models.Booking, error)
}

// AvailabilityCache is a read-through cache for availability results. Get
// returns (nil, nil) on a miss; Invalidate discards every cached window for
// the item.
type AvailabilityCache interface {
	Get(ctx context.Context, key models.AvailabilityKey) (*models.AvailabilityResult, error)
	Set(ctx context.Context, key models.AvailabilityKey, result *models.AvailabilityResult, ttl time.Duration) error
	Invalidate(ctx context.Context, shopID string, itemID int64) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ExportScheduler asks for the schedule export covering a month to be
// regenerated, without blocking the caller.
type ExportScheduler interface {
	EnqueueExport(shopID string, month time.Time)
}

type BookingService interface {
	CheckAvailability(ctx context.Context, shopID string, itemID int64, startAt, endAt time.Time, quantity int64) (*models.AvailabilityResult, error)
	CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, shopID, reference string, version int64) (*models.Booking, error)
	CancelBooking(ctx context.Context, shopID, reference string, version int64) (*models.Booking, error)
	CompleteBooking(ctx context.Context, shopID, reference string, version int64) (*models.Booking, error)
	GetBookingByReference(ctx context.Context, shopID, reference string) (*models.Booking, error)
	ListBookingsForMonth(ctx context.Context, shopID string, year int, month time.Month) ([]*models.Booking, error)
}

type ItemService interface {
	GetActiveItems(ctx context.Context, shopID string) ([]*models.Item, error)
	GetItemByID(ctx context.Context, shopID string, id int64) (*models.Item, error)
}
