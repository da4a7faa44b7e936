package models

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// StatusConsumesInventory reports whether a booking in the given status holds
// units for overlap counting. Completed bookings keep showing up in listings
// but no longer consume inventory; their window is in the past anyway.
func StatusConsumesInventory(status string) bool {
	return status == StatusPending || status == StatusConfirmed
}

// ListingStatuses are the statuses shown in the monthly schedule.
var ListingStatuses = []string{StatusPending, StatusConfirmed, StatusCompleted}

const (
	// DefaultAvailabilityTTL bounds how long a cached availability result may serve.
	DefaultAvailabilityTTL = 30 * time.Second

	// WorkerQueueSize is the export worker queue capacity.
	WorkerQueueSize = 100

	// DefaultQuantity applies when an availability query omits quantity.
	DefaultQuantity = 1
)
