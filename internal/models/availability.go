package models

import (
	"fmt"
	"time"
)

// RemainingQuantity is the result of the overlap aggregation for one item and
// window. Exists=false (item absent or inactive) is a normal outcome, not an
// error; the caller decides how to treat it.
type RemainingQuantity struct {
	Exists    bool  `json:"exists"`
	Remaining int64 `json:"remaining"`
	Total     int64 `json:"total"`
}

// AvailabilityKey identifies one availability query for caching.
type AvailabilityKey struct {
	ShopID   string
	ItemID   int64
	StartAt  time.Time
	EndAt    time.Time
	Quantity int64
}

func (k AvailabilityKey) String() string {
	return fmt.Sprintf("%s:%d:%s:%s:%d",
		k.ShopID, k.ItemID,
		k.StartAt.UTC().Format(time.RFC3339),
		k.EndAt.UTC().Format(time.RFC3339),
		k.Quantity)
}

// AvailabilityResult echoes an availability query together with its outcome.
type AvailabilityResult struct {
	ShopID            string    `json:"shop_id"`
	ItemID            int64     `json:"item_id"`
	StartAt           time.Time `json:"start_at"`
	EndAt             time.Time `json:"end_at"`
	RequestedQuantity int64     `json:"requested_quantity"`
	Exists            bool      `json:"exists"`
	Remaining         int64     `json:"remaining"`
	Total             int64     `json:"total"`
	Available         bool      `json:"available"`
}
