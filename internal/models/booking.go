package models

import "time"

// Booking spans one half-open window [StartAt, EndAt). Only pending and
// confirmed bookings consume inventory; see StatusConsumesInventory.
type Booking struct {
	ID           int64         `json:"id"`
	Reference    string        `json:"reference"`
	ShopID       string        `json:"shop_id"`
	CustomerID   int64         `json:"customer_id"`
	CustomerName string        `json:"customer_name"`
	StartAt      time.Time     `json:"start_at"`
	EndAt        time.Time     `json:"end_at"`
	Status       string        `json:"status"` // pending, confirmed, completed, cancelled
	Version      int64         `json:"version"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Items        []BookingItem `json:"items"`
}

// BookingItem is a line inside a booking. Rate and deposit are snapshots of
// the item at booking time; later item edits never alter history.
type BookingItem struct {
	ID                     int64  `json:"id"`
	BookingID              int64  `json:"booking_id"`
	ItemID                 int64  `json:"item_id"`
	ItemName               string `json:"item_name"`
	Quantity               int64  `json:"quantity"`
	DailyRateCentsSnapshot int64  `json:"daily_rate_cents_snapshot"`
	DepositCentsSnapshot   int64  `json:"deposit_cents_snapshot"`
}

// BookingRequest carries the inputs of a booking creation.
type BookingRequest struct {
	ShopID       string    `json:"shop_id"`
	ItemID       int64     `json:"item_id"`
	StartAt      time.Time `json:"start_at"`
	EndAt        time.Time `json:"end_at"`
	Quantity     int64     `json:"quantity"`
	CustomerName string    `json:"customer_name,omitempty"`
}
