package models

import "time"

type Item struct {
	ID             int64     `yaml:"id" json:"id"`
	ShopID         string    `yaml:"-" json:"shop_id"`
	Name           string    `yaml:"name" json:"name"`
	SKU            string    `yaml:"sku" json:"sku,omitempty"`
	Quantity       int64     `yaml:"quantity" json:"quantity"`
	DailyRateCents int64     `yaml:"daily_rate_cents" json:"daily_rate_cents"`
	DepositCents   int64     `yaml:"deposit_cents" json:"deposit_cents"`
	SortOrder      int64     `yaml:"sort_order" json:"sort_order"`
	IsActive       bool      `yaml:"is_active" json:"is_active"`
	CreatedAt      time.Time `yaml:"-" json:"created_at"`
	UpdatedAt      time.Time `yaml:"-" json:"updated_at"`
}
