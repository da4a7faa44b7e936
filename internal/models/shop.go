package models

import "time"

type Shop struct {
	ID        string    `yaml:"id" json:"id"`
	Name      string    `yaml:"name" json:"name"`
	Timezone  string    `yaml:"timezone" json:"timezone"`
	CreatedAt time.Time `yaml:"-" json:"created_at"`
}

type Customer struct {
	ID        int64     `json:"id"`
	ShopID    string    `json:"shop_id"`
	Name      string    `json:"name"`
	WalkIn    bool      `json:"walk_in"`
	CreatedAt time.Time `json:"created_at"`
}
