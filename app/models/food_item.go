package models

import "time"

// FoodItem is a dish a class sells at the fair. Price is in VND.
type FoodItem struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"account_id"`
	ClassName   string    `json:"class_name"`
	Name        string    `json:"name"`
	Price       int       `json:"price"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
