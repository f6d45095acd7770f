package products

import (
	"time"
)

// Product is a finished good inspected against COA standards.
type Product struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Input struct {
	Code        string `json:"code" validate:"notblank,max=32"`
	Name        string `json:"name" validate:"notblank,max=255"`
	CategoryID  int64  `json:"category_id" validate:"gt=0"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}
