// Package rawmaterials exposes the raw material catalogue: the inputs
// received from suppliers and checked on arrival.
package rawmaterials

import "time"

type RawMaterial struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	CategoryID   int64     `json:"category_id"`
	SupplierID   int64     `json:"supplier_id"`
	SupplierName string    `json:"supplier_name,omitempty"`
	UnitID       int64     `json:"unit_id"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Input struct {
	Code       string `json:"code" validate:"notblank,max=32"`
	Name       string `json:"name" validate:"notblank,max=255"`
	CategoryID int64  `json:"category_id" validate:"gt=0"`
	SupplierID int64  `json:"supplier_id" validate:"gt=0"`
	UnitID     int64  `json:"unit_id,omitempty" validate:"gte=0"`
	Status     string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}
