package units

import "time"

// Unit represents a unit of measure
type Unit struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Input struct {
	Name   string `json:"name" validate:"notblank,max=64"`
	Symbol string `json:"symbol" validate:"notblank,max=16"`
}
