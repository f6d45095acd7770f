package suppliers

import (
	"time"
)

// Supplier represents a raw material supplier.
type Supplier struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	ContactPerson string    `json:"contact_person"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Input struct {
	Code          string `json:"code" validate:"notblank,max=32"`
	Name          string `json:"name" validate:"notblank,max=255"`
	Address       string `json:"address,omitempty"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string `json:"phone,omitempty" validate:"omitempty,max=32"`
	ContactPerson string `json:"contact_person,omitempty"`
	Status        string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}
