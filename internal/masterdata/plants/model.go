package plants

import "time"

// Plant is a production site receiving materials.
type Plant struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Input struct {
	Code     string `json:"code" validate:"notblank,max=32"`
	Name     string `json:"name" validate:"notblank,max=128"`
	Location string `json:"location,omitempty"`
}
