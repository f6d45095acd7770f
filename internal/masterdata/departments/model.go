package departments

import "time"

type Department struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Input struct {
	Code string `json:"code,omitempty" validate:"omitempty,max=32"`
	Name string `json:"name" validate:"notblank,max=128"`
}
