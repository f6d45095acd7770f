package categories

import "time"

// Category groups products, raw materials and parameters.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Input struct {
	Name string `json:"name" validate:"notblank,max=128"`
	Type string `json:"type,omitempty" validate:"omitempty,oneof=product raw_material parameter"`
}
