package dmtfilters

import "time"

// Record is one DMT filter reading taken at a plant.
type Record struct {
	ID        int64     `json:"id"`
	PlantID   int64     `json:"plant_id"`
	Date      string    `json:"date"`
	Shift     string    `json:"shift"`
	Pressure  float64   `json:"pressure"`
	FlowRate  float64   `json:"flow_rate"`
	ChangedBy string    `json:"changed_by"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Input struct {
	PlantID   int64   `json:"plant_id" validate:"gt=0"`
	Date      string  `json:"date" validate:"required,ymd"`
	Shift     string  `json:"shift" validate:"required,oneof=1 2 3"`
	Pressure  float64 `json:"pressure" validate:"gte=0"`
	FlowRate  float64 `json:"flow_rate" validate:"gte=0"`
	ChangedBy string  `json:"changed_by,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}
