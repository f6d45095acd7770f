package parameters

import "time"

// Parameter is a measurable property checked during inspection, such as
// moisture or pH.
type Parameter struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	CategoryID int64     `json:"category_id"`
	UnitID     int64     `json:"unit_id"`
	UnitSymbol string    `json:"unit_symbol,omitempty"`
	Method     string    `json:"method"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Input struct {
	Name       string `json:"name" validate:"notblank,max=255"`
	CategoryID int64  `json:"category_id" validate:"gt=0"`
	UnitID     int64  `json:"unit_id,omitempty" validate:"gte=0"`
	Method     string `json:"method,omitempty"`
}
