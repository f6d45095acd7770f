package deliverypartners

import "time"

// DeliveryPartner is a logistics company bringing materials to a plant.
type DeliveryPartner struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Input struct {
	Name    string `json:"name" validate:"notblank,max=255"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Address string `json:"address,omitempty"`
	Status  string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}
