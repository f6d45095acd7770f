package deliverypartners

import "github.com/qcm-suite/qcm/internal/resource"

var Definition = resource.Definition{
	Name:     "delivery-partners",
	Title:    "Delivery partner",
	Path:     "/delivery-partners",
	Envelope: resource.Paged,
}

type Resource = resource.Resource[DeliveryPartner, Input]

func New(deps resource.Deps) *Resource {
	return resource.New[DeliveryPartner, Input](Definition, deps)
}
