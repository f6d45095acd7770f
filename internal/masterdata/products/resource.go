package products

import "github.com/qcm-suite/qcm/internal/resource"

// FieldCategory filters products by category id.
const FieldCategory = "category"

var Definition = resource.Definition{
	Name:     "products",
	Title:    "Product",
	Path:     "/products",
	Envelope: resource.Paged,
	Fields:   []string{FieldCategory},
	Persist:  true,
}

type Resource = resource.Resource[Product, Input]

func New(deps resource.Deps) *Resource {
	return resource.New[Product, Input](Definition, deps)
}
