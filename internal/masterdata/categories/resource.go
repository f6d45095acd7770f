package categories

import "github.com/qcm-suite/qcm/internal/resource"

var Definition = resource.Definition{
	Name:     "categories",
	Title:    "Category",
	Path:     "/categories",
	Envelope: resource.Unpaged,
}

type Resource = resource.Resource[Category, Input]

func New(deps resource.Deps) *Resource {
	return resource.New[Category, Input](Definition, deps)
}
