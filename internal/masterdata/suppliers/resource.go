package suppliers

import "github.com/qcm-suite/qcm/internal/resource"

var Definition = resource.Definition{
	Name:     "suppliers",
	Title:    "Supplier",
	Path:     "/suppliers",
	Envelope: resource.Paged,
	Persist:  true,
}

type Resource = resource.Resource[Supplier, Input]

func New(deps resource.Deps) *Resource {
	return resource.New[Supplier, Input](Definition, deps)
}
