package units

import "github.com/qcm-suite/qcm/internal/resource"

var Definition = resource.Definition{
	Name:     "units",
	Title:    "Unit",
	Path:     "/units",
	Envelope: resource.Unpaged,
}

type Resource = resource.Resource[Unit, Input]

func New(deps resource.Deps) *Resource {
	return resource.New[Unit, Input](Definition, deps)
}
