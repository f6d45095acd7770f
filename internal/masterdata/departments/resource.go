package departments

import "github.com/qcm-suite/qcm/internal/resource"

var Definition = resource.Definition{
	Name:     "departments",
	Title:    "Department",
	Path:     "/departments",
	Envelope: resource.Unpaged,
}

type Resource = resource.Resource[Department, Input]

func New(deps resource.Deps) *Resource {
	return resource.New[Department, Input](Definition, deps)
}
