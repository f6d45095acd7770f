package parameters

import "github.com/qcm-suite/qcm/internal/resource"

const FieldCategory = "category"

var Definition = resource.Definition{
	Name:     "parameters",
	Title:    "Parameter",
	Path:     "/parameters",
	Envelope: resource.Unpaged,
	Fields:   []string{FieldCategory},
}

type Resource = resource.Resource[Parameter, Input]

func New(deps resource.Deps) *Resource {
	return resource.New[Parameter, Input](Definition, deps)
}
