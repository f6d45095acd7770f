package positions

import "github.com/qcm-suite/qcm/internal/resource"

const FieldDepartment = "department"

var Definition = resource.Definition{
	Name:     "positions",
	Title:    "Position",
	Path:     "/positions",
	Envelope: resource.Unpaged,
	Fields:   []string{FieldDepartment},
}

type Resource = resource.Resource[Position, Input]

func New(deps resource.Deps) *Resource {
	return resource.New[Position, Input](Definition, deps)
}
