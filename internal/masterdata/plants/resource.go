package plants

import "github.com/qcm-suite/qcm/internal/resource"

var Definition = resource.Definition{
	Name:     "plants",
	Title:    "Plant",
	Path:     "/plants",
	Envelope: resource.Unpaged,
}

type Resource = resource.Resource[Plant, Input]

func New(deps resource.Deps) *Resource {
	return resource.New[Plant, Input](Definition, deps)
}
