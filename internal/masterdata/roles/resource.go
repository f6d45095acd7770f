package roles

import "github.com/qcm-suite/qcm/internal/resource"

var Definition = resource.Definition{
	Name:     "roles",
	Title:    "Role",
	Path:     "/roles",
	Envelope: resource.Unpaged,
}

type Resource = resource.Resource[Role, Input]

func New(deps resource.Deps) *Resource {
	return resource.New[Role, Input](Definition, deps)
}
