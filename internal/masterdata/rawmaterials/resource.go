package rawmaterials

import "github.com/qcm-suite/qcm/internal/resource"

const (
	FieldCategory = "category"
	FieldSupplier = "supplier"
)

var Definition = resource.Definition{
	Name:     "raw-materials",
	Title:    "Raw material",
	Path:     "/raw-materials",
	Envelope: resource.Paged,
	Fields:   []string{FieldCategory, FieldSupplier},
	Persist:  true,
}

type Resource = resource.Resource[RawMaterial, Input]

func New(deps resource.Deps) *Resource {
	return resource.New[RawMaterial, Input](Definition, deps)
}
