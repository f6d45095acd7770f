package coastandardizations

import "github.com/qcm-suite/qcm/internal/resource"

const (
	FieldProduct     = "product"
	FieldRawMaterial = "raw_material"
)

var Definition = resource.Definition{
	Name:      "coa-standardizations",
	Title:     "COA standardization",
	Path:      "/coa-standardizations",
	Envelope:  resource.Paged,
	Fields:    []string{FieldProduct, FieldRawMaterial},
	Multipart: true,
}

type Resource = resource.Resource[Standardization, Input]

func New(deps resource.Deps) *Resource {
	return resource.New[Standardization, Input](Definition, deps)
}
