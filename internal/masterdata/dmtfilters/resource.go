package dmtfilters

import (
	"github.com/qcm-suite/qcm/internal/masterdata/shared"
	"github.com/qcm-suite/qcm/internal/resource"
)

const FieldPlant = "plant"

var Definition = resource.Definition{
	Name:     "dmt-filters",
	Title:    "DMT filter",
	Path:     "/dmt-filters",
	Envelope: resource.Paged,
	Fields:   []string{FieldPlant, shared.FieldStartDate, shared.FieldEndDate},
	Persist:  true,
}

type Resource = resource.Resource[Record, Input]

func New(deps resource.Deps) *Resource {
	return resource.New[Record, Input](Definition, deps)
}
