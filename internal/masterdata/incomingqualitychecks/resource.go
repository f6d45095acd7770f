package incomingqualitychecks

import (
	"github.com/qcm-suite/qcm/internal/masterdata/shared"
	"github.com/qcm-suite/qcm/internal/resource"
)

const (
	FieldPlant    = "plant"
	FieldSupplier = "supplier"
)

var Definition = resource.Definition{
	Name:      "incoming-quality-checks",
	Title:     "Incoming quality check",
	Path:      "/incoming-quality-checks",
	Envelope:  resource.Paged,
	Fields:    []string{FieldPlant, FieldSupplier, shared.FieldStartDate, shared.FieldEndDate},
	Multipart: true,
	Persist:   true,
}

type Resource = resource.Resource[Check, Input]

func New(deps resource.Deps) *Resource {
	return resource.New[Check, Input](Definition, deps)
}
