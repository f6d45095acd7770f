package coastandardizations

import (
	"time"

	"github.com/qcm-suite/qcm/internal/masterdata/shared"
	"github.com/qcm-suite/qcm/internal/platform/apiclient"
)

// Standardization is the certificate-of-analysis limit for one parameter of
// a product or raw material.
type Standardization struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id"`
	RawMaterialID int64     `json:"raw_material_id"`
	ParameterID   int64     `json:"parameter_id"`
	ParameterName string    `json:"parameter_name,omitempty"`
	MinValue      *float64  `json:"min_value"`
	MaxValue      *float64  `json:"max_value"`
	Method        string    `json:"method"`
	DocumentURL   string    `json:"document_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Input is sent as multipart/form-data so the COA document can ride along.
type Input struct {
	ProductID     int64              `json:"product_id" validate:"required_without=RawMaterialID"`
	RawMaterialID int64              `json:"raw_material_id" validate:"required_without=ProductID"`
	ParameterID   int64              `json:"parameter_id" validate:"gt=0"`
	MinValue      *float64           `json:"min_value,omitempty"`
	MaxValue      *float64           `json:"max_value,omitempty"`
	Method        string             `json:"method,omitempty" validate:"omitempty,max=255"`
	Document      *shared.Attachment `json:"document,omitempty" validate:"omitempty"`
}

func (in Input) Multipart() (*apiclient.Form, error) {
	return &apiclient.Form{
		Fields: map[string]string{
			"product_id":      shared.FormInt(in.ProductID),
			"raw_material_id": shared.FormInt(in.RawMaterialID),
			"parameter_id":    shared.FormInt(in.ParameterID),
			"min_value":       shared.FormFloat(in.MinValue),
			"max_value":       shared.FormFloat(in.MaxValue),
			"method":          in.Method,
		},
		Files: in.Document.File("document"),
	}, nil
}
