// Package incomingqualitychecks covers IQC records: the inspection of a
// raw material lot when it arrives at a plant.
package incomingqualitychecks

import (
	"strconv"
	"time"

	"github.com/qcm-suite/qcm/internal/masterdata/shared"
	"github.com/qcm-suite/qcm/internal/platform/apiclient"
)

type Check struct {
	ID                int64     `json:"id"`
	Number            string    `json:"number"`
	PlantID           int64     `json:"plant_id"`
	SupplierID        int64     `json:"supplier_id"`
	RawMaterialID     int64     `json:"raw_material_id"`
	DeliveryPartnerID int64     `json:"delivery_partner_id"`
	BatchNumber       string    `json:"batch_number"`
	ReceivedAt        string    `json:"received_at"`
	Quantity          float64   `json:"quantity"`
	Status            string    `json:"status"`
	Notes             string    `json:"notes"`
	AttachmentURL     string    `json:"attachment_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Input struct {
	PlantID           int64              `json:"plant_id" validate:"gt=0"`
	SupplierID        int64              `json:"supplier_id" validate:"gt=0"`
	RawMaterialID     int64              `json:"raw_material_id" validate:"gt=0"`
	DeliveryPartnerID int64              `json:"delivery_partner_id,omitempty" validate:"gte=0"`
	BatchNumber       string             `json:"batch_number" validate:"notblank,max=64"`
	ReceivedAt        string             `json:"received_at" validate:"required,ymd"`
	Quantity          float64            `json:"quantity" validate:"gt=0"`
	Status            string             `json:"status,omitempty" validate:"omitempty,oneof=pending approved rejected"`
	Notes             string             `json:"notes,omitempty"`
	Attachment        *shared.Attachment `json:"attachment,omitempty" validate:"omitempty"`
}

func (in Input) Multipart() (*apiclient.Form, error) {
	return &apiclient.Form{
		Fields: map[string]string{
			"plant_id":            shared.FormInt(in.PlantID),
			"supplier_id":         shared.FormInt(in.SupplierID),
			"raw_material_id":     shared.FormInt(in.RawMaterialID),
			"delivery_partner_id": shared.FormInt(in.DeliveryPartnerID),
			"batch_number":        in.BatchNumber,
			"received_at":         in.ReceivedAt,
			"quantity":            strconv.FormatFloat(in.Quantity, 'f', -1, 64),
			"status":              in.Status,
			"notes":               in.Notes,
		},
		Files: in.Attachment.File("attachment"),
	}, nil
}
