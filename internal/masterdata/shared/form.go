package shared

import (
	"strconv"

	"github.com/qcm-suite/qcm/internal/platform/apiclient"
)

// Attachment is a file uploaded with a record. Content travels base64
// encoded in JSON inputs.
type Attachment struct {
	Name        string `json:"name" validate:"required"`
	ContentType string `json:"content_type,omitempty"`
	Content     []byte `json:"content" validate:"required"`
}

// File turns the attachment into a multipart part named field.
func (a *Attachment) File(field string) []apiclient.File {
	if a == nil || len(a.Content) == 0 {
		return nil
	}
	ct := a.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return []apiclient.File{{Field: field, Name: a.Name, ContentType: ct, Content: a.Content}}
}

// FormInt renders an optional id for a form field; zero is omitted.
func FormInt(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

// FormFloat renders an optional number for a form field.
func FormFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
