package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
)

// Body is an encoded request payload.
type Body interface {
	ContentType() string
	Encode() (io.Reader, error)
}

type jsonBody struct {
	value any
}

// JSON encodes v as application/json.
func JSON(v any) Body {
	return jsonBody{value: v}
}

func (jsonBody) ContentType() string { return "application/json" }

func (b jsonBody) Encode() (io.Reader, error) {
	raw, err := json.Marshal(b.value)
	if err != nil {
		return nil, fmt.Errorf("apiclient: encode json: %w", err)
	}
	return bytes.NewReader(raw), nil
}

// File is an attachment sent as a multipart part.
type File struct {
	Field       string
	Name        string
	ContentType string
	Content     []byte
}

// Form is a multipart/form-data payload.
type Form struct {
	Fields map[string]string
	Files  []File

	boundary string
}

// Multiparter is implemented by inputs that are sent as multipart forms.
type Multiparter interface {
	Multipart() (*Form, error)
}

func (f *Form) ContentType() string {
	return "multipart/form-data; boundary=" + f.ensureBoundary()
}

func (f *Form) ensureBoundary() string {
	if f.boundary == "" {
		f.boundary = multipart.NewWriter(io.Discard).Boundary()
	}
	return f.boundary
}

func (f *Form) Encode() (io.Reader, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if err := w.SetBoundary(f.ensureBoundary()); err != nil {
		return nil, fmt.Errorf("apiclient: multipart boundary: %w", err)
	}
	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if f.Fields[k] == "" {
			continue
		}
		if err := w.WriteField(k, f.Fields[k]); err != nil {
			return nil, fmt.Errorf("apiclient: multipart field %s: %w", k, err)
		}
	}
	for _, file := range f.Files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Name))
		ct := file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		header.Set("Content-Type", ct)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("apiclient: multipart file %s: %w", file.Field, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, fmt.Errorf("apiclient: multipart file %s: %w", file.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("apiclient: multipart close: %w", err)
	}
	return buf, nil
}
