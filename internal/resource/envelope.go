package resource

import "encoding/json"

// Pagination mirrors the backend pagination block.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page,omitempty"`
}

// Page is a paginated list. Unpaged lists are reported as a single page.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Collection is the unpaged list envelope.
type Collection[T any] struct {
	Data []T `json:"data"`
}

// Item is the single-record envelope.
type Item[T any] struct {
	Data T `json:"data"`
}

// Message is a delete acknowledgement. Both {data: {message}} and
// {message} are accepted.
type Message struct {
	Message string `json:"message"`
}

func (m *Message) UnmarshalJSON(b []byte) error {
	var raw struct {
		Data *struct {
			Message string `json:"message"`
		} `json:"data"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	m.Message = raw.Message
	if raw.Data != nil && raw.Data.Message != "" {
		m.Message = raw.Data.Message
	}
	return nil
}

func singlePage[T any](items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Data: items,
		Pagination: Pagination{
			CurrentPage: 1,
			PerPage:     len(items),
			Total:       len(items),
			LastPage:    1,
		},
	}
}
