// Package filter holds the per-entity list filter state: search text,
// pagination, status, sort order and entity-specific fields. Every change
// other than the page itself sends the list back to page one.
package filter

import (
	"errors"
	"maps"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Order is the created_at sort direction sent to the backend.
type Order string

const (
	OrderAsc  Order = "ASC"
	OrderDesc Order = "DESC"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	maxPerPage     = 100
)

var (
	ErrUnknownField  = errors.New("filter: unknown field")
	ErrInvalidNumber = errors.New("filter: invalid number")
	ErrInvalidOrder  = errors.New("filter: invalid order")
)

// State is a snapshot of one entity's filter values.
type State struct {
	Search         string            `json:"search"`
	Page           int               `json:"page"`
	PerPage        int               `json:"per_page"`
	Status         string            `json:"status,omitempty"`
	CreatedAtOrder Order             `json:"created_at_order,omitempty"`
	Fields         map[string]string `json:"fields,omitempty"`
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	if s.Fields != nil {
		out.Fields = maps.Clone(s.Fields)
	}
	return out
}

// Equal compares two states, treating nil and empty Fields alike.
func (s State) Equal(o State) bool {
	if s.Search != o.Search || s.Page != o.Page || s.PerPage != o.PerPage ||
		s.Status != o.Status || s.CreatedAtOrder != o.CreatedAtOrder {
		return false
	}
	return fieldsEqual(s.Fields, o.Fields)
}

// EqualIgnoringSearch is Equal without the free-text search.
func (s State) EqualIgnoringSearch(o State) bool {
	o.Search = s.Search
	return s.Equal(o)
}

// EqualIgnoringPage is Equal without the page number.
func (s State) EqualIgnoringPage(o State) bool {
	o.Page = s.Page
	return s.Equal(o)
}

func fieldsEqual(a, b map[string]string) bool {
	count := 0
	for k, v := range a {
		if v == "" {
			continue
		}
		if b[k] != v {
			return false
		}
		count++
	}
	for _, v := range b {
		if v != "" {
			count--
		}
	}
	return count == 0
}

// Params renders the state as backend query parameters. Empty values are
// left in place; the HTTP client strips them.
func (s State) Params() map[string]any {
	params := map[string]any{
		"search":           NormalizeSearch(s.Search),
		"page":             s.Page,
		"per_page":         s.PerPage,
		"status":           s.Status,
		"created_at_order": string(s.CreatedAtOrder),
	}
	for k, v := range s.Fields {
		params[k] = v
	}
	return params
}

// FieldNames returns the populated entity-specific field names, sorted.
func (s State) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for k, v := range s.Fields {
		if v != "" {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// NormalizeSearch trims the text and folds it to NFC so visually identical
// input yields the same request and cache key.
func NormalizeSearch(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ParsePage converts user input to a page number (>= 1). Empty means the
// first page.
func ParsePage(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultPage, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, ErrInvalidNumber
	}
	return n, nil
}

// ParsePerPage converts user input to a page size in [1, 100]. Empty means
// fallback.
func ParsePerPage(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxPerPage {
		return 0, ErrInvalidNumber
	}
	return n, nil
}

// ParseOrder accepts ASC/DESC in any case; empty clears the order.
func ParseOrder(raw string) (Order, error) {
	switch Order(strings.ToUpper(strings.TrimSpace(raw))) {
	case "":
		return "", nil
	case OrderAsc:
		return OrderAsc, nil
	case OrderDesc:
		return OrderDesc, nil
	}
	return "", ErrInvalidOrder
}
