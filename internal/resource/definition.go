// Package resource implements the list/detail/create/update/delete pattern
// shared by every master-data entity: a thin service over the backend API,
// cached read queries and mutations that invalidate them.
package resource

import (
	"strings"
	"time"

	"github.com/qcm-suite/qcm/internal/filter"
)

// Envelope tells how the backend wraps list responses.
type Envelope int

const (
	// Paged lists answer {data: [], pagination: {...}}.
	Paged Envelope = iota
	// Unpaged lists answer {data: []}.
	Unpaged
)

func (e Envelope) String() string {
	if e == Unpaged {
		return "unpaged"
	}
	return "paged"
}

// Definition describes one entity.
type Definition struct {
	// Name is the entity slug used in cache keys and routes.
	Name string
	// Title is the human label used in notifications, e.g. "Supplier".
	Title    string
	Path     string
	Envelope Envelope
	// Fields are the entity-specific filter names.
	Fields []string
	// Multipart marks entities whose inputs carry attachments.
	Multipart bool
	// Persist stores the filter state between sessions.
	Persist bool
	// StaleTime overrides the list stale time derived from Deps.
	StaleTime time.Duration
}

// StorageKey is where the entity's filter state is persisted.
func (d Definition) StorageKey() string {
	return "filters:" + d.Name
}

// FilterSpec builds the filter store shape of the entity.
func (d Definition) FilterSpec() filter.Spec {
	spec := filter.Spec{
		Name: d.Name,
		Defaults: filter.State{
			Page:           filter.DefaultPage,
			PerPage:        filter.DefaultPerPage,
			CreatedAtOrder: filter.OrderDesc,
		},
		Fields: append([]string(nil), d.Fields...),
	}
	if d.Persist {
		spec.StorageKey = d.StorageKey()
	}
	return spec
}

func (d Definition) label() string {
	if d.Title != "" {
		return d.Title
	}
	return strings.ReplaceAll(d.Name, "-", " ")
}
