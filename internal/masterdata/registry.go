// Package masterdata lists the QC master-data entities and builds their
// screens from shared dependencies.
package masterdata

import (
	"context"
	"fmt"
	"sort"

	"github.com/qcm-suite/qcm/internal/masterdata/categories"
	"github.com/qcm-suite/qcm/internal/masterdata/coastandardizations"
	"github.com/qcm-suite/qcm/internal/masterdata/deliverypartners"
	"github.com/qcm-suite/qcm/internal/masterdata/departments"
	"github.com/qcm-suite/qcm/internal/masterdata/dmtfilters"
	"github.com/qcm-suite/qcm/internal/masterdata/incomingqualitychecks"
	"github.com/qcm-suite/qcm/internal/masterdata/parameters"
	"github.com/qcm-suite/qcm/internal/masterdata/plants"
	"github.com/qcm-suite/qcm/internal/masterdata/positions"
	"github.com/qcm-suite/qcm/internal/masterdata/products"
	"github.com/qcm-suite/qcm/internal/masterdata/rawmaterials"
	"github.com/qcm-suite/qcm/internal/masterdata/roles"
	"github.com/qcm-suite/qcm/internal/masterdata/shared"
	"github.com/qcm-suite/qcm/internal/masterdata/suppliers"
	"github.com/qcm-suite/qcm/internal/masterdata/units"
	"github.com/qcm-suite/qcm/internal/resource"
	"github.com/qcm-suite/qcm/internal/screen"
)

// Entry is one registered entity.
type Entry struct {
	Definition resource.Definition
	// Screen builds a stopped view of the entity.
	Screen func(deps resource.Deps, opts screen.Options) screen.View
	// Prefetch loads the default list into the cache.
	Prefetch func(ctx context.Context, deps resource.Deps) error
}

func entry[T, In any](def resource.Definition, build func(resource.Deps) *resource.Resource[T, In]) Entry {
	return Entry{
		Definition: def,
		Screen: func(deps resource.Deps, opts screen.Options) screen.View {
			return screen.New(build(deps), opts)
		},
		Prefetch: func(ctx context.Context, deps resource.Deps) error {
			res := build(deps)
			_, err := res.Queries.List(ctx, res.NewStore().Snapshot())
			return err
		},
	}
}

var catalog = []Entry{
	entry(suppliers.Definition, suppliers.New),
	entry(products.Definition, products.New),
	entry(rawmaterials.Definition, rawmaterials.New),
	entry(deliverypartners.Definition, deliverypartners.New),
	entry(coastandardizations.Definition, coastandardizations.New),
	entry(incomingqualitychecks.Definition, incomingqualitychecks.New),
	entry(dmtfilters.Definition, dmtfilters.New),
	entry(parameters.Definition, parameters.New),
	entry(units.Definition, units.New),
	entry(roles.Definition, roles.New),
	entry(positions.Definition, positions.New),
	entry(categories.Definition, categories.New),
	entry(departments.Definition, departments.New),
	entry(plants.Definition, plants.New),
}

// Catalog returns every entity in registration order.
func Catalog() []Entry {
	return append([]Entry(nil), catalog...)
}

// Names returns the entity names, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for _, e := range catalog {
		names = append(names, e.Definition.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup finds an entity by name.
func Lookup(name string) (Entry, error) {
	for _, e := range catalog {
		if e.Definition.Name == name {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %q", shared.ErrUnknownEntity, name)
}

// References returns the unpaged reference entities, which change rarely
// and are worth prefetching.
func References() []Entry {
	var out []Entry
	for _, e := range catalog {
		if e.Definition.Envelope == resource.Unpaged {
			out = append(out, e)
		}
	}
	return out
}

// Screens builds a view per entity keyed by name.
func Screens(deps resource.Deps, opts screen.Options) map[string]screen.View {
	out := make(map[string]screen.View, len(catalog))
	for _, e := range catalog {
		out[e.Definition.Name] = e.Screen(deps, opts)
	}
	return out
}
