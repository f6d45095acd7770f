package filter

import (
	"fmt"
	"slices"
	"sync"
)

// Spec declares an entity's filter shape.
type Spec struct {
	// Name identifies the entity, e.g. "suppliers".
	Name string
	// StorageKey is where persisted state lives; empty disables persistence.
	StorageKey string
	Defaults   State
	// Fields lists the entity-specific filter names SetField accepts.
	Fields []string
}

// Patch is a partial update for SetFilter. Nil members are left untouched;
// Fields entries are merged, an empty value clears the field.
type Patch struct {
	Search         *string           `json:"search,omitempty"`
	Page           *int              `json:"page,omitempty"`
	PerPage        *int              `json:"per_page,omitempty"`
	Status         *string           `json:"status,omitempty"`
	CreatedAtOrder *Order            `json:"created_at_order,omitempty"`
	Fields         map[string]string `json:"fields,omitempty"`
}

// Listener observes state transitions. It runs on the goroutine that made
// the change, after the store lock is released.
type Listener func(prev, next State)

// Store is the mutable filter state of one list view.
type Store struct {
	spec Spec

	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// NewStore creates a store initialised with the spec defaults.
func NewStore(spec Spec) *Store {
	spec.Defaults = normalizeDefaults(spec.Defaults)
	return &Store{
		spec:      spec,
		state:     spec.Defaults.Clone(),
		listeners: make(map[int]Listener),
	}
}

func normalizeDefaults(d State) State {
	d.Page = DefaultPage
	if d.PerPage < 1 {
		d.PerPage = DefaultPerPage
	}
	return d
}

// Spec returns the store's declared shape.
func (s *Store) Spec() Spec {
	return s.spec
}

// Defaults returns a copy of the initial state.
func (s *Store) Defaults() State {
	return s.spec.Defaults.Clone()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) SetSearch(search string) {
	s.update(func(st *State) {
		st.Search = search
		st.Page = DefaultPage
	})
}

// SetPage moves to page; values below 1 are stored as 1.
func (s *Store) SetPage(page int) {
	s.update(func(st *State) {
		st.Page = max(page, DefaultPage)
	})
}

// SetPerPage changes the page size; values below 1 fall back to the default
// and values above 100 are capped.
func (s *Store) SetPerPage(perPage int) {
	s.update(func(st *State) {
		st.PerPage = s.clampPerPage(perPage)
		st.Page = DefaultPage
	})
}

func (s *Store) SetStatus(status string) {
	s.update(func(st *State) {
		st.Status = status
		st.Page = DefaultPage
	})
}

func (s *Store) SetOrder(order Order) {
	s.update(func(st *State) {
		st.CreatedAtOrder = order
		st.Page = DefaultPage
	})
}

// ToggleOrder flips created_at ordering between DESC and ASC.
func (s *Store) ToggleOrder() {
	s.update(func(st *State) {
		if st.CreatedAtOrder == OrderDesc {
			st.CreatedAtOrder = OrderAsc
		} else {
			st.CreatedAtOrder = OrderDesc
		}
		st.Page = DefaultPage
	})
}

// SetField sets an entity-specific filter declared in the spec.
func (s *Store) SetField(name, value string) error {
	if !s.knows(name) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, s.spec.Name, name)
	}
	s.update(func(st *State) {
		setField(st, name, value)
		st.Page = DefaultPage
	})
	return nil
}

// SetFilter merges p into the state. The page is reset to 1 unless p sets it
// explicitly.
func (s *Store) SetFilter(p Patch) error {
	for name := range p.Fields {
		if !s.knows(name) {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, s.spec.Name, name)
		}
	}
	s.update(func(st *State) {
		if p.Search != nil {
			st.Search = *p.Search
		}
		if p.PerPage != nil {
			st.PerPage = s.clampPerPage(*p.PerPage)
		}
		if p.Status != nil {
			st.Status = *p.Status
		}
		if p.CreatedAtOrder != nil {
			st.CreatedAtOrder = *p.CreatedAtOrder
		}
		for name, value := range p.Fields {
			setField(st, name, value)
		}
		if p.Page != nil {
			st.Page = max(*p.Page, DefaultPage)
		} else {
			st.Page = DefaultPage
		}
	})
	return nil
}

// Reset restores the spec defaults.
func (s *Store) Reset() {
	s.update(func(st *State) {
		*st = s.spec.Defaults.Clone()
	})
}

func (s *Store) NextPage() {
	s.update(func(st *State) {
		st.Page++
	})
}

// PrevPage steps back one page, never below 1.
func (s *Store) PrevPage() {
	s.update(func(st *State) {
		st.Page = max(st.Page-1, DefaultPage)
	})
}

// restore replaces the state without touching the page. Used when
// hydrating persisted values.
func (s *Store) restore(fn func(*State)) {
	s.update(func(st *State) {
		fn(st)
		st.Page = DefaultPage
	})
}

func (s *Store) update(mutate func(*State)) {
	s.mu.Lock()
	prev := s.state.Clone()
	next := s.state.Clone()
	mutate(&next)
	if prev.Equal(next) {
		s.mu.Unlock()
		return
	}
	s.state = next
	listeners := make([]Listener, 0, len(s.listeners))
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(prev, next.Clone())
	}
}

func (s *Store) knows(name string) bool {
	return slices.Contains(s.spec.Fields, name)
}

func (s *Store) clampPerPage(n int) int {
	if n < 1 {
		return s.spec.Defaults.PerPage
	}
	return min(n, maxPerPage)
}

func setField(st *State, name, value string) {
	if value == "" {
		delete(st.Fields, name)
		return
	}
	if st.Fields == nil {
		st.Fields = make(map[string]string)
	}
	st.Fields[name] = value
}
