package source

import (
	"fmt"

	"github.com/leadforge/leadforge/internal/lead"
)

// Registry is the fixed table of registered strategies. It is populated once
// at process start and read-only afterwards; the supported source set is
// enumerable rather than discovered by name at call time.
type Registry struct {
	byID     map[string]Strategy
	order    []string
	defaults map[lead.Category][]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[string]Strategy),
		defaults: make(map[lead.Category][]string),
	}
}

// Register adds a strategy under its descriptor id. Duplicate ids are a
// programming error and rejected.
func (r *Registry) Register(s Strategy) error {
	d := s.Descriptor()
	if d.ID == "" {
		return fmt.Errorf("register: empty source id")
	}
	if _, ok := r.byID[d.ID]; ok {
		return fmt.Errorf("register: duplicate source id %q", d.ID)
	}
	r.byID[d.ID] = s
	r.order = append(r.order, d.ID)
	r.defaults[d.Category] = append(r.defaults[d.Category], d.ID)
	return nil
}

// MustRegister is Register for process-start wiring, where a duplicate id is
// unrecoverable.
func (r *Registry) MustRegister(s Strategy) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

// Resolve returns the strategy for id.
func (r *Registry) Resolve(id string) (Strategy, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, id)
	}
	return s, nil
}

// Defaults returns the source ids used when a query does not select sources
// explicitly, in registration order.
func (r *Registry) Defaults(c lead.Category) []string {
	return r.defaults[c]
}

// IDs returns all registered source ids in registration order.
func (r *Registry) IDs() []string {
	return r.order
}
