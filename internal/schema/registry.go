package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry indexes named schemas so they can be described to clients and
// looked up by name.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds schemas. Names must be non-empty and unique; registering the
// same *Schema twice is a no-op.
func (r *Registry) Register(schemas ...*Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range schemas {
		if s == nil || s.Name == "" {
			return fmt.Errorf("schema registry: schema must have a name")
		}
		if existing, ok := r.schemas[s.Name]; ok {
			if existing == s {
				continue
			}
			return fmt.Errorf("schema registry: duplicate schema name %q", s.Name)
		}
		r.schemas[s.Name] = s
	}
	return nil
}

// Lookup returns the schema registered under name.
func (r *Registry) Lookup(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// Names returns every registered name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for n := range r.schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
