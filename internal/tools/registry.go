package tools

import (
	"errors"
	"fmt"

	"github.com/tournaija/tournaija/internal/llm"
)

// Registry is a closed set of tools keyed by name. It is immutable once built.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry rejects unnamed tools, tools without schemas or an
// implementation, and duplicate names.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if t.Name == "" {
			return nil, errors.New("tool registry: tool must have a name")
		}
		if t.InputSchema == nil || t.OutputSchema == nil || t.Execute == nil {
			return nil, fmt.Errorf("tool registry: tool %q needs input and output schemas and an implementation", t.Name)
		}
		if _, dup := r.tools[t.Name]; dup {
			return nil, fmt.Errorf("tool registry: duplicate tool name %q", t.Name)
		}
		r.tools[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return r, nil
}

func MustRegistry(tools ...Tool) *Registry {
	r, err := NewRegistry(tools...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	if r == nil {
		return Tool{}, false
	}
	t, ok := r.tools[name]
	return t, ok
}

// Names lists tool names in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Specs returns the model-facing declarations in registration order.
func (r *Registry) Specs() []llm.ToolSpec {
	if r == nil {
		return nil
	}
	specs := make([]llm.ToolSpec, len(r.order))
	for i, name := range r.order {
		specs[i] = r.tools[name].Spec()
	}
	return specs
}
