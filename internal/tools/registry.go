package tools

import "fmt"

// Registry maps tool names to descriptors. It is populated during startup
// and read-only afterwards, so lookups need no synchronization.
type Registry struct {
	byName map[string]*Descriptor
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Descriptor),
	}
}

// Register adds a descriptor to the registry. Registering the same name
// twice is a programming error and fails so startup can abort.
func (r *Registry) Register(d *Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("tool has empty name")
	}
	if d.Handler == nil {
		return fmt.Errorf("tool %q has no handler", d.Name)
	}
	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("tool %q is already registered", d.Name)
	}
	r.byName[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// MustRegister registers a descriptor and panics on failure.
// Intended for startup wiring where a duplicate name is a bug.
func (r *Registry) MustRegister(d *Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Resolve looks up a descriptor by tool name.
func (r *Registry) Resolve(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// List returns all descriptors in registration order.
func (r *Registry) List() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Names returns all tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
