package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps backend names to factories and keeps the instances it has
// built. Backends are created once per name; a second Create for the same
// name returns the existing instance.
type Registry[T Provider] struct {
	mu        sync.Mutex
	factories map[string]Factory[T]
	built     map[string]T
}

// NewRegistry creates an empty Registry.
func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]Factory[T]),
		built:     make(map[string]T),
	}
}

// RegisterFactory makes a backend available under the given name. A repeated
// name replaces the earlier factory.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create returns the backend registered under name, building it with cfg on
// first use.
func (r *Registry[T]) Create(name string, cfg map[string]any) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if inst, ok := r.built[name]; ok {
		return inst, nil
	}
	factory, ok := r.factories[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown provider %q (registered: %v)", name, r.namesLocked())
	}
	inst, err := factory(cfg)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("build provider %q: %w", name, err)
	}
	r.built[name] = inst
	return inst, nil
}

// Get returns an already-built backend.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.built[name]
	return inst, ok
}

// Names lists the registered backend names, sorted.
func (r *Registry[T]) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.namesLocked()
}

func (r *Registry[T]) namesLocked() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
