package component

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/echoscribe/echoscribe/logger"
)

type entry struct {
	component Component
	started   bool
}

// Registry starts components in registration order and stops them in
// reverse, so dependencies outlive their dependents.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
	lookup  map[string]*entry
	log     *logger.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		lookup: make(map[string]*entry),
		log:    logger.WithComponent("lifecycle"),
	}
}

// Register adds a component. Register dependencies first; start order is
// registration order.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.lookup[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}

	e := &entry{component: c}
	r.entries = append(r.entries, e)
	r.lookup[name] = e
	return nil
}

// StartAll starts every component in registration order. The first failure
// aborts the sequence; already-started components stay up so StopAll can
// unwind them.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		name := e.component.Name()
		if err := e.component.Start(ctx); err != nil {
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		e.started = true
		r.log.Debug("component started", logger.Fields(logger.FieldComponent, name))
	}
	return nil
}

// StopAll stops started components in reverse order, 10 seconds each. Stop
// failures are collected, not fatal: every component gets its chance to shut
// down.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.started {
			continue
		}
		name := e.component.Name()

		stopCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := e.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			r.log.Error("component stop failed", logger.ErrorFields("stop "+name, err))
		} else {
			r.log.Debug("component stopped", logger.Fields(logger.FieldComponent, name))
		}
		e.started = false
		cancel()
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// HealthAll reports every component's health in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Health, 0, len(r.entries))
	for _, e := range r.entries {
		results = append(results, e.component.Health(ctx))
	}
	return results
}

// Get returns a component by name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.lookup[name]; ok {
		return e.component
	}
	return nil
}
