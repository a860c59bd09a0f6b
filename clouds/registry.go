// Package clouds provides the component handler registry.
// Handlers are keyed by component type and can be added without modifying core.
package clouds

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages handler registration
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates a new handler registry
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler to the registry
func (r *Registry) Register(h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h.Type() == "" {
		return fmt.Errorf("handler has no component type")
	}
	if _, exists := r.handlers[h.Type()]; exists {
		return fmt.Errorf("handler already registered: %s", h.Type())
	}

	r.handlers[h.Type()] = h
	return nil
}

// MustRegister registers handlers and panics on conflict
func (r *Registry) MustRegister(hs ...Handler) {
	for _, h := range hs {
		if err := r.Register(h); err != nil {
			panic(err)
		}
	}
}

// Get returns the handler for a component type
func (r *Registry) Get(componentType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[componentType]
	return h, ok
}

// Types returns all registered component types, sorted
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered handlers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
