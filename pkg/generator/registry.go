package generator

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry is a named set of generators. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{generators: make(map[string]Generator)}
}

// Register adds g under g.Info().Name.
func (r *Registry) Register(g Generator) error {
	name := g.Info().Name
	if name == "" {
		return fmt.Errorf("generator: registering generator with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.generators[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateGenerator, name)
	}
	r.generators[name] = g
	return nil
}

// Get returns the generator registered under name.
func (r *Registry) Get(name string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGenerator, name)
	}
	return g, nil
}

// List returns the metadata of all generators sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.generators))
	for _, g := range r.generators {
		infos = append(infos, g.Info())
	}
	slices.SortFunc(infos, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return infos
}

// Len returns the number of registered generators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.generators)
}
