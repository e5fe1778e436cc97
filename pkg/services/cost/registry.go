package cost

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// SourceFactory creates a Source for the given credentials profile
type SourceFactory func(ctx context.Context, profile string) (Source, error)

// Registry manages cost record source factories
type Registry interface {
	// Register adds a new source factory
	Register(name string, factory SourceFactory) error
	// Create instantiates the named source using the provided profile
	Create(ctx context.Context, name, profile string) (Source, error)
	// List returns the registered source names in sorted order
	List() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]SourceFactory
}

// NewRegistry creates a new source registry
func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]SourceFactory),
	}
}

func (r *registry) Register(name string, factory SourceFactory) error {
	if name == "" {
		return fmt.Errorf("source name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("source %q is already registered", name)
	}

	r.factories[name] = factory
	return nil
}

func (r *registry) Create(ctx context.Context, name, profile string) (Source, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("source %q is not registered", name)
	}

	src, err := factory(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create source %q: %w", name, err)
	}
	return src, nil
}

func (r *registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
