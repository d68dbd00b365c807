// File: internal/scanners/registry.go
package scanners

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/vexred/aegis-cli/api/schemas"
)

// Factory builds one scanner instance for a run.
type Factory func(logger *zap.Logger) (schemas.Scanner, error)

// Registry maps scanner names to factories. Detection plugins register
// themselves here (typically from an init function) and the assess command
// instantiates the subset the configuration enables.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// defaultRegistry is the process-wide registry plugins register into.
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a factory under a unique name.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return fmt.Errorf("scanner name cannot be empty")
	}
	if f == nil {
		return fmt.Errorf("scanner factory for %q cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[name]; dup {
		return fmt.Errorf("scanner %q is already registered", name)
	}
	r.factories[name] = f
	return nil
}

// MustRegister is Register for init-time use, where a duplicate name is a
// programming error.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Names returns the registered scanner names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create instantiates the named scanners in the order given. An unknown name
// is a configuration error: the run must not silently drop a scanner the
// user asked for.
func (r *Registry) Create(enabled []string, logger *zap.Logger) ([]schemas.Scanner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if logger == nil {
		logger = zap.NewNop()
	}

	out := make([]schemas.Scanner, 0, len(enabled))
	for _, name := range enabled {
		f, ok := r.factories[name]
		if !ok {
			return nil, &schemas.ScanError{
				Scanner: name,
				Message: fmt.Sprintf("unknown scanner %q (available: %v)", name, r.namesLocked()),
				Kind:    schemas.FailureKindConfig,
			}
		}
		sc, err := f(logger.With(zap.String("scanner", name)))
		if err != nil {
			return nil, &schemas.ScanError{
				Scanner: name,
				Message: fmt.Sprintf("failed to construct scanner: %v", err),
				Kind:    schemas.FailureKindConfig,
			}
		}
		out = append(out, sc)
	}
	return out, nil
}

// namesLocked mirrors Names without re-acquiring the read lock.
func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
