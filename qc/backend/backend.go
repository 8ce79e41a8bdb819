// Package backend is the execution-target abstraction: every simulator
// or remote accelerator the SDK can run a circuit against implements
// Backend, and is looked up by name through the package registry the
// way qc/simulator looks up OneShotRunners.
package backend

import (
	"fmt"
	"sync"

	"github.com/kegliz/qplay/qc/circuit"
)

// Counts is a shot-outcome histogram: bitstring (as produced by the
// backend, MSB/LSB convention is the backend's own) -> observed count.
type Counts map[string]int

// Config carries backend-specific initialisation options (shots default,
// noise preset name, remote endpoint, credentials file, ...). Backends
// ignore keys they don't understand.
type Config map[string]interface{}

// Backend is an execution target for a compiled circuit.Circuit.
type Backend interface {
	// Name is the backend's registry name.
	Name() string
	// IsRemote reports whether Execute makes a network call (so callers
	// know to expect latency/partial-result semantics).
	IsRemote() bool
	// Connectivity returns the backend's physical qubit adjacency, or
	// nil for an all-to-all simulator with no placement constraint.
	Connectivity() [][2]int
	// Initialise configures the backend before first use.
	Initialise(cfg Config) error
	// Execute runs c for the given number of shots and returns the
	// resulting bitstring histogram.
	Execute(c circuit.Circuit, shots int) (Counts, error)
	// NativeCode renders c in the backend's native wire format, if it
	// has one (e.g. a vendor's gate-level JSON/QASM dialect).
	NativeCode(c circuit.Circuit) (string, error)
	// Properties reports backend metadata (vendor, version, qubit
	// count, ...) for diagnostics and logging.
	Properties() map[string]string
}

// Factory creates a new, uninitialised Backend instance.
type Factory func() Backend

// Registry manages registration and lookup of Backend factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

var defaultRegistry = NewRegistry()

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name. Safe to call from init().
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("backend: name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("backend: factory cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("backend: %q is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// MustRegister is Register but panics on failure.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Create instantiates the backend registered under name.
func (r *Registry) Create(name string) (Backend, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("backend: unknown backend %q", name)
	}
	b := factory()
	if b == nil {
		return nil, fmt.Errorf("backend: factory for %q returned nil", name)
	}
	return b, nil
}

// List returns all registered backend names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// Package-level convenience wrappers over the default registry.

func Register(name string, factory Factory) error     { return defaultRegistry.Register(name, factory) }
func MustRegister(name string, factory Factory)        { defaultRegistry.MustRegister(name, factory) }
func Create(name string) (Backend, error)              { return defaultRegistry.Create(name) }
func List() []string                                   { return defaultRegistry.List() }
func DefaultRegistry() *Registry                        { return defaultRegistry }
