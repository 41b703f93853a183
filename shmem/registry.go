// Package shmem stands in for the cross-process shared-memory segment a
// multi-backend engine would allocate once and have every backend attach to
// by name. A single Go process has no backends to share memory across, only
// goroutines that already share an address space, so the only contract
// worth preserving is the attach semantics: the first caller to ask for a
// name constructs it, every later caller gets the same value back.
package shmem

import "sync"

// Registry is a process-wide table of named regions.
type Registry struct {
	mu      sync.Mutex
	regions map[string]interface{}
}

// NewRegistry returns an empty registry. Most callers should use the
// package-level Attach/Detach, which operate on a shared default registry;
// NewRegistry exists for tests that want isolation between cases.
func NewRegistry() *Registry {
	return &Registry{regions: make(map[string]interface{})}
}

// Attach returns the region registered under name, constructing it with
// build if this is the first attach for that name. found reports whether an
// existing region was reused instead of built.
func (r *Registry) Attach(name string, build func() interface{}) (region interface{}, found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.regions[name]; ok {
		return existing, true
	}
	region = build()
	r.regions[name] = region
	return region, false
}

// Detach removes name from the registry. It does not inspect or release the
// region's contents; callers that need cleanup must do it themselves before
// calling Detach.
func (r *Registry) Detach(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.regions, name)
}

var global = NewRegistry()

// Attach attaches to a named region in the default registry.
func Attach(name string, build func() interface{}) (interface{}, bool) {
	return global.Attach(name, build)
}

// Detach removes name from the default registry.
func Detach(name string) {
	global.Detach(name)
}
