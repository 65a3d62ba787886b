package header

import (
	"fmt"
	"sort"
	"sync"

	"firestige.xyz/craft/internal/core"
)

// Registry maps protocol tags to descriptors. It is populated during
// startup (protocol packages register in init) and read-only
// afterwards; the mutex exists so misuse during tests stays safe.
type Registry struct {
	mu    sync.RWMutex
	descs map[string]Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{descs: make(map[string]Descriptor)}
}

// Register adds a descriptor under its tag. Registering a tag twice
// fails with core.ErrDuplicateProtocol.
func (r *Registry) Register(d Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag := d.Tag()
	if tag == "" {
		return fmt.Errorf("empty tag: %w", core.ErrBadFieldSpec)
	}
	if _, exists := r.descs[tag]; exists {
		return fmt.Errorf("%q: %w", tag, core.ErrDuplicateProtocol)
	}
	r.descs[tag] = d
	return nil
}

// Lookup returns the descriptor for tag, or core.ErrProtocolNotFound.
func (r *Registry) Lookup(tag string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, exists := r.descs[tag]
	if !exists {
		return nil, fmt.Errorf("%q: %w", tag, core.ErrProtocolNotFound)
	}
	return d, nil
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.descs))
	for tag := range r.descs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// defaultRegistry backs the package-level registration used by the
// protocol packages' init functions.
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// MustRegister registers into the default registry and panics on
// collision; it is meant for init-time use only.
func MustRegister(d Descriptor) {
	if err := defaultRegistry.Register(d); err != nil {
		panic(fmt.Sprintf("header: %v", err))
	}
}
