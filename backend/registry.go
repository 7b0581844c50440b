package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/gpath"
	"github.com/gogpu/gpath/render"
)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	backendPriority = []string{BackendWGPU, BackendSoft}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the sorted names of the registered backends.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Open creates a device of the named backend.
func Open(name string, width, height int) (render.Device, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q is not registered", ErrBackendNotAvailable, name)
	}
	return factory(width, height)
}

// Default creates a device of the best available backend and returns its
// name. Backends are tried in priority order (wgpu, then soft, then the
// remaining names alphabetically); a backend whose factory fails with
// ErrBackendNotAvailable is skipped.
func Default(width, height int) (render.Device, string, error) {
	if width <= 0 || height <= 0 {
		return nil, "", fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	order := append([]string(nil), backendPriority...)
	for _, name := range Available() {
		if name != BackendWGPU && name != BackendSoft {
			order = append(order, name)
		}
	}

	for _, name := range order {
		registryMu.RLock()
		factory, ok := backends[name]
		registryMu.RUnlock()
		if !ok {
			continue
		}
		dev, err := factory(width, height)
		if err == nil {
			return dev, name, nil
		}
		if !errors.Is(err, ErrBackendNotAvailable) {
			return nil, name, err
		}
		gpath.Logger().Warn("backend: falling back", "backend", name, "err", err)
	}
	return nil, "", ErrBackendNotAvailable
}
