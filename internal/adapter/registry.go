package adapter

import (
	"fmt"
	"sort"
	"sync"

	flowerrors "github.com/flowmeta/flowmeta/pkg/errors"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Adapter)
)

// Register adds an adapter implementation for its kind.
func Register(a Adapter) error {
	if a == nil {
		return flowerrors.NewAdapterError("", fmt.Errorf("adapter is nil"))
	}

	kind := a.Metadata().Kind
	if kind == "" {
		return flowerrors.NewAdapterError("", fmt.Errorf("adapter kind is empty"))
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[kind]; exists {
		return flowerrors.NewAdapterError(kind, fmt.Errorf("adapter already registered"))
	}

	registry[kind] = a
	return nil
}

// Get retrieves an adapter by kind.
func Get(kind string) (Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	a, ok := registry[kind]
	if !ok {
		return nil, flowerrors.NewAdapterError(kind, fmt.Errorf("no adapter registered"))
	}

	return a, nil
}

// Kinds returns the registered kinds sorted alphabetically.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Reset clears adapter registrations (for tests).
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Adapter)
}
