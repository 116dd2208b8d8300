package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]Schema)
	registryMu sync.RWMutex
)

// Register adds a schema to the registry.
// Panics if the schema is inconsistent or its key is already registered.
func Register(s Schema) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if err := s.validate(); err != nil {
		panic(fmt.Sprintf("invalid schema: %v", err))
	}
	if _, exists := registry[s.Key]; exists {
		panic(fmt.Sprintf("schema already registered: %s", s.Key))
	}

	registry[s.Key] = s
}

// Get returns a schema by key.
// Returns false if not found.
func Get(key string) (Schema, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	s, ok := registry[key]
	return s, ok
}

// Lookup is Get with an error that wraps ErrUnknownSchema.
func Lookup(key string) (Schema, error) {
	s, ok := Get(key)
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownSchema, key)
	}
	return s, nil
}

// All returns every registered schema sorted by key.
func All() []Schema {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Schema, 0, len(registry))
	for _, s := range registry {
		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result
}

// Keys returns the registered schema keys, sorted.
func Keys() []string {
	all := All()
	keys := make([]string, len(all))
	for i, s := range all {
		keys[i] = s.Key
	}
	return keys
}

// SchemaCount returns the number of registered schemas.
func SchemaCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered schemas.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Schema)
}
