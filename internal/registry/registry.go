// Package registry provides a global registry of engine factories.
// Engines register themselves in init() functions, allowing the shell to
// mount an engine by id without a hardcoded dependency on it.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/base-tetris/internal/engine"
)

// EngineInfo contains metadata about a registered engine.
type EngineInfo struct {
	ID    string
	Title string
}

type entry struct {
	title   string
	factory engine.Factory
}

var (
	entries = make(map[string]entry)
	mu      sync.RWMutex
)

// Register adds an engine factory to the registry.
// Panics if an engine with the same ID is already registered.
func Register(id, title string, f engine.Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := entries[id]; exists {
		panic(fmt.Sprintf("registry: engine %q already registered", id))
	}
	entries[id] = entry{title: title, factory: f}
}

// List returns information about all registered engines, sorted by ID.
func List() []EngineInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]EngineInfo, 0, len(entries))
	for id, e := range entries {
		result = append(result, EngineInfo{ID: id, Title: e.title})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Lookup returns the registration info for id.
func Lookup(id string) (EngineInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := entries[id]
	if !ok {
		return EngineInfo{}, false
	}
	return EngineInfo{ID: id, Title: e.title}, true
}

// Create instantiates a new engine by its ID.
func Create(id string) (engine.Engine, error) {
	f, err := Factory(id)
	if err != nil {
		return nil, err
	}
	return f(), nil
}

// Factory returns the factory registered under id.
func Factory(id string) (engine.Factory, error) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := entries[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown engine %q", id)
	}
	return e.factory, nil
}

// Exists checks if an engine with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := entries[id]
	return ok
}

// unregister removes an engine. Only used by tests.
func unregister(id string) {
	mu.Lock()
	defer mu.Unlock()
	delete(entries, id)
}
