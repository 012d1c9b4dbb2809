package engine

import "fmt"

// Serializable is implemented by components that can round-trip through
// scene files. Serialize returns a JSON-friendly property map; Deserialize
// restores fields from one. Runtime state (handles, overlap sets) is never
// serialized, only configuration.
type Serializable interface {
	TypeName() string
	Serialize() map[string]any
	Deserialize(data map[string]any)
}

// ComponentFactory creates an empty component ready for Deserialize.
type ComponentFactory func() Serializable

var componentRegistry = map[string]ComponentFactory{}

// RegisterComponent registers a component type for scene loading.
// Called from init() in each component file.
func RegisterComponent(name string, factory ComponentFactory) {
	if _, exists := componentRegistry[name]; exists {
		panic(fmt.Sprintf("component %q already registered", name))
	}
	componentRegistry[name] = factory
}

// CreateComponent instantiates a registered component by type name.
// Returns nil for unknown names so loaders can skip with a warning.
func CreateComponent(name string) Serializable {
	factory, ok := componentRegistry[name]
	if !ok {
		return nil
	}
	return factory()
}

// GetRegisteredComponents returns a sorted list of registered component names.
func GetRegisteredComponents() []string {
	names := make([]string, 0, len(componentRegistry))
	for name := range componentRegistry {
		names = append(names, name)
	}
	// Sort for consistent ordering in UI
	for i := 0; i < len(names)-1; i++ {
		for j := i + 1; j < len(names); j++ {
			if names[i] > names[j] {
				names[i], names[j] = names[j], names[i]
			}
		}
	}
	return names
}
