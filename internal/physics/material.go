package physics

import "fmt"

// Material bundles the surface response of a body. Friction 0 is ice,
// 1 stops tangential motion immediately; Restitution 0 is dead, 1 is a
// perfect bounce.
type Material struct {
	Name        string
	Friction    float32
	Restitution float32
}

// DefaultMaterial is applied to every new body until SetMaterial changes it.
var DefaultMaterial = Material{Name: "default", Friction: 0.1, Restitution: 0.5}

var materialRegistry = map[string]Material{}

// RegisterMaterial adds a named material preset.
// Panics on duplicate names, same as the script registry.
func RegisterMaterial(m Material) {
	if _, exists := materialRegistry[m.Name]; exists {
		panic(fmt.Sprintf("material %q already registered", m.Name))
	}
	materialRegistry[m.Name] = m
}

// MaterialByName looks up a registered material preset.
func MaterialByName(name string) (Material, bool) {
	m, ok := materialRegistry[name]
	return m, ok
}

// MaterialNames returns all registered preset names (unsorted).
func MaterialNames() []string {
	names := make([]string, 0, len(materialRegistry))
	for name := range materialRegistry {
		names = append(names, name)
	}
	return names
}

func init() {
	RegisterMaterial(DefaultMaterial)
	RegisterMaterial(Material{Name: "ice", Friction: 0.02, Restitution: 0.1})
	RegisterMaterial(Material{Name: "rubber", Friction: 0.8, Restitution: 0.9})
	RegisterMaterial(Material{Name: "wood", Friction: 0.4, Restitution: 0.3})
	RegisterMaterial(Material{Name: "metal", Friction: 0.2, Restitution: 0.25})
	RegisterMaterial(Material{Name: "stone", Friction: 0.6, Restitution: 0.1})
}
