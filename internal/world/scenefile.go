package world

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"kine3d/internal/components"
	"kine3d/internal/engine"
)

// RuntimeTag marks objects the scene file never captures: the player,
// spawned projectiles, anything code rebuilds on startup.
const RuntimeTag = "runtime"

// SceneFile is the on-disk scene format. Component payloads are whatever
// each component's Serialize produced, routed back through the component
// registry by their "type" key; this file knows no component internals.
type SceneFile struct {
	Objects []ObjectDef `json:"objects"`
}

type ObjectDef struct {
	Name       string           `json:"name"`
	Tags       []string         `json:"tags,omitempty"`
	Position   [3]float32       `json:"position"`
	Rotation   [3]float32       `json:"rotation,omitempty"`
	Scale      [3]float32       `json:"scale,omitempty"`
	Components []map[string]any `json:"components,omitempty"`
	Children   []ObjectDef      `json:"children,omitempty"`
}

// LoadScene reads a scene file and instantiates its objects into the world.
// Unknown component types are skipped with a warning so scenes stay loadable
// across versions.
func (w *World) LoadScene(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read scene: %w", err)
	}

	var sf SceneFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parse scene: %w", err)
	}

	for _, def := range sf.Objects {
		w.loadObject(def, nil)
	}
	return nil
}

func (w *World) loadObject(def ObjectDef, parent *engine.GameObject) {
	g := engine.NewGameObject(def.Name)
	g.Tags = def.Tags
	g.Transform.Position = rl.Vector3{X: def.Position[0], Y: def.Position[1], Z: def.Position[2]}
	g.Transform.Rotation = rl.Vector3{X: def.Rotation[0], Y: def.Rotation[1], Z: def.Rotation[2]}

	// Absent scale in the file means 1, not 0
	if def.Scale == [3]float32{} {
		g.Transform.Scale = rl.Vector3{X: 1, Y: 1, Z: 1}
	} else {
		g.Transform.Scale = rl.Vector3{X: def.Scale[0], Y: def.Scale[1], Z: def.Scale[2]}
	}

	w.Scene.AddGameObject(g)
	if parent != nil {
		parent.AddChild(g)
	}

	for _, data := range def.Components {
		w.attachComponent(g, data)
	}
	for _, childDef := range def.Children {
		w.loadObject(childDef, g)
	}
}

func (w *World) attachComponent(g *engine.GameObject, data map[string]any) {
	typeName, _ := data["type"].(string)
	switch typeName {
	case "":
		log.Printf("Scene: component on %q has no type, skipped", g.Name)
		return
	case "Script":
		name, _ := data["name"].(string)
		props, _ := data["props"].(map[string]any)
		comp := engine.CreateScript(name, props)
		if comp == nil {
			log.Printf("Scene: unknown script %q on %q, skipped", name, g.Name)
			return
		}
		g.AddComponent(comp)
		return
	}

	serializable := engine.CreateComponent(typeName)
	if serializable == nil {
		log.Printf("Scene: unknown component type %q on %q, skipped", typeName, g.Name)
		return
	}
	serializable.Deserialize(data)
	comp, ok := serializable.(engine.Component)
	if !ok {
		log.Printf("Scene: component type %q is not attachable, skipped", typeName)
		return
	}
	g.AddComponent(comp)

	// World-side wiring the components cannot do themselves
	switch typed := comp.(type) {
	case *components.ModelRenderer:
		if w.Renderer.initialized {
			typed.SetShader(w.Renderer.Shader)
		}
	case *components.DirectionalLight:
		w.Light = g
		w.Renderer.SetLight(typed)
	}
}

// SaveScene captures every persistent object, children nested under their
// parents. Objects tagged runtime are skipped; code recreates those.
func (w *World) SaveScene(path string) error {
	var sf SceneFile

	for _, g := range w.Scene.GameObjects {
		if g.Parent != nil || g.HasTag(RuntimeTag) {
			continue
		}
		sf.Objects = append(sf.Objects, buildObjectDef(g))
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}

func buildObjectDef(g *engine.GameObject) ObjectDef {
	def := ObjectDef{
		Name:     g.Name,
		Tags:     g.Tags,
		Position: [3]float32{g.Transform.Position.X, g.Transform.Position.Y, g.Transform.Position.Z},
		Rotation: [3]float32{g.Transform.Rotation.X, g.Transform.Rotation.Y, g.Transform.Rotation.Z},
		Scale:    [3]float32{g.Transform.Scale.X, g.Transform.Scale.Y, g.Transform.Scale.Z},
	}

	for _, c := range g.Components() {
		if s, ok := c.(engine.Serializable); ok {
			def.Components = append(def.Components, s.Serialize())
			continue
		}
		if name, props, ok := engine.SerializeScript(c); ok {
			def.Components = append(def.Components, map[string]any{
				"type":  "Script",
				"name":  name,
				"props": props,
			})
		}
	}

	for _, child := range g.Children {
		if child.HasTag(RuntimeTag) {
			continue
		}
		def.Children = append(def.Children, buildObjectDef(child))
	}
	return def
}
