package components

import (
	"kine3d/internal/engine"
	"kine3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("TriggerArea", func() engine.Serializable {
		return NewTriggerArea(physics.ShapeBox, physics.ShapeParams{Size: rl.Vector3{X: 1, Y: 1, Z: 1}})
	})
}

// TriggerArea is an overlap-only volume: it never contributes force and
// raycasts pass through it. Bodies crossing it fire BodyEntered/BodyExited,
// other areas fire AreaEntered/AreaExited. Monitoring gates whether this
// area detects anything, Monitorable whether other areas can detect it.
type TriggerArea struct {
	engine.BaseComponent
	Kind        physics.ShapeKind
	Params      physics.ShapeParams
	Offset      rl.Vector3
	Layer       uint32
	Mask        uint32
	Monitoring  bool
	Monitorable bool
	// Priority orders signal dispatch against other areas in the same
	// frame; higher fires first. Ordering only, never exclusivity.
	// Read once when the area registers.
	Priority int

	DebugColor   rl.Color
	DebugOpacity float32

	BodyEntered engine.EventWithArg[*engine.GameObject]
	BodyExited  engine.EventWithArg[*engine.GameObject]
	AreaEntered engine.EventWithArg[*engine.GameObject]
	AreaExited  engine.EventWithArg[*engine.GameObject]

	backend    *physics.Backend
	registry   *physics.Registry
	shape      *physics.Shape
	collider   *physics.Collider
	colliderID physics.ColliderID
	listenerID physics.ListenerID
	registered bool
}

func NewTriggerArea(kind physics.ShapeKind, params physics.ShapeParams) *TriggerArea {
	return &TriggerArea{
		Kind:         kind,
		Params:       params,
		Monitoring:   true,
		Monitorable:  true,
		DebugColor:   rl.Yellow,
		DebugOpacity: 0.4,
	}
}

func NewBoxTrigger(size rl.Vector3) *TriggerArea {
	return NewTriggerArea(physics.ShapeBox, physics.ShapeParams{Size: size})
}

func NewSphereTrigger(radius float32) *TriggerArea {
	return NewTriggerArea(physics.ShapeSphere, physics.ShapeParams{Radius: radius})
}

func (t *TriggerArea) Start() {
	t.ensure()
}

// Update refreshes the registry AABB from the node transform.
func (t *TriggerArea) Update(deltaTime float32) {
	if !t.ensure() {
		return
	}
	center := t.worldCenter()
	if t.shape.Kind == physics.ShapeMesh && t.shape.Mesh != nil {
		t.shape.Mesh.SetOrigin(center)
	}
	t.collider.Layer, t.collider.Mask = physics.DefaultLayerMask(t.Layer, t.Mask)
	t.registry.UpdateBounds(t.colliderID, t.shape.BoundsAt(center))
}

// ensure registers the trigger collider and its contact listener. Retried
// every frame until the physics context is reachable.
func (t *TriggerArea) ensure() bool {
	if t.registered {
		return true
	}
	g := t.GetGameObject()
	if g == nil {
		return false
	}
	if t.backend == nil || t.registry == nil {
		pa := physicsFrom(g)
		if pa == nil {
			return false
		}
		t.backend = pa.PhysicsBackend()
		t.registry = pa.CollisionRegistry()
		if t.backend == nil || t.registry == nil {
			return false
		}
	}
	if t.shape == nil {
		t.shape = t.backend.CreateShape(t.Kind, t.Params)
		if t.shape == nil {
			return false
		}
	}
	center := t.worldCenter()
	if t.shape.Kind == physics.ShapeMesh && t.shape.Mesh != nil {
		t.shape.Mesh.SetOrigin(center)
	}
	t.collider = &physics.Collider{
		Shape:    t.shape,
		Box:      t.shape.BoundsAt(center),
		Layer:    t.Layer,
		Mask:     t.Mask,
		Trigger:  true,
		Enabled:  true,
		UserData: t,
	}
	t.colliderID = t.registry.Register(t.collider)
	t.listenerID = t.registry.AddListener(t.Priority, 0, t.onContact)
	t.registered = true
	return true
}

// onContact runs during the registry flush for every pair event; only
// the ones touching this area's collider matter. The registered check
// mutes events arriving in the same flush that destroyed this area.
func (t *TriggerArea) onContact(ev physics.ContactEvent) {
	if !t.registered || !t.Monitoring {
		return
	}
	other := ev.Other(t.colliderID)
	if other == nil {
		return
	}
	switch payload := other.UserData.(type) {
	case *TriggerArea:
		if !payload.Monitorable {
			return
		}
		node := payload.GetGameObject()
		if node == nil {
			return
		}
		switch ev.Phase {
		case physics.PhaseEnter:
			t.AreaEntered.Invoke(node)
		case physics.PhaseExit:
			t.AreaExited.Invoke(node)
		}
	case *CollisionShape:
		node := payload.GetGameObject()
		if node == nil {
			return
		}
		switch ev.Phase {
		case physics.PhaseEnter:
			t.BodyEntered.Invoke(node)
		case physics.PhaseExit:
			t.BodyExited.Invoke(node)
		}
	}
}

// Collider returns the live registry entry, or nil before registration.
func (t *TriggerArea) Collider() *physics.Collider {
	if !t.registered {
		return nil
	}
	return t.collider
}

// DebugDraw renders the area wireframe for the world debug pass.
func (t *TriggerArea) DebugDraw() {
	if !t.registered {
		return
	}
	tint := rl.Fade(t.DebugColor, t.DebugOpacity)
	center := t.worldCenter()
	switch t.shape.Kind {
	case physics.ShapeBox:
		rl.DrawCubeWiresV(center, rl.Vector3Scale(t.shape.HalfExtents, 2), tint)
	case physics.ShapeSphere:
		rl.DrawSphereWires(center, t.shape.Radius, 12, 12, tint)
	default:
		box := t.collider.Box
		rl.DrawBoundingBox(rl.BoundingBox{Min: box.Min, Max: box.Max}, tint)
	}
}

func (t *TriggerArea) worldCenter() rl.Vector3 {
	g := t.GetGameObject()
	if g == nil {
		return t.Offset
	}
	return rl.Vector3Add(g.WorldPosition(), t.Offset)
}

// OnDestroy drops the listener and the registry entry; open pairs still
// deliver their exit on the next flush.
func (t *TriggerArea) OnDestroy() {
	if t.registered {
		t.registry.RemoveListener(t.listenerID)
		t.registry.Unregister(t.colliderID)
		t.registered = false
		t.collider = nil
	}
	if t.shape != nil && t.backend != nil {
		t.backend.ReleaseShape(t.shape)
	}
	t.shape = nil
}

// TypeName implements engine.Serializable
func (t *TriggerArea) TypeName() string {
	return "TriggerArea"
}

// Serialize implements engine.Serializable
func (t *TriggerArea) Serialize() map[string]any {
	data := map[string]any{
		"type":        "TriggerArea",
		"kind":        t.Kind.String(),
		"offset":      [3]float32{t.Offset.X, t.Offset.Y, t.Offset.Z},
		"layer":       t.Layer,
		"mask":        t.Mask,
		"monitoring":  t.Monitoring,
		"monitorable": t.Monitorable,
		"priority":    t.Priority,
	}
	switch t.Kind {
	case physics.ShapeBox:
		data["size"] = [3]float32{t.Params.Size.X, t.Params.Size.Y, t.Params.Size.Z}
	case physics.ShapeSphere:
		data["radius"] = t.Params.Radius
	case physics.ShapeCylinder, physics.ShapeCapsule:
		data["radius"] = t.Params.Radius
		data["height"] = t.Params.Height
	}
	return data
}

// Deserialize implements engine.Serializable
func (t *TriggerArea) Deserialize(data map[string]any) {
	if name, ok := data["kind"].(string); ok {
		if kind, valid := physics.ParseShapeKind(name); valid {
			t.Kind = kind
		}
	}
	if raw, ok := data["offset"].([]any); ok && len(raw) == 3 {
		t.Offset.X = float32(raw[0].(float64))
		t.Offset.Y = float32(raw[1].(float64))
		t.Offset.Z = float32(raw[2].(float64))
	}
	if raw, ok := data["size"].([]any); ok && len(raw) == 3 {
		t.Params.Size.X = float32(raw[0].(float64))
		t.Params.Size.Y = float32(raw[1].(float64))
		t.Params.Size.Z = float32(raw[2].(float64))
	}
	if r, ok := data["radius"].(float64); ok {
		t.Params.Radius = float32(r)
	}
	if h, ok := data["height"].(float64); ok {
		t.Params.Height = float32(h)
	}
	if l, ok := data["layer"].(float64); ok {
		t.Layer = uint32(l)
	}
	if m, ok := data["mask"].(float64); ok {
		t.Mask = uint32(m)
	}
	if m, ok := data["monitoring"].(bool); ok {
		t.Monitoring = m
	}
	if m, ok := data["monitorable"].(bool); ok {
		t.Monitorable = m
	}
	if p, ok := data["priority"].(float64); ok {
		t.Priority = int(p)
	}
}
