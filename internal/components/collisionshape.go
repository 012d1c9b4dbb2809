package components

import (
	"log"
	"sort"

	"kine3d/internal/engine"
	"kine3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("CollisionShape", func() engine.Serializable {
		return NewCollisionShape(physics.ShapeBox, physics.ShapeParams{Size: rl.Vector3{X: 1, Y: 1, Z: 1}})
	})
}

// CollisionShape owns one collision shape descriptor: the backend shape
// handle, the registry collider that tracks its world AABB, and the
// enter/exit lifecycle of whatever overlaps it. A body component on the
// same node adopts the shape at Start; without one the shape still
// registers and reports overlaps, it just has no physical response.
type CollisionShape struct {
	engine.BaseComponent
	Kind    physics.ShapeKind
	Params  physics.ShapeParams
	Offset  rl.Vector3
	Layer   uint32
	Mask    uint32
	Enabled bool

	// DebugColor tints the wireframe. Body components stamp a mode color
	// when they adopt the shape: green dynamic, sky blue static, orange
	// kinematic.
	DebugColor   rl.Color
	DebugOpacity float32

	// Entered and Exited fire once per overlap episode, carrying the
	// other shape. Stay phases are not surfaced here; listeners that
	// need them subscribe on the registry directly.
	Entered engine.EventWithArg[*CollisionShape]
	Exited  engine.EventWithArg[*CollisionShape]

	owner      BodyOwner
	backend    *physics.Backend
	registry   *physics.Registry
	shape      *physics.Shape
	collider   *physics.Collider
	colliderID physics.ColliderID
	registered bool
	overlaps   map[physics.ColliderID]*CollisionShape
}

func NewCollisionShape(kind physics.ShapeKind, params physics.ShapeParams) *CollisionShape {
	return &CollisionShape{
		Kind:         kind,
		Params:       params,
		Enabled:      true,
		DebugColor:   rl.Green,
		DebugOpacity: 0.4,
	}
}

func NewBoxShape(size rl.Vector3) *CollisionShape {
	return NewCollisionShape(physics.ShapeBox, physics.ShapeParams{Size: size})
}

func NewSphereShape(radius float32) *CollisionShape {
	return NewCollisionShape(physics.ShapeSphere, physics.ShapeParams{Radius: radius})
}

func NewCapsuleShape(radius, height float32) *CollisionShape {
	return NewCollisionShape(physics.ShapeCapsule, physics.ShapeParams{Radius: radius, Height: height})
}

func (c *CollisionShape) Start() {
	g := c.GetGameObject()
	if g == nil {
		return
	}
	c.owner = engine.FindComponent[BodyOwner](g)
	if c.owner != nil {
		c.owner.AttachShape(c)
	} else {
		log.Printf("Physics: CollisionShape on %q has no body component, overlap detection only", g.Name)
	}
	c.ensure()
}

// Update refreshes the registry entry each frame: world AABB from the
// node transform, plus any Layer/Mask/Enabled edits made directly on the
// fields.
func (c *CollisionShape) Update(deltaTime float32) {
	if !c.ensure() {
		return
	}
	center := c.worldCenter()
	if c.shape.Kind == physics.ShapeMesh && c.shape.Mesh != nil {
		c.shape.Mesh.SetOrigin(center)
	}
	if c.collider.Enabled != c.Enabled {
		c.registry.SetEnabled(c.colliderID, c.Enabled)
	}
	c.collider.Layer, c.collider.Mask = physics.DefaultLayerMask(c.Layer, c.Mask)
	c.registry.UpdateBounds(c.colliderID, c.shape.BoundsAt(center))
}

// bind resolves the physics context from the scene's world. Fails soft
// until the node is part of a scene whose world carries physics.
func (c *CollisionShape) bind() bool {
	if c.backend != nil && c.registry != nil {
		return true
	}
	pa := physicsFrom(c.GetGameObject())
	if pa == nil {
		return false
	}
	c.backend = pa.PhysicsBackend()
	c.registry = pa.CollisionRegistry()
	return c.backend != nil && c.registry != nil
}

// ensure creates the shape handle and registers the collider. Retried
// every frame until the physics context is reachable, so components added
// before the world finishes initializing still come online.
func (c *CollisionShape) ensure() bool {
	if c.registered {
		return true
	}
	if c.ShapeHandle() == nil {
		return false
	}
	center := c.worldCenter()
	if c.shape.Kind == physics.ShapeMesh && c.shape.Mesh != nil {
		c.shape.Mesh.SetOrigin(center)
	}
	c.collider = &physics.Collider{
		Shape:    c.shape,
		Box:      c.shape.BoundsAt(center),
		Layer:    c.Layer,
		Mask:     c.Mask,
		Enabled:  c.Enabled,
		UserData: c,
	}
	c.colliderID = c.registry.Register(c.collider)
	c.registered = true
	return true
}

// ShapeHandle returns the backend shape, creating it on first use. Body
// components call this when adopting the shape.
func (c *CollisionShape) ShapeHandle() *physics.Shape {
	if c.shape != nil {
		return c.shape
	}
	if !c.bind() {
		return nil
	}
	c.shape = c.backend.CreateShape(c.Kind, c.Params)
	return c.shape
}

// Collider returns the live registry entry, or nil before registration.
func (c *CollisionShape) Collider() *physics.Collider {
	if !c.registered {
		return nil
	}
	return c.collider
}

// SetShape replaces the descriptor and rebuilds the backend handle. A
// no-op when the new descriptor matches the current shape.
func (c *CollisionShape) SetShape(kind physics.ShapeKind, params physics.ShapeParams) {
	if c.shape != nil && c.shape.Matches(kind, params) {
		return
	}
	c.Kind = kind
	c.Params = params
	if c.shape == nil {
		// Not built yet; ensure picks up the new descriptor
		return
	}
	old := c.shape
	rebuilt := c.backend.CreateShape(kind, params)
	if rebuilt == nil {
		return
	}
	c.shape = rebuilt
	c.backend.ReleaseShape(old)

	center := c.worldCenter()
	if c.shape.Kind == physics.ShapeMesh && c.shape.Mesh != nil {
		c.shape.Mesh.SetOrigin(center)
	}
	if c.collider != nil {
		c.collider.Shape = c.shape
		c.registry.UpdateBounds(c.colliderID, c.shape.BoundsAt(center))
	}
	if c.owner != nil {
		if body := c.owner.Body(); body != nil {
			body.Shape = c.shape
			body.Wake()
		}
	}
}

// SetEnabled toggles the collider immediately instead of waiting for the
// next Update. Live pairs decay to an exit on the next registry flush.
func (c *CollisionShape) SetEnabled(enabled bool) {
	c.Enabled = enabled
	if c.registered {
		c.registry.SetEnabled(c.colliderID, enabled)
	}
}

// HandleContact is invoked by the world's registry bridge for every
// enter/exit involving this shape's collider.
func (c *CollisionShape) HandleContact(phase physics.ContactPhase, other *physics.Collider) {
	if other == nil {
		return
	}
	otherShape, ok := other.UserData.(*CollisionShape)
	if !ok {
		return
	}
	switch phase {
	case physics.PhaseEnter:
		if c.overlaps == nil {
			c.overlaps = make(map[physics.ColliderID]*CollisionShape)
		}
		c.overlaps[other.ID] = otherShape
		c.Entered.Invoke(otherShape)
		c.notifyHandlers(physics.PhaseEnter, otherShape)
	case physics.PhaseExit:
		delete(c.overlaps, other.ID)
		c.Exited.Invoke(otherShape)
		c.notifyHandlers(physics.PhaseExit, otherShape)
	}
}

func (c *CollisionShape) notifyHandlers(phase physics.ContactPhase, other *CollisionShape) {
	g := c.GetGameObject()
	if g == nil || other == nil {
		return
	}
	otherObject := other.GetGameObject()
	if otherObject == nil {
		return
	}
	for _, comp := range g.Components() {
		handler, ok := comp.(engine.CollisionHandler)
		if !ok {
			continue
		}
		if phase == physics.PhaseEnter {
			handler.OnCollisionEnter(otherObject)
		} else {
			handler.OnCollisionExit(otherObject)
		}
	}
}

// IsColliding reports whether any overlap episode is currently open.
func (c *CollisionShape) IsColliding() bool {
	return len(c.overlaps) > 0
}

// CurrentCollisions returns the open overlaps ordered by collider id.
func (c *CollisionShape) CurrentCollisions() []*CollisionShape {
	if len(c.overlaps) == 0 {
		return nil
	}
	ids := make([]physics.ColliderID, 0, len(c.overlaps))
	for id := range c.overlaps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	shapes := make([]*CollisionShape, 0, len(ids))
	for _, id := range ids {
		shapes = append(shapes, c.overlaps[id])
	}
	return shapes
}

// DebugDraw renders the shape wireframe. Called from the world's debug
// pass, never from Update.
func (c *CollisionShape) DebugDraw() {
	if !c.registered || !c.Enabled {
		return
	}
	tint := rl.Fade(c.DebugColor, c.DebugOpacity)
	center := c.worldCenter()
	s := c.shape
	switch s.Kind {
	case physics.ShapeBox:
		rl.DrawCubeWiresV(center, rl.Vector3Scale(s.HalfExtents, 2), tint)
	case physics.ShapeSphere:
		rl.DrawSphereWires(center, s.Radius, 12, 12, tint)
	case physics.ShapeCylinder:
		base := rl.Vector3{X: center.X, Y: center.Y - s.Height/2, Z: center.Z}
		rl.DrawCylinderWires(base, s.Radius, s.Radius, s.Height, 12, tint)
	case physics.ShapeCapsule:
		top := rl.Vector3{X: center.X, Y: center.Y + s.Height/2, Z: center.Z}
		bottom := rl.Vector3{X: center.X, Y: center.Y - s.Height/2, Z: center.Z}
		rl.DrawCapsuleWires(bottom, top, s.Radius, 8, 8, tint)
	case physics.ShapePlane:
		drawPlaneGrid(s.Normal, s.Offset, tint)
	case physics.ShapeMesh:
		if s.Mesh != nil {
			bounds := s.Mesh.Bounds()
			rl.DrawBoundingBox(rl.BoundingBox{Min: bounds.Min, Max: bounds.Max}, tint)
		}
	}
}

// drawPlaneGrid draws a finite grid patch on an infinite plane, centered
// at the plane point closest to the world origin.
func drawPlaneGrid(normal rl.Vector3, offset float32, tint rl.Color) {
	const half = 10
	origin := rl.Vector3Scale(normal, offset)
	t1, t2 := planeTangents(normal)
	for i := -half; i <= half; i++ {
		along := rl.Vector3Scale(t1, float32(i))
		from := rl.Vector3Add(origin, rl.Vector3Add(along, rl.Vector3Scale(t2, -half)))
		to := rl.Vector3Add(origin, rl.Vector3Add(along, rl.Vector3Scale(t2, half)))
		rl.DrawLine3D(from, to, tint)

		across := rl.Vector3Scale(t2, float32(i))
		from = rl.Vector3Add(origin, rl.Vector3Add(across, rl.Vector3Scale(t1, -half)))
		to = rl.Vector3Add(origin, rl.Vector3Add(across, rl.Vector3Scale(t1, half)))
		rl.DrawLine3D(from, to, tint)
	}
}

func planeTangents(normal rl.Vector3) (rl.Vector3, rl.Vector3) {
	reference := rl.Vector3{X: 0, Y: 1, Z: 0}
	if absf32(normal.Y) > 0.99 {
		reference = rl.Vector3{X: 1, Y: 0, Z: 0}
	}
	t1 := rl.Vector3Normalize(rl.Vector3CrossProduct(normal, reference))
	t2 := rl.Vector3CrossProduct(normal, t1)
	return t1, t2
}

func (c *CollisionShape) worldCenter() rl.Vector3 {
	g := c.GetGameObject()
	if g == nil {
		return c.Offset
	}
	return rl.Vector3Add(g.WorldPosition(), c.Offset)
}

// OnDestroy releases the registry entry and the backend handle. Pairs
// that were open still deliver their exit on the next flush.
func (c *CollisionShape) OnDestroy() {
	if c.registered {
		c.registry.Unregister(c.colliderID)
		c.registered = false
		c.collider = nil
	}
	if c.shape != nil && c.backend != nil {
		c.backend.ReleaseShape(c.shape)
	}
	c.shape = nil
	if c.owner != nil {
		c.owner.DetachShape(c)
		c.owner = nil
	}
	c.overlaps = nil
}

// TypeName implements engine.Serializable
func (c *CollisionShape) TypeName() string {
	return "CollisionShape"
}

// Serialize implements engine.Serializable. Mesh shapes carry no payload;
// they are rebuilt from render geometry on load.
func (c *CollisionShape) Serialize() map[string]any {
	data := map[string]any{
		"type":    "CollisionShape",
		"kind":    c.Kind.String(),
		"offset":  [3]float32{c.Offset.X, c.Offset.Y, c.Offset.Z},
		"layer":   c.Layer,
		"mask":    c.Mask,
		"enabled": c.Enabled,
	}
	switch c.Kind {
	case physics.ShapeBox:
		data["size"] = [3]float32{c.Params.Size.X, c.Params.Size.Y, c.Params.Size.Z}
	case physics.ShapeSphere:
		data["radius"] = c.Params.Radius
	case physics.ShapeCylinder, physics.ShapeCapsule:
		data["radius"] = c.Params.Radius
		data["height"] = c.Params.Height
	case physics.ShapePlane:
		data["normal"] = [3]float32{c.Params.Normal.X, c.Params.Normal.Y, c.Params.Normal.Z}
		data["planeOffset"] = c.Params.Offset
	}
	return data
}

// Deserialize implements engine.Serializable
func (c *CollisionShape) Deserialize(data map[string]any) {
	if name, ok := data["kind"].(string); ok {
		if kind, valid := physics.ParseShapeKind(name); valid {
			c.Kind = kind
		}
	}
	if raw, ok := data["offset"].([]any); ok && len(raw) == 3 {
		c.Offset.X = float32(raw[0].(float64))
		c.Offset.Y = float32(raw[1].(float64))
		c.Offset.Z = float32(raw[2].(float64))
	}
	if raw, ok := data["size"].([]any); ok && len(raw) == 3 {
		c.Params.Size.X = float32(raw[0].(float64))
		c.Params.Size.Y = float32(raw[1].(float64))
		c.Params.Size.Z = float32(raw[2].(float64))
	}
	if r, ok := data["radius"].(float64); ok {
		c.Params.Radius = float32(r)
	}
	if h, ok := data["height"].(float64); ok {
		c.Params.Height = float32(h)
	}
	if raw, ok := data["normal"].([]any); ok && len(raw) == 3 {
		c.Params.Normal.X = float32(raw[0].(float64))
		c.Params.Normal.Y = float32(raw[1].(float64))
		c.Params.Normal.Z = float32(raw[2].(float64))
	}
	if o, ok := data["planeOffset"].(float64); ok {
		c.Params.Offset = float32(o)
	}
	if l, ok := data["layer"].(float64); ok {
		c.Layer = uint32(l)
	}
	if m, ok := data["mask"].(float64); ok {
		c.Mask = uint32(m)
	}
	if e, ok := data["enabled"].(bool); ok {
		c.Enabled = e
	}
}
