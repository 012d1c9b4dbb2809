package components

import (
	"log"

	"kine3d/internal/engine"
	"kine3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("StaticBody", func() engine.Serializable {
		return NewStaticBody()
	})
}

// DefaultStaticVertexBudget caps the mesh size a StaticBody collides
// against exactly. Larger geometry falls back to the shape heuristic.
const DefaultStaticVertexBudget = 10000

// StaticBody anchors immovable collision geometry: level meshes, walls,
// floors. Mass 0, never stepped, no per-frame sync. Static geometry is
// cheap to collide against exactly, so small meshes default to a trimesh
// instead of the box/sphere heuristic.
type StaticBody struct {
	engine.BaseComponent
	Material     string
	VertexBudget int // 0 means DefaultStaticVertexBudget

	backend  *physics.Backend
	body     *physics.Body
	attached *CollisionShape
	inferred *physics.Shape
}

func NewStaticBody() *StaticBody {
	return &StaticBody{
		Material: "default",
	}
}

func (b *StaticBody) Start() {
	b.ensureBody()
}

// Update only retries body creation; statics do not sync transforms.
func (b *StaticBody) Update(deltaTime float32) {
	b.ensureBody()
}

func (b *StaticBody) ensureBody() bool {
	if b.body != nil {
		return true
	}
	g := b.GetGameObject()
	if g == nil {
		return false
	}
	if b.backend == nil {
		pa := physicsFrom(g)
		if pa == nil {
			return false
		}
		b.backend = pa.PhysicsBackend()
		if b.backend == nil {
			return false
		}
	}
	shape := b.resolveShape(g)
	if shape == nil {
		return false
	}
	b.body = b.backend.CreateBody(physics.ModeStatic, shape, g.WorldPosition(), 0)
	if b.body == nil {
		return false
	}
	b.body.Rotation = g.WorldRotation()
	b.body.UserData = g
	if b.Material != "" {
		b.backend.SetMaterial(b.body.ID, b.Material)
	}
	return true
}

// resolveShape prefers an attached CollisionShape, then an exact trimesh
// when the source mesh fits the vertex budget, then the heuristic.
func (b *StaticBody) resolveShape(g *engine.GameObject) *physics.Shape {
	if b.attached != nil {
		return b.attached.ShapeHandle()
	}
	budget := b.VertexBudget
	if budget <= 0 {
		budget = DefaultStaticVertexBudget
	}
	if provider := findGeometryProvider(g); provider != nil {
		count := provider.GeometryVertexCount()
		if count > budget {
			log.Printf("Physics: %q has %d vertices, over the %d static mesh budget, using shape heuristic", g.Name, count, budget)
		} else if triangles, ok := provider.GeometryTriangles(); ok && len(triangles) > 0 {
			mesh, err := physics.NewTriMesh(triangles)
			if err != nil {
				log.Printf("Physics: mesh collider build failed on %q: %v, using shape heuristic", g.Name, err)
			} else {
				b.inferred = b.backend.CreateShape(physics.ShapeMesh, physics.ShapeParams{Mesh: mesh})
				return b.inferred
			}
		}
	}
	kind, params := inferShapeFromNode(g)
	b.inferred = b.backend.CreateShape(kind, params)
	return b.inferred
}

// PushTransform re-anchors the body at the node's current transform.
// Moving platforms call this after moving the node; nothing else needs it.
func (b *StaticBody) PushTransform() {
	if b.body == nil {
		return
	}
	g := b.GetGameObject()
	if g == nil {
		return
	}
	b.body.Position = g.WorldPosition()
	b.body.Rotation = g.WorldRotation()
	if b.body.Shape != nil && b.body.Shape.Kind == physics.ShapeMesh && b.body.Shape.Mesh != nil {
		b.body.Shape.Mesh.SetOrigin(b.body.Position)
	}
}

// AttachShape adopts a CollisionShape as this body's collision volume.
func (b *StaticBody) AttachShape(s *CollisionShape) {
	if s == nil || b.attached == s {
		return
	}
	if b.attached != nil {
		b.attached.owner = nil
	}
	if s.owner != nil {
		s.owner.DetachShape(s)
	}
	s.owner = b
	b.attached = s
	s.DebugColor = rl.SkyBlue
	if b.body != nil {
		if shape := s.ShapeHandle(); shape != nil {
			b.releaseInferred()
			b.body.Shape = shape
		}
	}
}

// DetachShape drops the attachment and re-infers so the body keeps a shape.
func (b *StaticBody) DetachShape(s *CollisionShape) {
	if s == nil || b.attached != s {
		return
	}
	s.owner = nil
	b.attached = nil
	if b.body != nil {
		kind, params := inferShapeFromNode(b.GetGameObject())
		if shape := b.backend.CreateShape(kind, params); shape != nil {
			b.inferred = shape
			b.body.Shape = shape
		}
	}
}

// Body returns the backend handle, nil until the body comes online.
func (b *StaticBody) Body() *physics.Body {
	return b.body
}

func (b *StaticBody) releaseInferred() {
	if b.inferred != nil && b.backend != nil {
		b.backend.ReleaseShape(b.inferred)
	}
	b.inferred = nil
}

func (b *StaticBody) OnDestroy() {
	if b.body != nil && b.backend != nil {
		b.backend.RemoveBody(b.body.ID)
	}
	b.body = nil
	b.releaseInferred()
	if b.attached != nil {
		b.attached.owner = nil
		b.attached = nil
	}
}

// TypeName implements engine.Serializable
func (b *StaticBody) TypeName() string {
	return "StaticBody"
}

// Serialize implements engine.Serializable
func (b *StaticBody) Serialize() map[string]any {
	return map[string]any{
		"type":         "StaticBody",
		"material":     b.Material,
		"vertexBudget": b.VertexBudget,
	}
}

// Deserialize implements engine.Serializable
func (b *StaticBody) Deserialize(data map[string]any) {
	if m, ok := data["material"].(string); ok {
		b.Material = m
	}
	if v, ok := data["vertexBudget"].(float64); ok {
		b.VertexBudget = int(v)
	}
}
