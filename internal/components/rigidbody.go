package components

import (
	"log"

	"kine3d/internal/engine"
	"kine3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("RigidBody", func() engine.Serializable {
		return NewRigidBody()
	})
}

// RigidBody hands its node to the backend as a fully simulated dynamic
// body. Transform sync runs backend to node every frame; game code moves
// the body through forces and impulses, never by writing the transform.
type RigidBody struct {
	engine.BaseComponent
	Mass            float32
	GravityScale    float32
	LinearDamping   float32
	AngularDamping  float32
	Material        string
	CanSleep        bool
	UseMeshCollider bool // exact trimesh instead of the box/sphere heuristic

	backend  *physics.Backend
	body     *physics.Body
	attached *CollisionShape
	inferred *physics.Shape
}

func NewRigidBody() *RigidBody {
	return &RigidBody{
		Mass:           1.0,
		GravityScale:   1.0,
		AngularDamping: 0.98,
		Material:       "default",
		CanSleep:       true,
	}
}

func (r *RigidBody) Start() {
	r.ensureBody()
}

// Update pulls the simulated transform out of the backend. When the node
// is a physics helper under a rendering parent, the parent is driven
// instead so a separately-owned mesh follows the body.
func (r *RigidBody) Update(deltaTime float32) {
	if !r.ensureBody() {
		return
	}
	g := r.GetGameObject()
	if g.Parent != nil && engine.GetComponent[*ModelRenderer](g.Parent) != nil {
		g.Parent.Transform.Position = r.body.Position
		g.Parent.Transform.Rotation = r.body.Rotation
		g.Transform.Position = rl.Vector3{}
		g.Transform.Rotation = rl.Vector3{}
		return
	}
	g.Transform.Position = r.body.Position
	g.Transform.Rotation = r.body.Rotation
}

// ensureBody creates the backend body once the physics context and a
// usable shape are available. Retried from Update until it succeeds.
func (r *RigidBody) ensureBody() bool {
	if r.body != nil {
		return true
	}
	g := r.GetGameObject()
	if g == nil {
		return false
	}
	if r.backend == nil {
		pa := physicsFrom(g)
		if pa == nil {
			return false
		}
		r.backend = pa.PhysicsBackend()
		if r.backend == nil {
			return false
		}
	}
	shape := r.resolveShape(g)
	if shape == nil {
		return false
	}
	r.body = r.backend.CreateBody(physics.ModeDynamic, shape, g.WorldPosition(), r.Mass)
	if r.body == nil {
		return false
	}
	r.body.Rotation = g.WorldRotation()
	r.body.GravityScale = r.GravityScale
	r.body.LinearDamping = r.LinearDamping
	r.body.AngularDamping = r.AngularDamping
	r.body.CanSleep = r.CanSleep
	r.body.UserData = g
	if r.Material != "" {
		r.backend.SetMaterial(r.body.ID, r.Material)
	}
	return true
}

// resolveShape prefers an attached CollisionShape, then the opt-in
// trimesh, then the geometry heuristic.
func (r *RigidBody) resolveShape(g *engine.GameObject) *physics.Shape {
	if r.attached != nil {
		return r.attached.ShapeHandle()
	}
	if r.UseMeshCollider {
		if shape := r.buildMeshShape(g); shape != nil {
			return shape
		}
	}
	kind, params := inferShapeFromNode(g)
	r.inferred = r.backend.CreateShape(kind, params)
	return r.inferred
}

func (r *RigidBody) buildMeshShape(g *engine.GameObject) *physics.Shape {
	provider := findGeometryProvider(g)
	if provider == nil {
		log.Printf("Physics: RigidBody on %q has no render geometry for a mesh collider, using shape heuristic", g.Name)
		return nil
	}
	triangles, ok := provider.GeometryTriangles()
	if !ok || len(triangles) == 0 {
		log.Printf("Physics: mesh collider extraction failed on %q, using shape heuristic", g.Name)
		return nil
	}
	mesh, err := physics.NewTriMesh(triangles)
	if err != nil {
		log.Printf("Physics: mesh collider build failed on %q: %v, using shape heuristic", g.Name, err)
		return nil
	}
	log.Printf("Physics: RigidBody on %q uses a %d-triangle mesh collider, narrow phase will be slower", g.Name, len(triangles))
	r.inferred = r.backend.CreateShape(physics.ShapeMesh, physics.ShapeParams{Mesh: mesh})
	return r.inferred
}

// AttachShape adopts a CollisionShape as this body's collision volume.
func (r *RigidBody) AttachShape(s *CollisionShape) {
	if s == nil || r.attached == s {
		return
	}
	if r.attached != nil {
		r.attached.owner = nil
	}
	if s.owner != nil {
		s.owner.DetachShape(s)
	}
	s.owner = r
	r.attached = s
	s.DebugColor = rl.Green
	if r.body != nil {
		if shape := s.ShapeHandle(); shape != nil {
			r.releaseInferred()
			r.body.Shape = shape
			r.body.Wake()
		}
	}
}

// DetachShape drops the attachment; the body falls back to an inferred
// shape so it never simulates shapeless.
func (r *RigidBody) DetachShape(s *CollisionShape) {
	if s == nil || r.attached != s {
		return
	}
	s.owner = nil
	r.attached = nil
	if r.body != nil {
		kind, params := inferShapeFromNode(r.GetGameObject())
		if shape := r.backend.CreateShape(kind, params); shape != nil {
			r.inferred = shape
			r.body.Shape = shape
		}
	}
}

// Body returns the backend handle, nil until the body comes online.
func (r *RigidBody) Body() *physics.Body {
	return r.body
}

// ApplyForce accumulates a continuous force for the next step. An
// optional world-space point turns it into force plus torque.
func (r *RigidBody) ApplyForce(force rl.Vector3, point ...rl.Vector3) {
	if r.body == nil {
		return
	}
	r.body.ApplyForce(force, point...)
}

// ApplyImpulse changes velocity immediately, scaled by inverse mass.
func (r *RigidBody) ApplyImpulse(impulse rl.Vector3, point ...rl.Vector3) {
	if r.body == nil {
		return
	}
	r.body.ApplyImpulse(impulse, point...)
}

// Sleep forces the body to rest until something wakes it.
func (r *RigidBody) Sleep() {
	if r.body != nil {
		r.body.Sleep()
	}
}

// WakeUp clears sleep state and restarts simulation.
func (r *RigidBody) WakeUp() {
	if r.body != nil {
		r.body.Wake()
	}
}

func (r *RigidBody) IsSleeping() bool {
	return r.body != nil && r.body.IsSleeping
}

func (r *RigidBody) Velocity() rl.Vector3 {
	if r.body == nil {
		return rl.Vector3{}
	}
	return r.body.Velocity
}

func (r *RigidBody) SetVelocity(velocity rl.Vector3) {
	if r.body == nil {
		return
	}
	r.body.Velocity = velocity
	r.body.Wake()
}

func (r *RigidBody) releaseInferred() {
	if r.inferred != nil && r.backend != nil {
		r.backend.ReleaseShape(r.inferred)
	}
	r.inferred = nil
}

// OnDestroy removes the body from the simulation and releases any shape
// this component built itself.
func (r *RigidBody) OnDestroy() {
	if r.body != nil && r.backend != nil {
		r.backend.RemoveBody(r.body.ID)
	}
	r.body = nil
	r.releaseInferred()
	if r.attached != nil {
		r.attached.owner = nil
		r.attached = nil
	}
}

// TypeName implements engine.Serializable
func (r *RigidBody) TypeName() string {
	return "RigidBody"
}

// Serialize implements engine.Serializable
func (r *RigidBody) Serialize() map[string]any {
	return map[string]any{
		"type":            "RigidBody",
		"mass":            r.Mass,
		"gravityScale":    r.GravityScale,
		"linearDamping":   r.LinearDamping,
		"angularDamping":  r.AngularDamping,
		"material":        r.Material,
		"canSleep":        r.CanSleep,
		"useMeshCollider": r.UseMeshCollider,
	}
}

// Deserialize implements engine.Serializable
func (r *RigidBody) Deserialize(data map[string]any) {
	if m, ok := data["mass"].(float64); ok {
		r.Mass = float32(m)
	}
	if s, ok := data["gravityScale"].(float64); ok {
		r.GravityScale = float32(s)
	}
	if d, ok := data["linearDamping"].(float64); ok {
		r.LinearDamping = float32(d)
	}
	if d, ok := data["angularDamping"].(float64); ok {
		r.AngularDamping = float32(d)
	}
	if m, ok := data["material"].(string); ok {
		r.Material = m
	}
	if c, ok := data["canSleep"].(bool); ok {
		r.CanSleep = c
	}
	if u, ok := data["useMeshCollider"].(bool); ok {
		r.UseMeshCollider = u
	}
}
