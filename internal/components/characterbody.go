package components

import (
	"github.com/chewxy/math32"

	"kine3d/internal/engine"
	"kine3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("CharacterBody", func() engine.Serializable {
		return NewCharacterBody()
	})
}

// MovementState is the contact classification left behind by the last
// MoveAndSlide call. Recomputed from scratch every call.
type MovementState struct {
	Velocity    rl.Vector3 // input velocity with blocked components removed
	IsOnFloor   bool
	IsOnWall    bool
	IsOnCeiling bool
	FloorNormal rl.Vector3
	WallNormal  rl.Vector3
	LastMotion  rl.Vector3 // world-space displacement actually applied
}

// CollisionInfo reports the first obstruction MoveAndCollide ran into.
type CollisionInfo struct {
	Point     rl.Vector3
	Normal    rl.Vector3
	Travel    rl.Vector3
	Remainder rl.Vector3
	Collider  *physics.Collider
}

// CharacterBody is a kinematic character controller in the Godot mold:
// game code feeds MoveAndSlide a velocity, the body raycasts through the
// collision registry, slides along whatever it hits and classifies each
// contact as floor, wall or ceiling. The backend body is kinematic so
// dynamic bodies get pushed out of the way.
type CharacterBody struct {
	engine.BaseComponent

	// Configuration
	Radius            float32 // capsule radius when no shape is attached
	Height            float32 // capsule cylindrical section height
	FloorMaxAngle     float32 // radians; steeper surfaces stop counting as floor
	WallMinSlideAngle float32 // radians; informational, classification uses FloorMaxAngle
	MaxSlides         int
	SnapLength        float32 // downward re-attach distance after losing the floor
	SafeMargin        float32 // gap kept between the body and surfaces
	Mask              uint32  // raycast layer filter, 0 matches everything

	// Runtime state (not serialized)
	backend        *physics.Backend
	registry       *physics.Registry
	body           *physics.Body
	attached       *CollisionShape
	inferred       *physics.Shape
	state          MovementState
	exclude        []physics.ColliderID
	movedThisFrame bool
}

func NewCharacterBody() *CharacterBody {
	return &CharacterBody{
		Radius:            0.4,
		Height:            1.0,
		FloorMaxAngle:     math32.Pi / 4,
		WallMinSlideAngle: 15 * math32.Pi / 180,
		MaxSlides:         4,
		SnapLength:        0.2,
		SafeMargin:        0.001,
	}
}

func (c *CharacterBody) Start() {
	c.ensureBody()
}

// Update keeps the kinematic backend body anchored to the node so
// teleports via the transform still push dynamics correctly. The push
// velocity decays to zero on frames without a MoveAndSlide call.
func (c *CharacterBody) Update(deltaTime float32) {
	if !c.ensureBody() {
		return
	}
	if !c.movedThisFrame {
		c.body.Velocity = rl.Vector3{}
	}
	c.movedThisFrame = false
	g := c.GetGameObject()
	c.body.Position = g.WorldPosition()
	c.body.Rotation = g.WorldRotation()
}

// MoveAndSlide moves by velocity*dt, sliding along obstructions for up
// to MaxSlides iterations and classifying every surface it touches.
// Returns the effective velocity: applied motion divided by dt.
func (c *CharacterBody) MoveAndSlide(velocity rl.Vector3, deltaTime float32) rl.Vector3 {
	g := c.GetGameObject()
	if g == nil {
		return rl.Vector3{}
	}
	c.ensureBody()
	if c.registry == nil {
		// No physics world reachable yet, move unobstructed
		motion := rl.Vector3Scale(velocity, deltaTime)
		g.Transform.Position = rl.Vector3Add(g.Transform.Position, motion)
		c.state = MovementState{Velocity: velocity, LastMotion: motion}
		if deltaTime <= 0 {
			return rl.Vector3{}
		}
		return velocity
	}

	wasOnFloor := c.state.IsOnFloor
	c.state = MovementState{Velocity: velocity}

	margin := c.SafeMargin
	epsilon := margin
	if epsilon <= 0 {
		epsilon = 0.0001
	}
	maxSlides := c.MaxSlides
	if maxSlides < 1 {
		maxSlides = 1
	}

	start := g.WorldPosition()
	position := start
	remaining := rl.Vector3Scale(velocity, deltaTime)
	applied := rl.Vector3{}

	for slide := 0; slide < maxSlides; slide++ {
		distance := rl.Vector3Length(remaining)
		if distance < epsilon {
			break
		}
		direction := rl.Vector3Scale(remaining, 1/distance)

		hit, ok := c.registry.Raycast(position, direction, distance, c.Mask, c.excludeIDs()...)
		if !ok {
			position = rl.Vector3Add(position, remaining)
			applied = rl.Vector3Add(applied, remaining)
			break
		}

		advance := hit.Distance - margin
		if advance > 0 {
			step := rl.Vector3Scale(direction, advance)
			position = rl.Vector3Add(position, step)
			applied = rl.Vector3Add(applied, step)
		} else {
			advance = 0
		}

		c.classify(hit.Normal)

		// Strip the blocked component from the slide velocity
		if into := rl.Vector3DotProduct(c.state.Velocity, hit.Normal); into < 0 {
			c.state.Velocity = rl.Vector3Subtract(c.state.Velocity, rl.Vector3Scale(hit.Normal, into))
		}

		leftover := rl.Vector3Scale(direction, distance-advance)
		remaining = rejectFromNormal(leftover, hit.Normal)
	}

	// Re-attach to a floor lost during the slide, but never while moving up
	if wasOnFloor && !c.state.IsOnFloor && c.SnapLength > 0 && velocity.Y <= 0 {
		down := rl.Vector3{X: 0, Y: -1, Z: 0}
		if hit, ok := c.registry.Raycast(position, down, c.SnapLength, c.Mask, c.excludeIDs()...); ok {
			if c.isFloorNormal(hit.Normal) {
				if drop := hit.Distance - margin; drop > 0 {
					position.Y -= drop
				}
				c.state.IsOnFloor = true
				c.state.FloorNormal = hit.Normal
			}
		}
	}

	moved := rl.Vector3Subtract(position, start)
	g.Transform.Position = rl.Vector3Add(g.Transform.Position, moved)
	c.state.LastMotion = applied

	if c.body != nil {
		c.body.Position = position
		c.body.Rotation = g.WorldRotation()
		if deltaTime > 0 {
			c.body.Velocity = rl.Vector3Scale(applied, 1/deltaTime)
		}
		c.movedThisFrame = true
	}

	if deltaTime <= 0 {
		return rl.Vector3{}
	}
	return rl.Vector3Scale(applied, 1/deltaTime)
}

// MoveAndCollide moves until the first contact and stops there. Returns
// nil when the full motion fit. No sliding, no state classification.
func (c *CharacterBody) MoveAndCollide(motion rl.Vector3) *CollisionInfo {
	g := c.GetGameObject()
	if g == nil {
		return nil
	}
	c.ensureBody()

	distance := rl.Vector3Length(motion)
	if distance < 0.0001 {
		return nil
	}
	direction := rl.Vector3Scale(motion, 1/distance)

	if c.registry == nil {
		c.applyMotion(g, motion)
		return nil
	}
	hit, ok := c.registry.Raycast(g.WorldPosition(), direction, distance, c.Mask, c.excludeIDs()...)
	if !ok {
		c.applyMotion(g, motion)
		return nil
	}

	advance := hit.Distance - c.SafeMargin
	if advance < 0 {
		advance = 0
	}
	travel := rl.Vector3Scale(direction, advance)
	c.applyMotion(g, travel)
	return &CollisionInfo{
		Point:     hit.Point,
		Normal:    hit.Normal,
		Travel:    travel,
		Remainder: rl.Vector3Subtract(motion, travel),
		Collider:  hit.Collider,
	}
}

// Teleport moves the character without collision checks and drops all
// velocity and contact state.
func (c *CharacterBody) Teleport(position rl.Vector3) {
	g := c.GetGameObject()
	if g == nil {
		return
	}
	delta := rl.Vector3Subtract(position, g.WorldPosition())
	g.Transform.Position = rl.Vector3Add(g.Transform.Position, delta)
	if c.body != nil {
		c.body.Position = position
		c.body.Velocity = rl.Vector3{}
	}
	c.state = MovementState{}
}

// classify buckets a contact normal: within FloorMaxAngle of straight up
// is floor, the mirror is ceiling, everything between is wall.
func (c *CharacterBody) classify(normal rl.Vector3) {
	cosFloor := math32.Cos(c.FloorMaxAngle)
	switch {
	case normal.Y >= cosFloor:
		c.state.IsOnFloor = true
		c.state.FloorNormal = normal
	case normal.Y <= -cosFloor:
		c.state.IsOnCeiling = true
	default:
		c.state.IsOnWall = true
		c.state.WallNormal = normal
	}
}

func (c *CharacterBody) isFloorNormal(normal rl.Vector3) bool {
	return normal.Y >= math32.Cos(c.FloorMaxAngle)
}

// excludeIDs collects this node's own collider ids so raycasts do not
// hit the character itself.
func (c *CharacterBody) excludeIDs() []physics.ColliderID {
	c.exclude = c.exclude[:0]
	g := c.GetGameObject()
	if g == nil {
		return c.exclude
	}
	for _, comp := range g.Components() {
		if cs, ok := comp.(*CollisionShape); ok && cs.registered {
			c.exclude = append(c.exclude, cs.colliderID)
		}
	}
	return c.exclude
}

func (c *CharacterBody) applyMotion(g *engine.GameObject, motion rl.Vector3) {
	g.Transform.Position = rl.Vector3Add(g.Transform.Position, motion)
	if c.body != nil {
		c.body.Position = g.WorldPosition()
		c.movedThisFrame = true
	}
}

func (c *CharacterBody) ensureBody() bool {
	if c.body != nil {
		return true
	}
	g := c.GetGameObject()
	if g == nil {
		return false
	}
	if c.backend == nil || c.registry == nil {
		pa := physicsFrom(g)
		if pa == nil {
			return false
		}
		c.backend = pa.PhysicsBackend()
		c.registry = pa.CollisionRegistry()
		if c.backend == nil {
			return false
		}
	}
	shape := c.resolveShape()
	if shape == nil {
		return false
	}
	c.body = c.backend.CreateBody(physics.ModeKinematic, shape, g.WorldPosition(), 0)
	if c.body == nil {
		return false
	}
	c.body.UserData = g
	return true
}

// resolveShape prefers an attached CollisionShape, else a capsule from
// the Radius/Height configuration.
func (c *CharacterBody) resolveShape() *physics.Shape {
	if c.attached != nil {
		return c.attached.ShapeHandle()
	}
	radius := c.Radius
	if radius <= 0 {
		radius = 0.4
	}
	height := c.Height
	if height <= 0 {
		height = 1.0
	}
	c.inferred = c.backend.CreateShape(physics.ShapeCapsule, physics.ShapeParams{Radius: radius, Height: height})
	return c.inferred
}

// AttachShape adopts a CollisionShape as this body's collision volume.
func (c *CharacterBody) AttachShape(s *CollisionShape) {
	if s == nil || c.attached == s {
		return
	}
	if c.attached != nil {
		c.attached.owner = nil
	}
	if s.owner != nil {
		s.owner.DetachShape(s)
	}
	s.owner = c
	c.attached = s
	s.DebugColor = rl.Orange
	if c.body != nil {
		if shape := s.ShapeHandle(); shape != nil {
			c.releaseInferred()
			c.body.Shape = shape
		}
	}
}

// DetachShape drops the attachment and falls back to the capsule.
func (c *CharacterBody) DetachShape(s *CollisionShape) {
	if s == nil || c.attached != s {
		return
	}
	s.owner = nil
	c.attached = nil
	if c.body != nil {
		if shape := c.resolveShape(); shape != nil {
			c.body.Shape = shape
		}
	}
}

// Body returns the backend handle, nil until the body comes online.
func (c *CharacterBody) Body() *physics.Body {
	return c.body
}

func (c *CharacterBody) IsOnFloor() bool {
	return c.state.IsOnFloor
}

func (c *CharacterBody) IsOnWall() bool {
	return c.state.IsOnWall
}

func (c *CharacterBody) IsOnCeiling() bool {
	return c.state.IsOnCeiling
}

func (c *CharacterBody) FloorNormal() rl.Vector3 {
	return c.state.FloorNormal
}

func (c *CharacterBody) WallNormal() rl.Vector3 {
	return c.state.WallNormal
}

// Velocity returns the slide-resolved velocity of the last MoveAndSlide:
// the input velocity with every blocked component removed.
func (c *CharacterBody) Velocity() rl.Vector3 {
	return c.state.Velocity
}

func (c *CharacterBody) LastMotion() rl.Vector3 {
	return c.state.LastMotion
}

func (c *CharacterBody) State() MovementState {
	return c.state
}

func (c *CharacterBody) releaseInferred() {
	if c.inferred != nil && c.backend != nil {
		c.backend.ReleaseShape(c.inferred)
	}
	c.inferred = nil
}

func (c *CharacterBody) OnDestroy() {
	if c.body != nil && c.backend != nil {
		c.backend.RemoveBody(c.body.ID)
	}
	c.body = nil
	c.releaseInferred()
	if c.attached != nil {
		c.attached.owner = nil
		c.attached = nil
	}
}

func rejectFromNormal(v, normal rl.Vector3) rl.Vector3 {
	return rl.Vector3Subtract(v, rl.Vector3Scale(normal, rl.Vector3DotProduct(v, normal)))
}

// TypeName implements engine.Serializable
func (c *CharacterBody) TypeName() string {
	return "CharacterBody"
}

// Serialize implements engine.Serializable
func (c *CharacterBody) Serialize() map[string]any {
	return map[string]any{
		"type":              "CharacterBody",
		"radius":            c.Radius,
		"height":            c.Height,
		"floorMaxAngle":     c.FloorMaxAngle,
		"wallMinSlideAngle": c.WallMinSlideAngle,
		"maxSlides":         c.MaxSlides,
		"snapLength":        c.SnapLength,
		"safeMargin":        c.SafeMargin,
		"mask":              c.Mask,
	}
}

// Deserialize implements engine.Serializable
func (c *CharacterBody) Deserialize(data map[string]any) {
	if v, ok := data["radius"].(float64); ok {
		c.Radius = float32(v)
	}
	if v, ok := data["height"].(float64); ok {
		c.Height = float32(v)
	}
	if v, ok := data["floorMaxAngle"].(float64); ok {
		c.FloorMaxAngle = float32(v)
	}
	if v, ok := data["wallMinSlideAngle"].(float64); ok {
		c.WallMinSlideAngle = float32(v)
	}
	if v, ok := data["maxSlides"].(float64); ok {
		c.MaxSlides = int(v)
	}
	if v, ok := data["snapLength"].(float64); ok {
		c.SnapLength = float32(v)
	}
	if v, ok := data["safeMargin"].(float64); ok {
		c.SafeMargin = float32(v)
	}
	if v, ok := data["mask"].(float64); ok {
		c.Mask = uint32(v)
	}
}
