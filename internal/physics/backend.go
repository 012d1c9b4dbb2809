package physics

import (
	"log"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"kine3d/internal/compute"
)

// Spatial grid cell size - bodies within same or neighboring cells are checked
const CellSize = 5.0

// GPUBroadPhaseThreshold is the minimum dynamic body count before GPU
// broad-phase kicks in. Below this, CPU spatial hashing is faster due to
// GPU overhead.
const GPUBroadPhaseThreshold = 750

// MaxPhysicsBodies is the maximum bodies the GPU broad-phase can handle.
const MaxPhysicsBodies = 50000

// Cell key for spatial hashing
type CellKey struct {
	X, Y, Z int
}

func posToCell(pos rl.Vector3) CellKey {
	return CellKey{
		X: int(pos.X / CellSize),
		Y: int(pos.Y / CellSize),
		Z: int(pos.Z / CellSize),
	}
}

// Backend is the factory/stepping wrapper around the rigid-body simulation.
// It owns gravity and the step; the node layer creates shapes and bodies
// through it and reads transforms back after each Step.
//
// All methods are safe on a nil Backend: they log a warning and no-op so a
// component created before the world finishes initializing can retry on its
// next tick.
type Backend struct {
	Gravity    rl.Vector3
	Dynamics   []*Body
	Kinematics []*Body
	Statics    []*Body

	bodies map[BodyID]*Body
	shapes map[ShapeID]*Shape
	grid   map[CellKey][]*Body

	// Normal forces - accumulated during contact resolution, applied before gravity
	normalForces map[*Body]rl.Vector3

	// GPU broad-phase (nil if compute unavailable or body count too low)
	gpuBroadPhase   *compute.BroadPhase
	useGPU          bool
	gpuThreshold    int
	lastLoggedCount int       // prevents duplicate logs at same body count
	lastLogTime     time.Time // rate-limit contact pair logs

	sleep SleepThresholds

	nextBodyID  BodyID
	nextShapeID ShapeID
}

func NewBackend() *Backend {
	return &Backend{
		Gravity:      rl.Vector3{X: 0, Y: -20.0, Z: 0},
		Dynamics:     make([]*Body, 0),
		Kinematics:   make([]*Body, 0),
		Statics:      make([]*Body, 0),
		bodies:       make(map[BodyID]*Body),
		shapes:       make(map[ShapeID]*Shape),
		grid:         make(map[CellKey][]*Body),
		normalForces: make(map[*Body]rl.Vector3),
		gpuThreshold: GPUBroadPhaseThreshold,
		sleep:        DefaultSleepThresholds(),
	}
}

// ready guards every public operation against a nil backend.
func (b *Backend) ready(op string) bool {
	if b == nil {
		log.Printf("Physics: backend not ready, %s skipped", op)
		return false
	}
	return true
}

// CreateShape builds a shape descriptor and registers its handle.
// Panics on an unsupported kind; that is a programmer error, not a
// runtime condition.
func (b *Backend) CreateShape(kind ShapeKind, params ShapeParams) *Shape {
	if !b.ready("CreateShape") {
		return nil
	}
	s := NewShape(kind, params)
	b.nextShapeID++
	s.ID = b.nextShapeID
	b.shapes[s.ID] = s
	return s
}

// ReleaseShape frees a shape handle. Called when the owning node leaves the
// scene.
func (b *Backend) ReleaseShape(s *Shape) {
	if !b.ready("ReleaseShape") || s == nil {
		return
	}
	delete(b.shapes, s.ID)
}

// CreateBody registers a body with the simulation and returns its handle.
func (b *Backend) CreateBody(mode BodyMode, shape *Shape, position rl.Vector3, mass float32) *Body {
	if !b.ready("CreateBody") {
		return nil
	}
	if mode != ModeStatic && mode != ModeKinematic && mode != ModeDynamic {
		log.Printf("Physics: invalid body mode %d, using Static", int(mode))
		mode = ModeStatic
	}
	if mode == ModeDynamic && mass <= 0 {
		mass = 1.0
	}

	// Mesh triangles are origin-relative; anchor them at the body position
	if shape != nil && shape.Kind == ShapeMesh && shape.Mesh != nil {
		shape.Mesh.SetOrigin(position)
	}

	b.nextBodyID++
	body := &Body{
		ID:             b.nextBodyID,
		Mode:           mode,
		Shape:          shape,
		Position:       position,
		Mass:           mass,
		GravityScale:   1.0,
		AngularDamping: 0.98, // slight damping each frame
		Friction:       DefaultMaterial.Friction,
		Restitution:    DefaultMaterial.Restitution,
		CanSleep:       mode == ModeDynamic,
	}
	b.bodies[body.ID] = body

	switch mode {
	case ModeDynamic:
		b.Dynamics = append(b.Dynamics, body)
	case ModeKinematic:
		b.Kinematics = append(b.Kinematics, body)
	default:
		b.Statics = append(b.Statics, body)
	}
	return body
}

// RemoveBody unregisters a body. Safe to call with an unknown id.
func (b *Backend) RemoveBody(id BodyID) {
	if !b.ready("RemoveBody") {
		return
	}
	body, ok := b.bodies[id]
	if !ok {
		return
	}
	delete(b.bodies, id)
	delete(b.normalForces, body)

	remove := func(list []*Body) []*Body {
		for i, candidate := range list {
			if candidate == body {
				return append(list[:i], list[i+1:]...)
			}
		}
		return list
	}
	switch body.Mode {
	case ModeDynamic:
		b.Dynamics = remove(b.Dynamics)
	case ModeKinematic:
		b.Kinematics = remove(b.Kinematics)
	default:
		b.Statics = remove(b.Statics)
	}
}

// BodyByID resolves a body handle.
func (b *Backend) BodyByID(id BodyID) (*Body, bool) {
	if b == nil {
		return nil, false
	}
	body, ok := b.bodies[id]
	return body, ok
}

// ApplyForce accumulates a force on a dynamic body for the next Step.
func (b *Backend) ApplyForce(id BodyID, force rl.Vector3, point ...rl.Vector3) {
	if !b.ready("ApplyForce") {
		return
	}
	if body, ok := b.bodies[id]; ok {
		body.ApplyForce(force, point...)
	}
}

// ApplyImpulse changes a dynamic body's velocity immediately.
func (b *Backend) ApplyImpulse(id BodyID, impulse rl.Vector3, point ...rl.Vector3) {
	if !b.ready("ApplyImpulse") {
		return
	}
	if body, ok := b.bodies[id]; ok {
		body.ApplyImpulse(impulse, point...)
	}
}

// SetMaterial applies a named material preset to a body.
// Unknown names keep the current material and log a warning.
func (b *Backend) SetMaterial(id BodyID, materialName string) {
	if !b.ready("SetMaterial") {
		return
	}
	body, ok := b.bodies[id]
	if !ok {
		return
	}
	m, ok := MaterialByName(materialName)
	if !ok {
		log.Printf("Physics: unknown material %q, keeping current", materialName)
		return
	}
	body.SetMaterial(m)
}

func (b *Backend) SetGravity(gravity rl.Vector3) {
	if !b.ready("SetGravity") {
		return
	}
	b.Gravity = gravity
}

// SetSleepThresholds overrides the sleep cutoffs for every dynamic body.
// Non-positive fields fall back to the defaults.
func (b *Backend) SetSleepThresholds(t SleepThresholds) {
	if !b.ready("SetSleepThresholds") {
		return
	}
	def := DefaultSleepThresholds()
	if t.Velocity <= 0 {
		t.Velocity = def.Velocity
	}
	if t.Angular <= 0 {
		t.Angular = def.Angular
	}
	if t.Time <= 0 {
		t.Time = def.Time
	}
	b.sleep = t
}

// SetGPUThreshold overrides the body count at which the GPU broad-phase
// takes over.
func (b *Backend) SetGPUThreshold(threshold int) {
	if !b.ready("SetGPUThreshold") {
		return
	}
	if threshold < 1 {
		threshold = GPUBroadPhaseThreshold
	}
	b.gpuThreshold = threshold
}

// InitGPU wires up the GPU broad-phase. Call with an initialized compute
// system; a nil system leaves the CPU path active.
func (b *Backend) InitGPU(sys *compute.System) {
	if !b.ready("InitGPU") || sys == nil {
		return
	}
	if b.gpuBroadPhase != nil {
		return // Already initialized
	}
	bp, err := compute.NewBroadPhase(sys, MaxPhysicsBodies, MaxPhysicsBodies*20)
	if err == nil && bp != nil {
		b.gpuBroadPhase = bp
		log.Printf("Physics: GPU broad-phase ready (threshold: %d bodies)", b.gpuThreshold)
	}
}

// Release frees GPU resources
func (b *Backend) Release() {
	if b == nil {
		return
	}
	if b.gpuBroadPhase != nil {
		b.gpuBroadPhase.Release()
		b.gpuBroadPhase = nil
	}
}

// UsingGPU returns true if GPU broad-phase is currently active
func (b *Backend) UsingGPU() bool {
	return b != nil && b.useGPU
}

// DynamicBodyCount returns the number of dynamic bodies
func (b *Backend) DynamicBodyCount() int {
	if b == nil {
		return 0
	}
	return len(b.Dynamics)
}

// BodyCount returns the total number of registered bodies
func (b *Backend) BodyCount() int {
	if b == nil {
		return 0
	}
	return len(b.bodies)
}

// ShapeCount returns the number of live shape handles
func (b *Backend) ShapeCount() int {
	if b == nil {
		return 0
	}
	return len(b.shapes)
}

// rebuildGrid clears and repopulates the spatial hash grid
func (b *Backend) rebuildGrid() {
	for k := range b.grid {
		delete(b.grid, k)
	}
	for _, body := range b.Dynamics {
		cell := posToCell(body.Position)
		b.grid[cell] = append(b.grid[cell], body)
	}
}

// getNeighborBodies returns all dynamic bodies in the same cell and the 26
// neighboring cells
func (b *Backend) getNeighborBodies(body *Body) []*Body {
	cell := posToCell(body.Position)
	var neighbors []*Body
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				key := CellKey{cell.X + dx, cell.Y + dy, cell.Z + dz}
				neighbors = append(neighbors, b.grid[key]...)
			}
		}
	}
	return neighbors
}
