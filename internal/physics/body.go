package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// BodyMode controls who writes a body's transform. Dynamic bodies are
// written by the backend each step; Kinematic and Static bodies are written
// by application code and pushed in.
type BodyMode int

const (
	ModeStatic BodyMode = iota + 1
	ModeKinematic
	ModeDynamic
)

func (m BodyMode) String() string {
	switch m {
	case ModeStatic:
		return "Static"
	case ModeKinematic:
		return "Kinematic"
	case ModeDynamic:
		return "Dynamic"
	default:
		return "Invalid"
	}
}

type BodyID uint64

// Sleep thresholds
const (
	SleepVelocityThreshold = 0.3 // units/sec - below this, body might sleep
	SleepAngularThreshold  = 1.0 // deg/sec - below this, body might sleep
	SleepTimeThreshold     = 0.3 // seconds of low velocity before sleeping
)

// SleepThresholds bundles the tunable sleep cutoffs.
type SleepThresholds struct {
	Velocity float32 // units/sec
	Angular  float32 // deg/sec
	Time     float32 // seconds below both cutoffs before sleeping
}

func DefaultSleepThresholds() SleepThresholds {
	return SleepThresholds{
		Velocity: SleepVelocityThreshold,
		Angular:  SleepAngularThreshold,
		Time:     SleepTimeThreshold,
	}
}

// Body is one simulated rigid body. Position and Rotation are the backend's
// authoritative transform for dynamic bodies; the node layer reads them back
// after every step.
type Body struct {
	ID              BodyID
	Mode            BodyMode
	Shape           *Shape
	Position        rl.Vector3
	Rotation        rl.Vector3 // Euler angles in degrees
	Velocity        rl.Vector3
	AngularVelocity rl.Vector3 // degrees per second on each axis
	Mass            float32
	GravityScale    float32
	LinearDamping   float32
	AngularDamping  float32
	Friction        float32
	Restitution     float32

	// Sleep state - sleeping bodies skip integration and pair resolution
	IsSleeping bool
	CanSleep   bool
	sleepTimer float32

	// Force accumulators, cleared every step
	force  rl.Vector3
	torque rl.Vector3

	UserData any
}

// torque scale constants from contact resolution, converted to deg/sec
const (
	boxTorqueScale     = 500.0
	sphereTorqueScale  = 50.0
	impulseTorqueScale = 50.0
)

// Bounds returns the body's world AABB.
func (b *Body) Bounds() AABB {
	if b.Shape == nil {
		return AABB{Min: b.Position, Max: b.Position}
	}
	return b.Shape.BoundsAt(b.Position)
}

// Wake forces the body out of sleep state
func (b *Body) Wake() {
	b.IsSleeping = false
	b.sleepTimer = 0
}

// Sleep puts the body to sleep immediately, zeroing its velocities.
func (b *Body) Sleep() {
	if b.Mode != ModeDynamic {
		return
	}
	b.IsSleeping = true
	b.Velocity = rl.Vector3{}
	b.AngularVelocity = rl.Vector3{}
}

// TrySleep checks if the body should go to sleep based on velocity
func (b *Body) TrySleep(deltaTime float32, t SleepThresholds) {
	if !b.CanSleep || b.IsSleeping {
		return
	}

	speed := rl.Vector3Length(b.Velocity)
	angSpeed := rl.Vector3Length(b.AngularVelocity)

	if speed < t.Velocity && angSpeed < t.Angular {
		b.sleepTimer += deltaTime

		// Extra damping when nearly at rest to reduce jitter
		dampFactor := float32(0.9)
		b.Velocity = rl.Vector3Scale(b.Velocity, dampFactor)
		b.AngularVelocity = rl.Vector3Scale(b.AngularVelocity, dampFactor)

		if b.sleepTimer >= t.Time {
			b.IsSleeping = true
			b.Velocity = rl.Vector3{}
			b.AngularVelocity = rl.Vector3{}
		}
	} else {
		b.sleepTimer = 0
	}
}

// ApplyForce accumulates a force for the next step. With a contact point the
// offset also produces torque. No-op unless the body is dynamic; wakes it.
func (b *Body) ApplyForce(force rl.Vector3, point ...rl.Vector3) {
	if b == nil || b.Mode != ModeDynamic {
		return
	}
	b.Wake()
	b.force = rl.Vector3Add(b.force, force)
	if len(point) > 0 {
		r := rl.Vector3Subtract(point[0], b.Position)
		b.torque = rl.Vector3Add(b.torque, cross(r, force))
	}
}

// ApplyImpulse changes velocity immediately. With a contact point the offset
// also spins the body. No-op unless the body is dynamic; wakes it.
func (b *Body) ApplyImpulse(impulse rl.Vector3, point ...rl.Vector3) {
	if b == nil || b.Mode != ModeDynamic {
		return
	}
	b.Wake()
	b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(impulse, 1/b.Mass))
	if len(point) > 0 {
		r := rl.Vector3Subtract(point[0], b.Position)
		spin := cross(r, impulse)
		b.AngularVelocity = rl.Vector3Add(b.AngularVelocity, rl.Vector3Scale(spin, impulseTorqueScale/b.Mass))
	}
}

// SetMaterial copies a material's surface response onto the body.
func (b *Body) SetMaterial(m Material) {
	b.Friction = m.Friction
	b.Restitution = m.Restitution
}

// cross computes the cross product of two vectors
func cross(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}
