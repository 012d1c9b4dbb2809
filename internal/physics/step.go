package physics

import (
	"log"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"kine3d/internal/compute"
)

// Estimate contact point on a body's surface given push direction
func estimateContactPoint(center rl.Vector3, halfSize rl.Vector3, pushDir rl.Vector3) rl.Vector3 {
	// Contact is on the face in the direction of the push
	// Use the push direction components scaled by half size
	contact := center
	contact.X -= pushDir.X * halfSize.X
	contact.Y -= pushDir.Y * halfSize.Y
	contact.Z -= pushDir.Z * halfSize.Z
	return contact
}

// Step advances the simulation by deltaTime seconds.
func (b *Backend) Step(deltaTime float32) {
	if !b.ready("Step") {
		return
	}
	if deltaTime <= 0 {
		return
	}

	// 1. Apply forces (gravity + accumulated + normal forces from previous frame) and integrate
	for _, body := range b.Dynamics {
		// Skip sleeping bodies
		if body.IsSleeping {
			continue
		}

		accel := rl.Vector3Scale(b.Gravity, body.GravityScale)
		if body.Mass > 0 {
			accel = rl.Vector3Add(accel, rl.Vector3Scale(body.force, 1/body.Mass))
		}

		// Apply normal force from last frame to counter gravity (prevents sinking)
		if normalForce, hasNormal := b.normalForces[body]; hasNormal {
			accel = rl.Vector3Add(accel, rl.Vector3Scale(normalForce, 1/body.Mass))
		}

		body.Velocity = rl.Vector3Add(body.Velocity, rl.Vector3Scale(accel, deltaTime))

		// Linear damping
		if body.LinearDamping > 0 {
			damp := float32(1.0) - body.LinearDamping*deltaTime
			if damp < 0 {
				damp = 0
			}
			body.Velocity = rl.Vector3Scale(body.Velocity, damp)
		}

		// Accumulated torque spins the body
		if body.Mass > 0 {
			body.AngularVelocity = rl.Vector3Add(body.AngularVelocity, rl.Vector3Scale(body.torque, deltaTime/body.Mass))
		}

		// Integrate position
		body.Position = rl.Vector3Add(body.Position, rl.Vector3Scale(body.Velocity, deltaTime))

		// Integrate rotation
		body.Rotation = rl.Vector3Add(body.Rotation, rl.Vector3Scale(body.AngularVelocity, deltaTime))

		// Mesh shapes carry their triangles with them
		if body.Shape != nil && body.Shape.Kind == ShapeMesh && body.Shape.Mesh != nil {
			body.Shape.Mesh.SetOrigin(body.Position)
		}

		// Apply angular damping (time-based so it's framerate independent)
		damping := float32(1.0) - (1.0-body.AngularDamping)*deltaTime*60
		if damping < 0 {
			damping = 0
		}
		body.AngularVelocity = rl.Vector3Scale(body.AngularVelocity, damping)

		body.force = rl.Vector3{}
		body.torque = rl.Vector3{}

		// Check if body should go to sleep
		body.TrySleep(deltaTime, b.sleep)
	}

	// Clear normal forces - they will be recalculated during contact resolution
	for k := range b.normalForces {
		delete(b.normalForces, k)
	}

	// 2. Broad-phase pair detection
	// Use GPU when body count is high enough to benefit
	wasUsingGPU := b.useGPU
	b.useGPU = b.gpuBroadPhase != nil && len(b.Dynamics) >= b.gpuThreshold

	// Log when GPU kicks in or out, and periodically show body count
	if b.useGPU && !wasUsingGPU {
		log.Printf("Physics: GPU broad-phase ON (%d bodies)", len(b.Dynamics))
	} else if !b.useGPU && wasUsingGPU {
		log.Printf("Physics: GPU broad-phase OFF (%d bodies)", len(b.Dynamics))
	} else if len(b.Dynamics)%100 == 0 && len(b.Dynamics) > 0 && len(b.Dynamics) != b.lastLoggedCount {
		b.lastLoggedCount = len(b.Dynamics)
		mode := "CPU"
		if b.useGPU {
			mode = "GPU"
		}
		log.Printf("Physics: %d bodies (%s)", len(b.Dynamics), mode)
	}

	if b.useGPU {
		// GPU broad-phase: get overlap pairs from compute shader
		boxes := b.buildBroadPhaseBoxes()
		pairs, err := b.gpuBroadPhase.DetectPairs(boxes)
		if err == nil {
			// Log pair counts once per second
			if len(pairs) > 0 && time.Since(b.lastLogTime) >= time.Second {
				b.lastLogTime = time.Now()
				log.Printf("Physics: GPU detected %d contact pairs (%d bodies)", len(pairs), len(b.Dynamics))
			}
			// Narrow-phase only on pairs the GPU found
			for _, pair := range pairs {
				if int(pair.A) < len(b.Dynamics) && int(pair.B) < len(b.Dynamics) {
					b.resolveDynamicPair(b.Dynamics[pair.A], b.Dynamics[pair.B])
				}
			}
		}
	} else {
		// CPU broad-phase: spatial hashing
		b.rebuildGrid()

		// Track checked pairs to avoid duplicate checks
		checked := make(map[[2]BodyID]bool)

		for _, body := range b.Dynamics {
			neighbors := b.getNeighborBodies(body)
			for _, other := range neighbors {
				if body == other {
					continue
				}
				// Create consistent pair key (smaller id first)
				idA, idB := body.ID, other.ID
				if idA > idB {
					idA, idB = idB, idA
				}
				key := [2]BodyID{idA, idB}
				if checked[key] {
					continue
				}
				checked[key] = true
				b.resolveDynamicPair(body, other)
			}
		}
	}

	// 3. Kinematic vs dynamic (kinematic pushes dynamic)
	for _, kinematic := range b.Kinematics {
		for _, body := range b.Dynamics {
			b.resolveKinematicPush(kinematic, body)
		}
	}

	// 4. Dynamic vs static
	for _, body := range b.Dynamics {
		for _, static := range b.Statics {
			b.resolveStaticContact(body, static)
		}
	}

	// 5. Kinematic vs static (character vs walls, terrain)
	for _, kinematic := range b.Kinematics {
		for _, static := range b.Statics {
			b.resolveKinematicStatic(kinematic, static)
		}
	}
}

// buildBroadPhaseBoxes packs dynamic body bounds for the GPU
func (b *Backend) buildBroadPhaseBoxes() []compute.Box {
	boxes := make([]compute.Box, len(b.Dynamics))
	for i, body := range b.Dynamics {
		bounds := body.Bounds()
		boxes[i] = compute.Box{
			MinX: bounds.Min.X, MinY: bounds.Min.Y, MinZ: bounds.Min.Z,
			MaxX: bounds.Max.X, MaxY: bounds.Max.Y, MaxZ: bounds.Max.Z,
		}
	}
	return boxes
}

// wakeOnContact wakes sleeping bodies only if the contact has significant
// relative velocity. This prevents micro-contacts from waking settled stacks.
func (b *Backend) wakeOnContact(a, c *Body) {
	if a.Mode == ModeStatic || c.Mode == ModeStatic {
		return
	}
	relVel := rl.Vector3Subtract(a.Velocity, c.Velocity)
	relSpeed := rl.Vector3Length(relVel)

	// Only wake if relative velocity is significant (> 2x sleep threshold)
	wakeThreshold := b.sleep.Velocity * 2.0
	if relSpeed > wakeThreshold {
		if a.IsSleeping {
			a.Wake()
		}
		if c.IsSleeping {
			c.Wake()
		}
	}
}

// resolveDynamicPair dispatches a dynamic-dynamic contact by shape kind.
func (b *Backend) resolveDynamicPair(bodyA, bodyB *Body) {
	// Skip if both bodies are sleeping
	if bodyA.IsSleeping && bodyB.IsSleeping {
		return
	}
	if bodyA.Shape == nil || bodyB.Shape == nil {
		return
	}

	kindA := bodyA.Shape.Kind
	kindB := bodyB.Shape.Kind

	switch {
	case kindA == ShapeSphere && kindB == ShapeSphere:
		b.resolveSphereSphere(bodyA, bodyB)
	case kindA == ShapeSphere:
		b.resolveSphereBox(bodyA, bodyB)
	case kindB == ShapeSphere:
		b.resolveSphereBox(bodyB, bodyA)
	default:
		// Box, cylinder, capsule and mesh bodies all resolve on their AABBs
		b.resolveBoxBox(bodyA, bodyB)
	}
}

// resolveSphereSphere handles sphere vs sphere contact
func (b *Backend) resolveSphereSphere(bodyA, bodyB *Body) {
	diff := rl.Vector3Subtract(bodyA.Position, bodyB.Position)
	dist := rl.Vector3Length(diff)
	minDist := bodyA.Shape.Radius + bodyB.Shape.Radius

	if dist >= minDist || dist < 0.0001 {
		return
	}

	b.wakeOnContact(bodyA, bodyB)

	// Contact normal points from B to A
	normal := rl.Vector3Scale(diff, 1/dist)
	penetration := minDist - dist

	// Split push based on mass
	totalMass := bodyA.Mass + bodyB.Mass
	ratioA := bodyB.Mass / totalMass
	ratioB := bodyA.Mass / totalMass

	bodyA.Position = rl.Vector3Add(bodyA.Position, rl.Vector3Scale(normal, penetration*ratioA))
	bodyB.Position = rl.Vector3Subtract(bodyB.Position, rl.Vector3Scale(normal, penetration*ratioB))

	// Relative velocity
	relVel := rl.Vector3Subtract(bodyA.Velocity, bodyB.Velocity)
	velAlongNormal := rl.Vector3DotProduct(relVel, normal)

	// Static friction and normal force - if bodies are nearly at rest and stacked
	relSpeed := rl.Vector3Length(relVel)
	if relSpeed < 0.5 && penetration < 0.1 {
		// Apply strong damping to settle stacked bodies
		friction := (bodyA.Friction + bodyB.Friction) / 2
		bodyA.Velocity = rl.Vector3Scale(bodyA.Velocity, 1.0-friction)
		bodyB.Velocity = rl.Vector3Scale(bodyB.Velocity, 1.0-friction)

		// Apply normal force to counter gravity if contact normal points upward
		// This prevents slow sinking through stacked bodies
		if normal.Y > 0.5 { // B supports A
			normalForce := rl.Vector3{X: 0, Y: -b.Gravity.Y * bodyA.Mass, Z: 0}
			if existing, ok := b.normalForces[bodyA]; ok {
				b.normalForces[bodyA] = rl.Vector3Add(existing, normalForce)
			} else {
				b.normalForces[bodyA] = normalForce
			}
		} else if normal.Y < -0.5 { // A supports B
			normalForce := rl.Vector3{X: 0, Y: -b.Gravity.Y * bodyB.Mass, Z: 0}
			if existing, ok := b.normalForces[bodyB]; ok {
				b.normalForces[bodyB] = rl.Vector3Add(existing, normalForce)
			} else {
				b.normalForces[bodyB] = normalForce
			}
		}

		// If velocity is very low, zero it out to stop jitter
		if rl.Vector3Length(bodyA.Velocity) < 0.1 {
			bodyA.Velocity = rl.Vector3{}
		}
		if rl.Vector3Length(bodyB.Velocity) < 0.1 {
			bodyB.Velocity = rl.Vector3{}
		}
		return
	}

	if velAlongNormal > 0 {
		return
	}

	// Restitution
	e := (bodyA.Restitution + bodyB.Restitution) / 2

	// Impulse
	j := -(1 + e) * velAlongNormal
	j /= (1/bodyA.Mass + 1/bodyB.Mass)

	impulse := rl.Vector3Scale(normal, j)
	bodyA.Velocity = rl.Vector3Add(bodyA.Velocity, rl.Vector3Scale(impulse, 1/bodyA.Mass))
	bodyB.Velocity = rl.Vector3Subtract(bodyB.Velocity, rl.Vector3Scale(impulse, 1/bodyB.Mass))

	// Torque for spheres - contact point is on surface along normal
	rA := rl.Vector3Scale(normal, -bodyA.Shape.Radius)
	rB := rl.Vector3Scale(normal, bodyB.Shape.Radius)

	torqueA := cross(rA, impulse)
	torqueB := cross(rB, rl.Vector3Scale(impulse, -1))

	bodyA.AngularVelocity = rl.Vector3Add(bodyA.AngularVelocity, rl.Vector3Scale(torqueA, sphereTorqueScale/bodyA.Mass))
	bodyB.AngularVelocity = rl.Vector3Add(bodyB.AngularVelocity, rl.Vector3Scale(torqueB, sphereTorqueScale/bodyB.Mass))
}

// resolveSphereBox handles sphere vs box-like contact
func (b *Backend) resolveSphereBox(sphere, box *Body) {
	sphereCenter := sphere.Position
	bounds := box.Bounds()

	// Find closest point on box to sphere center
	closest := bounds.ClosestPoint(sphereCenter)

	diff := rl.Vector3Subtract(sphereCenter, closest)
	dist := rl.Vector3Length(diff)

	if dist >= sphere.Shape.Radius || dist < 0.0001 {
		return
	}

	b.wakeOnContact(sphere, box)

	// Normal points from box to sphere
	normal := rl.Vector3Scale(diff, 1/dist)
	penetration := sphere.Shape.Radius - dist

	// Split push based on mass
	totalMass := sphere.Mass + box.Mass
	ratioSphere := box.Mass / totalMass
	ratioBox := sphere.Mass / totalMass

	sphere.Position = rl.Vector3Add(sphere.Position, rl.Vector3Scale(normal, penetration*ratioSphere))
	box.Position = rl.Vector3Subtract(box.Position, rl.Vector3Scale(normal, penetration*ratioBox))

	// Relative velocity
	relVel := rl.Vector3Subtract(sphere.Velocity, box.Velocity)
	velAlongNormal := rl.Vector3DotProduct(relVel, normal)

	if velAlongNormal > 0 {
		return
	}

	// Restitution
	e := (sphere.Restitution + box.Restitution) / 2

	// Impulse
	j := -(1 + e) * velAlongNormal
	j /= (1/sphere.Mass + 1/box.Mass)

	impulse := rl.Vector3Scale(normal, j)
	sphere.Velocity = rl.Vector3Add(sphere.Velocity, rl.Vector3Scale(impulse, 1/sphere.Mass))
	box.Velocity = rl.Vector3Subtract(box.Velocity, rl.Vector3Scale(impulse, 1/box.Mass))

	// Torque only for the sphere (axis-aligned boxes translate, not spin)
	rSphere := rl.Vector3Scale(normal, -sphere.Shape.Radius)
	torqueSphere := cross(rSphere, impulse)
	sphere.AngularVelocity = rl.Vector3Add(sphere.AngularVelocity, rl.Vector3Scale(torqueSphere, sphereTorqueScale/sphere.Mass))
}

// resolveBoxBox handles box-like vs box-like contact on world AABBs
func (b *Backend) resolveBoxBox(bodyA, bodyB *Body) {
	boundsA := bodyA.Bounds()
	boundsB := bodyB.Bounds()

	pushOut := boundsA.Resolve(boundsB)
	if pushOut.X == 0 && pushOut.Y == 0 && pushOut.Z == 0 {
		return
	}

	b.wakeOnContact(bodyA, bodyB)

	// Split the push based on mass ratio
	totalMass := bodyA.Mass + bodyB.Mass
	ratioA := bodyB.Mass / totalMass
	ratioB := bodyA.Mass / totalMass

	bodyA.Position = rl.Vector3Add(bodyA.Position, rl.Vector3Scale(pushOut, ratioA))
	bodyB.Position = rl.Vector3Subtract(bodyB.Position, rl.Vector3Scale(pushOut, ratioB))

	// Bounce velocities
	pushLen := rl.Vector3Length(pushOut)
	if pushLen < 0.0001 {
		return
	}
	normal := rl.Vector3Scale(pushOut, 1/pushLen)

	// Relative velocity
	relVel := rl.Vector3Subtract(bodyA.Velocity, bodyB.Velocity)
	velAlongNormal := rl.Vector3DotProduct(relVel, normal)

	// Only resolve if bodies are moving toward each other
	if velAlongNormal > 0 {
		return
	}

	// Restitution
	e := (bodyA.Restitution + bodyB.Restitution) / 2

	// Impulse magnitude
	j := -(1 + e) * velAlongNormal
	j /= (1/bodyA.Mass + 1/bodyB.Mass)

	// Apply impulse
	impulse := rl.Vector3Scale(normal, j)
	bodyA.Velocity = rl.Vector3Add(bodyA.Velocity, rl.Vector3Scale(impulse, 1/bodyA.Mass))
	bodyB.Velocity = rl.Vector3Subtract(bodyB.Velocity, rl.Vector3Scale(impulse, 1/bodyB.Mass))

	// Apply torque - contact point is on surface in direction of normal
	halfA := rl.Vector3Scale(boundsA.Size(), 0.5)
	halfB := rl.Vector3Scale(boundsB.Size(), 0.5)
	rA := estimateContactPoint(rl.Vector3{}, halfA, rl.Vector3Scale(normal, -1))
	rB := estimateContactPoint(rl.Vector3{}, halfB, normal)

	torqueA := cross(rA, impulse)
	torqueB := cross(rB, rl.Vector3Scale(impulse, -1))

	bodyA.AngularVelocity = rl.Vector3Add(bodyA.AngularVelocity, rl.Vector3Scale(torqueA, boxTorqueScale/bodyA.Mass))
	bodyB.AngularVelocity = rl.Vector3Add(bodyB.AngularVelocity, rl.Vector3Scale(torqueB, boxTorqueScale/bodyB.Mass))
}

// resolveStaticContact handles a dynamic body against a static body.
func (b *Backend) resolveStaticContact(body, static *Body) {
	if body.Shape == nil || static.Shape == nil {
		return
	}

	switch static.Shape.Kind {
	case ShapePlane:
		b.resolveBodyPlane(body, static)
	case ShapeMesh:
		b.resolveBodyMesh(body, static)
	default:
		if body.Shape.Kind == ShapeSphere {
			b.resolveSphereStaticBox(body, static)
		} else {
			b.resolveBoxStaticBox(body, static)
		}
	}
}

// resolveBodyPlane pushes a dynamic body out of a static half-space.
func (b *Backend) resolveBodyPlane(body, static *Body) {
	n := static.Shape.Normal
	d := rl.Vector3DotProduct(body.Position, n) - static.Shape.Offset

	// Projected extent of the body along the plane normal
	var extent float32
	if body.Shape.Kind == ShapeSphere {
		extent = body.Shape.Radius
	} else {
		half := rl.Vector3Scale(body.Bounds().Size(), 0.5)
		extent = half.X*absf(n.X) + half.Y*absf(n.Y) + half.Z*absf(n.Z)
	}

	penetration := extent - d
	if penetration <= 0 {
		return
	}

	body.Position = rl.Vector3Add(body.Position, rl.Vector3Scale(n, penetration))
	b.reflectOffStatic(body, n)
}

// resolveBodyMesh resolves a dynamic body against static triangle geometry
// using the body's bounding sphere.
func (b *Backend) resolveBodyMesh(body, static *Body) {
	mesh := static.Shape.Mesh
	if mesh == nil {
		return
	}

	radius := body.Shape.ContactRadius()
	hit, push := mesh.SphereIntersect(body.Position, radius)
	if !hit {
		return
	}

	body.Position = rl.Vector3Add(body.Position, push)

	pushLen := rl.Vector3Length(push)
	if pushLen < 0.0001 {
		return
	}
	normal := rl.Vector3Scale(push, 1.0/pushLen)

	dot := rl.Vector3DotProduct(body.Velocity, normal)
	if dot < 0 {
		// Reflect with restitution
		reflect := rl.Vector3Scale(normal, -2*dot*body.Restitution)
		body.Velocity = rl.Vector3Add(body.Velocity, reflect)
		// Apply friction
		body.Velocity = rl.Vector3Scale(body.Velocity, 1.0-body.Friction)
	}
}

// resolveSphereStaticBox handles a dynamic sphere against a static box (floor, walls)
func (b *Backend) resolveSphereStaticBox(sphere, static *Body) {
	bounds := static.Bounds()
	closest := bounds.ClosestPoint(sphere.Position)

	diff := rl.Vector3Subtract(sphere.Position, closest)
	dist := rl.Vector3Length(diff)

	if dist >= sphere.Shape.Radius || dist < 0.0001 {
		return
	}

	// Normal points from box to sphere
	normal := rl.Vector3Scale(diff, 1/dist)
	penetration := sphere.Shape.Radius - dist

	// Push sphere out (static doesn't move)
	sphere.Position = rl.Vector3Add(sphere.Position, rl.Vector3Scale(normal, penetration))

	velAlongNormal := rl.Vector3DotProduct(sphere.Velocity, normal)
	if velAlongNormal < 0 {
		reflect := rl.Vector3Scale(normal, -2*velAlongNormal*sphere.Restitution)
		sphere.Velocity = rl.Vector3Add(sphere.Velocity, reflect)

		// Apply friction
		sphere.Velocity.X *= (1 - sphere.Friction)
		sphere.Velocity.Z *= (1 - sphere.Friction)

		// Apply torque - contact point is on sphere surface
		r := rl.Vector3Scale(normal, -sphere.Shape.Radius)
		torque := cross(r, reflect)
		torqueScale := float32(30.0)
		sphere.AngularVelocity = rl.Vector3Add(sphere.AngularVelocity, rl.Vector3Scale(torque, torqueScale/sphere.Mass))

		// Friction on angular velocity when on ground
		if normal.Y > 0.5 {
			sphere.AngularVelocity.X *= (1 - sphere.Friction*0.5)
			sphere.AngularVelocity.Z *= (1 - sphere.Friction*0.5)
		}
	}
}

// resolveBoxStaticBox handles a dynamic box-like body against a static box
func (b *Backend) resolveBoxStaticBox(body, static *Body) {
	pushOut := body.Bounds().Resolve(static.Bounds())
	if pushOut.X == 0 && pushOut.Y == 0 && pushOut.Z == 0 {
		return
	}

	// Push fully out (static doesn't move)
	body.Position = rl.Vector3Add(body.Position, pushOut)

	pushLen := rl.Vector3Length(pushOut)
	if pushLen < 0.0001 {
		return
	}
	normal := rl.Vector3Scale(pushOut, 1/pushLen)
	b.reflectOffStatic(body, normal)
}

// reflectOffStatic applies the velocity response for a contact with
// immovable geometry: reflect along the normal, surface friction, and a
// contact torque so boxes tumble instead of gliding.
func (b *Backend) reflectOffStatic(body *Body, normal rl.Vector3) {
	velAlongNormal := rl.Vector3DotProduct(body.Velocity, normal)
	if velAlongNormal >= 0 {
		return
	}

	// Reflect and apply restitution
	reflect := rl.Vector3Scale(normal, -2*velAlongNormal*body.Restitution)
	body.Velocity = rl.Vector3Add(body.Velocity, reflect)

	// Apply friction perpendicular to normal
	body.Velocity.X *= (1 - body.Friction)
	body.Velocity.Z *= (1 - body.Friction)

	// Apply torque - contact point is on surface in direction of normal
	half := rl.Vector3Scale(body.Bounds().Size(), 0.5)
	r := estimateContactPoint(rl.Vector3{}, half, rl.Vector3Scale(normal, -1))
	torque := cross(r, reflect)
	body.AngularVelocity = rl.Vector3Add(body.AngularVelocity, rl.Vector3Scale(torque, boxTorqueScale/body.Mass))

	// Friction on angular velocity when on ground
	if normal.Y > 0.5 {
		body.AngularVelocity.X *= (1 - body.Friction*0.5)
		body.AngularVelocity.Z *= (1 - body.Friction*0.5)
	}
}

// resolveKinematicPush handles a kinematic body pushing dynamic bodies
func (b *Backend) resolveKinematicPush(kinematic, body *Body) {
	if kinematic.Shape == nil || body.Shape == nil {
		return
	}

	pushOut := kinematic.Bounds().Resolve(body.Bounds())
	if pushOut.X == 0 && pushOut.Y == 0 && pushOut.Z == 0 {
		return
	}

	b.wakeOnContact(kinematic, body)

	// Push the dynamic body fully out (kinematic doesn't move)
	body.Position = rl.Vector3Subtract(body.Position, pushOut)

	// Transfer velocity from kinematic to dynamic
	pushLen := rl.Vector3Length(pushOut)
	if pushLen < 0.0001 {
		return
	}
	normal := rl.Vector3Scale(pushOut, 1/pushLen)

	// Add kinematic's velocity to the body in the push direction.
	// normal points from the body toward the kinematic, so approach shows
	// up as a negative dot product.
	kinVelAlongNormal := rl.Vector3DotProduct(kinematic.Velocity, normal)
	if kinVelAlongNormal < 0 {
		impulse := rl.Vector3Scale(normal, kinVelAlongNormal*1.5)
		body.Velocity = rl.Vector3Add(body.Velocity, impulse)
	}
}

// resolveKinematicStatic pushes a kinematic body out of static geometry.
// The character mover handles most of this with swept motion; this is the
// depenetration safety net for anything that slipped through.
func (b *Backend) resolveKinematicStatic(kinematic, static *Body) {
	if kinematic.Shape == nil || static.Shape == nil {
		return
	}

	switch static.Shape.Kind {
	case ShapePlane:
		n := static.Shape.Normal
		d := rl.Vector3DotProduct(kinematic.Position, n) - static.Shape.Offset
		var extent float32
		if kinematic.Shape.Kind == ShapeSphere {
			extent = kinematic.Shape.Radius
		} else {
			half := rl.Vector3Scale(kinematic.Bounds().Size(), 0.5)
			extent = half.X*absf(n.X) + half.Y*absf(n.Y) + half.Z*absf(n.Z)
		}
		if pen := extent - d; pen > 0 {
			kinematic.Position = rl.Vector3Add(kinematic.Position, rl.Vector3Scale(n, pen))
		}
	case ShapeMesh:
		mesh := static.Shape.Mesh
		if mesh == nil {
			return
		}
		radius := kinematic.Shape.ContactRadius()
		if hit, push := mesh.SphereIntersect(kinematic.Position, radius); hit {
			kinematic.Position = rl.Vector3Add(kinematic.Position, push)
		}
	default:
		pushOut := kinematic.Bounds().Resolve(static.Bounds())
		if pushOut.X != 0 || pushOut.Y != 0 || pushOut.Z != 0 {
			kinematic.Position = rl.Vector3Add(kinematic.Position, pushOut)
		}
	}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
