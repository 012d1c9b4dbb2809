package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// RaycastHit describes the closest surface a ray struck.
type RaycastHit struct {
	Collider *Collider
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}

// Raycast finds the closest non-trigger collider along the ray by walking
// the grid cells the ray crosses, near to far. A zero mask matches all
// layers; exclude skips the caller's own colliders so a character does
// not hit itself.
func (r *Registry) Raycast(origin, direction rl.Vector3, maxDistance float32, mask uint32, exclude ...ColliderID) (RaycastHit, bool) {
	if r == nil {
		return RaycastHit{}, false
	}
	if rl.Vector3Length(direction) < 0.0001 {
		return RaycastHit{}, false
	}
	direction = rl.Vector3Normalize(direction)

	var closest RaycastHit
	closest.Distance = maxDistance
	hit := false

	tested := make(map[ColliderID]bool)
	test := func(id ColliderID) {
		if tested[id] {
			return
		}
		tested[id] = true
		c, ok := r.colliders[id]
		if !ok || !c.Enabled || c.Trigger {
			return
		}
		if mask != 0 && c.Layer&mask == 0 {
			return
		}
		for _, ex := range exclude {
			if id == ex {
				return
			}
		}
		if info, ok := raycastCollider(origin, direction, c, closest.Distance); ok {
			if info.Distance < closest.Distance || !hit {
				closest = info
				closest.Collider = c
				hit = true
			}
		}
	}

	// Planes and other unbounded shapes never sit in grid cells
	for id := range r.boundless {
		test(id)
	}

	// 3D DDA over the spatial hash. A collider first reachable in a later
	// cell cannot be struck before that cell's entry distance, so the walk
	// ends once the entry passes the closest hit so far.
	cell := CellKey{X: r.cellCoord(origin.X), Y: r.cellCoord(origin.Y), Z: r.cellCoord(origin.Z)}

	stepX, tMaxX, tDeltaX := r.ddaAxis(origin.X, direction.X, cell.X)
	stepY, tMaxY, tDeltaY := r.ddaAxis(origin.Y, direction.Y, cell.Y)
	stepZ, tMaxZ, tDeltaZ := r.ddaAxis(origin.Z, direction.Z, cell.Z)

	for {
		for _, id := range r.cells[cell] {
			test(id)
		}

		var t float32
		switch {
		case tMaxX <= tMaxY && tMaxX <= tMaxZ:
			t = tMaxX
			cell.X += stepX
			tMaxX += tDeltaX
		case tMaxY <= tMaxZ:
			t = tMaxY
			cell.Y += stepY
			tMaxY += tDeltaY
		default:
			t = tMaxZ
			cell.Z += stepZ
			tMaxZ += tDeltaZ
		}
		if t > maxDistance || t > closest.Distance {
			break
		}
	}

	return closest, hit
}

// ddaAxis prepares one axis of the grid walk: step direction, distance to
// the first cell boundary and distance between boundaries.
func (r *Registry) ddaAxis(origin, direction float32, cell int) (int, float32, float32) {
	if direction > 0 {
		next := (float32(cell) + 1) * r.cellSize
		return 1, (next - origin) / direction, r.cellSize / direction
	}
	if direction < 0 {
		next := float32(cell) * r.cellSize
		return -1, (next - origin) / direction, -r.cellSize / direction
	}
	return 0, math32.Inf(1), math32.Inf(1)
}

// raycastCollider dispatches on the collider's shape; colliders without a
// shape fall back to their world box.
func raycastCollider(origin, direction rl.Vector3, c *Collider, maxDistance float32) (RaycastHit, bool) {
	if c.Shape != nil {
		switch c.Shape.Kind {
		case ShapeSphere:
			return raycastSphere(origin, direction, c.Box.Center(), c.Shape.Radius, maxDistance)
		case ShapePlane:
			return raycastPlane(origin, direction, c.Shape.Normal, c.Shape.Offset, maxDistance)
		case ShapeMesh:
			if point, normal, dist, ok := c.Shape.Mesh.RayIntersect(origin, direction, maxDistance); ok {
				return RaycastHit{Point: point, Normal: normal, Distance: dist}, true
			}
			return RaycastHit{}, false
		}
	}
	// Box, cylinder and capsule shapes resolve on the world box
	t, normal, ok := rayAABB(origin, direction, c.Box, maxDistance)
	if !ok {
		return RaycastHit{}, false
	}
	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}

// rayAABB is the slab test. Returns the entry distance and the entry
// face normal. An origin already inside the box reports an immediate
// contact at distance zero so movers overlapping an obstacle stop
// against it instead of tunneling out through the exit face.
func rayAABB(origin, direction rl.Vector3, box AABB, maxDistance float32) (float32, rl.Vector3, bool) {
	min := box.Min
	max := box.Max

	tmin := float32(-1e30)
	tmax := float32(1e30)
	entryAxis := -1

	// X slab
	if direction.X != 0 {
		t1 := (min.X - origin.X) / direction.X
		t2 := (max.X - origin.X) / direction.X
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = t1
		tmax = t2
		entryAxis = 0
	} else if origin.X < min.X || origin.X > max.X {
		return 0, rl.Vector3{}, false
	}

	// Y slab
	if direction.Y != 0 {
		t1 := (min.Y - origin.Y) / direction.Y
		t2 := (max.Y - origin.Y) / direction.Y
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
			entryAxis = 1
		}
		if t2 < tmax {
			tmax = t2
		}
	} else if origin.Y < min.Y || origin.Y > max.Y {
		return 0, rl.Vector3{}, false
	}

	if tmin > tmax {
		return 0, rl.Vector3{}, false
	}

	// Z slab
	if direction.Z != 0 {
		t1 := (min.Z - origin.Z) / direction.Z
		t2 := (max.Z - origin.Z) / direction.Z
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
			entryAxis = 2
		}
		if t2 < tmax {
			tmax = t2
		}
	} else if origin.Z < min.Z || origin.Z > max.Z {
		return 0, rl.Vector3{}, false
	}

	if tmin > tmax || tmax < 0 || tmin > maxDistance {
		return 0, rl.Vector3{}, false
	}

	// The entry face sits on the axis that raised tmin last; its outward
	// normal opposes the ray on that axis. This holds for an interior
	// origin too, where tmin is the face the ray crossed coming in.
	var normal rl.Vector3
	switch entryAxis {
	case 0:
		normal.X = 1
		if direction.X > 0 {
			normal.X = -1
		}
	case 1:
		normal.Y = 1
		if direction.Y > 0 {
			normal.Y = -1
		}
	case 2:
		normal.Z = 1
		if direction.Z > 0 {
			normal.Z = -1
		}
	}

	if tmin < 0 {
		// Origin inside the box: immediate blocking contact
		return 0, normal, true
	}
	return tmin, normal, true
}

func raycastSphere(origin, direction rl.Vector3, center rl.Vector3, radius float32, maxDistance float32) (RaycastHit, bool) {
	oc := rl.Vector3Subtract(origin, center)
	a := rl.Vector3DotProduct(direction, direction)
	b := 2.0 * rl.Vector3DotProduct(oc, direction)
	c := rl.Vector3DotProduct(oc, oc) - radius*radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return RaycastHit{}, false
	}

	t := (-b - math32.Sqrt(discriminant)) / (2 * a)
	if t < 0 {
		exit := (-b + math32.Sqrt(discriminant)) / (2 * a)
		if exit < 0 {
			return RaycastHit{}, false
		}
		// Origin inside the sphere: immediate contact with the radial
		// push-out normal instead of the far surface.
		normal := rl.Vector3Subtract(origin, center)
		if rl.Vector3Length(normal) < 0.0001 {
			normal = rl.Vector3Scale(direction, -1)
		} else {
			normal = rl.Vector3Normalize(normal)
		}
		return RaycastHit{Point: origin, Normal: normal, Distance: 0}, true
	}
	if t > maxDistance {
		return RaycastHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, center))

	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}

func raycastPlane(origin, direction rl.Vector3, planeNormal rl.Vector3, planeOffset float32, maxDistance float32) (RaycastHit, bool) {
	denom := rl.Vector3DotProduct(direction, planeNormal)
	if absf(denom) < 0.0001 {
		return RaycastHit{}, false // parallel
	}

	t := (planeOffset - rl.Vector3DotProduct(origin, planeNormal)) / denom
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	normal := planeNormal
	if denom > 0 {
		normal = rl.Vector3Scale(normal, -1)
	}

	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}
