package world

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"kine3d/internal/components"
	"kine3d/internal/engine"
	"kine3d/internal/physics"
)

// DebugOptions selects what the wireframe overlay renders. Seeded from
// config, toggled live by sandbox keys.
type DebugOptions struct {
	Shapes   bool // collision shape wireframes
	Bounds   bool // registry AABBs
	Contacts bool // active pair markers with approximate normals
}

// colliderSource lets the debug pass cull by registry AABB without caring
// which component kind it is looking at.
type colliderSource interface {
	Collider() *physics.Collider
}

// DrawDebug renders the collision overlay for the given camera. Call inside
// BeginMode3D after the lit pass; everything here is lines and wires, no
// depth writes worth ordering around.
func (w *World) DrawDebug(camera rl.Camera3D) {
	if !w.Debug.Shapes && !w.Debug.Bounds && !w.Debug.Contacts {
		return
	}
	frustum := ExtractFrustum(camera)

	if w.Debug.Shapes || w.Debug.Bounds {
		for _, g := range w.Scene.GameObjects {
			if !g.Active {
				continue
			}
			w.drawObjectDebug(g, &frustum)
		}
	}

	if w.Debug.Contacts {
		w.Registry.VisitPairs(func(a, b *physics.Collider) {
			drawContactMarker(a, b, &frustum)
		})
	}
}

func (w *World) drawObjectDebug(g *engine.GameObject, frustum *Frustum) {
	for _, comp := range g.Components() {
		drawer, isDrawer := comp.(components.DebugDrawer)
		if !isDrawer {
			continue
		}

		var collider *physics.Collider
		if source, ok := comp.(colliderSource); ok {
			collider = source.Collider()
		}
		if cullCollider(collider, frustum) {
			continue
		}

		if w.Debug.Shapes {
			drawer.DebugDraw()
		}
		if w.Debug.Bounds && collider != nil {
			if collider.Shape == nil || !collider.Shape.Unbounded() {
				box := collider.Box
				rl.DrawBoundingBox(rl.BoundingBox{Min: box.Min, Max: box.Max}, rl.Fade(rl.White, 0.35))
			}
		}
	}
}

// cullCollider reports whether the collider's box is fully outside the
// frustum. Unregistered and unbounded colliders always draw.
func cullCollider(c *physics.Collider, frustum *Frustum) bool {
	if c == nil {
		return false
	}
	if c.Shape != nil && c.Shape.Unbounded() {
		return false
	}
	return !frustum.ContainsBox(c.Box.Min, c.Box.Max)
}

// drawContactMarker marks an overlapping pair: a dot at the center of the
// shared region and a line along the axis of least overlap, which is the
// best normal estimate the AABB layer can offer.
func drawContactMarker(a, b *physics.Collider, frustum *Frustum) {
	if a.Shape != nil && a.Shape.Unbounded() || b.Shape != nil && b.Shape.Unbounded() {
		// Plane pairs have no finite shared region worth marking
		return
	}
	min := rl.Vector3Max(a.Box.Min, b.Box.Min)
	max := rl.Vector3Min(a.Box.Max, b.Box.Max)
	if min.X > max.X || min.Y > max.Y || min.Z > max.Z {
		return
	}
	center := rl.Vector3Scale(rl.Vector3Add(min, max), 0.5)
	if !frustum.ContainsSphere(center, 0.6) {
		return
	}

	overlap := rl.Vector3Subtract(max, min)
	normal := rl.Vector3{X: 1}
	if overlap.Y <= overlap.X && overlap.Y <= overlap.Z {
		normal = rl.Vector3{Y: 1}
	} else if overlap.Z <= overlap.X && overlap.Z <= overlap.Y {
		normal = rl.Vector3{Z: 1}
	}

	rl.DrawSphere(center, 0.06, rl.Red)
	rl.DrawLine3D(center, rl.Vector3Add(center, rl.Vector3Scale(normal, 0.5)), rl.Red)
}
