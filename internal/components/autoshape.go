package components

import (
	"log"

	"kine3d/internal/engine"
	"kine3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// GeometryProvider is implemented by renderer components that can hand
// their geometry to shape inference. Bounds and triangles are in node-local
// space with rotation and scale baked in, so the owning body's position
// doubles as the collider origin.
type GeometryProvider interface {
	GeometryBounds() (rl.BoundingBox, bool)
	GeometryTriangles() ([]physics.Triangle, bool)
	GeometryVertexCount() int
}

const (
	// Extent ratio above which a bounding box is round enough to be a sphere
	sphereExtentRatio = 0.8
	// Extents under this are plane-like; keep the thin box instead of a sphere
	flatExtentThreshold = 0.1
)

// InferShape classifies render-geometry extents into a collision shape.
// Near-cubic bounds become a sphere, anything with a plane-like thin axis
// stays a flattened box, everything else is a plain box.
func InferShape(size rl.Vector3) (physics.ShapeKind, physics.ShapeParams) {
	ex := absf32(size.X)
	ey := absf32(size.Y)
	ez := absf32(size.Z)

	maxExtent := ex
	if ey > maxExtent {
		maxExtent = ey
	}
	if ez > maxExtent {
		maxExtent = ez
	}
	minExtent := ex
	if ey < minExtent {
		minExtent = ey
	}
	if ez < minExtent {
		minExtent = ez
	}

	if maxExtent <= 0 {
		return physics.ShapeBox, physics.ShapeParams{Size: rl.Vector3{X: 1, Y: 1, Z: 1}}
	}
	if minExtent >= maxExtent*sphereExtentRatio {
		return physics.ShapeSphere, physics.ShapeParams{Radius: maxExtent / 2}
	}
	if minExtent < flatExtentThreshold {
		// Plane-like geometry keeps a minimum thickness so the box stays solvable
		ex = max32(ex, flatExtentThreshold)
		ey = max32(ey, flatExtentThreshold)
		ez = max32(ez, flatExtentThreshold)
	}
	return physics.ShapeBox, physics.ShapeParams{Size: rl.Vector3{X: ex, Y: ey, Z: ez}}
}

// inferShapeFromNode runs inference against the node's geometry provider.
// Extraction failure falls back to a unit box with a warning, never fails.
func inferShapeFromNode(g *engine.GameObject) (physics.ShapeKind, physics.ShapeParams) {
	name := "<detached>"
	if g != nil {
		name = g.Name
	}

	provider := findGeometryProvider(g)
	if provider == nil {
		log.Printf("Physics: no render geometry on %q, using unit box collider", name)
		return physics.ShapeBox, physics.ShapeParams{Size: rl.Vector3{X: 1, Y: 1, Z: 1}}
	}

	box, ok := provider.GeometryBounds()
	if !ok {
		log.Printf("Physics: geometry extraction failed on %q, using unit box collider", name)
		return physics.ShapeBox, physics.ShapeParams{Size: rl.Vector3{X: 1, Y: 1, Z: 1}}
	}

	size := rl.Vector3Subtract(box.Max, box.Min)
	return InferShape(size)
}

func findGeometryProvider(g *engine.GameObject) GeometryProvider {
	if g == nil {
		return nil
	}
	if p := engine.FindComponent[GeometryProvider](g); p != nil {
		return p
	}
	return nil
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
