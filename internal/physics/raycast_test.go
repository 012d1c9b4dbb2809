package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func registerBox(r *Registry, center rl.Vector3, size rl.Vector3) *Collider {
	c := &Collider{
		Shape:   NewShape(ShapeBox, ShapeParams{Size: size}),
		Box:     NewAABBFromCenter(center, size),
		Enabled: true,
	}
	r.Register(c)
	return c
}

func TestRaycastHitsBox(t *testing.T) {
	r := NewRegistry()
	c := registerBox(r, rl.Vector3{X: 5}, rl.Vector3{X: 1, Y: 1, Z: 1})

	hit, ok := r.Raycast(rl.Vector3{}, rl.Vector3{X: 1}, 100, 0)
	if !ok {
		t.Fatal("Expected ray to hit the box")
	}
	if hit.Collider != c {
		t.Error("Hit reports the wrong collider")
	}
	if hit.Distance < 4.49 || hit.Distance > 4.51 {
		t.Errorf("Expected hit at distance 4.5, got %f", hit.Distance)
	}
	if hit.Normal.X != -1 {
		t.Errorf("Expected face normal (-1,0,0), got %v", hit.Normal)
	}
	if hit.Point.X < 4.49 || hit.Point.X > 4.51 {
		t.Errorf("Expected hit point at x=4.5, got %v", hit.Point)
	}
}

func TestRaycastMiss(t *testing.T) {
	r := NewRegistry()
	registerBox(r, rl.Vector3{X: 5}, rl.Vector3{X: 1, Y: 1, Z: 1})

	if _, ok := r.Raycast(rl.Vector3{}, rl.Vector3{X: -1}, 100, 0); ok {
		t.Error("Ray pointing away should miss")
	}
	if _, ok := r.Raycast(rl.Vector3{}, rl.Vector3{X: 1}, 2, 0); ok {
		t.Error("Ray shorter than the gap should miss")
	}
	if _, ok := r.Raycast(rl.Vector3{}, rl.Vector3{}, 100, 0); ok {
		t.Error("Zero-length direction should miss")
	}
}

func TestRaycastClosestWins(t *testing.T) {
	r := NewRegistry()
	registerBox(r, rl.Vector3{X: 10}, rl.Vector3{X: 1, Y: 1, Z: 1})
	near := registerBox(r, rl.Vector3{X: 5}, rl.Vector3{X: 1, Y: 1, Z: 1})

	hit, ok := r.Raycast(rl.Vector3{}, rl.Vector3{X: 1}, 100, 0)
	if !ok {
		t.Fatal("Expected a hit")
	}
	if hit.Collider != near {
		t.Errorf("Expected the near box, got collider %d at distance %f", hit.Collider.ID, hit.Distance)
	}
}

func TestRaycastHitsSphere(t *testing.T) {
	r := NewRegistry()
	c := &Collider{
		Shape:   NewShape(ShapeSphere, ShapeParams{Radius: 1}),
		Box:     NewAABBFromCenter(rl.Vector3{Z: 10}, rl.Vector3{X: 2, Y: 2, Z: 2}),
		Enabled: true,
	}
	r.Register(c)

	hit, ok := r.Raycast(rl.Vector3{}, rl.Vector3{Z: 1}, 100, 0)
	if !ok {
		t.Fatal("Expected ray to hit the sphere")
	}
	if hit.Distance < 8.99 || hit.Distance > 9.01 {
		t.Errorf("Expected hit at distance 9, got %f", hit.Distance)
	}
	if hit.Normal.Z > -0.99 {
		t.Errorf("Expected normal facing the ray, got %v", hit.Normal)
	}
}

func TestRaycastHitsPlane(t *testing.T) {
	r := NewRegistry()
	c := &Collider{
		Shape:   NewShape(ShapePlane, ShapeParams{Normal: rl.Vector3{Y: 1}, Offset: 0}),
		Enabled: true,
	}
	r.Register(c)

	hit, ok := r.Raycast(rl.Vector3{Y: 5}, rl.Vector3{Y: -1}, 100, 0)
	if !ok {
		t.Fatal("Expected ray to hit the ground plane")
	}
	if hit.Distance < 4.99 || hit.Distance > 5.01 {
		t.Errorf("Expected hit at distance 5, got %f", hit.Distance)
	}
	if hit.Normal.Y < 0.99 {
		t.Errorf("Expected upward normal, got %v", hit.Normal)
	}

	// Parallel ray misses
	if _, ok := r.Raycast(rl.Vector3{Y: 5}, rl.Vector3{X: 1}, 100, 0); ok {
		t.Error("Ray parallel to the plane should miss")
	}
}

func TestRaycastHitsMesh(t *testing.T) {
	r := NewRegistry()
	mesh, err := NewTriMesh(floorQuad())
	if err != nil {
		t.Fatalf("NewTriMesh failed: %v", err)
	}
	c := &Collider{
		Shape:   NewShape(ShapeMesh, ShapeParams{Mesh: mesh}),
		Box:     mesh.Bounds(),
		Enabled: true,
	}
	r.Register(c)

	hit, ok := r.Raycast(rl.Vector3{Y: 3}, rl.Vector3{Y: -1}, 100, 0)
	if !ok {
		t.Fatal("Expected ray to hit the mesh")
	}
	if hit.Distance < 2.99 || hit.Distance > 3.01 {
		t.Errorf("Expected hit at distance 3, got %f", hit.Distance)
	}
	if hit.Collider != c {
		t.Error("Hit reports the wrong collider")
	}
}

func TestRaycastSkipsTriggersAndDisabled(t *testing.T) {
	r := NewRegistry()
	trigger := registerBox(r, rl.Vector3{X: 3}, rl.Vector3{X: 1, Y: 1, Z: 1})
	trigger.Trigger = true
	disabled := registerBox(r, rl.Vector3{X: 5}, rl.Vector3{X: 1, Y: 1, Z: 1})
	disabled.Enabled = false
	solid := registerBox(r, rl.Vector3{X: 8}, rl.Vector3{X: 1, Y: 1, Z: 1})

	hit, ok := r.Raycast(rl.Vector3{}, rl.Vector3{X: 1}, 100, 0)
	if !ok {
		t.Fatal("Expected a hit on the solid box")
	}
	if hit.Collider != solid {
		t.Errorf("Ray should skip triggers and disabled colliders, hit %d", hit.Collider.ID)
	}
}

func TestRaycastExcludesCaller(t *testing.T) {
	r := NewRegistry()
	self := registerBox(r, rl.Vector3{X: 1}, rl.Vector3{X: 1, Y: 1, Z: 1})
	other := registerBox(r, rl.Vector3{X: 5}, rl.Vector3{X: 1, Y: 1, Z: 1})

	hit, ok := r.Raycast(rl.Vector3{}, rl.Vector3{X: 1}, 100, 0, self.ID)
	if !ok {
		t.Fatal("Expected a hit past the excluded collider")
	}
	if hit.Collider != other {
		t.Errorf("Expected the other collider, got %d", hit.Collider.ID)
	}
}

func TestRaycastMaskFilter(t *testing.T) {
	r := NewRegistry()
	c := registerBox(r, rl.Vector3{X: 5}, rl.Vector3{X: 1, Y: 1, Z: 1})
	c.Layer = 2

	if _, ok := r.Raycast(rl.Vector3{}, rl.Vector3{X: 1}, 100, 4); ok {
		t.Error("Ray with non-matching mask should miss")
	}
	if _, ok := r.Raycast(rl.Vector3{}, rl.Vector3{X: 1}, 100, 2); !ok {
		t.Error("Ray with matching mask should hit")
	}
}

func TestRaycastWalksDistantCells(t *testing.T) {
	r := NewRegistry()
	far := registerBox(r, rl.Vector3{X: 42, Y: 3, Z: -17}, rl.Vector3{X: 2, Y: 2, Z: 2})

	hit, ok := r.Raycast(rl.Vector3{}, rl.Vector3{X: 42, Y: 3, Z: -17}, 100, 0)
	if !ok {
		t.Fatal("Expected the cell walk to reach the distant box")
	}
	if hit.Collider != far {
		t.Error("Hit reports the wrong collider")
	}
}

func TestRaycastNormalizesDirection(t *testing.T) {
	r := NewRegistry()
	registerBox(r, rl.Vector3{X: 5}, rl.Vector3{X: 1, Y: 1, Z: 1})

	// Unnormalized direction must not scale the reported distance
	hit, ok := r.Raycast(rl.Vector3{}, rl.Vector3{X: 10}, 100, 0)
	if !ok {
		t.Fatal("Expected a hit")
	}
	if hit.Distance < 4.49 || hit.Distance > 4.51 {
		t.Errorf("Distance should be in world units, got %f", hit.Distance)
	}
}

func TestRaycastOriginInsideBox(t *testing.T) {
	r := NewRegistry()
	registerBox(r, rl.Vector3{X: 5}, rl.Vector3{X: 2, Y: 2, Z: 2})

	hit, ok := r.Raycast(rl.Vector3{X: 5}, rl.Vector3{X: 1}, 100, 0)
	if !ok {
		t.Fatal("Expected an immediate contact from inside the box")
	}
	if hit.Distance != 0 {
		t.Errorf("Expected distance 0 from an interior origin, got %f", hit.Distance)
	}
	if hit.Normal.X != -1 {
		t.Errorf("Expected the entry-side normal (-1,0,0), not the exit face, got %v", hit.Normal)
	}
}

func TestRaycastOriginInsideSphere(t *testing.T) {
	r := NewRegistry()
	c := &Collider{
		Shape:   NewShape(ShapeSphere, ShapeParams{Radius: 2}),
		Box:     NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 4, Y: 4, Z: 4}),
		Enabled: true,
	}
	r.Register(c)

	hit, ok := r.Raycast(rl.Vector3{X: 1}, rl.Vector3{X: 1}, 100, 0)
	if !ok {
		t.Fatal("Expected an immediate contact from inside the sphere")
	}
	if hit.Distance != 0 {
		t.Errorf("Expected distance 0 from an interior origin, got %f", hit.Distance)
	}
	if hit.Normal.X < 0.99 {
		t.Errorf("Expected the radial push-out normal (1,0,0), got %v", hit.Normal)
	}
}
