package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestNewShapeBoxDefaults(t *testing.T) {
	s := NewShape(ShapeBox, ShapeParams{})

	if s.HalfExtents.X != 0.5 || s.HalfExtents.Y != 0.5 || s.HalfExtents.Z != 0.5 {
		t.Errorf("Zero-size box should default to unit cube, got half extents %v", s.HalfExtents)
	}
}

func TestNewShapeSphereDefaults(t *testing.T) {
	s := NewShape(ShapeSphere, ShapeParams{})
	if s.Radius != 0.5 {
		t.Errorf("Expected default radius 0.5, got %f", s.Radius)
	}

	s = NewShape(ShapeSphere, ShapeParams{Radius: 2})
	if s.Radius != 2 {
		t.Errorf("Expected radius 2, got %f", s.Radius)
	}
}

func TestNewShapePlaneNormalizesNormal(t *testing.T) {
	s := NewShape(ShapePlane, ShapeParams{Normal: rl.Vector3{Y: 10}, Offset: 3})

	if s.Normal.Y != 1 {
		t.Errorf("Plane normal should be normalized, got %v", s.Normal)
	}
	if s.Offset != 3 {
		t.Errorf("Expected offset 3, got %f", s.Offset)
	}
	if !s.Unbounded() {
		t.Error("Plane should report unbounded")
	}
}

func TestNewShapeUnknownKindPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for unknown shape kind")
		}
	}()
	NewShape(ShapeKind(99), ShapeParams{})
}

func TestShapeBoundsAt(t *testing.T) {
	box := NewShape(ShapeBox, ShapeParams{Size: rl.Vector3{X: 2, Y: 4, Z: 6}})
	bounds := box.BoundsAt(rl.Vector3{X: 10, Y: 0, Z: 0})

	if bounds.Min.X != 9 || bounds.Max.X != 11 {
		t.Errorf("Box bounds X wrong: [%f, %f]", bounds.Min.X, bounds.Max.X)
	}
	if bounds.Min.Y != -2 || bounds.Max.Y != 2 {
		t.Errorf("Box bounds Y wrong: [%f, %f]", bounds.Min.Y, bounds.Max.Y)
	}

	capsule := NewShape(ShapeCapsule, ShapeParams{Radius: 0.5, Height: 1})
	cb := capsule.BoundsAt(rl.Vector3{})
	// Capsule total height = cylinder height + two hemispheres
	if cb.Max.Y != 1 || cb.Min.Y != -1 {
		t.Errorf("Capsule bounds Y wrong: [%f, %f]", cb.Min.Y, cb.Max.Y)
	}
	if cb.Max.X != 0.5 {
		t.Errorf("Capsule bounds X should be the radius, got %f", cb.Max.X)
	}
}

func TestShapeContactRadius(t *testing.T) {
	box := NewShape(ShapeBox, ShapeParams{Size: rl.Vector3{X: 4, Y: 1, Z: 2}})
	if box.ContactRadius() != 0.5 {
		t.Errorf("Box contact radius should be smallest half extent, got %f", box.ContactRadius())
	}

	sphere := NewShape(ShapeSphere, ShapeParams{Radius: 1.5})
	if sphere.ContactRadius() != 1.5 {
		t.Errorf("Sphere contact radius should be its radius, got %f", sphere.ContactRadius())
	}
}

func TestShapeMatches(t *testing.T) {
	params := ShapeParams{Size: rl.Vector3{X: 2, Y: 2, Z: 2}}
	s := NewShape(ShapeBox, params)

	if !s.Matches(ShapeBox, params) {
		t.Error("Shape should match the params it was built from")
	}
	if s.Matches(ShapeBox, ShapeParams{Size: rl.Vector3{X: 3, Y: 2, Z: 2}}) {
		t.Error("Shape should not match different size")
	}
	if s.Matches(ShapeSphere, ShapeParams{Radius: 1}) {
		t.Error("Shape should not match a different kind")
	}
}

func TestParseShapeKindRoundTrip(t *testing.T) {
	kinds := []ShapeKind{ShapeBox, ShapeSphere, ShapeCylinder, ShapeCapsule, ShapePlane, ShapeMesh}
	for _, kind := range kinds {
		parsed, ok := ParseShapeKind(kind.String())
		if !ok {
			t.Errorf("ParseShapeKind failed for %s", kind)
		}
		if parsed != kind {
			t.Errorf("Round trip mismatch: %s -> %s", kind, parsed)
		}
	}

	if _, ok := ParseShapeKind("Dodecahedron"); ok {
		t.Error("Unknown kind name should not parse")
	}
}
