package physics

import (
	"fmt"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ShapeKind selects the parameter payload of a Shape. The zero value is
// invalid so an unset kind is caught by NewShape.
type ShapeKind int

const (
	ShapeBox ShapeKind = iota + 1
	ShapeSphere
	ShapeCylinder
	ShapeCapsule
	ShapePlane
	ShapeMesh
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "Box"
	case ShapeSphere:
		return "Sphere"
	case ShapeCylinder:
		return "Cylinder"
	case ShapeCapsule:
		return "Capsule"
	case ShapePlane:
		return "Plane"
	case ShapeMesh:
		return "Mesh"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// ParseShapeKind maps a scene-file kind name back to its enum value.
func ParseShapeKind(name string) (ShapeKind, bool) {
	switch name {
	case "Box":
		return ShapeBox, true
	case "Sphere":
		return ShapeSphere, true
	case "Cylinder":
		return ShapeCylinder, true
	case "Capsule":
		return ShapeCapsule, true
	case "Plane":
		return ShapePlane, true
	case "Mesh":
		return ShapeMesh, true
	default:
		return 0, false
	}
}

// ShapeParams carries the kind-specific parameters for NewShape.
// Box reads Size; Sphere reads Radius; Cylinder and Capsule read Radius and
// Height; Plane reads Normal and Offset (point·normal = offset); Mesh reads Mesh.
type ShapeParams struct {
	Size   rl.Vector3
	Radius float32
	Height float32
	Normal rl.Vector3
	Offset float32
	Mesh   *TriMesh
}

type ShapeID uint64

// Shape is a tagged union over ShapeKind. Only the fields belonging to the
// kind are meaningful; everything else stays zero.
type Shape struct {
	ID          ShapeID
	Kind        ShapeKind
	HalfExtents rl.Vector3 // Box
	Radius      float32    // Sphere, Cylinder, Capsule
	Height      float32    // Cylinder, Capsule (cylindrical section)
	Normal      rl.Vector3 // Plane
	Offset      float32    // Plane: point·normal = offset
	Mesh        *TriMesh   // Mesh
}

// NewShape builds a shape descriptor. An unsupported kind is a programmer
// error and panics; every other anomaly in the collision layer degrades
// gracefully instead.
func NewShape(kind ShapeKind, params ShapeParams) *Shape {
	s := &Shape{Kind: kind}
	switch kind {
	case ShapeBox:
		size := params.Size
		if size.X == 0 && size.Y == 0 && size.Z == 0 {
			size = rl.Vector3{X: 1, Y: 1, Z: 1}
		}
		s.HalfExtents = rl.Vector3{X: math32.Abs(size.X) / 2, Y: math32.Abs(size.Y) / 2, Z: math32.Abs(size.Z) / 2}
	case ShapeSphere:
		s.Radius = params.Radius
		if s.Radius <= 0 {
			s.Radius = 0.5
		}
	case ShapeCylinder, ShapeCapsule:
		s.Radius = params.Radius
		if s.Radius <= 0 {
			s.Radius = 0.5
		}
		s.Height = params.Height
		if s.Height <= 0 {
			s.Height = 1
		}
	case ShapePlane:
		n := params.Normal
		if n.X == 0 && n.Y == 0 && n.Z == 0 {
			n = rl.Vector3{X: 0, Y: 1, Z: 0}
		}
		s.Normal = rl.Vector3Normalize(n)
		s.Offset = params.Offset
	case ShapeMesh:
		s.Mesh = params.Mesh
	default:
		panic(fmt.Sprintf("physics: unsupported shape kind %d", int(kind)))
	}
	return s
}

// Unbounded reports whether the shape has no finite AABB. Unbounded shapes
// live outside the spatial grid and are always query candidates.
func (s *Shape) Unbounded() bool {
	return s.Kind == ShapePlane
}

// BoundsAt computes the world AABB of the shape centered at pos.
// Rotation is deliberately ignored: the box stays axis-aligned.
func (s *Shape) BoundsAt(pos rl.Vector3) AABB {
	switch s.Kind {
	case ShapeBox:
		return AABB{
			Min: rl.Vector3Subtract(pos, s.HalfExtents),
			Max: rl.Vector3Add(pos, s.HalfExtents),
		}
	case ShapeSphere:
		r := rl.Vector3{X: s.Radius, Y: s.Radius, Z: s.Radius}
		return AABB{Min: rl.Vector3Subtract(pos, r), Max: rl.Vector3Add(pos, r)}
	case ShapeCylinder:
		half := rl.Vector3{X: s.Radius, Y: s.Height / 2, Z: s.Radius}
		return AABB{Min: rl.Vector3Subtract(pos, half), Max: rl.Vector3Add(pos, half)}
	case ShapeCapsule:
		half := rl.Vector3{X: s.Radius, Y: s.Height/2 + s.Radius, Z: s.Radius}
		return AABB{Min: rl.Vector3Subtract(pos, half), Max: rl.Vector3Add(pos, half)}
	case ShapeMesh:
		if s.Mesh != nil {
			return s.Mesh.Bounds()
		}
		return AABB{Min: pos, Max: pos}
	case ShapePlane:
		// Planes are unbounded; the huge slab only exists so callers that
		// ignore Unbounded still get something overlapping everything.
		huge := rl.Vector3{X: math32.MaxFloat32 / 4, Y: math32.MaxFloat32 / 4, Z: math32.MaxFloat32 / 4}
		return AABB{Min: rl.Vector3Scale(huge, -1), Max: huge}
	default:
		return AABB{Min: pos, Max: pos}
	}
}

// ContactRadius is the bounding-sphere radius used when a shape resolves
// against a triangle mesh. Boxes use the smallest half-extent (conservative).
func (s *Shape) ContactRadius() float32 {
	switch s.Kind {
	case ShapeSphere:
		return s.Radius
	case ShapeCylinder, ShapeCapsule:
		return s.Radius
	case ShapeBox:
		r := s.HalfExtents.X
		if s.HalfExtents.Y < r {
			r = s.HalfExtents.Y
		}
		if s.HalfExtents.Z < r {
			r = s.HalfExtents.Z
		}
		return r
	default:
		return 0.5
	}
}

// Matches reports whether rebuilding with the given kind and params would
// produce an identical shape. Lets SetShape skip redundant rebuilds.
func (s *Shape) Matches(kind ShapeKind, params ShapeParams) bool {
	if s == nil || s.Kind != kind {
		return false
	}
	switch kind {
	case ShapeBox:
		return s.HalfExtents.X == math32.Abs(params.Size.X)/2 &&
			s.HalfExtents.Y == math32.Abs(params.Size.Y)/2 &&
			s.HalfExtents.Z == math32.Abs(params.Size.Z)/2
	case ShapeSphere:
		return s.Radius == params.Radius
	case ShapeCylinder, ShapeCapsule:
		return s.Radius == params.Radius && s.Height == params.Height
	case ShapePlane:
		n := rl.Vector3Normalize(params.Normal)
		return s.Normal == n && s.Offset == params.Offset
	case ShapeMesh:
		return s.Mesh == params.Mesh
	default:
		return false
	}
}
