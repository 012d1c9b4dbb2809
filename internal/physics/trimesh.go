package physics

import (
	"errors"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Triangle is a single collision triangle with precomputed normal.
type Triangle struct {
	V0, V1, V2 rl.Vector3
	Normal     rl.Vector3
}

// NewTriangle computes the face normal from winding order.
func NewTriangle(v0, v1, v2 rl.Vector3) Triangle {
	edge1 := rl.Vector3Subtract(v1, v0)
	edge2 := rl.Vector3Subtract(v2, v0)
	normal := rl.Vector3Normalize(rl.Vector3CrossProduct(edge1, edge2))
	return Triangle{V0: v0, V1: v1, V2: v2, Normal: normal}
}

type bvhNode struct {
	bounds    AABB
	left      *bvhNode
	right     *bvhNode
	triangles []int // indices into the triangle array (leaf nodes only)
}

// TriMesh is an exact triangle-mesh collider backed by a BVH.
// Triangles are stored relative to the mesh origin with rotation and scale
// baked in; the origin follows the owning body, so moving a trimesh only
// translates it. Exact for static geometry, approximate for rotating bodies.
type TriMesh struct {
	Triangles []Triangle
	root      *bvhNode
	origin    rl.Vector3
}

var errNoTriangles = errors.New("trimesh: no triangles")

// NewTriMesh builds the BVH. Returns an error when the triangle list is
// empty so callers can fall back to a primitive shape.
func NewTriMesh(triangles []Triangle) (*TriMesh, error) {
	if len(triangles) == 0 {
		return nil, errNoTriangles
	}
	m := &TriMesh{Triangles: triangles}
	indices := make([]int, len(triangles))
	for i := range indices {
		indices[i] = i
	}
	m.root = m.buildNode(indices, 0)
	return m, nil
}

// SetOrigin moves the mesh to a new world position.
func (m *TriMesh) SetOrigin(p rl.Vector3) {
	m.origin = p
}

func (m *TriMesh) Origin() rl.Vector3 {
	return m.origin
}

func (m *TriMesh) TriangleCount() int {
	return len(m.Triangles)
}

// Bounds returns the world AABB of the whole mesh.
func (m *TriMesh) Bounds() AABB {
	if m.root == nil {
		return AABB{Min: m.origin, Max: m.origin}
	}
	return AABB{
		Min: rl.Vector3Add(m.root.bounds.Min, m.origin),
		Max: rl.Vector3Add(m.root.bounds.Max, m.origin),
	}
}

func (m *TriMesh) buildNode(indices []int, depth int) *bvhNode {
	node := &bvhNode{}
	node.bounds = m.computeBounds(indices)

	// Few triangles or max depth: make leaf
	if len(indices) <= 4 || depth > 20 {
		node.triangles = indices
		return node
	}

	// Split on the longest axis
	size := rl.Vector3Subtract(node.bounds.Max, node.bounds.Min)
	axis := 0
	if size.Y > size.X {
		axis = 1
	}
	if size.Z > axisValue(size, axis) {
		axis = 2
	}

	mid := m.partition(indices, axis)
	if mid == 0 || mid == len(indices) {
		// Couldn't split, make leaf
		node.triangles = indices
		return node
	}

	node.left = m.buildNode(indices[:mid], depth+1)
	node.right = m.buildNode(indices[mid:], depth+1)
	return node
}

func (m *TriMesh) computeBounds(indices []int) AABB {
	bounds := AABB{
		Min: rl.Vector3{X: math32.MaxFloat32, Y: math32.MaxFloat32, Z: math32.MaxFloat32},
		Max: rl.Vector3{X: -math32.MaxFloat32, Y: -math32.MaxFloat32, Z: -math32.MaxFloat32},
	}
	for _, idx := range indices {
		tri := &m.Triangles[idx]
		bounds.Min = vecMin(bounds.Min, vecMin(tri.V0, vecMin(tri.V1, tri.V2)))
		bounds.Max = vecMax(bounds.Max, vecMax(tri.V0, vecMax(tri.V1, tri.V2)))
	}
	return bounds
}

// partition splits indices around the mean centroid on the given axis and
// returns the split point.
func (m *TriMesh) partition(indices []int, axis int) int {
	center := float32(0)
	for _, idx := range indices {
		center += axisValue(m.centroid(idx), axis)
	}
	center /= float32(len(indices))

	left := 0
	right := len(indices) - 1
	for left <= right {
		if axisValue(m.centroid(indices[left]), axis) < center {
			left++
		} else {
			indices[left], indices[right] = indices[right], indices[left]
			right--
		}
	}
	return left
}

func (m *TriMesh) centroid(idx int) rl.Vector3 {
	tri := &m.Triangles[idx]
	return rl.Vector3Scale(rl.Vector3Add(rl.Vector3Add(tri.V0, tri.V1), tri.V2), 1.0/3.0)
}

// SphereIntersect tests a world-space sphere against the mesh and returns a
// push-out vector. Push components accumulate per axis with the largest
// magnitude winning so crossing multiple triangles doesn't overshoot.
func (m *TriMesh) SphereIntersect(center rl.Vector3, radius float32) (bool, rl.Vector3) {
	if m == nil || m.root == nil {
		return false, rl.Vector3{}
	}

	local := rl.Vector3Subtract(center, m.origin)
	query := AABB{
		Min: rl.Vector3{X: local.X - radius, Y: local.Y - radius, Z: local.Z - radius},
		Max: rl.Vector3{X: local.X + radius, Y: local.Y + radius, Z: local.Z + radius},
	}

	candidates := m.queryNode(m.root, query)

	var totalPush rl.Vector3
	hit := false
	for _, idx := range candidates {
		tri := &m.Triangles[idx]
		if collides, push := sphereTriangleIntersect(local, radius, tri); collides {
			if math32.Abs(push.X) > math32.Abs(totalPush.X) {
				totalPush.X = push.X
			}
			if math32.Abs(push.Y) > math32.Abs(totalPush.Y) {
				totalPush.Y = push.Y
			}
			if math32.Abs(push.Z) > math32.Abs(totalPush.Z) {
				totalPush.Z = push.Z
			}
			hit = true
		}
	}
	return hit, totalPush
}

func (m *TriMesh) queryNode(node *bvhNode, query AABB) []int {
	if node == nil || !node.bounds.Intersects(query) {
		return nil
	}
	if node.triangles != nil {
		return node.triangles
	}
	left := m.queryNode(node.left, query)
	right := m.queryNode(node.right, query)
	return append(left, right...)
}

// RayIntersect casts a world-space ray against the mesh. Returns the closest
// hit point, surface normal, and distance.
func (m *TriMesh) RayIntersect(origin, direction rl.Vector3, maxDistance float32) (rl.Vector3, rl.Vector3, float32, bool) {
	if m == nil || m.root == nil {
		return rl.Vector3{}, rl.Vector3{}, 0, false
	}

	local := rl.Vector3Subtract(origin, m.origin)
	bestDist := maxDistance
	var bestNormal rl.Vector3
	found := false

	m.rayNode(m.root, local, direction, &bestDist, &bestNormal, &found)
	if !found {
		return rl.Vector3{}, rl.Vector3{}, 0, false
	}
	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, bestDist))
	return point, bestNormal, bestDist, true
}

func (m *TriMesh) rayNode(node *bvhNode, origin, direction rl.Vector3, bestDist *float32, bestNormal *rl.Vector3, found *bool) {
	if node == nil {
		return
	}
	if _, _, ok := rayAABB(origin, direction, node.bounds, *bestDist); !ok {
		return
	}
	if node.triangles != nil {
		for _, idx := range node.triangles {
			tri := &m.Triangles[idx]
			if t, ok := rayTriangle(origin, direction, tri); ok && t < *bestDist {
				*bestDist = t
				normal := tri.Normal
				// Flip so the normal faces the ray origin
				if rl.Vector3DotProduct(normal, direction) > 0 {
					normal = rl.Vector3Scale(normal, -1)
				}
				*bestNormal = normal
				*found = true
			}
		}
		return
	}
	m.rayNode(node.left, origin, direction, bestDist, bestNormal, found)
	m.rayNode(node.right, origin, direction, bestDist, bestNormal, found)
}

// rayTriangle intersects the ray with the triangle's plane, then tests the
// hit point against the edges.
func rayTriangle(origin, direction rl.Vector3, tri *Triangle) (float32, bool) {
	denom := rl.Vector3DotProduct(tri.Normal, direction)
	if math32.Abs(denom) < 1e-7 {
		return 0, false
	}
	t := rl.Vector3DotProduct(tri.Normal, rl.Vector3Subtract(tri.V0, origin)) / denom
	if t < 0 {
		return 0, false
	}
	p := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))

	// Inside-outside test against each edge
	edge0 := rl.Vector3Subtract(tri.V1, tri.V0)
	vp0 := rl.Vector3Subtract(p, tri.V0)
	if rl.Vector3DotProduct(tri.Normal, rl.Vector3CrossProduct(edge0, vp0)) < 0 {
		return 0, false
	}
	edge1 := rl.Vector3Subtract(tri.V2, tri.V1)
	vp1 := rl.Vector3Subtract(p, tri.V1)
	if rl.Vector3DotProduct(tri.Normal, rl.Vector3CrossProduct(edge1, vp1)) < 0 {
		return 0, false
	}
	edge2 := rl.Vector3Subtract(tri.V0, tri.V2)
	vp2 := rl.Vector3Subtract(p, tri.V2)
	if rl.Vector3DotProduct(tri.Normal, rl.Vector3CrossProduct(edge2, vp2)) < 0 {
		return 0, false
	}
	return t, true
}

// sphereTriangleIntersect tests sphere vs triangle and returns push vector
func sphereTriangleIntersect(center rl.Vector3, radius float32, tri *Triangle) (bool, rl.Vector3) {
	closest := closestPointOnTriangle(center, tri.V0, tri.V1, tri.V2)

	diff := rl.Vector3Subtract(center, closest)
	distSq := rl.Vector3DotProduct(diff, diff)
	if distSq >= radius*radius {
		return false, rl.Vector3{}
	}

	dist := math32.Sqrt(distSq)
	if dist < 0.0001 {
		// Center is on triangle, push along normal
		return true, rl.Vector3Scale(tri.Normal, radius)
	}

	pushDir := rl.Vector3Scale(diff, 1.0/dist)
	penetration := radius - dist
	return true, rl.Vector3Scale(pushDir, penetration)
}

// closestPointOnTriangle finds the closest point on a triangle to point p
// (Ericson, Real-Time Collision Detection).
func closestPointOnTriangle(p, a, b, c rl.Vector3) rl.Vector3 {
	ab := rl.Vector3Subtract(b, a)
	ac := rl.Vector3Subtract(c, a)
	ap := rl.Vector3Subtract(p, a)

	d1 := rl.Vector3DotProduct(ab, ap)
	d2 := rl.Vector3DotProduct(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := rl.Vector3Subtract(p, b)
	d3 := rl.Vector3DotProduct(ab, bp)
	d4 := rl.Vector3DotProduct(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return rl.Vector3Add(a, rl.Vector3Scale(ab, v))
	}

	cp := rl.Vector3Subtract(p, c)
	d5 := rl.Vector3DotProduct(ab, cp)
	d6 := rl.Vector3DotProduct(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return rl.Vector3Add(a, rl.Vector3Scale(ac, w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return rl.Vector3Add(b, rl.Vector3Scale(rl.Vector3Subtract(c, b), w))
	}

	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return rl.Vector3Add(a, rl.Vector3Add(rl.Vector3Scale(ab, v), rl.Vector3Scale(ac, w)))
}

func axisValue(v rl.Vector3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func vecMin(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: math32.Min(a.X, b.X),
		Y: math32.Min(a.Y, b.Y),
		Z: math32.Min(a.Z, b.Z),
	}
}

func vecMax(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: math32.Max(a.X, b.X),
		Y: math32.Max(a.Y, b.Y),
		Z: math32.Max(a.Z, b.Z),
	}
}
