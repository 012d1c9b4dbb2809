package world

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Frustum is the six planes of a view volume, used to cull debug geometry
// before issuing draw calls.
type Frustum struct {
	planes [6]frustumPlane // left, right, bottom, top, near, far
}

// frustumPlane is ax + by + cz + d = 0 with the normal pointing inside.
type frustumPlane struct {
	normal   rl.Vector3
	distance float32
}

// ExtractFrustum pulls the planes out of the camera's view-projection
// matrix, Gribb/Hartmann style: each plane is the fourth row of the matrix
// plus or minus one of the other rows.
func ExtractFrustum(camera rl.Camera3D) Frustum {
	view := rl.GetCameraMatrix(camera)

	aspect := float32(rl.GetScreenWidth()) / float32(rl.GetScreenHeight())
	var proj rl.Matrix
	if camera.Projection == rl.CameraPerspective {
		proj = rl.MatrixPerspective(camera.Fovy*rl.Deg2rad, aspect, 0.1, 1000.0)
	} else {
		halfH := camera.Fovy / 2.0
		halfW := halfH * aspect
		proj = rl.MatrixOrtho(-halfW, halfW, -halfH, halfH, 0.1, 1000.0)
	}

	vp := rl.MatrixMultiply(view, proj)

	rows := [4][4]float32{
		{vp.M0, vp.M4, vp.M8, vp.M12},
		{vp.M1, vp.M5, vp.M9, vp.M13},
		{vp.M2, vp.M6, vp.M10, vp.M14},
		{vp.M3, vp.M7, vp.M11, vp.M15},
	}

	plane := func(sign float32, row int) frustumPlane {
		return normalizePlane(frustumPlane{
			normal: rl.Vector3{
				X: rows[3][0] + sign*rows[row][0],
				Y: rows[3][1] + sign*rows[row][1],
				Z: rows[3][2] + sign*rows[row][2],
			},
			distance: rows[3][3] + sign*rows[row][3],
		})
	}

	var f Frustum
	f.planes[0] = plane(+1, 0) // left
	f.planes[1] = plane(-1, 0) // right
	f.planes[2] = plane(+1, 1) // bottom
	f.planes[3] = plane(-1, 1) // top
	f.planes[4] = plane(+1, 2) // near
	f.planes[5] = plane(-1, 2) // far
	return f
}

func normalizePlane(p frustumPlane) frustumPlane {
	length := rl.Vector3Length(p.normal)
	if length == 0 {
		return p
	}
	return frustumPlane{
		normal:   rl.Vector3Scale(p.normal, 1.0/length),
		distance: p.distance / length,
	}
}

// ContainsSphere reports whether any part of the sphere is inside the
// frustum.
func (f *Frustum) ContainsSphere(center rl.Vector3, radius float32) bool {
	for i := 0; i < 6; i++ {
		dist := rl.Vector3DotProduct(f.planes[i].normal, center) + f.planes[i].distance
		if dist < -radius {
			return false
		}
	}
	return true
}

// ContainsBox reports whether any part of the AABB is inside the frustum.
// Per plane it tests only the corner furthest along the plane normal; if
// that corner is behind the plane the whole box is.
func (f *Frustum) ContainsBox(min, max rl.Vector3) bool {
	for i := 0; i < 6; i++ {
		n := f.planes[i].normal
		corner := min
		if n.X >= 0 {
			corner.X = max.X
		}
		if n.Y >= 0 {
			corner.Y = max.Y
		}
		if n.Z >= 0 {
			corner.Z = max.Z
		}
		if rl.Vector3DotProduct(n, corner)+f.planes[i].distance < 0 {
			return false
		}
	}
	return true
}
