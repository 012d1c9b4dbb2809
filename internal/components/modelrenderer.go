package components

import (
	"fmt"
	"unsafe"

	"kine3d/internal/engine"
	"kine3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("ModelRenderer", func() engine.Serializable {
		return &ModelRenderer{Color: rl.White}
	})
}

// ModelRenderer draws a raylib model at the node transform. It is also
// the geometry source for collision shape inference: bodies without an
// explicit shape read their extents and triangles from here.
type ModelRenderer struct {
	engine.BaseComponent
	Model    rl.Model
	Color    rl.Color
	MeshType string    // "cube", "plane" or "sphere" for procedural meshes
	MeshSize []float32 // dimensions matching MeshType
	FilePath string    // set when the model was loaded from disk
	shader   rl.Shader
	loaded   bool
}

func NewModelRenderer(model rl.Model, color rl.Color) *ModelRenderer {
	return &ModelRenderer{
		Model:  model,
		Color:  color,
		loaded: true,
	}
}

func NewModelRendererFromFile(path string, color rl.Color) *ModelRenderer {
	return &ModelRenderer{
		Model:    rl.LoadModel(path),
		Color:    color,
		FilePath: path,
		loaded:   true,
	}
}

func NewCubeRenderer(size rl.Vector3, color rl.Color) *ModelRenderer {
	m := NewModelRenderer(rl.LoadModelFromMesh(rl.GenMeshCube(size.X, size.Y, size.Z)), color)
	m.MeshType = "cube"
	m.MeshSize = []float32{size.X, size.Y, size.Z}
	return m
}

func NewPlaneRenderer(width, length float32, color rl.Color) *ModelRenderer {
	m := NewModelRenderer(rl.LoadModelFromMesh(rl.GenMeshPlane(width, length, 1, 1)), color)
	m.MeshType = "plane"
	m.MeshSize = []float32{width, length}
	return m
}

func NewSphereRenderer(radius float32, color rl.Color) *ModelRenderer {
	m := NewModelRenderer(rl.LoadModelFromMesh(rl.GenMeshSphere(radius, 16, 16)), color)
	m.MeshType = "sphere"
	m.MeshSize = []float32{radius}
	return m
}

func (m *ModelRenderer) SetShader(shader rl.Shader) {
	m.shader = shader
	m.Model.Materials.Shader = shader
	m.Model.Materials.Maps.Color = m.Color
}

func (m *ModelRenderer) Draw() {
	g := m.GetGameObject()
	if g == nil || !g.Active || !m.loaded {
		return
	}

	// Build scale matrix
	scale := g.WorldScale()
	scaleMatrix := rl.MatrixScale(scale.X, scale.Y, scale.Z)

	// Build rotation matrix from Euler angles
	rot := g.WorldRotation()
	rotX := rl.MatrixRotateX(rot.X * rl.Deg2rad)
	rotY := rl.MatrixRotateY(rot.Y * rl.Deg2rad)
	rotZ := rl.MatrixRotateZ(rot.Z * rl.Deg2rad)
	rotMatrix := rl.MatrixMultiply(rl.MatrixMultiply(rotX, rotY), rotZ)

	// Build translation matrix
	pos := g.WorldPosition()
	transMatrix := rl.MatrixTranslate(pos.X, pos.Y, pos.Z)

	// Combine: scale -> rotate -> translate
	m.Model.Transform = rl.MatrixMultiply(rl.MatrixMultiply(scaleMatrix, rotMatrix), transMatrix)

	rl.DrawModel(m.Model, rl.Vector3Zero(), 1.0, rl.White)
}

// localTransform bakes world scale and rotation, no translation, so the
// extracted geometry stays relative to the node origin.
func (m *ModelRenderer) localTransform() rl.Matrix {
	g := m.GetGameObject()
	if g == nil {
		return rl.MatrixIdentity()
	}
	scale := g.WorldScale()
	scaleMatrix := rl.MatrixScale(scale.X, scale.Y, scale.Z)
	rot := g.WorldRotation()
	rotX := rl.MatrixRotateX(rot.X * rl.Deg2rad)
	rotY := rl.MatrixRotateY(rot.Y * rl.Deg2rad)
	rotZ := rl.MatrixRotateZ(rot.Z * rl.Deg2rad)
	rotMatrix := rl.MatrixMultiply(rl.MatrixMultiply(rotX, rotY), rotZ)
	return rl.MatrixMultiply(scaleMatrix, rotMatrix)
}

// GeometryTriangles implements GeometryProvider: every triangle of every
// mesh, transformed to node-local space.
func (m *ModelRenderer) GeometryTriangles() ([]physics.Triangle, bool) {
	if !m.loaded || m.Model.MeshCount == 0 {
		return nil, false
	}
	transform := m.localTransform()

	var triangles []physics.Triangle
	meshes := unsafe.Slice(m.Model.Meshes, m.Model.MeshCount)
	for _, mesh := range meshes {
		if mesh.Vertices == nil || mesh.VertexCount == 0 {
			continue
		}
		vertices := unsafe.Slice(mesh.Vertices, mesh.VertexCount*3)

		if mesh.Indices != nil {
			// Indexed mesh
			indices := unsafe.Slice(mesh.Indices, mesh.TriangleCount*3)
			for i := int32(0); i < mesh.TriangleCount; i++ {
				i0 := indices[i*3+0]
				i1 := indices[i*3+1]
				i2 := indices[i*3+2]

				v0 := rl.Vector3{X: vertices[i0*3+0], Y: vertices[i0*3+1], Z: vertices[i0*3+2]}
				v1 := rl.Vector3{X: vertices[i1*3+0], Y: vertices[i1*3+1], Z: vertices[i1*3+2]}
				v2 := rl.Vector3{X: vertices[i2*3+0], Y: vertices[i2*3+1], Z: vertices[i2*3+2]}

				v0 = rl.Vector3Transform(v0, transform)
				v1 = rl.Vector3Transform(v1, transform)
				v2 = rl.Vector3Transform(v2, transform)

				triangles = append(triangles, physics.NewTriangle(v0, v1, v2))
			}
		} else {
			// Non-indexed mesh (every 3 vertices = 1 triangle)
			triCount := mesh.VertexCount / 3
			for i := int32(0); i < triCount; i++ {
				v0 := rl.Vector3{X: vertices[i*9+0], Y: vertices[i*9+1], Z: vertices[i*9+2]}
				v1 := rl.Vector3{X: vertices[i*9+3], Y: vertices[i*9+4], Z: vertices[i*9+5]}
				v2 := rl.Vector3{X: vertices[i*9+6], Y: vertices[i*9+7], Z: vertices[i*9+8]}

				v0 = rl.Vector3Transform(v0, transform)
				v1 = rl.Vector3Transform(v1, transform)
				v2 = rl.Vector3Transform(v2, transform)

				triangles = append(triangles, physics.NewTriangle(v0, v1, v2))
			}
		}
	}

	return triangles, len(triangles) > 0
}

// GeometryBounds implements GeometryProvider: the node-local AABB of the
// transformed geometry.
func (m *ModelRenderer) GeometryBounds() (rl.BoundingBox, bool) {
	triangles, ok := m.GeometryTriangles()
	if !ok {
		return rl.BoundingBox{}, false
	}
	box := rl.BoundingBox{Min: triangles[0].V0, Max: triangles[0].V0}
	for _, tri := range triangles {
		for _, v := range [3]rl.Vector3{tri.V0, tri.V1, tri.V2} {
			box.Min = rl.Vector3Min(box.Min, v)
			box.Max = rl.Vector3Max(box.Max, v)
		}
	}
	return box, true
}

// GeometryVertexCount implements GeometryProvider.
func (m *ModelRenderer) GeometryVertexCount() int {
	if !m.loaded || m.Model.MeshCount == 0 {
		return 0
	}
	total := 0
	meshes := unsafe.Slice(m.Model.Meshes, m.Model.MeshCount)
	for _, mesh := range meshes {
		total += int(mesh.VertexCount)
	}
	return total
}

func (m *ModelRenderer) Unload() {
	if m.loaded {
		rl.UnloadModel(m.Model)
		m.loaded = false
	}
}

func (m *ModelRenderer) OnDestroy() {
	m.Unload()
}

// TypeName implements engine.Serializable
func (m *ModelRenderer) TypeName() string {
	return "ModelRenderer"
}

// Serialize implements engine.Serializable
func (m *ModelRenderer) Serialize() map[string]any {
	data := map[string]any{
		"type":  "ModelRenderer",
		"color": ColorName(m.Color),
	}
	if m.FilePath != "" {
		data["model"] = m.FilePath
	} else {
		data["mesh"] = m.MeshType
		data["meshSize"] = m.MeshSize
	}
	return data
}

// Deserialize implements engine.Serializable
func (m *ModelRenderer) Deserialize(data map[string]any) {
	if name, ok := data["color"].(string); ok {
		m.Color = ColorByName(name)
	}
	if path, ok := data["model"].(string); ok && path != "" {
		m.FilePath = path
		m.Model = rl.LoadModel(path)
		m.loaded = true
		return
	}
	meshType, _ := data["mesh"].(string)
	var size []float32
	if raw, ok := data["meshSize"].([]any); ok {
		for _, v := range raw {
			if f, isFloat := v.(float64); isFloat {
				size = append(size, float32(f))
			}
		}
	}
	m.buildMesh(meshType, size)
}

func (m *ModelRenderer) buildMesh(meshType string, size []float32) {
	switch meshType {
	case "cube":
		if len(size) >= 3 {
			m.Model = rl.LoadModelFromMesh(rl.GenMeshCube(size[0], size[1], size[2]))
			m.loaded = true
		}
	case "plane":
		if len(size) >= 2 {
			m.Model = rl.LoadModelFromMesh(rl.GenMeshPlane(size[0], size[1], 1, 1))
			m.loaded = true
		}
	case "sphere":
		if len(size) >= 1 {
			m.Model = rl.LoadModelFromMesh(rl.GenMeshSphere(size[0], 16, 16))
			m.loaded = true
		}
	}
	if m.loaded {
		m.MeshType = meshType
		m.MeshSize = size
	}
}

var colorByName = map[string]rl.Color{
	"Red":       rl.Red,
	"Blue":      rl.Blue,
	"Green":     rl.Green,
	"Purple":    rl.Purple,
	"Orange":    rl.Orange,
	"Yellow":    rl.Yellow,
	"Pink":      rl.Pink,
	"SkyBlue":   rl.SkyBlue,
	"Lime":      rl.Lime,
	"Magenta":   rl.Magenta,
	"White":     rl.White,
	"LightGray": rl.LightGray,
	"Gray":      rl.Gray,
	"DarkGray":  rl.DarkGray,
	"Black":     rl.Black,
	"Brown":     rl.Brown,
	"Beige":     rl.Beige,
	"Maroon":    rl.Maroon,
	"Gold":      rl.Gold,
}

var nameByColor map[rl.Color]string

func init() {
	nameByColor = make(map[rl.Color]string, len(colorByName))
	for name, c := range colorByName {
		nameByColor[c] = name
	}
}

// ColorByName resolves a palette name or a "#rrggbbaa" literal; unknown
// names come back white.
func ColorByName(name string) rl.Color {
	if c, ok := colorByName[name]; ok {
		return c
	}
	var r, g, b, a uint8
	if n, err := fmt.Sscanf(name, "#%02x%02x%02x%02x", &r, &g, &b, &a); err == nil && n == 4 {
		return rl.Color{R: r, G: g, B: b, A: a}
	}
	return rl.White
}

// ColorName returns the palette name, or a "#rrggbbaa" literal for
// colors outside the palette.
func ColorName(c rl.Color) string {
	if name, ok := nameByColor[c]; ok {
		return name
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
