package components

import (
	"github.com/chewxy/math32"

	"kine3d/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("DirectionalLight", func() engine.Serializable {
		return NewDirectionalLight()
	})
}

// DirectionalLight drives the sandbox renderer's sun: one direction, one
// color, one orthographic shadow camera. The renderer picks up whichever
// light the scene loads last.
type DirectionalLight struct {
	engine.BaseComponent
	Direction      rl.Vector3
	Color          rl.Color
	Intensity      float32
	AmbientColor   rl.Color
	ShadowDistance float32
}

func NewDirectionalLight() *DirectionalLight {
	return &DirectionalLight{
		Direction:      rl.Vector3Normalize(rl.Vector3{X: 0.35, Y: -1.0, Z: -0.35}),
		Color:          rl.White,
		Intensity:      1.0,
		AmbientColor:   rl.NewColor(25, 25, 25, 255),
		ShadowDistance: 50.0,
	}
}

// TypeName implements engine.Serializable
func (l *DirectionalLight) TypeName() string {
	return "DirectionalLight"
}

// Serialize implements engine.Serializable
func (l *DirectionalLight) Serialize() map[string]any {
	return map[string]any{
		"type":      "DirectionalLight",
		"direction": [3]float32{l.Direction.X, l.Direction.Y, l.Direction.Z},
		"intensity": l.Intensity,
	}
}

// Deserialize implements engine.Serializable
func (l *DirectionalLight) Deserialize(data map[string]any) {
	if raw, ok := data["direction"].([]any); ok && len(raw) == 3 {
		var dir rl.Vector3
		x, okX := raw[0].(float64)
		y, okY := raw[1].(float64)
		z, okZ := raw[2].(float64)
		if okX && okY && okZ {
			dir = rl.Vector3{X: float32(x), Y: float32(y), Z: float32(z)}
			if rl.Vector3Length(dir) > 0 {
				l.Direction = rl.Vector3Normalize(dir)
			}
		}
	}
	if i, ok := data["intensity"].(float64); ok {
		l.Intensity = float32(i)
	}
}

// GetLightCamera returns the orthographic camera the shadow pass renders
// from, sized to cover orthoSize world units.
func (l *DirectionalLight) GetLightCamera(orthoSize float32) rl.Camera3D {
	return rl.Camera3D{
		Position:   rl.Vector3Scale(l.Direction, -l.ShadowDistance),
		Target:     rl.Vector3Zero(),
		Up:         l.lightCameraUp(),
		Fovy:       orthoSize,
		Projection: rl.CameraOrthographic,
	}
}

func (l *DirectionalLight) MoveLightDir(dx, dy, dz float32) {
	l.Direction.X += dx
	l.Direction.Y += dy
	l.Direction.Z += dz
	l.Direction = rl.Vector3Normalize(l.Direction)
}

func (l *DirectionalLight) GetColorFloat() []float32 {
	return []float32{
		float32(l.Color.R) / 255.0 * l.Intensity,
		float32(l.Color.G) / 255.0 * l.Intensity,
		float32(l.Color.B) / 255.0 * l.Intensity,
		1.0,
	}
}

func (l *DirectionalLight) GetAmbientFloat() []float32 {
	return []float32{
		float32(l.AmbientColor.R) / 255.0,
		float32(l.AmbientColor.G) / 255.0,
		float32(l.AmbientColor.B) / 255.0,
		1.0,
	}
}

// Near-vertical light needs a different up vector to keep the view defined.
func (l *DirectionalLight) lightCameraUp() rl.Vector3 {
	if math32.Abs(l.Direction.Y) > 0.9 {
		return rl.Vector3{X: 0, Y: 0, Z: 1}
	}
	return rl.Vector3{X: 0, Y: 1, Z: 0}
}
