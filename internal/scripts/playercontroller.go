package scripts

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"kine3d/internal/components"
	"kine3d/internal/engine"
)

// PlayerController is a first-person movement script driving a sibling
// CharacterBody: WASD on the yaw plane, mouse look, jump when on floor.
// The body does the collision work; this script only decides velocity.
type PlayerController struct {
	engine.BaseComponent
	Yaw          float32
	Pitch        float32
	MoveSpeed    float32
	LookSpeed    float32
	JumpStrength float32
	Gravity      float32
	EyeHeight    float32

	velocity rl.Vector3
	body     *components.CharacterBody
}

func (p *PlayerController) Start() {
	if p.MoveSpeed == 0 {
		p.MoveSpeed = 8.0
	}
	if p.LookSpeed == 0 {
		p.LookSpeed = 0.1
	}
	if p.JumpStrength == 0 {
		p.JumpStrength = 8.0
	}
	if p.Gravity == 0 {
		p.Gravity = 20.0
	}
	if p.EyeHeight == 0 {
		p.EyeHeight = 1.6
	}
}

func (p *PlayerController) Update(deltaTime float32) {
	g := p.GetGameObject()
	if g == nil {
		return
	}
	if p.body == nil {
		p.body = engine.GetComponent[*components.CharacterBody](g)
		if p.body == nil {
			return
		}
	}

	// Mouse look only while the cursor is captured so the overlay stays usable
	if rl.IsCursorHidden() {
		mouseDelta := rl.GetMouseDelta()
		p.Yaw += mouseDelta.X * p.LookSpeed
		p.Pitch -= mouseDelta.Y * p.LookSpeed
		if p.Pitch > 89 {
			p.Pitch = 89
		}
		if p.Pitch < -89 {
			p.Pitch = -89
		}
	}

	forward, right := p.yawPlane()
	var wish rl.Vector3
	if rl.IsKeyDown(rl.KeyW) {
		wish = rl.Vector3Add(wish, forward)
	}
	if rl.IsKeyDown(rl.KeyS) {
		wish = rl.Vector3Subtract(wish, forward)
	}
	if rl.IsKeyDown(rl.KeyA) {
		wish = rl.Vector3Add(wish, right)
	}
	if rl.IsKeyDown(rl.KeyD) {
		wish = rl.Vector3Subtract(wish, right)
	}
	if rl.Vector3Length(wish) > 0 {
		wish = rl.Vector3Normalize(wish)
	}

	p.velocity.X = wish.X * p.MoveSpeed
	p.velocity.Z = wish.Z * p.MoveSpeed

	if p.body.IsOnFloor() {
		if rl.IsKeyPressed(rl.KeySpace) {
			p.velocity.Y = p.JumpStrength
		}
	} else {
		p.velocity.Y -= p.Gravity * deltaTime
	}

	p.velocity = p.body.MoveAndSlide(p.velocity, deltaTime)
}

func (p *PlayerController) yawPlane() (forward, right rl.Vector3) {
	yawRad := p.Yaw * math32.Pi / 180
	forward = rl.Vector3{X: math32.Cos(yawRad), Z: math32.Sin(yawRad)}
	right = rl.Vector3{X: math32.Sin(yawRad), Z: -math32.Cos(yawRad)}
	return
}

// GetLookDirection implements engine.LookProvider
func (p *PlayerController) GetLookDirection() (x, y, z float32) {
	yawRad := p.Yaw * math32.Pi / 180
	pitchRad := p.Pitch * math32.Pi / 180
	return math32.Cos(yawRad) * math32.Cos(pitchRad),
		math32.Sin(pitchRad),
		math32.Sin(yawRad) * math32.Cos(pitchRad)
}

// GetEyeHeight implements engine.LookProvider
func (p *PlayerController) GetEyeHeight() float32 {
	return p.EyeHeight
}

func (p *PlayerController) Velocity() rl.Vector3 {
	return p.velocity
}

func init() {
	engine.RegisterScript("PlayerController", playerControllerFactory, playerControllerSerializer)
}

func playerControllerFactory(props map[string]any) engine.Component {
	getFloat := func(key string, fallback float32) float32 {
		if v, ok := props[key].(float64); ok {
			return float32(v)
		}
		return fallback
	}
	return &PlayerController{
		Yaw:          getFloat("yaw", 0),
		Pitch:        getFloat("pitch", 0),
		MoveSpeed:    getFloat("moveSpeed", 8),
		LookSpeed:    getFloat("lookSpeed", 0.1),
		JumpStrength: getFloat("jumpStrength", 8),
		Gravity:      getFloat("gravity", 20),
		EyeHeight:    getFloat("eyeHeight", 1.6),
	}
}

func playerControllerSerializer(c engine.Component) map[string]any {
	p, ok := c.(*PlayerController)
	if !ok {
		return nil
	}
	return map[string]any{
		"yaw":          p.Yaw,
		"pitch":        p.Pitch,
		"moveSpeed":    p.MoveSpeed,
		"lookSpeed":    p.LookSpeed,
		"jumpStrength": p.JumpStrength,
		"gravity":      p.Gravity,
		"eyeHeight":    p.EyeHeight,
	}
}
