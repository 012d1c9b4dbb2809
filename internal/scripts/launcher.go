package scripts

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"kine3d/internal/components"
	"kine3d/internal/engine"
)

// Launcher is a jump pad: any rigid body entering the sibling TriggerArea
// gets an impulse along Direction. Sleeping bodies wake on the impulse.
type Launcher struct {
	engine.BaseComponent
	Strength  float32
	Direction rl.Vector3

	wired bool
}

func (l *Launcher) Start() {
	if l.Strength == 0 {
		l.Strength = 15
	}
	if rl.Vector3Length(l.Direction) < 0.0001 {
		l.Direction = rl.Vector3{Y: 1}
	}
	l.wire()
}

func (l *Launcher) Update(deltaTime float32) {
	if !l.wired {
		l.wire()
	}
}

func (l *Launcher) wire() {
	g := l.GetGameObject()
	if g == nil {
		return
	}
	area := engine.GetComponent[*components.TriggerArea](g)
	if area == nil {
		return
	}
	area.BodyEntered.AddListener(l.onBody)
	l.wired = true
}

func (l *Launcher) onBody(other *engine.GameObject) {
	if other == nil {
		return
	}
	rb := engine.GetComponent[*components.RigidBody](other)
	if rb == nil {
		return
	}
	dir := rl.Vector3Normalize(l.Direction)
	rb.ApplyImpulse(rl.Vector3Scale(dir, l.Strength))
}

func init() {
	engine.RegisterScript("Launcher", launcherFactory, launcherSerializer)
}

func launcherFactory(props map[string]any) engine.Component {
	getFloat := func(key string, fallback float32) float32 {
		if v, ok := props[key].(float64); ok {
			return float32(v)
		}
		return fallback
	}
	dir := rl.Vector3{Y: 1}
	if raw, ok := props["direction"].([]any); ok && len(raw) == 3 {
		x, xok := raw[0].(float64)
		y, yok := raw[1].(float64)
		z, zok := raw[2].(float64)
		if xok && yok && zok {
			dir = rl.Vector3{X: float32(x), Y: float32(y), Z: float32(z)}
		}
	}
	return &Launcher{
		Strength:  getFloat("strength", 15),
		Direction: dir,
	}
}

func launcherSerializer(c engine.Component) map[string]any {
	l, ok := c.(*Launcher)
	if !ok {
		return nil
	}
	return map[string]any{
		"strength":  l.Strength,
		"direction": [3]float32{l.Direction.X, l.Direction.Y, l.Direction.Z},
	}
}
