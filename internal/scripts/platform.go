package scripts

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"kine3d/internal/components"
	"kine3d/internal/engine"
)

// Platform sweeps an object back and forth between its start position
// and start+Offset. When a StaticBody shares the object it is re-anchored
// every frame so bodies and rays keep colliding with the moved geometry.
type Platform struct {
	engine.BaseComponent
	Offset rl.Vector3
	Period float32 // seconds for a full out-and-back cycle
	Phase  float32

	origin  rl.Vector3
	elapsed float32
	static  *components.StaticBody
}

func (p *Platform) Start() {
	if p.Period == 0 {
		p.Period = 6
	}
	if g := p.GetGameObject(); g != nil {
		p.origin = g.Transform.Position
		p.static = engine.GetComponent[*components.StaticBody](g)
	}
}

func (p *Platform) Update(deltaTime float32) {
	g := p.GetGameObject()
	if g == nil {
		return
	}
	p.elapsed += deltaTime
	// Cosine form so the platform starts at rest on its origin
	t := (1 - math32.Cos(2*math32.Pi*p.elapsed/p.Period+p.Phase)) * 0.5
	g.Transform.Position = rl.Vector3Add(p.origin, rl.Vector3Scale(p.Offset, t))

	if p.static == nil {
		p.static = engine.GetComponent[*components.StaticBody](g)
	}
	if p.static != nil {
		p.static.PushTransform()
	}
}

func init() {
	engine.RegisterScript("Platform", platformFactory, platformSerializer)
}

func platformFactory(props map[string]any) engine.Component {
	getFloat := func(key string, fallback float32) float32 {
		if v, ok := props[key].(float64); ok {
			return float32(v)
		}
		return fallback
	}
	offset := rl.Vector3{}
	if raw, ok := props["offset"].([]any); ok && len(raw) == 3 {
		x, xok := raw[0].(float64)
		y, yok := raw[1].(float64)
		z, zok := raw[2].(float64)
		if xok && yok && zok {
			offset = rl.Vector3{X: float32(x), Y: float32(y), Z: float32(z)}
		}
	}
	return &Platform{
		Offset: offset,
		Period: getFloat("period", 6),
		Phase:  getFloat("phase", 0),
	}
}

func platformSerializer(c engine.Component) map[string]any {
	p, ok := c.(*Platform)
	if !ok {
		return nil
	}
	return map[string]any{
		"offset": [3]float32{p.Offset.X, p.Offset.Y, p.Offset.Z},
		"period": p.Period,
		"phase":  p.Phase,
	}
}
