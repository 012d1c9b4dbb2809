package scripts

import (
	"log"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"kine3d/internal/components"
	"kine3d/internal/engine"
)

// Collectible turns an object with a TriggerArea into a pickup: it spins
// and bobs in place, and despawns when something with the target tag
// walks through. Collected fires before the object is destroyed.
type Collectible struct {
	engine.BaseComponent
	Points    float32
	TargetTag string
	SpinSpeed float32 // degrees per second
	BobHeight float32

	Collected engine.EventWithArg[*engine.GameObject]

	origin    rl.Vector3
	elapsed   float32
	collected bool
	wired     bool
}

func (c *Collectible) Start() {
	if c.Points == 0 {
		c.Points = 10
	}
	if c.TargetTag == "" {
		c.TargetTag = "player"
	}
	if g := c.GetGameObject(); g != nil {
		c.origin = g.Transform.Position
	}
	c.wire()
}

func (c *Collectible) Update(deltaTime float32) {
	if !c.wired {
		c.wire()
	}
	g := c.GetGameObject()
	if g == nil || c.collected {
		return
	}
	c.elapsed += deltaTime
	g.Transform.Rotation.Y += c.SpinSpeed * deltaTime
	if g.Transform.Rotation.Y > 360 {
		g.Transform.Rotation.Y -= 360
	}
	if c.BobHeight > 0 {
		g.Transform.Position.Y = c.origin.Y + c.BobHeight*math32.Sin(2*c.elapsed)
	}
}

// wire retries until the sibling TriggerArea exists; scenes may attach
// components in any order.
func (c *Collectible) wire() {
	g := c.GetGameObject()
	if g == nil {
		return
	}
	area := engine.GetComponent[*components.TriggerArea](g)
	if area == nil {
		return
	}
	area.BodyEntered.AddListener(c.onBody)
	c.wired = true
}

func (c *Collectible) onBody(other *engine.GameObject) {
	if c.collected || other == nil || !other.HasTag(c.TargetTag) {
		return
	}
	c.collected = true
	g := c.GetGameObject()
	if g == nil {
		return
	}
	log.Printf("Pickup: %s collected %s (+%.0f)", other.Name, g.Name, c.Points)
	c.Collected.Invoke(other)
	if g.Scene != nil && g.Scene.World != nil {
		g.Scene.World.Destroy(g)
	}
}

func init() {
	engine.RegisterScript("Collectible", collectibleFactory, collectibleSerializer)
}

func collectibleFactory(props map[string]any) engine.Component {
	getFloat := func(key string, fallback float32) float32 {
		if v, ok := props[key].(float64); ok {
			return float32(v)
		}
		return fallback
	}
	tag := "player"
	if v, ok := props["targetTag"].(string); ok && v != "" {
		tag = v
	}
	return &Collectible{
		Points:    getFloat("points", 10),
		TargetTag: tag,
		SpinSpeed: getFloat("spinSpeed", 90),
		BobHeight: getFloat("bobHeight", 0.25),
	}
}

func collectibleSerializer(c engine.Component) map[string]any {
	col, ok := c.(*Collectible)
	if !ok {
		return nil
	}
	return map[string]any{
		"points":    col.Points,
		"targetTag": col.TargetTag,
		"spinSpeed": col.SpinSpeed,
		"bobHeight": col.BobHeight,
	}
}
