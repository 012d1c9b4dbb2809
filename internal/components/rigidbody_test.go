package components

import (
	"testing"

	"kine3d/internal/engine"
	"kine3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestRigidBodyFallsUnderGravity(t *testing.T) {
	scene, w := newTestScene()
	g := engine.NewGameObject("ball")
	g.Transform.Position = rl.Vector3{Y: 10}
	rb := NewRigidBody()
	g.AddComponent(rb)
	scene.AddGameObject(g)
	scene.Start()

	dt := float32(1.0 / 60.0)
	for i := 0; i < 10; i++ {
		w.backend.Step(dt)
		scene.Update(dt)
	}

	if g.Transform.Position.Y >= 10 {
		t.Errorf("Expected gravity to pull the node down, got y=%f", g.Transform.Position.Y)
	}
	if rb.Body().Velocity.Y >= 0 {
		t.Errorf("Expected downward velocity, got %f", rb.Body().Velocity.Y)
	}
}

func TestRigidBodyImpulseWakesAndMoves(t *testing.T) {
	scene, w := newTestScene()
	w.backend.SetGravity(rl.Vector3{})
	g := engine.NewGameObject("crate")
	rb := NewRigidBody()
	g.AddComponent(rb)
	scene.AddGameObject(g)
	scene.Start()

	rb.Sleep()
	if !rb.IsSleeping() {
		t.Fatalf("Expected body asleep")
	}

	rb.ApplyImpulse(rl.Vector3{X: 2})
	if rb.IsSleeping() {
		t.Errorf("Expected impulse to wake the body")
	}

	dt := float32(1.0 / 60.0)
	w.backend.Step(dt)
	scene.Update(dt)

	if g.Transform.Position.X <= 0 {
		t.Errorf("Expected impulse to move the node, got x=%f", g.Transform.Position.X)
	}
}

func TestRigidBodyDeserializeConfig(t *testing.T) {
	rb := NewRigidBody()
	rb.Deserialize(map[string]any{
		"mass":         5.0,
		"gravityScale": 0.5,
		"material":     "ice",
		"canSleep":     false,
	})

	if rb.Mass != 5 {
		t.Errorf("Expected mass 5, got %f", rb.Mass)
	}
	if rb.GravityScale != 0.5 {
		t.Errorf("Expected gravity scale 0.5, got %f", rb.GravityScale)
	}
	if rb.Material != "ice" {
		t.Errorf("Expected material ice, got %s", rb.Material)
	}
	if rb.CanSleep {
		t.Errorf("Expected sleeping disabled")
	}
}

func TestStaticBodyTracksNode(t *testing.T) {
	scene, _ := newTestScene()
	g := engine.NewGameObject("floor")
	g.Transform.Position = rl.Vector3{Y: -1}
	sb := NewStaticBody()
	shape := NewBoxShape(rl.Vector3{X: 10, Y: 1, Z: 10})
	g.AddComponent(sb)
	g.AddComponent(shape)
	scene.AddGameObject(g)
	scene.Start()

	body := sb.Body()
	if body == nil {
		t.Fatal("Expected backend body after Start")
	}
	if body.Mode != physics.ModeStatic {
		t.Errorf("Expected static mode, got %v", body.Mode)
	}
	if body.Position != (rl.Vector3{Y: -1}) {
		t.Errorf("Expected body at node position, got %v", body.Position)
	}
	if body.Shape != shape.ShapeHandle() {
		t.Errorf("Expected body to simulate the attached shape")
	}

	g.Transform.Position = rl.Vector3{X: 5, Y: -1}
	sb.PushTransform()
	if body.Position != (rl.Vector3{X: 5, Y: -1}) {
		t.Errorf("Expected PushTransform to move the body, got %v", body.Position)
	}
}
