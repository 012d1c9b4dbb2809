package components

import (
	"testing"

	"kine3d/internal/engine"
	"kine3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func addShapeNode(scene *engine.Scene, name string, pos, size rl.Vector3) (*engine.GameObject, *CollisionShape) {
	g := engine.NewGameObject(name)
	g.Transform.Position = pos
	shape := NewBoxShape(size)
	g.AddComponent(shape)
	scene.AddGameObject(g)
	return g, shape
}

func TestCollisionShapeOverlapLifecycle(t *testing.T) {
	scene, w := newTestScene()
	ga, sa := addShapeNode(scene, "a", rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	_, sb := addShapeNode(scene, "b", rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})

	enters := 0
	sa.Entered.AddListener(func(other *CollisionShape) {
		enters++
		if other != sb {
			t.Errorf("Expected the other shape in the enter signal")
		}
	})

	scene.Start()
	scene.Update(1.0 / 60.0)
	w.registry.Flush()

	if !sa.IsColliding() || !sb.IsColliding() {
		t.Fatalf("Expected both shapes colliding, got %v and %v", sa.IsColliding(), sb.IsColliding())
	}
	if enters != 1 {
		t.Errorf("Expected 1 enter, got %d", enters)
	}
	if got := sa.CurrentCollisions(); len(got) != 1 || got[0] != sb {
		t.Errorf("Expected exactly the other shape in current collisions, got %d", len(got))
	}

	// Staying overlapped must not refire the signal
	scene.Update(1.0 / 60.0)
	w.registry.Flush()
	if enters != 1 {
		t.Errorf("Expected no enter on stay, got %d", enters)
	}

	exits := 0
	sa.Exited.AddListener(func(other *CollisionShape) { exits++ })
	ga.Transform.Position = rl.Vector3{X: 50}
	scene.Update(1.0 / 60.0)
	w.registry.Flush()

	if sa.IsColliding() || sb.IsColliding() {
		t.Errorf("Expected overlap to end after separation")
	}
	if exits != 1 {
		t.Errorf("Expected 1 exit, got %d", exits)
	}
}

func TestCollisionShapeDisableDropsPairs(t *testing.T) {
	scene, w := newTestScene()
	_, sa := addShapeNode(scene, "a", rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	_, sb := addShapeNode(scene, "b", rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})

	scene.Start()
	scene.Update(1.0 / 60.0)
	w.registry.Flush()
	if !sa.IsColliding() {
		t.Fatalf("Expected overlap before disabling")
	}

	sa.SetEnabled(false)
	w.registry.Flush()

	if sa.IsColliding() || sb.IsColliding() {
		t.Errorf("Expected disabled shape to drop its pairs")
	}
}

func TestCollisionShapeLayerMaskFilters(t *testing.T) {
	scene, w := newTestScene()
	_, sa := addShapeNode(scene, "a", rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	_, sb := addShapeNode(scene, "b", rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	sa.Layer = 1
	sa.Mask = 2
	sb.Layer = 4
	sb.Mask = 8

	scene.Start()
	scene.Update(1.0 / 60.0)
	w.registry.Flush()

	// Neither mask matches the other's layer, so no pair forms
	if sa.IsColliding() || sb.IsColliding() {
		t.Errorf("Expected disjoint masks to suppress the pair")
	}

	sb.Mask = 1
	scene.Update(1.0 / 60.0)
	w.registry.Flush()
	if !sa.IsColliding() || !sb.IsColliding() {
		t.Errorf("Expected one-way interest to form the pair")
	}
}

func TestCollisionShapeDestroyDeliversExit(t *testing.T) {
	scene, w := newTestScene()
	ga, _ := addShapeNode(scene, "a", rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	_, sb := addShapeNode(scene, "b", rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})

	scene.Start()
	scene.Update(1.0 / 60.0)
	w.registry.Flush()
	if !sb.IsColliding() {
		t.Fatalf("Expected overlap before removal")
	}

	exits := 0
	sb.Exited.AddListener(func(*CollisionShape) { exits++ })
	scene.RemoveGameObject(ga)

	if w.registry.Count() != 1 {
		t.Errorf("Expected 1 collider after removal, got %d", w.registry.Count())
	}

	w.registry.Flush()
	if exits != 1 {
		t.Errorf("Expected exit delivered after removal, got %d", exits)
	}
	if sb.IsColliding() {
		t.Errorf("Expected survivor to report no overlap")
	}
}

func TestCollisionShapeAttachesToBody(t *testing.T) {
	scene, _ := newTestScene()
	g := engine.NewGameObject("crate")
	rb := NewRigidBody()
	shape := NewBoxShape(rl.Vector3{X: 2, Y: 2, Z: 2})
	g.AddComponent(rb)
	g.AddComponent(shape)
	scene.AddGameObject(g)

	scene.Start()

	if rb.Body() == nil {
		t.Fatal("Expected backend body after Start")
	}
	if rb.Body().Shape != shape.ShapeHandle() {
		t.Errorf("Expected body to simulate the attached shape")
	}
}

func TestCollisionShapeReattachMovesOwnership(t *testing.T) {
	scene, _ := newTestScene()
	g1 := engine.NewGameObject("first")
	rb := NewRigidBody()
	shape := NewBoxShape(rl.Vector3{X: 1, Y: 1, Z: 1})
	g1.AddComponent(rb)
	g1.AddComponent(shape)
	scene.AddGameObject(g1)

	g2 := engine.NewGameObject("second")
	sb := NewStaticBody()
	g2.AddComponent(sb)
	scene.AddGameObject(g2)

	scene.Start()

	sb.AttachShape(shape)

	if rb.attached != nil {
		t.Errorf("Expected first body to release the shape")
	}
	if sb.attached != shape {
		t.Errorf("Expected second body to hold the shape")
	}
	if rb.Body().Shape == shape.ShapeHandle() {
		t.Errorf("Expected first body to stop simulating the moved shape")
	}
	if sb.Body().Shape != shape.ShapeHandle() {
		t.Errorf("Expected second body to simulate the moved shape")
	}
}

func TestCollisionShapeDeserializeFromSceneData(t *testing.T) {
	data := map[string]any{
		"kind":    "Box",
		"size":    []any{2.0, 3.0, 4.0},
		"offset":  []any{0.0, 1.0, 0.0},
		"layer":   4.0,
		"mask":    6.0,
		"enabled": false,
	}

	shape := NewCollisionShape(physics.ShapeBox, physics.ShapeParams{})
	shape.Deserialize(data)

	want := rl.Vector3{X: 2, Y: 3, Z: 4}
	if shape.Params.Size != want {
		t.Errorf("Expected size %v, got %v", want, shape.Params.Size)
	}
	if shape.Offset.Y != 1 {
		t.Errorf("Expected offset y 1, got %f", shape.Offset.Y)
	}
	if shape.Layer != 4 || shape.Mask != 6 {
		t.Errorf("Expected layer 4 mask 6, got %d and %d", shape.Layer, shape.Mask)
	}
	if shape.Enabled {
		t.Errorf("Expected shape disabled")
	}
}

func TestCollisionShapeSerializeKind(t *testing.T) {
	shape := NewSphereShape(1.5)
	shape.Offset = rl.Vector3{Y: 2}

	data := shape.Serialize()
	if data["type"] != "CollisionShape" {
		t.Errorf("Expected type CollisionShape, got %v", data["type"])
	}
	if data["kind"] != "Sphere" {
		t.Errorf("Expected kind Sphere, got %v", data["kind"])
	}
	if data["radius"] != float32(1.5) {
		t.Errorf("Expected radius 1.5, got %v", data["radius"])
	}
}

func TestCollisionShapeDefaultFiltersSurviveUpdates(t *testing.T) {
	scene, w := newTestScene()
	_, sa := addShapeNode(scene, "a", rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	_, sb := addShapeNode(scene, "b", rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})

	exits := 0
	sa.Exited.AddListener(func(*CollisionShape) { exits++ })

	// The per-frame field sync must not strip the defaulted filters the
	// registry applied at registration
	scene.Start()
	for i := 0; i < 4; i++ {
		scene.Update(1.0 / 60.0)
		w.registry.Flush()
	}

	if !sa.IsColliding() || !sb.IsColliding() {
		t.Fatalf("Expected unconfigured shapes to stay colliding across frames, got %v and %v",
			sa.IsColliding(), sb.IsColliding())
	}
	if exits != 0 {
		t.Errorf("Expected no exits while still overlapped, got %d", exits)
	}
	col := sa.Collider()
	if col.Layer != 1 || col.Mask != ^uint32(0) {
		t.Errorf("Expected defaulted filters on the live collider, got layer %d mask %#x", col.Layer, col.Mask)
	}
}
