package world

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"kine3d/internal/components"
	"kine3d/internal/config"
	"kine3d/internal/engine"
	"kine3d/internal/physics"
)

func newTestWorld() *World {
	return New(config.DefaultConfig())
}

func TestNewWiresPhysicsIntoScene(t *testing.T) {
	w := newTestWorld()

	pa, ok := w.Scene.World.(components.PhysicsAccess)
	if !ok {
		t.Fatal("Scene.World should satisfy components.PhysicsAccess")
	}
	if pa.PhysicsBackend() != w.Backend {
		t.Error("PhysicsBackend should return the world's backend")
	}
	if pa.CollisionRegistry() != w.Registry {
		t.Error("CollisionRegistry should return the world's registry")
	}
	if _, ok := w.Scene.World.(engine.WorldAccess); !ok {
		t.Error("Scene.World should satisfy engine.WorldAccess")
	}
}

func TestNewAppliesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Gravity = [3]float32{0, -5, 0}
	w := New(cfg)

	if w.Backend.Gravity.Y != -5 {
		t.Errorf("Expected gravity -5 from config, got %v", w.Backend.Gravity.Y)
	}
	if !w.Debug.Shapes {
		t.Error("Debug shape drawing should follow config default")
	}
}

func TestUpdateAdvancesSimulation(t *testing.T) {
	w := newTestWorld()

	crate := engine.NewGameObject("Crate")
	crate.Transform.Position = rl.Vector3{Y: 10}
	crate.AddComponent(components.NewBoxShape(rl.Vector3{X: 1, Y: 1, Z: 1}))
	crate.AddComponent(components.NewRigidBody())
	w.SpawnObject(crate)

	for i := 0; i < 30; i++ {
		w.Update(1.0 / 60.0)
	}

	if crate.Transform.Position.Y >= 10 {
		t.Errorf("Expected crate to fall under gravity, still at %v", crate.Transform.Position.Y)
	}
}

func TestUpdateDispatchesTriggerEvents(t *testing.T) {
	w := newTestWorld()

	zone := engine.NewGameObject("Zone")
	trigger := components.NewBoxTrigger(rl.Vector3{X: 4, Y: 4, Z: 4})
	zone.AddComponent(trigger)
	w.SpawnObject(zone)

	var entered *engine.GameObject
	trigger.BodyEntered.AddListener(func(g *engine.GameObject) {
		entered = g
	})

	visitor := engine.NewGameObject("Visitor")
	visitor.AddComponent(components.NewSphereShape(0.5))
	w.SpawnObject(visitor)

	w.Update(1.0 / 60.0)
	w.Update(1.0 / 60.0)

	if entered != visitor {
		t.Fatalf("Expected BodyEntered for Visitor, got %v", entered)
	}
}

func TestApplyConfigChangesLiveSettings(t *testing.T) {
	w := newTestWorld()

	cfg := w.Config()
	cfg.Gravity = [3]float32{0, -3, 0}
	cfg.Sleep.Velocity = 0.9
	cfg.Debug.DrawShapes = false
	cfg.Debug.DrawContacts = true
	w.ApplyConfig(cfg)

	if w.Backend.Gravity.Y != -3 {
		t.Errorf("Expected gravity -3 after ApplyConfig, got %v", w.Backend.Gravity.Y)
	}
	if w.Debug.Shapes {
		t.Error("Shape drawing should be off after ApplyConfig")
	}
	if !w.Debug.Contacts {
		t.Error("Contact drawing should be on after ApplyConfig")
	}
}

func TestApplyConfigKeepsCellSize(t *testing.T) {
	w := newTestWorld()
	original := w.Config().CellSize

	cfg := w.Config()
	cfg.CellSize = original * 2
	w.ApplyConfig(cfg)

	if w.Config().CellSize != original {
		t.Errorf("Cell size should stay %v until restart, got %v", original, w.Config().CellSize)
	}
}

func TestWorldRaycastResolvesGameObject(t *testing.T) {
	w := newTestWorld()

	wall := engine.NewGameObject("Wall")
	wall.AddComponent(components.NewBoxShape(rl.Vector3{X: 2, Y: 2, Z: 2}))
	w.SpawnObject(wall)
	w.Update(1.0 / 60.0)

	result, ok := w.Raycast(rl.Vector3{Y: 10}, rl.Vector3{Y: -1}, 50)
	if !ok {
		t.Fatal("Expected ray from above to hit the wall")
	}
	if result.GameObject != wall {
		t.Errorf("Expected hit to resolve Wall, got %v", result.GameObject)
	}
	if result.Point.Y < 0.9 || result.Point.Y > 1.1 {
		t.Errorf("Expected hit near top face y=1, got %v", result.Point.Y)
	}
}

func TestWorldRaycastIgnoresTriggers(t *testing.T) {
	w := newTestWorld()

	zone := engine.NewGameObject("Zone")
	zone.AddComponent(components.NewBoxTrigger(rl.Vector3{X: 4, Y: 4, Z: 4}))
	w.SpawnObject(zone)
	w.Update(1.0 / 60.0)

	if _, ok := w.Raycast(rl.Vector3{Y: 10}, rl.Vector3{Y: -1}, 50); ok {
		t.Error("Rays should pass through trigger areas")
	}
}

func TestSpawnAndDestroyLifecycle(t *testing.T) {
	w := newTestWorld()

	g := engine.NewGameObject("Spawned")
	g.AddComponent(components.NewSphereShape(1))
	w.SpawnObject(g)

	if w.Scene.FindByName("Spawned") != g {
		t.Fatal("SpawnObject should add the object to the scene")
	}
	w.Update(1.0 / 60.0)
	if w.Registry.Count() != 1 {
		t.Fatalf("Expected 1 registered collider, got %d", w.Registry.Count())
	}

	w.Destroy(g)
	if w.Scene.FindByName("Spawned") != nil {
		t.Error("Destroy should remove the object from the scene")
	}
	if w.Registry.Count() != 0 {
		t.Errorf("Expected collider unregistered on destroy, got %d", w.Registry.Count())
	}
}

func TestSceneFileRoundTrip(t *testing.T) {
	w := newTestWorld()

	crate := engine.NewGameObject("Crate")
	crate.Tags = []string{"prop"}
	crate.Transform.Position = rl.Vector3{X: 1, Y: 2, Z: 3}
	crate.Transform.Rotation = rl.Vector3{Y: 45}
	crate.Transform.Scale = rl.Vector3{X: 2, Y: 2, Z: 2}
	shape := components.NewBoxShape(rl.Vector3{X: 2, Y: 2, Z: 2})
	shape.Layer = 4
	crate.AddComponent(shape)
	body := components.NewRigidBody()
	body.Mass = 7.5
	crate.AddComponent(body)
	w.Scene.AddGameObject(crate)

	gem := engine.NewGameObject("Gem")
	gem.Transform.Position = rl.Vector3{Y: 1.5}
	gem.Transform.Scale = rl.Vector3{X: 1, Y: 1, Z: 1}
	gem.AddComponent(components.NewSphereTrigger(0.5))
	w.Scene.AddGameObject(gem)
	crate.AddChild(gem)

	path := filepath.Join(t.TempDir(), "scene.json")
	if err := w.SaveScene(path); err != nil {
		t.Fatalf("SaveScene failed: %v", err)
	}

	loaded := newTestWorld()
	if err := loaded.LoadScene(path); err != nil {
		t.Fatalf("LoadScene failed: %v", err)
	}

	got := loaded.Scene.FindByName("Crate")
	if got == nil {
		t.Fatal("Crate missing after round trip")
	}
	if got.Transform.Position.X != 1 || got.Transform.Position.Y != 2 || got.Transform.Position.Z != 3 {
		t.Errorf("Position not restored, got %v", got.Transform.Position)
	}
	if got.Transform.Rotation.Y != 45 {
		t.Errorf("Rotation not restored, got %v", got.Transform.Rotation)
	}
	if got.Transform.Scale.X != 2 {
		t.Errorf("Scale not restored, got %v", got.Transform.Scale)
	}
	if !got.HasTag("prop") {
		t.Error("Tags not restored")
	}

	gotShape := engine.GetComponent[*components.CollisionShape](got)
	if gotShape == nil {
		t.Fatal("CollisionShape missing after round trip")
	}
	if gotShape.Kind != physics.ShapeBox || gotShape.Params.Size.X != 2 {
		t.Errorf("Shape not restored, kind %v size %v", gotShape.Kind, gotShape.Params.Size)
	}
	if gotShape.Layer != 4 {
		t.Errorf("Expected layer 4, got %d", gotShape.Layer)
	}
	gotBody := engine.GetComponent[*components.RigidBody](got)
	if gotBody == nil {
		t.Fatal("RigidBody missing after round trip")
	}
	if gotBody.Mass != 7.5 {
		t.Errorf("Expected mass 7.5, got %v", gotBody.Mass)
	}

	gotGem := loaded.Scene.FindByName("Gem")
	if gotGem == nil {
		t.Fatal("Child missing after round trip")
	}
	if gotGem.Parent != got {
		t.Error("Child should be re-parented under Crate")
	}
	gotTrigger := engine.GetComponent[*components.TriggerArea](gotGem)
	if gotTrigger == nil {
		t.Fatal("TriggerArea missing after round trip")
	}
	if gotTrigger.Kind != physics.ShapeSphere || gotTrigger.Params.Radius != 0.5 {
		t.Errorf("Trigger shape not restored, kind %v radius %v", gotTrigger.Kind, gotTrigger.Params.Radius)
	}
}

func TestLoadSceneDefaultsMissingScale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	doc := `{"objects":[{"name":"Marker","position":[4,5,6]}]}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	w := newTestWorld()
	if err := w.LoadScene(path); err != nil {
		t.Fatalf("LoadScene failed: %v", err)
	}

	g := w.Scene.FindByName("Marker")
	if g == nil {
		t.Fatal("Marker missing")
	}
	if g.Transform.Scale.X != 1 || g.Transform.Scale.Y != 1 || g.Transform.Scale.Z != 1 {
		t.Errorf("Expected scale to default to 1, got %v", g.Transform.Scale)
	}
}

func TestLoadSceneSkipsUnknownComponents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	doc := `{"objects":[{"name":"Odd","position":[0,0,0],"components":[
		{"type":"Teleporter","charge":3},
		{"type":"TriggerArea","kind":"Sphere","radius":2}
	]}]}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	w := newTestWorld()
	if err := w.LoadScene(path); err != nil {
		t.Fatalf("LoadScene should tolerate unknown components: %v", err)
	}

	g := w.Scene.FindByName("Odd")
	if g == nil {
		t.Fatal("Odd missing")
	}
	if len(g.Components()) != 1 {
		t.Fatalf("Expected only the known component attached, got %d", len(g.Components()))
	}
	trigger := engine.GetComponent[*components.TriggerArea](g)
	if trigger == nil || trigger.Params.Radius != 2 {
		t.Error("Known component after the unknown one should still load")
	}
}

func TestLoadSceneMissingFile(t *testing.T) {
	w := newTestWorld()
	err := w.LoadScene(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("Expected error for missing scene file")
	}
	if !strings.Contains(err.Error(), "read scene") {
		t.Errorf("Expected wrapped read error, got %v", err)
	}
}

func TestSaveSceneSkipsRuntimeObjects(t *testing.T) {
	w := newTestWorld()

	keep := engine.NewGameObject("Keep")
	keep.Transform.Scale = rl.Vector3{X: 1, Y: 1, Z: 1}
	w.Scene.AddGameObject(keep)

	player := engine.NewGameObject("Player")
	player.Tags = []string{RuntimeTag}
	w.Scene.AddGameObject(player)

	ghost := engine.NewGameObject("Ghost")
	ghost.Tags = []string{RuntimeTag}
	w.Scene.AddGameObject(ghost)
	keep.AddChild(ghost)

	path := filepath.Join(t.TempDir(), "scene.json")
	if err := w.SaveScene(path); err != nil {
		t.Fatalf("SaveScene failed: %v", err)
	}

	loaded := newTestWorld()
	if err := loaded.LoadScene(path); err != nil {
		t.Fatalf("LoadScene failed: %v", err)
	}
	if loaded.Scene.FindByName("Keep") == nil {
		t.Error("Persistent object should survive the round trip")
	}
	if loaded.Scene.FindByName("Player") != nil {
		t.Error("Runtime-tagged object should not be saved")
	}
	if loaded.Scene.FindByName("Ghost") != nil {
		t.Error("Runtime-tagged child should not be saved")
	}
}
