package components

import (
	"kine3d/internal/engine"
	"kine3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// testWorld is a minimal physics-carrying world context so components
// can come online without the full renderer.
type testWorld struct {
	backend  *physics.Backend
	registry *physics.Registry
}

func newTestWorld() *testWorld {
	return &testWorld{
		backend:  physics.NewBackend(),
		registry: physics.NewRegistry(),
	}
}

func (w *testWorld) PhysicsBackend() *physics.Backend     { return w.backend }
func (w *testWorld) CollisionRegistry() *physics.Registry { return w.registry }

func (w *testWorld) SpawnObject(g *engine.GameObject) {}
func (w *testWorld) Destroy(g *engine.GameObject)     {}

func (w *testWorld) Raycast(origin, direction rl.Vector3, maxDistance float32) (engine.RaycastResult, bool) {
	hit, ok := w.registry.Raycast(origin, direction, maxDistance, 0)
	if !ok {
		return engine.RaycastResult{}, false
	}
	result := engine.RaycastResult{Point: hit.Point, Normal: hit.Normal, Distance: hit.Distance}
	if shape, isShape := hit.Collider.UserData.(*CollisionShape); isShape {
		result.GameObject = shape.GetGameObject()
	}
	return result, true
}

func newTestScene() (*engine.Scene, *testWorld) {
	w := newTestWorld()
	scene := engine.NewScene("test")
	scene.World = w
	InstallContactBridge(w.registry)
	return scene, w
}

func vecNear(got, want rl.Vector3, tol float32) bool {
	return absf32(got.X-want.X) < tol && absf32(got.Y-want.Y) < tol && absf32(got.Z-want.Z) < tol
}
