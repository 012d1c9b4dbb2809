package world

import (
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"

	"kine3d/internal/components"
	"kine3d/internal/compute"
	"kine3d/internal/config"
	"kine3d/internal/engine"
	"kine3d/internal/physics"
)

// World is the per-frame simulation context: the scene graph, the backend
// that steps bodies, and the registry that reports overlaps. Components
// reach it through Scene.World; nothing in the engine holds it globally.
type World struct {
	Scene    *engine.Scene
	Backend  *physics.Backend
	Registry *physics.Registry
	Renderer *Renderer
	Light    *engine.GameObject
	Debug    DebugOptions

	cfg config.Config
	gpu *compute.System
}

// New builds a world tuned by cfg. The registry grid is sized here and
// never again; every other config field can change later via ApplyConfig.
func New(cfg config.Config) *World {
	w := &World{
		Scene:    engine.NewScene("Main"),
		Backend:  physics.NewBackend(),
		Registry: physics.NewRegistrySized(cfg.CellSize),
		Renderer: NewRenderer(),
		cfg:      cfg,
	}
	w.Scene.World = w
	components.InstallContactBridge(w.Registry)
	w.ApplyConfig(cfg)
	return w
}

// Initialize loads rendering resources and the platform GPU compute path.
// Call after the raylib window exists; simulation-only tests skip it.
func (w *World) Initialize(sceneExtent float32) {
	w.Renderer.Initialize(sceneExtent)
	w.initializeCompute()
}

// ApplyConfig applies a reloaded config at the frame boundary. Cell size
// only takes effect at startup; a changed value logs and keeps the grid.
func (w *World) ApplyConfig(cfg config.Config) {
	if cfg.CellSize != w.cfg.CellSize {
		log.Printf("Config: cell size %g takes effect after restart", cfg.CellSize)
		cfg.CellSize = w.cfg.CellSize
	}
	w.cfg = cfg
	w.Backend.SetGravity(cfg.GravityVec())
	w.Backend.SetSleepThresholds(cfg.SleepThresholds())
	w.Backend.SetGPUThreshold(cfg.GPUThreshold)
	w.Debug.Shapes = cfg.Debug.DrawShapes
	w.Debug.Bounds = cfg.Debug.DrawBounds
	w.Debug.Contacts = cfg.Debug.DrawContacts
}

// Config returns the active configuration.
func (w *World) Config() config.Config {
	return w.cfg
}

// Update advances one frame: step the backend, run component updates, then
// flush the registry so contact events observe final transforms. The whole
// sequence runs on the main thread; components are the only writers of node
// transforms and only during their Update.
func (w *World) Update(deltaTime float32) {
	w.Backend.Step(deltaTime)
	w.Scene.Update(deltaTime)
	w.Registry.Flush()
}

// PhysicsBackend implements components.PhysicsAccess.
func (w *World) PhysicsBackend() *physics.Backend {
	return w.Backend
}

// CollisionRegistry implements components.PhysicsAccess.
func (w *World) CollisionRegistry() *physics.Registry {
	return w.Registry
}

// SpawnObject implements engine.WorldAccess: the object joins the scene and
// starts immediately, so runtime-spawned projectiles simulate this frame.
func (w *World) SpawnObject(g *engine.GameObject) {
	if g == nil {
		return
	}
	w.Scene.AddGameObject(g)
	if renderer := engine.GetComponent[*components.ModelRenderer](g); renderer != nil && w.Renderer.initialized {
		renderer.SetShader(w.Renderer.Shader)
	}
	g.Start()
}

// Destroy implements engine.WorldAccess. Removal is synchronous; physics
// handles are released before the frame continues.
func (w *World) Destroy(g *engine.GameObject) {
	w.Scene.RemoveGameObject(g)
}

// Raycast implements engine.WorldAccess against the collision registry.
// Trigger areas never block rays.
func (w *World) Raycast(origin, direction rl.Vector3, maxDistance float32) (engine.RaycastResult, bool) {
	hit, ok := w.Registry.Raycast(origin, direction, maxDistance, 0)
	if !ok {
		return engine.RaycastResult{}, false
	}
	result := engine.RaycastResult{
		Point:    hit.Point,
		Normal:   hit.Normal,
		Distance: hit.Distance,
	}
	if shape, isShape := hit.Collider.UserData.(*components.CollisionShape); isShape {
		result.GameObject = shape.GetGameObject()
	}
	return result, true
}

func (w *World) Unload() {
	w.Renderer.Unload(w.Scene.GameObjects)
	w.Backend.Release()
	if w.gpu != nil {
		w.gpu.Release()
		w.gpu = nil
	}
}
