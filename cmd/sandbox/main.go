package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"kine3d/internal/components"
	"kine3d/internal/config"
	"kine3d/internal/engine"
	"kine3d/internal/physics"
	"kine3d/internal/scripts"
	"kine3d/internal/world"
)

const (
	screenWidth   = 1280
	screenHeight  = 720
	terrainExtent = 80.0
)

type sandbox struct {
	world     *world.World
	player    *engine.GameObject
	watcher   *config.Watcher
	cfgPath   string
	scenePath string

	score     float32
	shotCount int
}

func main() {
	// Change working directory to executable location for deployed builds.
	// Skip this for "go run" which puts the binary in a temp directory.
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		if !strings.Contains(execDir, "go-build") {
			os.Chdir(execDir)
		}
	}

	cfgPath := flag.String("config", "assets/config/engine.yaml", "engine config file")
	scenePath := flag.String("scene", "assets/scenes/sandbox.json", "scene save/load path")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Printf("Config: %v", err)
	}

	rl.SetConfigFlags(rl.FlagWindowHighdpi)
	rl.InitWindow(screenWidth, screenHeight, "kine3d sandbox")
	defer rl.CloseWindow()

	rl.SetTargetFPS(120)
	rl.DisableCursor()

	w := world.New(cfg)
	w.Initialize(terrainExtent * 0.6)
	defer w.Unload()

	s := &sandbox{world: w, cfgPath: *cfgPath, scenePath: *scenePath}
	if watcher, werr := config.NewWatcher(*cfgPath); werr != nil {
		log.Printf("Config: live reload disabled: %v", werr)
	} else {
		s.watcher = watcher
		defer watcher.Close()
	}

	s.buildScene(cfg)
	initOverlayStyle()

	for !rl.WindowShouldClose() {
		s.update()
		s.draw()
	}
}

func (s *sandbox) update() {
	deltaTime := rl.GetFrameTime()
	s.drainConfigEvents()
	s.handleHotkeys()
	s.world.Update(deltaTime)
}

// drainConfigEvents applies pending config file changes at the frame
// boundary. Multiple writes since the last frame collapse into one reload.
func (s *sandbox) drainConfigEvents() {
	if s.watcher == nil {
		return
	}
	reload := false
	for {
		select {
		case <-s.watcher.Events:
			reload = true
		case err := <-s.watcher.Errors:
			log.Printf("Config: watcher error: %v", err)
		default:
			if reload {
				cfg, err := config.Load(s.cfgPath)
				if err != nil {
					log.Printf("Config: reload rejected: %v", err)
					return
				}
				s.world.ApplyConfig(cfg)
				log.Println("Config: reloaded")
			}
			return
		}
	}
}

func (s *sandbox) handleHotkeys() {
	switch {
	case rl.IsKeyPressed(rl.KeyF1):
		s.world.Debug.Shapes = !s.world.Debug.Shapes
	case rl.IsKeyPressed(rl.KeyF2):
		s.world.Debug.Bounds = !s.world.Debug.Bounds
	case rl.IsKeyPressed(rl.KeyF3):
		s.world.Debug.Contacts = !s.world.Debug.Contacts
	case rl.IsKeyPressed(rl.KeyF5):
		s.saveScene()
	case rl.IsKeyPressed(rl.KeyF9):
		s.reloadScene()
	case rl.IsKeyPressed(rl.KeyTab):
		if rl.IsCursorHidden() {
			rl.EnableCursor()
		} else {
			rl.DisableCursor()
		}
	}

	if rl.IsCursorHidden() && rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		s.shootBall()
	}
}

func (s *sandbox) saveScene() {
	if err := os.MkdirAll(filepath.Dir(s.scenePath), 0755); err != nil {
		log.Printf("Scene: save failed: %v", err)
		return
	}
	if err := s.world.SaveScene(s.scenePath); err != nil {
		log.Printf("Scene: save failed: %v", err)
		return
	}
	log.Printf("Scene: saved to %s", s.scenePath)
}

// reloadScene replaces every persistent object with the saved set. The
// runtime-tagged ones, player and terrain included, stay untouched.
func (s *sandbox) reloadScene() {
	snapshot := make([]*engine.GameObject, len(s.world.Scene.GameObjects))
	copy(snapshot, s.world.Scene.GameObjects)
	for _, g := range snapshot {
		if g.Parent != nil || g.HasTag(world.RuntimeTag) {
			continue
		}
		s.world.Destroy(g)
	}

	before := len(s.world.Scene.GameObjects)
	if err := s.world.LoadScene(s.scenePath); err != nil {
		log.Printf("Scene: load failed: %v", err)
		return
	}
	for _, g := range s.world.Scene.GameObjects[before:] {
		g.Start()
	}
	s.wirePickups()
	log.Printf("Scene: loaded from %s", s.scenePath)
}

func (s *sandbox) shootBall() {
	look := engine.FindComponent[engine.LookProvider](s.player)
	if look == nil {
		return
	}
	x, y, z := look.GetLookDirection()
	dir := rl.Vector3{X: x, Y: y, Z: z}
	eye := s.player.WorldPosition()
	eye.Y += look.GetEyeHeight()

	s.shotCount++
	ball := engine.NewGameObject(fmt.Sprintf("Ball_%d", s.shotCount))
	ball.Tags = []string{world.RuntimeTag}
	ball.Transform.Position = rl.Vector3Add(eye, rl.Vector3Scale(dir, 1.5))
	ball.AddComponent(components.NewSphereRenderer(0.3, rl.Orange))
	ball.AddComponent(components.NewSphereShape(0.3))
	rb := components.NewRigidBody()
	rb.Material = "rubber"
	ball.AddComponent(rb)
	s.world.SpawnObject(ball)
	rb.SetVelocity(rl.Vector3Scale(dir, 18))
}

func (s *sandbox) draw() {
	cam := engine.GetComponent[*components.Camera](s.player)
	if cam == nil {
		return
	}
	camera := cam.GetRaylibCamera()

	s.world.Renderer.DrawShadowMap(s.world.Scene.GameObjects)

	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(20, 20, 30, 255))

	rl.BeginMode3D(camera)
	s.world.Renderer.DrawWithShadows(camera.Position, s.world.Scene.GameObjects)
	s.world.DrawDebug(camera)
	rl.EndMode3D()

	s.drawOverlay()
	rl.EndDrawing()
}

func (s *sandbox) drawOverlay() {
	w := s.world
	panel := rl.Rectangle{X: 10, Y: 10, Width: 270, Height: 240}
	rl.DrawRectangleRec(panel, rl.NewColor(25, 25, 35, 235))
	rl.DrawRectangleLinesEx(panel, 1, rl.NewColor(50, 50, 65, 255))

	line := int32(18)
	rl.DrawText("kine3d sandbox", 20, line, 18, rl.RayWhite)
	line += 26
	rl.DrawText(fmt.Sprintf("FPS %d", rl.GetFPS()), 20, line, 16, rl.Lime)
	line += 22
	rl.DrawText(fmt.Sprintf("Bodies %d (%d dynamic)", w.Backend.BodyCount(), w.Backend.DynamicBodyCount()), 20, line, 16, rl.LightGray)
	line += 22
	rl.DrawText(fmt.Sprintf("Colliders %d, pairs %d", w.Registry.Count(), w.Registry.ActivePairCount()), 20, line, 16, rl.LightGray)
	line += 22
	broadPhase := "grid"
	if w.Backend.UsingGPU() {
		broadPhase = "gpu"
	}
	rl.DrawText(fmt.Sprintf("Broad phase: %s", broadPhase), 20, line, 16, rl.LightGray)
	line += 22
	rl.DrawText(fmt.Sprintf("Score %.0f", s.score), 20, line, 16, rl.Gold)
	line += 28

	cfg := w.Config()
	gravityY := gui.Slider(rl.Rectangle{X: 85, Y: float32(line), Width: 150, Height: 16},
		"gravity", fmt.Sprintf("%.0f", cfg.Gravity[1]), cfg.Gravity[1], -40, 0)
	line += 24

	shapes := gui.CheckBox(rl.Rectangle{X: 20, Y: float32(line), Width: 16, Height: 16}, "Shapes", w.Debug.Shapes)
	bounds := gui.CheckBox(rl.Rectangle{X: 105, Y: float32(line), Width: 16, Height: 16}, "Bounds", w.Debug.Bounds)
	contacts := gui.CheckBox(rl.Rectangle{X: 190, Y: float32(line), Width: 16, Height: 16}, "Contacts", w.Debug.Contacts)

	if gravityY != cfg.Gravity[1] || shapes != cfg.Debug.DrawShapes || bounds != cfg.Debug.DrawBounds || contacts != cfg.Debug.DrawContacts {
		cfg.Gravity[1] = gravityY
		cfg.Debug.DrawShapes = shapes
		cfg.Debug.DrawBounds = bounds
		cfg.Debug.DrawContacts = contacts
		w.ApplyConfig(cfg)
	}

	rl.DrawText("WASD move, Space jump, LMB throw", 10, screenHeight-52, 16, rl.DarkGray)
	rl.DrawText("F1-F3 debug, F5 save, F9 load, Tab cursor", 10, screenHeight-30, 16, rl.DarkGray)
}

func initOverlayStyle() {
	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(rl.NewColor(25, 25, 35, 255)))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_NORMAL, gui.NewColorPropertyValue(rl.NewColor(35, 35, 48, 255)))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_FOCUSED, gui.NewColorPropertyValue(rl.NewColor(45, 45, 60, 255)))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_PRESSED, gui.NewColorPropertyValue(rl.NewColor(70, 120, 200, 255)))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(rl.NewColor(170, 170, 180, 255)))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_FOCUSED, gui.NewColorPropertyValue(rl.NewColor(230, 230, 235, 255)))
	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_NORMAL, gui.NewColorPropertyValue(rl.NewColor(50, 50, 65, 255)))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 15)
}

func (s *sandbox) buildScene(cfg config.Config) {
	s.spawnSun()
	s.spawnTerrain(cfg)
	s.spawnStairs()
	s.spawnBoxStack()
	s.spawnSpheres()
	s.spawnPlatform()
	s.spawnPickups()
	s.spawnLauncherPad()
	s.spawnPlayer(cfg)
	s.wirePickups()
}

func (s *sandbox) spawnSun() {
	sun := engine.NewGameObject("Sun")
	light := components.NewDirectionalLight()
	sun.AddComponent(light)
	s.world.SpawnObject(sun)
	s.world.Light = sun
	s.world.Renderer.SetLight(light)
}

// spawnTerrain builds the ground as exact triangle-mesh collision: the
// registry collider carries the trimesh for raycasts and the character,
// the static body carries it for dynamic bodies.
func (s *sandbox) spawnTerrain(cfg config.Config) {
	terrain := engine.NewGameObject("Terrain")
	terrain.Tags = []string{world.RuntimeTag}

	renderer := components.NewPlaneRenderer(terrainExtent, terrainExtent, rl.NewColor(110, 126, 88, 255))
	terrain.AddComponent(renderer)

	triangles, ok := renderer.GeometryTriangles()
	if ok {
		mesh, err := physics.NewTriMesh(triangles)
		if err != nil {
			log.Printf("Physics: terrain mesh rejected: %v", err)
		} else {
			terrain.AddComponent(components.NewCollisionShape(physics.ShapeMesh, physics.ShapeParams{Mesh: mesh}))
		}
	}

	static := components.NewStaticBody()
	static.VertexBudget = cfg.StaticVertexBudget
	static.Material = "stone"
	terrain.AddComponent(static)

	s.world.SpawnObject(terrain)
}

func (s *sandbox) spawnStairs() {
	for i := 0; i < 5; i++ {
		step := engine.NewGameObject(fmt.Sprintf("Step_%d", i))
		step.Transform.Position = rl.Vector3{
			X: -6,
			Y: 0.2 + float32(i)*0.4,
			Z: -2 - float32(i)*1.2,
		}
		step.AddComponent(components.NewCubeRenderer(rl.Vector3{X: 2, Y: 0.4, Z: 2}, rl.Gray))
		step.AddComponent(components.NewBoxShape(rl.Vector3{X: 2, Y: 0.4, Z: 2}))
		step.AddComponent(components.NewStaticBody())
		s.world.SpawnObject(step)
	}
}

func (s *sandbox) spawnBoxStack() {
	layerSizes := []int{3, 2, 1}
	for layer, width := range layerSizes {
		for i := 0; i < width; i++ {
			crate := engine.NewGameObject(fmt.Sprintf("Crate_%d_%d", layer, i))
			crate.Transform.Position = rl.Vector3{
				X: 6 + float32(i)*1.05 + float32(layer)*0.5,
				Y: 0.5 + float32(layer)*1.05,
				Z: -4,
			}
			crate.AddComponent(components.NewCubeRenderer(rl.Vector3{X: 1, Y: 1, Z: 1}, rl.Beige))
			crate.AddComponent(components.NewBoxShape(rl.Vector3{X: 1, Y: 1, Z: 1}))
			rb := components.NewRigidBody()
			rb.Material = "wood"
			crate.AddComponent(rb)
			s.world.SpawnObject(crate)
		}
	}
}

func (s *sandbox) spawnSpheres() {
	specs := []struct {
		name     string
		pos      rl.Vector3
		radius   float32
		material string
		color    rl.Color
	}{
		{"Ball_Rubber", rl.Vector3{X: -3, Y: 3, Z: 4}, 0.5, "rubber", rl.Red},
		{"Ball_Metal", rl.Vector3{X: -4.5, Y: 5, Z: 4}, 0.6, "metal", rl.LightGray},
		{"Ball_Ice", rl.Vector3{X: -6, Y: 7, Z: 4}, 0.5, "ice", rl.SkyBlue},
	}
	for _, spec := range specs {
		ball := engine.NewGameObject(spec.name)
		ball.Transform.Position = spec.pos
		ball.AddComponent(components.NewSphereRenderer(spec.radius, spec.color))
		ball.AddComponent(components.NewSphereShape(spec.radius))
		rb := components.NewRigidBody()
		rb.Material = spec.material
		ball.AddComponent(rb)
		s.world.SpawnObject(ball)
	}
}

func (s *sandbox) spawnPlatform() {
	platform := engine.NewGameObject("Platform")
	platform.Transform.Position = rl.Vector3{Y: 1, Z: 8}
	platform.AddComponent(components.NewCubeRenderer(rl.Vector3{X: 3, Y: 0.5, Z: 3}, rl.Purple))
	platform.AddComponent(components.NewBoxShape(rl.Vector3{X: 3, Y: 0.5, Z: 3}))
	platform.AddComponent(components.NewStaticBody())
	platform.AddComponent(&scripts.Platform{Offset: rl.Vector3{X: 6}, Period: 8})
	s.world.SpawnObject(platform)
}

func (s *sandbox) spawnPickups() {
	positions := []rl.Vector3{
		{X: 2, Y: 1, Z: -8},
		{X: 4, Y: 1, Z: -10},
		{X: 6, Y: 1, Z: -12},
	}
	for i, pos := range positions {
		gem := engine.NewGameObject(fmt.Sprintf("Gem_%d", i))
		gem.Transform.Position = pos
		gem.AddComponent(components.NewSphereRenderer(0.25, rl.Gold))
		gem.AddComponent(components.NewSphereTrigger(0.6))
		gem.AddComponent(&scripts.Collectible{TargetTag: "player", SpinSpeed: 90, BobHeight: 0.25})
		s.world.SpawnObject(gem)
	}
}

func (s *sandbox) spawnLauncherPad() {
	pad := engine.NewGameObject("LauncherPad")
	pad.Transform.Position = rl.Vector3{X: -8, Y: 0.1, Z: 8}
	pad.AddComponent(components.NewCubeRenderer(rl.Vector3{X: 2, Y: 0.2, Z: 2}, rl.Lime))
	pad.AddComponent(components.NewBoxShape(rl.Vector3{X: 2, Y: 0.2, Z: 2}))
	pad.AddComponent(components.NewStaticBody())
	trigger := components.NewBoxTrigger(rl.Vector3{X: 2, Y: 1.5, Z: 2})
	trigger.Offset = rl.Vector3{Y: 0.85}
	pad.AddComponent(trigger)
	pad.AddComponent(&scripts.Launcher{Strength: 18})
	s.world.SpawnObject(pad)
}

func (s *sandbox) spawnPlayer(cfg config.Config) {
	player := engine.NewGameObject("Player")
	player.Tags = []string{"player", world.RuntimeTag}
	player.Transform.Position = rl.Vector3{Y: 2, Z: 2}

	player.AddComponent(components.NewCapsuleShape(0.4, 1.0))

	body := components.NewCharacterBody()
	body.FloorMaxAngle = cfg.FloorMaxAngleRad()
	body.WallMinSlideAngle = cfg.WallMinSlideAngleRad()
	body.MaxSlides = cfg.Character.MaxSlides
	body.SnapLength = cfg.Character.SnapLength
	body.SafeMargin = cfg.Character.SafeMargin
	player.AddComponent(body)

	// Eye offset is measured from the capsule center, not the feet
	player.AddComponent(&scripts.PlayerController{EyeHeight: 0.7})

	cam := components.NewCamera()
	cam.IsMain = true
	player.AddComponent(cam)

	s.world.SpawnObject(player)
	s.player = player
}

// wirePickups subscribes the score counter to every Collectible in the
// scene; called after building and after every scene load.
func (s *sandbox) wirePickups() {
	for _, g := range s.world.Scene.GameObjects {
		col := engine.GetComponent[*scripts.Collectible](g)
		if col == nil {
			continue
		}
		points := col.Points
		if points == 0 {
			points = 10
		}
		col.Collected.AddListener(func(*engine.GameObject) {
			s.score += points
		})
	}
}
