package components

import (
	"testing"

	"github.com/chewxy/math32"

	"kine3d/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func addCharacter(scene *engine.Scene, pos rl.Vector3) *CharacterBody {
	g := engine.NewGameObject("player")
	g.Transform.Position = pos
	body := NewCharacterBody()
	g.AddComponent(body)
	scene.AddGameObject(g)
	return body
}

func addObstacle(scene *engine.Scene, name string, pos, size rl.Vector3) *CollisionShape {
	g := engine.NewGameObject(name)
	g.Transform.Position = pos
	shape := NewBoxShape(size)
	g.AddComponent(shape)
	scene.AddGameObject(g)
	return shape
}

func TestMoveAndSlideFreeSpace(t *testing.T) {
	scene, _ := newTestScene()
	body := addCharacter(scene, rl.Vector3{})
	scene.Start()

	velocity := rl.Vector3{X: 1, Y: 2, Z: 3}
	effective := body.MoveAndSlide(velocity, 0.5)

	g := body.GetGameObject()
	want := rl.Vector3{X: 0.5, Y: 1, Z: 1.5}
	if !vecNear(g.Transform.Position, want, 1e-4) {
		t.Errorf("Expected position %v, got %v", want, g.Transform.Position)
	}
	if !vecNear(effective, velocity, 1e-4) {
		t.Errorf("Expected full velocity back, got %v", effective)
	}
	if body.IsOnFloor() || body.IsOnWall() || body.IsOnCeiling() {
		t.Errorf("Expected no contacts in free space")
	}
}

func TestMoveAndSlideStopsAtWall(t *testing.T) {
	scene, _ := newTestScene()
	body := addCharacter(scene, rl.Vector3{})
	body.SafeMargin = 0
	addObstacle(scene, "wall", rl.Vector3{X: 3.5}, rl.Vector3{X: 1, Y: 10, Z: 10})
	scene.Start()

	effective := body.MoveAndSlide(rl.Vector3{X: 5}, 1.0)

	g := body.GetGameObject()
	if !vecNear(g.Transform.Position, rl.Vector3{X: 3}, 1e-3) {
		t.Errorf("Expected to stop at the wall face, got %v", g.Transform.Position)
	}
	if !vecNear(effective, rl.Vector3{X: 3}, 1e-3) {
		t.Errorf("Expected effective velocity clipped at the wall, got %v", effective)
	}
	if !body.IsOnWall() {
		t.Errorf("Expected wall contact")
	}
	if !vecNear(body.WallNormal(), rl.Vector3{X: -1}, 1e-3) {
		t.Errorf("Expected wall normal -X, got %v", body.WallNormal())
	}
	if !vecNear(body.Velocity(), rl.Vector3{}, 1e-3) {
		t.Errorf("Expected head-on velocity fully blocked, got %v", body.Velocity())
	}
}

func TestMoveAndSlideSlidesAlongWall(t *testing.T) {
	scene, _ := newTestScene()
	body := addCharacter(scene, rl.Vector3{})
	addObstacle(scene, "wall", rl.Vector3{X: 3.5}, rl.Vector3{X: 1, Y: 10, Z: 10})
	scene.Start()

	body.MoveAndSlide(rl.Vector3{X: 5, Z: 5}, 1.0)

	g := body.GetGameObject()
	if !vecNear(g.Transform.Position, rl.Vector3{X: 3, Z: 5}, 0.01) {
		t.Errorf("Expected to slide along the wall to (3,0,5), got %v", g.Transform.Position)
	}
	if !vecNear(body.Velocity(), rl.Vector3{Z: 5}, 0.01) {
		t.Errorf("Expected velocity reduced to the wall tangent, got %v", body.Velocity())
	}
	if !body.IsOnWall() {
		t.Errorf("Expected wall contact while sliding")
	}
}

func TestMoveAndSlideLandsOnFloor(t *testing.T) {
	scene, _ := newTestScene()
	body := addCharacter(scene, rl.Vector3{Y: 1})
	addObstacle(scene, "floor", rl.Vector3{Y: -0.5}, rl.Vector3{X: 20, Y: 1, Z: 20})
	scene.Start()

	body.MoveAndSlide(rl.Vector3{Y: -4}, 0.5)

	if !body.IsOnFloor() {
		t.Fatalf("Expected floor contact")
	}
	if !vecNear(body.FloorNormal(), rl.Vector3{Y: 1}, 1e-3) {
		t.Errorf("Expected floor normal +Y, got %v", body.FloorNormal())
	}
	g := body.GetGameObject()
	if absf32(g.Transform.Position.Y-body.SafeMargin) > 1e-4 {
		t.Errorf("Expected to rest a margin above the floor, got y=%f", g.Transform.Position.Y)
	}
	if !vecNear(body.Velocity(), rl.Vector3{}, 1e-3) {
		t.Errorf("Expected downward velocity absorbed by the floor, got %v", body.Velocity())
	}
}

func TestMoveAndSlideFloorSnapKeepsContact(t *testing.T) {
	scene, _ := newTestScene()
	body := addCharacter(scene, rl.Vector3{Y: 1})
	addObstacle(scene, "floor", rl.Vector3{Y: -0.5}, rl.Vector3{X: 40, Y: 1, Z: 40})
	scene.Start()

	body.MoveAndSlide(rl.Vector3{Y: -4}, 0.5)
	if !body.IsOnFloor() {
		t.Fatalf("Expected to land first")
	}

	// Walking without any downward velocity must not lose the floor
	body.MoveAndSlide(rl.Vector3{X: 2}, 0.5)
	if !body.IsOnFloor() {
		t.Errorf("Expected snap to keep floor contact while walking")
	}
	g := body.GetGameObject()
	if g.Transform.Position.X != 1 {
		t.Errorf("Expected walk to advance to x=1, got %f", g.Transform.Position.X)
	}
}

func TestMoveAndSlideNoSnapWhenDisabled(t *testing.T) {
	scene, _ := newTestScene()
	body := addCharacter(scene, rl.Vector3{Y: 1})
	addObstacle(scene, "floor", rl.Vector3{Y: -0.5}, rl.Vector3{X: 40, Y: 1, Z: 40})
	scene.Start()

	body.MoveAndSlide(rl.Vector3{Y: -4}, 0.5)
	if !body.IsOnFloor() {
		t.Fatalf("Expected to land first")
	}

	body.SnapLength = 0
	body.MoveAndSlide(rl.Vector3{X: 2}, 0.5)
	if body.IsOnFloor() {
		t.Errorf("Expected floor contact lost with snapping off")
	}
}

func TestMoveAndSlideNoSnapWhileMovingUp(t *testing.T) {
	scene, _ := newTestScene()
	body := addCharacter(scene, rl.Vector3{Y: 1})
	addObstacle(scene, "floor", rl.Vector3{Y: -0.5}, rl.Vector3{X: 40, Y: 1, Z: 40})
	scene.Start()

	body.MoveAndSlide(rl.Vector3{Y: -4}, 0.5)
	if !body.IsOnFloor() {
		t.Fatalf("Expected to land first")
	}

	// A jump must clear the floor even within snap range
	body.MoveAndSlide(rl.Vector3{Y: 0.2}, 0.5)
	if body.IsOnFloor() {
		t.Errorf("Expected upward motion to leave the floor")
	}
}

func TestClassifyContactNormals(t *testing.T) {
	body := NewCharacterBody()

	gentle := rl.Vector3{X: math32.Sin(30 * math32.Pi / 180), Y: math32.Cos(30 * math32.Pi / 180)}
	body.classify(gentle)
	if !body.state.IsOnFloor {
		t.Errorf("Expected a 30 degree slope to classify as floor")
	}

	body.state = MovementState{}
	steep := rl.Vector3{X: math32.Sin(60 * math32.Pi / 180), Y: math32.Cos(60 * math32.Pi / 180)}
	body.classify(steep)
	if body.state.IsOnFloor || !body.state.IsOnWall {
		t.Errorf("Expected a 60 degree slope to classify as wall")
	}

	body.state = MovementState{}
	body.classify(rl.Vector3{Y: -1})
	if !body.state.IsOnCeiling {
		t.Errorf("Expected a downward normal to classify as ceiling")
	}
}

func TestMoveAndCollideStopsAtFirstContact(t *testing.T) {
	scene, _ := newTestScene()
	body := addCharacter(scene, rl.Vector3{})
	body.SafeMargin = 0
	addObstacle(scene, "wall", rl.Vector3{X: 3.5}, rl.Vector3{X: 1, Y: 10, Z: 10})
	scene.Start()

	info := body.MoveAndCollide(rl.Vector3{X: 5})
	if info == nil {
		t.Fatalf("Expected a collision")
	}
	if !vecNear(info.Travel, rl.Vector3{X: 3}, 1e-3) {
		t.Errorf("Expected travel (3,0,0), got %v", info.Travel)
	}
	if !vecNear(info.Remainder, rl.Vector3{X: 2}, 1e-3) {
		t.Errorf("Expected remainder (2,0,0), got %v", info.Remainder)
	}
	if !vecNear(info.Normal, rl.Vector3{X: -1}, 1e-3) {
		t.Errorf("Expected normal -X, got %v", info.Normal)
	}
	if info.Collider == nil {
		t.Errorf("Expected the hit collider reported")
	}
	if body.IsOnWall() {
		t.Errorf("Expected MoveAndCollide to skip contact classification")
	}

	if free := body.MoveAndCollide(rl.Vector3{Z: 1}); free != nil {
		t.Errorf("Expected free motion to return nil, got %+v", free)
	}
}

func TestMoveAndSlideIgnoresOwnCollider(t *testing.T) {
	scene, _ := newTestScene()
	g := engine.NewGameObject("player")
	body := NewCharacterBody()
	shape := NewCapsuleShape(0.4, 1.0)
	g.AddComponent(body)
	g.AddComponent(shape)
	scene.AddGameObject(g)
	scene.Start()

	effective := body.MoveAndSlide(rl.Vector3{X: 1}, 1.0)
	if !vecNear(effective, rl.Vector3{X: 1}, 1e-3) {
		t.Errorf("Expected own collider excluded from movement casts, got %v", effective)
	}
}

func TestTeleportClearsState(t *testing.T) {
	scene, _ := newTestScene()
	body := addCharacter(scene, rl.Vector3{Y: 1})
	addObstacle(scene, "floor", rl.Vector3{Y: -0.5}, rl.Vector3{X: 20, Y: 1, Z: 20})
	scene.Start()

	body.MoveAndSlide(rl.Vector3{Y: -4}, 0.5)
	if !body.IsOnFloor() {
		t.Fatalf("Expected to land first")
	}

	target := rl.Vector3{X: 10, Y: 10, Z: 10}
	body.Teleport(target)

	g := body.GetGameObject()
	if !vecNear(g.Transform.Position, target, 1e-4) {
		t.Errorf("Expected node at %v, got %v", target, g.Transform.Position)
	}
	if body.IsOnFloor() {
		t.Errorf("Expected teleport to clear contact state")
	}
	if body.Body().Position != target {
		t.Errorf("Expected backend body moved with the node, got %v", body.Body().Position)
	}
	if body.Body().Velocity != (rl.Vector3{}) {
		t.Errorf("Expected teleport to drop velocity, got %v", body.Body().Velocity)
	}
}

func TestMoveAndSlideWithoutWorldMovesUnobstructed(t *testing.T) {
	g := engine.NewGameObject("floating")
	body := NewCharacterBody()
	g.AddComponent(body)

	effective := body.MoveAndSlide(rl.Vector3{X: 2}, 0.5)

	if !vecNear(g.Transform.Position, rl.Vector3{X: 1}, 1e-4) {
		t.Errorf("Expected unobstructed motion without a world, got %v", g.Transform.Position)
	}
	if !vecNear(effective, rl.Vector3{X: 2}, 1e-4) {
		t.Errorf("Expected full velocity back, got %v", effective)
	}
}

func TestMoveAndSlideStartingInOverlapStops(t *testing.T) {
	scene, _ := newTestScene()
	body := addCharacter(scene, rl.Vector3{X: 3.2})
	body.SafeMargin = 0
	addObstacle(scene, "wall", rl.Vector3{X: 3.5}, rl.Vector3{X: 1, Y: 10, Z: 10})
	scene.Start()

	// Already inside the wall's volume: pushing further in must not
	// tunnel out through the far face
	effective := body.MoveAndSlide(rl.Vector3{X: 5}, 1.0)

	g := body.GetGameObject()
	if g.Transform.Position.X > 3.2001 {
		t.Errorf("Expected no forward motion while overlapping, got x=%f", g.Transform.Position.X)
	}
	if !body.IsOnWall() {
		t.Errorf("Expected the overlapped surface classified as wall")
	}
	if !vecNear(effective, rl.Vector3{}, 1e-3) {
		t.Errorf("Expected the blocked motion reported as zero velocity, got %v", effective)
	}
}
