package engine

type Component interface {
	Start()
	Update(deltaTime float32)
	SetGameObject(g *GameObject)
	GetGameObject() *GameObject
}

// Destroyable is implemented by components that hold external resources
// (physics handles, GPU meshes). OnDestroy is called synchronously when the
// owning GameObject is removed from the scene.
type Destroyable interface {
	OnDestroy()
}

// LookProvider is implemented by components that control camera look direction.
// Used by Camera and other components that need to follow a look direction.
type LookProvider interface {
	GetLookDirection() (x, y, z float32)
	GetEyeHeight() float32
}

// CollisionHandler is implemented by components that want to receive collision callbacks.
// Scripts can implement these methods to react to collisions.
type CollisionHandler interface {
	OnCollisionEnter(other *GameObject)
	OnCollisionExit(other *GameObject)
}

// BaseComponent provides default implementation for Component interface
type BaseComponent struct {
	gameObject *GameObject
}

func (b *BaseComponent) Start() {}

func (b *BaseComponent) Update(deltaTime float32) {}

func (b *BaseComponent) SetGameObject(g *GameObject) {
	b.gameObject = g
}

func (b *BaseComponent) GetGameObject() *GameObject {
	return b.gameObject
}
