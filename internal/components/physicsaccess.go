package components

import (
	"kine3d/internal/engine"
	"kine3d/internal/physics"
)

// PhysicsAccess is implemented by the world context that owns the physics
// state. Components reach the backend and registry through this assertion
// on Scene.World instead of a package-level singleton, so tests can hand
// every component its own simulation.
type PhysicsAccess interface {
	PhysicsBackend() *physics.Backend
	CollisionRegistry() *physics.Registry
}

// physicsFrom resolves the physics context for a component's node.
// Returns nil while the node is outside a scene or the world carries no
// physics; callers retry on their next update tick.
func physicsFrom(g *engine.GameObject) PhysicsAccess {
	if g == nil || g.Scene == nil || g.Scene.World == nil {
		return nil
	}
	pa, _ := g.Scene.World.(PhysicsAccess)
	return pa
}

// BodyOwner is implemented by components that own a backend body and
// simulate an attached CollisionShape. A shape has at most one owner;
// reattaching always detaches from the previous owner first.
type BodyOwner interface {
	AttachShape(s *CollisionShape)
	DetachShape(s *CollisionShape)
	Body() *physics.Body
}

// ContactSink receives one side of a contact pair from the world's
// registry bridge.
type ContactSink interface {
	HandleContact(phase physics.ContactPhase, other *physics.Collider)
}

// DebugDrawer is implemented by components that render a debug overlay.
// The world calls it during the debug pass, inside 3D mode.
type DebugDrawer interface {
	DebugDraw()
}

// InstallContactBridge subscribes the listener that fans every pair event
// out to both sides' ContactSink components. The world installs exactly
// one per registry; priority 0 so gameplay listeners can order themselves
// around it.
func InstallContactBridge(registry *physics.Registry) physics.ListenerID {
	return registry.AddListener(0, 0, func(ev physics.ContactEvent) {
		if sink, ok := ev.A.UserData.(ContactSink); ok {
			sink.HandleContact(ev.Phase, ev.B)
		}
		if sink, ok := ev.B.UserData.(ContactSink); ok {
			sink.HandleContact(ev.Phase, ev.A)
		}
	})
}
