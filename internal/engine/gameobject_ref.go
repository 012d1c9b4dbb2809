package engine

// GameObjectRef is a serializable reference to a GameObject by UID.
// Scripts hold one when a scene file needs to wire two objects together,
// say a launcher pad pointing at its target or a trigger that opens a
// specific door. The UID survives save/load where a live pointer would
// not.
type GameObjectRef struct {
	UID uint64 // 0 means no reference
}

// Get resolves the reference against the scene's UID index. Returns nil
// for an empty reference or when the object no longer exists.
func (r GameObjectRef) Get(scene *Scene) *GameObject {
	if r.UID == 0 || scene == nil {
		return nil
	}
	return scene.FindByUID(r.UID)
}

// IsValid reports whether the reference points at anything. It does not
// check that the object still exists; Get answers that.
func (r GameObjectRef) IsValid() bool {
	return r.UID != 0
}

// Set points the reference at g; nil clears it.
func (r *GameObjectRef) Set(g *GameObject) {
	if g == nil {
		r.UID = 0
		return
	}
	r.UID = g.UID
}

// Clear drops the reference.
func (r *GameObjectRef) Clear() {
	r.UID = 0
}
