package engine

type Scene struct {
	Name        string
	GameObjects []*GameObject
	World       WorldAccess
	uidMap      map[uint64]*GameObject
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:        name,
		GameObjects: make([]*GameObject, 0),
		uidMap:      make(map[uint64]*GameObject),
	}
}

func (s *Scene) AddGameObject(g *GameObject) {
	if g == nil {
		return
	}
	if s.uidMap == nil {
		s.uidMap = make(map[uint64]*GameObject)
	}
	g.Scene = s
	s.GameObjects = append(s.GameObjects, g)
	s.uidMap[g.UID] = g
}

// RemoveGameObject removes an object and all of its children from the scene.
// Components implementing Destroyable get their OnDestroy called synchronously
// so physics handles are released before the frame continues.
func (s *Scene) RemoveGameObject(g *GameObject) {
	if g == nil {
		return
	}
	children := append([]*GameObject(nil), g.Children...)
	for _, child := range children {
		s.RemoveGameObject(child)
	}
	for i, obj := range s.GameObjects {
		if obj == g {
			s.GameObjects = append(s.GameObjects[:i], s.GameObjects[i+1:]...)
			break
		}
	}
	delete(s.uidMap, g.UID)
	for _, c := range g.components {
		if d, ok := c.(Destroyable); ok {
			d.OnDestroy()
		}
	}
	g.Scene = nil
}

// FindByUID returns the GameObject with the given UID, or nil. O(1).
func (s *Scene) FindByUID(uid uint64) *GameObject {
	if s.uidMap == nil {
		return nil
	}
	return s.uidMap[uid]
}

func (s *Scene) FindByName(name string) *GameObject {
	for _, g := range s.GameObjects {
		if g.Name == name {
			return g
		}
	}
	return nil
}

func (s *Scene) FindByTag(tag string) []*GameObject {
	var result []*GameObject
	for _, g := range s.GameObjects {
		if g.HasTag(tag) {
			result = append(result, g)
		}
	}
	return result
}

func (s *Scene) Start() {
	for _, g := range s.GameObjects {
		g.Start()
	}
}

// Update ticks every object that was in the scene when the frame began.
// The list is snapshotted so scripts may destroy objects mid-frame
// without shifting iteration; objects removed earlier in the same frame
// are skipped.
func (s *Scene) Update(deltaTime float32) {
	objects := append([]*GameObject(nil), s.GameObjects...)
	for _, g := range objects {
		if s.uidMap[g.UID] != g {
			continue
		}
		g.Update(deltaTime)
	}
}
