package physics

import (
	"sort"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ContactPhase is the lifecycle stage of an overlap pair.
type ContactPhase int

const (
	PhaseEnter ContactPhase = iota + 1
	PhaseStay
	PhaseExit
)

func (p ContactPhase) String() string {
	switch p {
	case PhaseEnter:
		return "Enter"
	case PhaseStay:
		return "Stay"
	case PhaseExit:
		return "Exit"
	default:
		return "Invalid"
	}
}

type ColliderID uint64

// Collider is one entry in the overlap registry: a world AABB plus the
// filtering state that decides who it can touch. Box is refreshed by the
// owner every time its transform changes; Shape, when set, gives raycasts
// an analytic surface instead of the box.
type Collider struct {
	ID       ColliderID
	Shape    *Shape
	Box      AABB
	Layer    uint32
	Mask     uint32
	Trigger  bool
	Enabled  bool
	UserData any
}

// CanCollideWith applies the layer/mask rule: the pair interacts when
// either side's mask selects the other side's layer.
func (c *Collider) CanCollideWith(other *Collider) bool {
	return c.Mask&other.Layer != 0 || other.Mask&c.Layer != 0
}

// ContactEvent is delivered to listeners during Flush.
type ContactEvent struct {
	Phase ContactPhase
	A, B  *Collider
}

// Involves reports whether the event touches the given collider.
func (e ContactEvent) Involves(id ColliderID) bool {
	return e.A.ID == id || e.B.ID == id
}

// Other returns the opposite collider of the pair, or nil if id is not
// part of the event.
func (e ContactEvent) Other(id ColliderID) *Collider {
	if e.A.ID == id {
		return e.B
	}
	if e.B.ID == id {
		return e.A
	}
	return nil
}

type ListenerID int

type contactListener struct {
	id       ListenerID
	priority int
	mask     uint32
	fn       func(ContactEvent)
}

type pairKey [2]ColliderID

func makePairKey(a, b ColliderID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// contactPair pins both collider pointers so an Exit can still be delivered
// after one side has been unregistered.
type contactPair struct {
	a, b *Collider
}

// Registry is the detection side of the collision system. It tracks every
// collider's world AABB in a spatial hash, diffs the overlapping pair set
// once per frame in Flush, and feeds enter/stay/exit events to listeners.
//
// The registry never moves anything. Contact response lives in the Backend;
// this layer only answers "who overlaps whom".
type Registry struct {
	colliders map[ColliderID]*Collider

	cellSize      float32
	cells         map[CellKey][]ColliderID
	colliderCells map[ColliderID][]CellKey
	boundless     map[ColliderID]struct{} // planes and other infinite shapes

	pairs map[pairKey]contactPair

	listeners      []contactListener
	nextID         ColliderID
	nextListenerID ListenerID
}

func NewRegistry() *Registry {
	return NewRegistrySized(CellSize)
}

// NewRegistrySized builds a registry with a custom grid cell size.
// Sizes at or below zero fall back to the default.
func NewRegistrySized(cellSize float32) *Registry {
	if cellSize <= 0 {
		cellSize = CellSize
	}
	return &Registry{
		colliders:     make(map[ColliderID]*Collider),
		cellSize:      cellSize,
		cells:         make(map[CellKey][]ColliderID),
		colliderCells: make(map[ColliderID][]CellKey),
		boundless:     make(map[ColliderID]struct{}),
		pairs:         make(map[pairKey]contactPair),
	}
}

func (r *Registry) cellCoord(v float32) int {
	return int(math32.Floor(v / r.cellSize))
}

// cellsForBox lists every grid cell the box touches.
func (r *Registry) cellsForBox(box AABB) []CellKey {
	minX, minY, minZ := r.cellCoord(box.Min.X), r.cellCoord(box.Min.Y), r.cellCoord(box.Min.Z)
	maxX, maxY, maxZ := r.cellCoord(box.Max.X), r.cellCoord(box.Max.Y), r.cellCoord(box.Max.Z)

	keys := make([]CellKey, 0, (maxX-minX+1)*(maxY-minY+1)*(maxZ-minZ+1))
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				keys = append(keys, CellKey{X: x, Y: y, Z: z})
			}
		}
	}
	return keys
}

// DefaultLayerMask applies the zero-value filter convention: an unset
// layer means bit 0, an unset mask means all bits. Every write of a
// layer/mask pair onto a live collider must go through this, Register
// included, or an unconfigured collider stops matching anything.
func DefaultLayerMask(layer, mask uint32) (uint32, uint32) {
	if layer == 0 {
		layer = 1
	}
	if mask == 0 {
		mask = ^uint32(0)
	}
	return layer, mask
}

// Register inserts a collider and returns its id. A zero Layer is
// normalized to bit 0 and a zero Mask to all bits, so an unconfigured
// collider still participates in detection.
func (r *Registry) Register(c *Collider) ColliderID {
	if r == nil || c == nil {
		return 0
	}
	c.Layer, c.Mask = DefaultLayerMask(c.Layer, c.Mask)
	r.nextID++
	c.ID = r.nextID
	r.colliders[c.ID] = c
	r.insertIntoGrid(c)
	return c.ID
}

// Unregister removes a collider immediately: it stops appearing in queries
// from this call on. Pairs it participated in emit their Exit on the next
// Flush.
func (r *Registry) Unregister(id ColliderID) {
	if r == nil {
		return
	}
	c, ok := r.colliders[id]
	if !ok {
		return
	}
	r.removeFromGrid(c)
	delete(r.colliders, id)
}

// Get resolves a collider id. Reports false after Unregister.
func (r *Registry) Get(id ColliderID) (*Collider, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.colliders[id]
	return c, ok
}

// Count returns the number of registered colliders.
func (r *Registry) Count() int {
	if r == nil {
		return 0
	}
	return len(r.colliders)
}

// UpdateBounds moves a collider to a new world AABB.
func (r *Registry) UpdateBounds(id ColliderID, box AABB) {
	if r == nil {
		return
	}
	c, ok := r.colliders[id]
	if !ok {
		return
	}
	r.removeFromGrid(c)
	c.Box = box
	r.insertIntoGrid(c)
}

// SetEnabled toggles a collider. A disabled collider drops out of queries
// immediately and its live pairs emit Exit on the next Flush.
func (r *Registry) SetEnabled(id ColliderID, enabled bool) {
	if r == nil {
		return
	}
	if c, ok := r.colliders[id]; ok {
		c.Enabled = enabled
	}
}

func (r *Registry) insertIntoGrid(c *Collider) {
	if c.Shape != nil && c.Shape.Unbounded() {
		r.boundless[c.ID] = struct{}{}
		return
	}
	keys := r.cellsForBox(c.Box)
	for _, key := range keys {
		r.cells[key] = append(r.cells[key], c.ID)
	}
	r.colliderCells[c.ID] = keys
}

func (r *Registry) removeFromGrid(c *Collider) {
	if _, ok := r.boundless[c.ID]; ok {
		delete(r.boundless, c.ID)
		return
	}
	for _, key := range r.colliderCells[c.ID] {
		ids := r.cells[key]
		for i, id := range ids {
			if id == c.ID {
				r.cells[key] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(r.cells[key]) == 0 {
			delete(r.cells, key)
		}
	}
	delete(r.colliderCells, c.ID)
}

// AddListener subscribes to contact events. Higher priority runs first;
// equal priorities run in subscription order. A zero mask receives every
// event, otherwise the listener only sees events where one side's layer
// intersects the mask.
func (r *Registry) AddListener(priority int, mask uint32, fn func(ContactEvent)) ListenerID {
	if r == nil || fn == nil {
		return 0
	}
	r.nextListenerID++
	l := contactListener{id: r.nextListenerID, priority: priority, mask: mask, fn: fn}

	// Insert after existing listeners of equal priority to keep dispatch stable
	idx := len(r.listeners)
	for i, existing := range r.listeners {
		if existing.priority < priority {
			idx = i
			break
		}
	}
	r.listeners = append(r.listeners, contactListener{})
	copy(r.listeners[idx+1:], r.listeners[idx:])
	r.listeners[idx] = l
	return l.id
}

// RemoveListener unsubscribes. Unknown ids are ignored.
func (r *Registry) RemoveListener(id ListenerID) {
	if r == nil {
		return
	}
	for i, l := range r.listeners {
		if l.id == id {
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

// candidateIDs gathers potential partners for a collider from its cells
// plus the boundless set.
func (r *Registry) candidateIDs(c *Collider) []ColliderID {
	var out []ColliderID
	if _, unbounded := r.boundless[c.ID]; unbounded {
		// Boundless colliders pair with everyone; handled by the caller
		// iterating bounded colliders, so nothing to gather here.
		return out
	}
	for _, key := range r.colliderCells[c.ID] {
		out = append(out, r.cells[key]...)
	}
	for id := range r.boundless {
		out = append(out, id)
	}
	return out
}

// overlaps tests the current-frame overlap condition for a pair.
func overlaps(a, c *Collider) bool {
	if !a.Enabled || !c.Enabled {
		return false
	}
	if !a.CanCollideWith(c) {
		return false
	}
	aUnbounded := a.Shape != nil && a.Shape.Unbounded()
	cUnbounded := c.Shape != nil && c.Shape.Unbounded()
	switch {
	case aUnbounded && cUnbounded:
		return false // two planes never report each other
	case aUnbounded:
		return planeOverlapsBox(a.Shape, c.Box)
	case cUnbounded:
		return planeOverlapsBox(c.Shape, a.Box)
	default:
		return a.Box.Intersects(c.Box)
	}
}

// planeOverlapsBox tests a half-space boundary against a world AABB.
func planeOverlapsBox(plane *Shape, box AABB) bool {
	center := box.Center()
	half := rl.Vector3Scale(box.Size(), 0.5)
	n := plane.Normal
	extent := half.X*math32.Abs(n.X) + half.Y*math32.Abs(n.Y) + half.Z*math32.Abs(n.Z)
	d := rl.Vector3DotProduct(center, n) - plane.Offset
	return math32.Abs(d) <= extent
}

// Flush diffs the overlap set against the previous frame and dispatches
// contact events: every Enter first, then every Stay, then every Exit.
// Each pair enters exactly once and exits exactly once per episode.
func (r *Registry) Flush() {
	if r == nil {
		return
	}

	current := make(map[pairKey]contactPair)
	seen := make(map[pairKey]bool)

	for _, c := range r.colliders {
		if !c.Enabled {
			continue
		}
		for _, otherID := range r.candidateIDs(c) {
			if otherID == c.ID {
				continue
			}
			other, ok := r.colliders[otherID]
			if !ok {
				continue
			}
			key := makePairKey(c.ID, otherID)
			if seen[key] {
				continue
			}
			seen[key] = true
			if overlaps(c, other) {
				if key[0] == c.ID {
					current[key] = contactPair{a: c, b: other}
				} else {
					current[key] = contactPair{a: other, b: c}
				}
			}
		}
	}

	var enters, stays, exits []contactPair
	for key, pair := range current {
		if _, existed := r.pairs[key]; existed {
			stays = append(stays, pair)
		} else {
			enters = append(enters, pair)
		}
	}
	for key, pair := range r.pairs {
		if _, still := current[key]; !still {
			exits = append(exits, pair)
		}
	}

	// Deterministic order within each phase
	byID := func(pairs []contactPair) {
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].a.ID != pairs[j].a.ID {
				return pairs[i].a.ID < pairs[j].a.ID
			}
			return pairs[i].b.ID < pairs[j].b.ID
		})
	}
	byID(enters)
	byID(stays)
	byID(exits)

	r.pairs = current

	r.dispatch(PhaseEnter, enters)
	r.dispatch(PhaseStay, stays)
	r.dispatch(PhaseExit, exits)
}

func (r *Registry) dispatch(phase ContactPhase, pairs []contactPair) {
	// Listeners are kept sorted by priority, highest first. Each hears
	// every event of the phase before the next listener runs, so a
	// high-priority listener sees all of this frame's enters before a
	// low-priority one sees any. Snapshot the list: callbacks may
	// subscribe or unsubscribe, those changes apply from the next flush.
	listeners := make([]contactListener, len(r.listeners))
	copy(listeners, r.listeners)
	for _, l := range listeners {
		for _, pair := range pairs {
			if l.mask != 0 && (pair.a.Layer|pair.b.Layer)&l.mask == 0 {
				continue
			}
			l.fn(ContactEvent{Phase: phase, A: pair.a, B: pair.b})
		}
	}
}

// ActivePairCount returns the number of overlapping pairs as of the last
// Flush.
func (r *Registry) ActivePairCount() int {
	if r == nil {
		return 0
	}
	return len(r.pairs)
}

// VisitPairs calls fn for every pair overlapping as of the last Flush.
// Debug overlays use this; gameplay code should listen for events instead.
func (r *Registry) VisitPairs(fn func(a, b *Collider)) {
	if r == nil || fn == nil {
		return
	}
	for _, pair := range r.pairs {
		fn(pair.a, pair.b)
	}
}

// QueryArea returns every enabled collider whose box touches the sphere.
// A zero mask matches all layers. Results are sorted by id so callers get
// a stable order.
func (r *Registry) QueryArea(center rl.Vector3, radius float32, mask uint32) []*Collider {
	if r == nil {
		return nil
	}
	var out []*Collider
	queryBox := NewAABBFromCenter(center, rl.Vector3{X: radius * 2, Y: radius * 2, Z: radius * 2})
	seen := make(map[ColliderID]bool)

	collect := func(id ColliderID) {
		if seen[id] {
			return
		}
		seen[id] = true
		c, ok := r.colliders[id]
		if !ok || !c.Enabled {
			return
		}
		if mask != 0 && c.Layer&mask == 0 {
			return
		}
		if c.Shape != nil && c.Shape.Unbounded() {
			if !planeOverlapsSphere(c.Shape, center, radius) {
				return
			}
		} else if !c.Box.IntersectsSphere(center, radius) {
			return
		}
		out = append(out, c)
	}

	for _, key := range r.cellsForBox(queryBox) {
		for _, id := range r.cells[key] {
			collect(id)
		}
	}
	for id := range r.boundless {
		collect(id)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func planeOverlapsSphere(plane *Shape, center rl.Vector3, radius float32) bool {
	d := rl.Vector3DotProduct(center, plane.Normal) - plane.Offset
	return math32.Abs(d) <= radius
}

// QueryAABB returns every enabled collider whose box intersects the given
// box. A zero mask matches all layers.
func (r *Registry) QueryAABB(box AABB, mask uint32) []*Collider {
	if r == nil {
		return nil
	}
	var out []*Collider
	seen := make(map[ColliderID]bool)

	collect := func(id ColliderID) {
		if seen[id] {
			return
		}
		seen[id] = true
		c, ok := r.colliders[id]
		if !ok || !c.Enabled {
			return
		}
		if mask != 0 && c.Layer&mask == 0 {
			return
		}
		if c.Shape != nil && c.Shape.Unbounded() {
			if !planeOverlapsBox(c.Shape, box) {
				return
			}
		} else if !c.Box.Intersects(box) {
			return
		}
		out = append(out, c)
	}

	for _, key := range r.cellsForBox(box) {
		for _, id := range r.cells[key] {
			collect(id)
		}
	}
	for id := range r.boundless {
		collect(id)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
