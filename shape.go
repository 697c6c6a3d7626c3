package sapling

// shapeIDCounter is a plain counter (no atomic, sapling is single-threaded).
var shapeIDCounter uint32

func nextShapeID() uint32 {
	shapeIDCounter++
	return shapeIDCounter
}

// Shape is a positioned, animated element of a visualisation. It owns a
// transform animator, a loose AABB kept in the visualisation's spatial
// index, and the listener lists that decide whether it ticks and whether it
// takes part in hit testing.
type Shape struct {
	*TransformAnimator

	// ID is unique per process and stable for the shape's lifetime.
	ID uint32
	// Name is free-form and only used in logs.
	Name string

	vis   *Visualisation
	owner *NodeShape

	radius   float64
	aabb     AABB
	indexed  bool
	rendered bool

	hover   subscriptions[func(PointerEvent) bool]
	click   subscriptions[func(PointerEvent) bool]
	pointer subscriptions[func(PointerEvent) bool]
	update  subscriptions[func(dt float64)]

	updatesDisabled      bool
	interactionsDisabled bool
	interactive          bool

	// motionID is the animator's own update subscription, 0 while at rest.
	motionID uint32
}

// NewShape creates a free shape that is not part of the node tree, such as
// a camera or a marker. It is not stored in the spatial index unless
// SetIndexed is called.
func NewShape(vis *Visualisation, name string) *Shape {
	s := &Shape{Name: name}
	s.init(vis)
	return s
}

func (s *Shape) init(vis *Visualisation) {
	s.ID = nextShapeID()
	s.vis = vis
	s.TransformAnimator = &TransformAnimator{}
	s.TransformAnimator.init(&vis.cfg)
	s.TransformAnimator.onScale = func(float64) { s.updateAABB() }
	s.TransformAnimator.onMotion = s.syncMotion
	s.Loc().OnChange(func(Vec) { s.updateAABB() })
	s.updateAABB()
}

// Visualisation returns the owning visualisation.
func (s *Shape) Visualisation() *Visualisation { return s.vis }

// NodeShape returns the node shape built on s, or nil for a free shape.
func (s *Shape) NodeShape() *NodeShape { return s.owner }

// Rendered reports whether the shape has been added and not removed since.
func (s *Shape) Rendered() bool { return s.rendered }

// WorldLoc returns the location used for the spatial index and searches.
func (s *Shape) WorldLoc() Vec { return s.Loc().Vector() }

// VecTo returns the vector from s to other.
func (s *Shape) VecTo(other *Shape) Vec {
	return other.WorldLoc().Sub(s.WorldLoc())
}

// --- Lifecycle ---

// Add registers the shape with its visualisation, inserts it in the spatial
// index when indexed, and starts ticking if it has update listeners.
func (s *Shape) Add() *Shape {
	s.add()
	return s
}

// Remove undoes Add. The shape keeps its transform and listeners and can
// be added again.
func (s *Shape) Remove() *Shape {
	s.remove()
	return s
}

func (s *Shape) add() {
	s.vis.registerShape(s)
	s.rendered = true
	if s.indexed {
		s.vis.tree.Insert(s)
	}
	s.updateUpdates()
}

func (s *Shape) remove() {
	s.vis.deregisterShape(s)
	s.rendered = false
	s.vis.deactivateShape(s)
	if s.indexed {
		s.vis.tree.Remove(s)
	}
}

// --- Spatial index ---

// Radius returns the shape's extent around its location, scaled.
func (s *Shape) Radius() float64 {
	sc := s.Scale()
	if sc < 0 {
		sc = -sc
	}
	return s.radius * sc
}

// SetRadius sets the unscaled extent used for the loose AABB and hit tests.
func (s *Shape) SetRadius(r float64) *Shape {
	s.radius = r
	s.updateAABB()
	return s
}

// RadiusPadding returns how far the loose AABB extends past Radius.
func (s *Shape) RadiusPadding() float64 {
	return s.Radius() * s.vis.cfg.RadiusPadding
}

// AABB returns the loose bounding box currently stored in the index.
func (s *Shape) AABB() AABB { return s.aabb }

// Indexed reports whether the shape is kept in the spatial index.
func (s *Shape) Indexed() bool { return s.indexed }

// SetIndexed opts the shape in or out of the spatial index.
func (s *Shape) SetIndexed(indexed bool) *Shape {
	if s.indexed == indexed {
		return s
	}
	s.indexed = indexed
	if !s.rendered {
		return s
	}
	if indexed {
		s.vis.tree.Insert(s)
	} else {
		s.vis.tree.Remove(s)
	}
	return s
}

// updateAABB recomputes the loose box only once the shape's true extent has
// left it, and moves the index entry with it.
func (s *Shape) updateAABB() {
	r := s.Radius()
	loc := s.WorldLoc()
	if s.aabb.Contains(Cube(loc, r)) {
		return
	}
	inTree := s.rendered && s.indexed
	if inTree {
		s.vis.tree.Remove(s)
	}
	s.aabb = Cube(loc, r+s.RadiusPadding())
	if inTree {
		s.vis.tree.Insert(s)
	}
}

// Search returns the indexed shapes whose loose boxes overlap the cube of
// half-size radius around s, excluding s itself. A non-nil filter further
// restricts the result.
func (s *Shape) Search(radius float64, filter func(*Shape) bool) []*Shape {
	results := s.vis.tree.Search(Cube(s.WorldLoc(), radius))
	out := results[:0]
	for _, r := range results {
		if r == s {
			continue
		}
		if filter != nil && !filter(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// --- Updates ---

// OnUpdate registers fn to run on every tick while the shape is rendered.
// A shape without update listeners is skipped by the clock entirely.
func (s *Shape) OnUpdate(fn func(dt float64)) ListenerHandle {
	id := s.update.add(fn)
	s.updateUpdates()
	return ListenerHandle{remove: func() bool {
		ok := s.update.remove(id)
		s.updateUpdates()
		return ok
	}}
}

// EnableUpdates lifts a DisableUpdates.
func (s *Shape) EnableUpdates() *Shape {
	s.updatesDisabled = false
	s.updateUpdates()
	return s
}

// DisableUpdates stops ticks regardless of listeners.
func (s *Shape) DisableUpdates() *Shape {
	s.updatesDisabled = true
	s.updateUpdates()
	return s
}

func (s *Shape) updateUpdates() {
	if s.rendered && !s.updatesDisabled && s.update.len() > 0 {
		s.vis.activateShape(s)
	} else {
		s.vis.deactivateShape(s)
	}
}

// syncMotion keeps the animator subscribed to ticks exactly while it has
// something to do.
func (s *Shape) syncMotion() {
	moving := !s.TransformAnimator.AtRest()
	switch {
	case moving && s.motionID == 0:
		s.motionID = s.update.add(s.TransformAnimator.Update)
		s.updateUpdates()
	case !moving && s.motionID != 0:
		s.update.remove(s.motionID)
		s.motionID = 0
		s.updateUpdates()
	}
}

func (s *Shape) tick(dt float64) {
	for _, fn := range s.update.snapshot() {
		fn(dt)
	}
}

// --- Interaction ---

// OnHover registers fn for PointerEnter and PointerLeave events.
func (s *Shape) OnHover(fn func(PointerEvent) bool) ListenerHandle {
	return s.subscribeInteraction(&s.hover, fn)
}

// OnClick registers fn for clicks (press and release over the shape).
func (s *Shape) OnClick(fn func(PointerEvent) bool) ListenerHandle {
	return s.subscribeInteraction(&s.click, fn)
}

// OnPointer registers fn for raw PointerDown, PointerUp and PointerMove
// events.
func (s *Shape) OnPointer(fn func(PointerEvent) bool) ListenerHandle {
	return s.subscribeInteraction(&s.pointer, fn)
}

func (s *Shape) subscribeInteraction(list *subscriptions[func(PointerEvent) bool], fn func(PointerEvent) bool) ListenerHandle {
	id := list.add(fn)
	s.updateInteraction()
	return ListenerHandle{remove: func() bool {
		ok := list.remove(id)
		s.updateInteraction()
		return ok
	}}
}

func (s *Shape) updateInteraction() {
	s.interactive = s.hover.len()+s.click.len()+s.pointer.len() > 0
}

// Interactive reports whether the shape takes part in hit testing: it has
// at least one hover, click or pointer listener and interaction is not
// disabled.
func (s *Shape) Interactive() bool {
	return s.interactive && !s.interactionsDisabled
}

// EnableInteraction lifts a DisableInteraction.
func (s *Shape) EnableInteraction() *Shape {
	s.interactionsDisabled = false
	return s
}

// DisableInteraction excludes the shape from hit testing regardless of
// listeners.
func (s *Shape) DisableInteraction() *Shape {
	s.interactionsDisabled = true
	return s
}

// TriggerHover delivers ev to the hover listeners. Reports whether any
// listener consumed it.
func (s *Shape) TriggerHover(ev PointerEvent) bool {
	return s.trigger(&s.hover, ev)
}

// TriggerClick delivers ev to the click listeners.
func (s *Shape) TriggerClick(ev PointerEvent) bool {
	return s.trigger(&s.click, ev)
}

// TriggerPointer delivers ev to the pointer listeners.
func (s *Shape) TriggerPointer(ev PointerEvent) bool {
	return s.trigger(&s.pointer, ev)
}

func (s *Shape) trigger(list *subscriptions[func(PointerEvent) bool], ev PointerEvent) bool {
	ev.Shape = s
	ev.Local = ev.World.Sub(s.WorldLoc())
	consumed := false
	for _, fn := range list.snapshot() {
		if fn(ev) {
			consumed = true
		}
	}
	return consumed
}
