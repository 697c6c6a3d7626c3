package sapling

import (
	"slices"

	"go.uber.org/zap"
)

// Appearance receives the structural and state hooks of a node shape. It is
// where concrete node types decide how they look; sapling itself draws
// nothing.
type Appearance interface {
	// OnConnectionSetup runs once per Add with the resolved parent and
	// first child (either may be nil). first is true on the shape's
	// first Add.
	OnConnectionSetup(s, parent, child *NodeShape, first bool)
	// OnStateChanged runs after every state call. field is StateNone when
	// the call changed nothing.
	OnStateChanged(s *NodeShape, field StateField, value bool, prior State)
}

// NodeShapeFactory creates the node shape for a data node.
type NodeShapeFactory interface {
	NewNodeShape(vis *Visualisation, node DataNode) *NodeShape
}

// NodeShapeFactoryFunc adapts a function to NodeShapeFactory.
type NodeShapeFactoryFunc func(vis *Visualisation, node DataNode) *NodeShape

// NewNodeShape implements NodeShapeFactory.
func (f NodeShapeFactoryFunc) NewNodeShape(vis *Visualisation, node DataNode) *NodeShape {
	return f(vis, node)
}

// Resolver picks the factory for a data node. Returning nil defers to the
// requesting shape's factory.
type Resolver func(node DataNode) NodeShapeFactory

// NodeShape mirrors one data node inside one visualisation. Node shapes are
// materialized on demand: only the part of the data tree that is rendered has
// shapes, and parent/child links exist only between rendered shapes.
type NodeShape struct {
	*Shape

	node       DataNode
	appearance Appearance
	factory    NodeShapeFactory

	parent   *NodeShape
	children []*NodeShape

	state                  State
	connectionHasBeenSetup bool
	deleted                bool
}

// NewNodeShape creates an unrendered node shape for node and binds it to
// the node's slot for vis. app may be nil.
func NewNodeShape(vis *Visualisation, node DataNode, app Appearance) *NodeShape {
	s := &NodeShape{node: node, appearance: app}
	s.Shape = &Shape{}
	s.Shape.init(vis)
	s.Shape.owner = s
	s.Shape.indexed = true
	s.bind()
	s.state.Expanded = len(node.Children()) == 0
	s.changeState(StateNone, false)
	return s
}

// bind stores s in the node's slot for its visualisation. A live shape
// already there is an inconsistency: it is deleted and reported.
func (s *NodeShape) bind() {
	uid := s.vis.uid
	prev := s.node.Shape(uid)
	if prev == s {
		return
	}
	if prev != nil && !prev.deleted {
		s.vis.logger.Warn("replacing live node shape",
			zap.Uint32("previous", prev.ID),
			zap.Uint32("shape", s.ID),
			zap.Int("depth", s.node.Depth()),
		)
		if s.vis.metrics != nil {
			s.vis.metrics.ConsistencyRepairs.Inc()
		}
		prev.Delete(false)
	}
	s.node.AddShape(uid, s)
}

// SetAppearance replaces the appearance hooks.
func (s *NodeShape) SetAppearance(app Appearance) *NodeShape {
	s.appearance = app
	return s
}

// Factory returns the factory that created s, or nil.
func (s *NodeShape) Factory() NodeShapeFactory { return s.factory }

// --- Queries ---

// Node returns the mirrored data node.
func (s *NodeShape) Node() DataNode { return s.node }

// Parent returns the rendered parent shape, or nil.
func (s *NodeShape) Parent() *NodeShape { return s.parent }

// Children returns the rendered child shapes. The slice must not be
// modified.
func (s *NodeShape) Children() []*NodeShape { return s.children }

// IsRoot reports whether s has no rendered parent.
func (s *NodeShape) IsRoot() bool { return s.parent == nil }

// IsLeaf reports whether s has no rendered children.
func (s *NodeShape) IsLeaf() bool { return len(s.children) == 0 }

// IsChild reports whether s has a rendered parent.
func (s *NodeShape) IsChild() bool { return s.parent != nil }

// IsParent reports whether s has rendered children.
func (s *NodeShape) IsParent() bool { return len(s.children) > 0 }

// IsCollapsed reports whether some data children have no rendered shape.
func (s *NodeShape) IsCollapsed() bool {
	return len(s.children) < len(s.node.Children())
}

// Depth returns the data node's depth.
func (s *NodeShape) Depth() int { return s.node.Depth() }

// Index returns the position of the data node among its siblings, or -1 at
// the root.
func (s *NodeShape) Index() int {
	p := s.node.Parent()
	if p == nil {
		return -1
	}
	for i, c := range p.Children() {
		if c == s.node {
			return i
		}
	}
	return -1
}

// State returns a copy of the shape's state.
func (s *NodeShape) State() State { return s.state }

// Deleted reports whether Delete was called.
func (s *NodeShape) Deleted() bool { return s.deleted }

// Ancestors returns up to depth rendered ancestors, nearest first.
func (s *NodeShape) Ancestors(depth int) []*NodeShape {
	var out []*NodeShape
	for p := s.parent; p != nil && depth > 0; p = p.parent {
		out = append(out, p)
		depth--
	}
	return out
}

// AncestorsTo returns the rendered ancestors below stop, nearest first. The
// whole chain is returned when stop is not an ancestor.
func (s *NodeShape) AncestorsTo(stop *NodeShape) []*NodeShape {
	var out []*NodeShape
	for p := s.parent; p != nil && p != stop; p = p.parent {
		out = append(out, p)
	}
	return out
}

// Descendants returns the rendered descendants up to depth layers down,
// each child followed by its own descendants.
func (s *NodeShape) Descendants(depth int) []*NodeShape {
	if depth <= 0 {
		return nil
	}
	var out []*NodeShape
	for _, c := range s.children {
		out = append(out, c)
		out = append(out, c.Descendants(depth-1)...)
	}
	return out
}

// ConnectedNodeShape returns the parent, or the first child when there is
// no parent.
func (s *NodeShape) ConnectedNodeShape() *NodeShape {
	if s.parent != nil {
		return s.parent
	}
	return s.firstChild()
}

func (s *NodeShape) firstChild() *NodeShape {
	if len(s.children) == 0 {
		return nil
	}
	return s.children[0]
}

// SearchNodes is Search restricted to node shapes.
func (s *NodeShape) SearchNodes(radius float64, filter func(*NodeShape) bool) []*NodeShape {
	var out []*NodeShape
	for _, r := range s.Search(radius, nil) {
		ns := r.owner
		if ns == nil {
			continue
		}
		if filter != nil && !filter(ns) {
			continue
		}
		out = append(out, ns)
	}
	return out
}

// --- Lifecycle ---

// Add renders s and links it with the rendered shapes of its data parent and
// data children. Adding a rendered shape re-runs the linking and the hooks
// but registers nothing twice. A deleted shape cannot be added.
func (s *NodeShape) Add() *NodeShape {
	if s.deleted {
		s.vis.logger.Debug("add on deleted node shape", zap.Uint32("shape", s.ID))
		return s
	}
	if !s.rendered {
		s.Shape.add()
		if s.parent == nil {
			s.vis.registerShapeRoot(s)
		}
		if len(s.children) == 0 {
			s.vis.registerShapeLeaf(s)
		}
		if s.IsCollapsed() {
			s.vis.registerShapeCollapsed(s)
		}
	}

	if p := s.renderedParent(); p != nil {
		s.setParent(p)
	}
	for _, c := range s.renderedChildren() {
		s.addChild(c)
	}

	if s.appearance != nil {
		s.appearance.OnConnectionSetup(s, s.parent, s.firstChild(), !s.connectionHasBeenSetup)
	}
	s.connectionHasBeenSetup = true
	s.changeState(StateNone, false)
	return s
}

// Remove unlinks s from its parent and children and un-renders it. The
// data node keeps its binding, so a later Add reuses s.
func (s *NodeShape) Remove() *NodeShape {
	if !s.rendered {
		return s
	}
	if s.parent != nil {
		s.parent.removeChild(s)
	}
	for _, c := range slices.Clone(s.children) {
		s.removeChild(c)
	}
	s.vis.deregisterShapeRoot(s)
	s.vis.deregisterShapeLeaf(s)
	s.vis.deregisterShapeCollapsed(s)
	if s.vis.selected == s {
		s.vis.SelectShape(nil)
	}
	if s.vis.focused == s {
		s.vis.FocusShape(nil)
	}
	s.Shape.remove()
	return s
}

// Delete removes s for good. With unbind the data node's slot is cleared as
// well; otherwise the slot keeps pointing at the deleted shape until a new
// shape replaces it.
func (s *NodeShape) Delete(unbind bool) {
	if s.deleted {
		return
	}
	s.Remove()
	s.deleted = true
	if unbind && s.node.Shape(s.vis.uid) == s {
		s.node.RemoveShape(s.vis.uid)
	}
}

// renderedParent returns the rendered shape of the data parent, or nil.
func (s *NodeShape) renderedParent() *NodeShape {
	pn := s.node.Parent()
	if pn == nil {
		return nil
	}
	if p := pn.Shape(s.vis.uid); p != nil && p.rendered {
		return p
	}
	return nil
}

// renderedChildren returns the rendered shapes of the data children in data
// order.
func (s *NodeShape) renderedChildren() []*NodeShape {
	var out []*NodeShape
	for _, cn := range s.node.Children() {
		if c := cn.Shape(s.vis.uid); c != nil && c.rendered {
			out = append(out, c)
		}
	}
	return out
}

// unrenderedChildNodes returns the data children without a rendered shape.
func (s *NodeShape) unrenderedChildNodes() []DataNode {
	var out []DataNode
	for _, cn := range s.node.Children() {
		if c := cn.Shape(s.vis.uid); c == nil || !c.rendered {
			out = append(out, cn)
		}
	}
	return out
}

// --- Relation mutators ---
//
// setParent, addChild and removeChild are the only writers of parent,
// children, the root/leaf/collapsed registries and the expanded flag. Each
// is idempotent and keeps both ends of the link in agreement.

func (s *NodeShape) setParent(p *NodeShape) {
	if s.parent == p {
		return
	}
	if old := s.parent; old != nil {
		s.parent = nil
		old.removeChild(s)
	}
	s.parent = p
	if p == nil {
		s.vis.registerShapeRoot(s)
		return
	}
	s.vis.deregisterShapeRoot(s)
	p.addChild(s)
}

func (s *NodeShape) addChild(c *NodeShape) {
	if slices.Contains(s.children, c) {
		return
	}
	s.children = append(s.children, c)
	c.setParent(s)
	if len(s.children) == 1 {
		s.vis.deregisterShapeLeaf(s)
	}
	if !s.IsCollapsed() {
		s.vis.deregisterShapeCollapsed(s)
		s.changeState(StateExpanded, true)
	}
}

func (s *NodeShape) removeChild(c *NodeShape) {
	i := slices.Index(s.children, c)
	if i < 0 {
		return
	}
	s.children = slices.Delete(s.children, i, i+1)
	c.setParent(nil)
	if len(s.children) == 0 {
		s.vis.registerShapeLeaf(s)
	}
	if s.IsCollapsed() {
		s.vis.registerShapeCollapsed(s)
		s.changeState(StateExpanded, false)
	}
}

// NodeChildrenChanged brings s in line with its data node after children
// were added to or removed from it: links to shapes of former children are
// dropped, rendered shapes of new children are linked, and the collapsed and
// expanded bookkeeping is re-derived.
func (s *NodeShape) NodeChildrenChanged() {
	if !s.rendered {
		return
	}
	data := s.node.Children()
	current := make(map[DataNode]struct{}, len(data))
	for _, cn := range data {
		current[cn] = struct{}{}
	}
	for _, c := range slices.Clone(s.children) {
		if _, ok := current[c.node]; !ok {
			s.removeChild(c)
		}
	}
	for _, c := range s.renderedChildren() {
		s.addChild(c)
	}
	if s.IsCollapsed() {
		s.vis.registerShapeCollapsed(s)
		s.changeState(StateExpanded, false)
	} else {
		s.vis.deregisterShapeCollapsed(s)
		s.changeState(StateExpanded, true)
	}
}

// --- Materialization ---

// shapeFor returns the live shape bound to node, or creates one.
func (s *NodeShape) shapeFor(node DataNode) *NodeShape {
	if ex := node.Shape(s.vis.uid); ex != nil && !ex.deleted {
		return ex
	}
	return s.vis.createNodeShape(node, s)
}

// CreateParent renders the data parent's shape and returns it. Returns nil
// when s already has a rendered parent or its node is a root.
func (s *NodeShape) CreateParent() *NodeShape {
	if s.parent != nil {
		return nil
	}
	pn := s.node.Parent()
	if pn == nil {
		return nil
	}
	return s.shapeFor(pn).Add()
}

// CreateChild renders the shape of the first data child that has none and
// returns it, or nil when s is expanded.
func (s *NodeShape) CreateChild() *NodeShape {
	missing := s.unrenderedChildNodes()
	if len(missing) == 0 {
		return nil
	}
	return s.shapeFor(missing[0]).Add()
}

// CreateChildren renders the shapes of every data child that has none and
// returns them.
func (s *NodeShape) CreateChildren() []*NodeShape {
	var out []*NodeShape
	for _, cn := range s.unrenderedChildNodes() {
		out = append(out, s.shapeFor(cn).Add())
	}
	return out
}

// CreateAncestors renders up to depth layers of ancestors and returns the
// newly rendered ones. Pass AllLayers to reach the data root.
func (s *NodeShape) CreateAncestors(depth int) []*NodeShape {
	if depth < 1 {
		return nil
	}
	var out []*NodeShape
	if p := s.CreateParent(); p != nil {
		out = append(out, p)
	}
	if s.parent != nil {
		out = append(out, s.parent.CreateAncestors(depth-1)...)
	}
	return out
}

// CreateDescendants renders up to depth layers of descendants and returns
// the newly rendered ones. Pass AllLayers to reach the data leaves.
func (s *NodeShape) CreateDescendants(depth int) []*NodeShape {
	if depth < 1 {
		return nil
	}
	out := s.CreateChildren()
	for _, c := range slices.Clone(s.children) {
		out = append(out, c.CreateDescendants(depth-1)...)
	}
	return out
}

// DestroyParent removes the rendered parent and returns it, or nil.
func (s *NodeShape) DestroyParent() *NodeShape {
	if s.parent == nil {
		return nil
	}
	return s.parent.Remove()
}

// DestroyChildren removes every rendered child not in keep and returns the
// removed ones.
func (s *NodeShape) DestroyChildren(keep ...*NodeShape) []*NodeShape {
	var out []*NodeShape
	children := slices.Clone(s.children)
	for i := len(children) - 1; i >= 0; i-- {
		c := children[i]
		if slices.Contains(keep, c) {
			continue
		}
		out = append(out, c.Remove())
	}
	return out
}

// DestroyDescendants keeps depth layers of rendered descendants and
// removes everything below them, sparing the subtrees of shapes in keep.
// Depth 0 removes the whole rendered subtree. Returns the removed shapes.
func (s *NodeShape) DestroyDescendants(depth int, keep ...*NodeShape) []*NodeShape {
	var out []*NodeShape
	for _, c := range slices.Clone(s.children) {
		if slices.Contains(keep, c) {
			continue
		}
		out = append(out, c.DestroyDescendants(depth-1, keep...)...)
	}
	if depth <= 0 {
		out = append(out, s.DestroyChildren(keep...)...)
	}
	return out
}

// DestroyAncestors keeps depth layers of rendered ancestors and removes the
// ones above. With fully, the other rendered subtrees hanging off every
// ancestor are removed too, leaving only the path to s. Returns the removed
// shapes.
func (s *NodeShape) DestroyAncestors(depth int, fully bool) []*NodeShape {
	p := s.parent
	if p == nil {
		return nil
	}
	var out []*NodeShape
	if fully {
		out = append(out, p.DestroyDescendants(0, s)...)
	}
	out = append(out, p.DestroyAncestors(depth-1, fully)...)
	if depth <= 0 {
		out = append(out, p.Remove())
	}
	return out
}

// ShowFamily renders ancestors layers above and descendants layers below
// s, then removes everything rendered outside that window: ancestors above
// it, descendants below it, and the siblings of s and of its ancestors.
func (s *NodeShape) ShowFamily(ancestors, descendants int) (created, destroyed []*NodeShape) {
	created = append(created, s.CreateAncestors(ancestors)...)
	created = append(created, s.CreateDescendants(descendants)...)
	destroyed = append(destroyed, s.DestroyAncestors(ancestors, true)...)
	destroyed = append(destroyed, s.DestroyDescendants(descendants)...)
	return created, destroyed
}

// --- State ---

// Select makes s the visualisation's selection and selects the shapes of
// the same data node in every other visualisation. Unrendered shapes never
// hold the selection.
func (s *NodeShape) Select() { s.selectShape(false) }

// Deselect clears the selection if s holds it, here and in the other
// visualisations.
func (s *NodeShape) Deselect() { s.deselectShape(false) }

// Focus makes s the visualisation's focus and focuses the shapes of the
// same data node in every other visualisation.
func (s *NodeShape) Focus() { s.focusShape(false) }

// Defocus clears the focus if s holds it, here and in the other
// visualisations.
func (s *NodeShape) Defocus() { s.defocusShape(false) }

func (s *NodeShape) selectShape(forwarded bool) {
	if s.state.Selected || !s.rendered {
		return
	}
	s.vis.SelectShape(s)
	if !forwarded {
		s.ForwardToViews(func(o *NodeShape) { o.selectShape(true) })
	}
}

func (s *NodeShape) deselectShape(forwarded bool) {
	if !s.state.Selected {
		return
	}
	s.vis.SelectShape(nil)
	if !forwarded {
		s.ForwardToViews(func(o *NodeShape) { o.deselectShape(true) })
	}
}

func (s *NodeShape) focusShape(forwarded bool) {
	if s.state.Focused || !s.rendered {
		return
	}
	s.vis.FocusShape(s)
	if !forwarded {
		s.ForwardToViews(func(o *NodeShape) { o.focusShape(true) })
	}
}

func (s *NodeShape) defocusShape(forwarded bool) {
	if !s.state.Focused {
		return
	}
	s.vis.FocusShape(nil)
	if !forwarded {
		s.ForwardToViews(func(o *NodeShape) { o.defocusShape(true) })
	}
}

// ForwardToViews calls fn with the rendered shape of the same data node in
// every other visualisation.
func (s *NodeShape) ForwardToViews(fn func(*NodeShape)) {
	for _, o := range s.node.Shapes() {
		if o == nil || o == s || o.deleted || !o.rendered {
			continue
		}
		fn(o)
	}
}

// SetHovered sets the hover state.
func (s *NodeShape) SetHovered(v bool) { s.changeState(StateHover, v) }

// SetDragged sets the dragged state.
func (s *NodeShape) SetDragged(v bool) { s.changeState(StateDragged, v) }

// changeState assigns field and runs the state hook. A call that changes
// nothing reaches the hook with StateNone.
func (s *NodeShape) changeState(field StateField, value bool) {
	prior := s.state
	if field == StateNone || prior.Get(field) == value {
		if s.appearance != nil {
			s.appearance.OnStateChanged(s, StateNone, false, prior)
		}
		return
	}
	s.state.set(field, value)
	if s.appearance != nil {
		s.appearance.OnStateChanged(s, field, value, prior)
	}
}
