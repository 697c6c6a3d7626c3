package sapling

// shapeSet is a set with O(1) add, remove and membership. Removal swaps the
// last element into the hole, so snapshot order is not insertion order.
type shapeSet[T comparable] struct {
	index map[T]int
	items []T
}

func (s *shapeSet[T]) add(x T) bool {
	if s.index == nil {
		s.index = make(map[T]int)
	}
	if _, ok := s.index[x]; ok {
		return false
	}
	s.index[x] = len(s.items)
	s.items = append(s.items, x)
	return true
}

func (s *shapeSet[T]) remove(x T) bool {
	i, ok := s.index[x]
	if !ok {
		return false
	}
	last := len(s.items) - 1
	if i != last {
		moved := s.items[last]
		s.items[i] = moved
		s.index[moved] = i
	}
	var zero T
	s.items[last] = zero
	s.items = s.items[:last]
	delete(s.index, x)
	return true
}

func (s *shapeSet[T]) has(x T) bool {
	_, ok := s.index[x]
	return ok
}

func (s *shapeSet[T]) len() int {
	return len(s.items)
}

func (s *shapeSet[T]) snapshot() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// --- Registry mutators ---
//
// These are the only writers of the visualisation's sets. Shapes call them
// from their lifecycle (register/deregister, activate/deactivate) and from
// the node shape relation mutators (roots, leaves, collapsed).

func (v *Visualisation) registerShape(s *Shape) {
	if v.shapes.add(s) {
		v.metrics.setSize(setShapes, v.shapes.len())
	}
}

func (v *Visualisation) deregisterShape(s *Shape) {
	if v.shapes.remove(s) {
		v.metrics.setSize(setShapes, v.shapes.len())
	}
}

func (v *Visualisation) activateShape(s *Shape) {
	if v.active.add(s) && v.metrics != nil {
		v.metrics.ActiveShapes.Set(float64(v.active.len()))
	}
}

func (v *Visualisation) deactivateShape(s *Shape) {
	if v.active.remove(s) && v.metrics != nil {
		v.metrics.ActiveShapes.Set(float64(v.active.len()))
	}
}

func (v *Visualisation) registerShapeRoot(s *NodeShape) {
	if v.roots.add(s) {
		v.metrics.setSize(setRoots, v.roots.len())
	}
}

func (v *Visualisation) deregisterShapeRoot(s *NodeShape) {
	if v.roots.remove(s) {
		v.metrics.setSize(setRoots, v.roots.len())
	}
}

func (v *Visualisation) registerShapeLeaf(s *NodeShape) {
	if v.leaves.add(s) {
		v.metrics.setSize(setLeaves, v.leaves.len())
	}
}

func (v *Visualisation) deregisterShapeLeaf(s *NodeShape) {
	if v.leaves.remove(s) {
		v.metrics.setSize(setLeaves, v.leaves.len())
	}
}

func (v *Visualisation) registerShapeCollapsed(s *NodeShape) {
	if v.collapsed.add(s) {
		v.metrics.setSize(setCollapsed, v.collapsed.len())
	}
}

func (v *Visualisation) deregisterShapeCollapsed(s *NodeShape) {
	if v.collapsed.remove(s) {
		v.metrics.setSize(setCollapsed, v.collapsed.len())
	}
}

// --- Registry accessors ---

// Shapes returns every rendered shape, node shapes included.
func (v *Visualisation) Shapes() []*Shape { return v.shapes.snapshot() }

// Roots returns the rendered node shapes without a rendered parent.
func (v *Visualisation) Roots() []*NodeShape { return v.roots.snapshot() }

// Leaves returns the rendered node shapes without rendered children.
func (v *Visualisation) Leaves() []*NodeShape { return v.leaves.snapshot() }

// Collapsed returns the rendered node shapes with fewer rendered children
// than their data node has children.
func (v *Visualisation) Collapsed() []*NodeShape { return v.collapsed.snapshot() }

// IsRoot reports whether s is registered as a root.
func (v *Visualisation) IsRoot(s *NodeShape) bool { return v.roots.has(s) }

// IsLeaf reports whether s is registered as a leaf.
func (v *Visualisation) IsLeaf(s *NodeShape) bool { return v.leaves.has(s) }

// IsCollapsed reports whether s is registered as collapsed.
func (v *Visualisation) IsCollapsed(s *NodeShape) bool { return v.collapsed.has(s) }

// ActiveCount returns the number of shapes receiving ticks.
func (v *Visualisation) ActiveCount() int { return v.active.len() }

// IsActive reports whether s receives ticks.
func (v *Visualisation) IsActive(s *Shape) bool { return v.active.has(s) }
