package sapling

import (
	"github.com/dhconnelly/rtreego"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// Cube returns the box of half-size r centered on c.
func Cube(c Vec, r float64) AABB {
	return AABB{
		MinX: c.X - r, MaxX: c.X + r,
		MinY: c.Y - r, MaxY: c.Y + r,
		MinZ: c.Z - r, MaxZ: c.Z + r,
	}
}

// Contains reports whether other lies entirely inside b. Shared faces count
// as inside.
func (b AABB) Contains(other AABB) bool {
	return b.MinX <= other.MinX && b.MaxX >= other.MaxX &&
		b.MinY <= other.MinY && b.MaxY >= other.MaxY &&
		b.MinZ <= other.MinZ && b.MaxZ >= other.MaxZ
}

// Intersects reports whether b and other overlap. Shared faces count as
// overlapping.
func (b AABB) Intersects(other AABB) bool {
	return b.MinX <= other.MaxX && b.MaxX >= other.MinX &&
		b.MinY <= other.MaxY && b.MaxY >= other.MinY &&
		b.MinZ <= other.MaxZ && b.MaxZ >= other.MinZ
}

// Center returns the midpoint of b.
func (b AABB) Center() Vec {
	return V((b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2, (b.MinZ+b.MaxZ)/2)
}

// touchEpsilon widens queries so that boxes sharing only a face, and boxes
// flat along an axis, still overlap under rtreego's strict test.
const touchEpsilon = 1e-9

// grow returns b widened by d on every side.
func (b AABB) grow(d float64) AABB {
	return AABB{
		MinX: b.MinX - d, MaxX: b.MaxX + d,
		MinY: b.MinY - d, MaxY: b.MaxY + d,
		MinZ: b.MinZ - d, MaxZ: b.MaxZ + d,
	}
}

// rect converts b to an rtreego rectangle.
func (b AABB) rect() rtreego.Rect {
	r, err := rtreego.NewRectFromPoints(
		rtreego.Point{b.MinX, b.MinY, b.MinZ},
		rtreego.Point{b.MaxX, b.MaxY, b.MaxZ},
	)
	if err != nil {
		// Both points are always three-dimensional.
		panic(err)
	}
	return r
}

// spatialEntry pins the rectangle a shape was inserted with; rtreego
// locates entries for deletion by their bounds.
type spatialEntry struct {
	shape *Shape
	bb    rtreego.Rect
}

func (e *spatialEntry) Bounds() rtreego.Rect {
	return e.bb
}

// SpatialIndex is a 3D R-tree of shapes keyed by their loose AABBs.
// A shape is stored at most once.
type SpatialIndex struct {
	tree    *rtreego.Rtree
	entries map[*Shape]*spatialEntry
	metrics *Metrics
}

// NewSpatialIndex returns an empty index with the given R-tree branching
// factors. metrics may be nil.
func NewSpatialIndex(minChildren, maxChildren int, metrics *Metrics) *SpatialIndex {
	return &SpatialIndex{
		tree:    rtreego.NewTree(3, minChildren, maxChildren),
		entries: make(map[*Shape]*spatialEntry),
		metrics: metrics,
	}
}

// Insert stores s under its current AABB. A shape already in the index is
// moved to its current AABB.
func (idx *SpatialIndex) Insert(s *Shape) {
	if _, ok := idx.entries[s]; ok {
		idx.Remove(s)
	}
	box := s.AABB()
	e := &spatialEntry{shape: s, bb: box.rect()}
	idx.entries[s] = e
	idx.tree.Insert(e)
	idx.metrics.indexOp(opInsert)
}

// Remove drops s. Reports whether it was present.
func (idx *SpatialIndex) Remove(s *Shape) bool {
	e, ok := idx.entries[s]
	if !ok {
		return false
	}
	delete(idx.entries, s)
	idx.tree.Delete(e)
	idx.metrics.indexOp(opRemove)
	return true
}

// Contains reports whether s is stored.
func (idx *SpatialIndex) Contains(s *Shape) bool {
	_, ok := idx.entries[s]
	return ok
}

// Len returns the number of stored shapes.
func (idx *SpatialIndex) Len() int {
	return len(idx.entries)
}

// Search returns every shape whose stored box overlaps box. Order is
// unspecified.
func (idx *SpatialIndex) Search(box AABB) []*Shape {
	idx.metrics.indexOp(opSearch)
	hits := idx.tree.SearchIntersect(box.grow(touchEpsilon).rect())
	out := make([]*Shape, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*spatialEntry).shape)
	}
	return out
}
