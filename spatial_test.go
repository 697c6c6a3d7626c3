package sapling

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestVis(t *testing.T, opts ...Option) *Visualisation {
	t.Helper()
	return NewVisualisation(DefaultConfig(), opts...)
}

// indexedShape returns a rendered, indexed free shape at loc.
func indexedShape(vis *Visualisation, loc Vec, radius float64) *Shape {
	s := NewShape(vis, "")
	s.SetIndexed(true)
	s.SetRadius(radius)
	s.SetLoc(loc.X, loc.Y, loc.Z)
	s.Add()
	return s
}

func TestAABBContains(t *testing.T) {
	outer := Cube(Vec{}, 2)
	tests := []struct {
		name  string
		inner AABB
		want  bool
	}{
		{"inside", Cube(Vec{}, 1), true},
		{"same", Cube(Vec{}, 2), true},
		{"sticking out", Cube(V(1.5, 0, 0), 1), false},
		{"outside", Cube(V(10, 0, 0), 1), false},
	}
	for _, tt := range tests {
		if got := outer.Contains(tt.inner); got != tt.want {
			t.Errorf("%s: Contains = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAABBIntersectsTouching(t *testing.T) {
	a := Cube(Vec{}, 1)
	b := Cube(V(2, 0, 0), 1)
	if !a.Intersects(b) {
		t.Error("boxes sharing a face should intersect")
	}
	if a.Intersects(Cube(V(2.1, 0, 0), 1)) {
		t.Error("separated boxes should not intersect")
	}
	if got := Cube(V(1, 2, 3), 5).Center(); got != V(1, 2, 3) {
		t.Errorf("Center = %v, want (1, 2, 3)", got)
	}
}

func TestSpatialIndexInsertSearchRemove(t *testing.T) {
	vis := newTestVis(t)
	a := indexedShape(vis, Vec{}, 1)
	b := indexedShape(vis, V(10, 0, 0), 1)
	tree := vis.SpatialTree()

	if tree.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tree.Len())
	}
	got := tree.Search(Cube(Vec{}, 2))
	if len(got) != 1 || got[0] != a {
		t.Errorf("Search near origin = %v, want [a]", got)
	}
	if got := tree.Search(Cube(V(5, 0, 0), 10)); len(got) != 2 {
		t.Errorf("wide search found %d shapes, want 2", len(got))
	}

	if !tree.Remove(b) {
		t.Error("Remove(b) = false, want true")
	}
	if tree.Remove(b) {
		t.Error("second Remove(b) = true, want false")
	}
	if tree.Contains(b) {
		t.Error("b still contained after Remove")
	}
	if got := tree.Search(Cube(V(10, 0, 0), 2)); len(got) != 0 {
		t.Errorf("Search after remove = %v, want empty", got)
	}
}

func TestSpatialIndexFindsTouchingAndPointBoxes(t *testing.T) {
	vis := newTestVis(t)
	p := indexedShape(vis, V(3, 0, 0), 0)
	tree := vis.SpatialTree()

	// Query face touches the point box.
	got := tree.Search(Cube(Vec{}, 3))
	if len(got) != 1 || got[0] != p {
		t.Errorf("touching search = %v, want [p]", got)
	}
	// Zero-size query on the point itself.
	if got := tree.Search(Cube(V(3, 0, 0), 0)); len(got) != 1 {
		t.Errorf("point search found %d, want 1", len(got))
	}
}

func TestSpatialIndexReinsertMovesEntry(t *testing.T) {
	vis := newTestVis(t)
	s := indexedShape(vis, Vec{}, 1)
	tree := vis.SpatialTree()

	s.SetLoc(100, 0, 0)
	if tree.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tree.Len())
	}
	if got := tree.Search(Cube(Vec{}, 2)); len(got) != 0 {
		t.Errorf("old location still found: %v", got)
	}
	if got := tree.Search(Cube(V(100, 0, 0), 2)); len(got) != 1 {
		t.Errorf("new location found %d, want 1", len(got))
	}
}

func TestSpatialIndexMetrics(t *testing.T) {
	vis := newTestVis(t)
	m := vis.Metrics()
	s := indexedShape(vis, Vec{}, 1)
	vis.SpatialTree().Search(Cube(Vec{}, 1))
	vis.SpatialTree().Remove(s)

	if got := testutil.ToFloat64(m.IndexOperations.WithLabelValues(opInsert)); got != 1 {
		t.Errorf("inserts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.IndexOperations.WithLabelValues(opSearch)); got != 1 {
		t.Errorf("searches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.IndexOperations.WithLabelValues(opRemove)); got != 1 {
		t.Errorf("removes = %v, want 1", got)
	}
}

func TestSpatialIndexNilMetrics(t *testing.T) {
	vis := newTestVis(t)
	idx := NewSpatialIndex(2, 8, nil)
	s := NewShape(vis, "loose")
	idx.Insert(s)
	if idx.Len() != 1 {
		t.Errorf("Len = %d, want 1", idx.Len())
	}
	idx.Search(Cube(Vec{}, 1))
	idx.Remove(s)
}
