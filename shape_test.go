package sapling

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewShapeDefaults(t *testing.T) {
	vis := newTestVis(t)
	s := NewShape(vis, "marker")
	if s.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if s.Name != "marker" {
		t.Errorf("Name = %q, want %q", s.Name, "marker")
	}
	if s.Rendered() {
		t.Error("new shape should not be rendered")
	}
	if s.Indexed() {
		t.Error("free shape should not be indexed by default")
	}
	if s.Interactive() {
		t.Error("shape without listeners should not be interactive")
	}
	if s.NodeShape() != nil {
		t.Error("free shape should have no node shape")
	}
	if s.Visualisation() != vis {
		t.Error("Visualisation mismatch")
	}
}

func TestShapeSearchRadius(t *testing.T) {
	vis := newTestVis(t)
	a := indexedShape(vis, Vec{}, 0)
	b := indexedShape(vis, V(5, 0, 0), 0)

	if got := a.Search(3, nil); len(got) != 0 {
		t.Errorf("Search(3) = %v, want empty", got)
	}
	got := a.Search(6, nil)
	if len(got) != 1 || got[0] != b {
		t.Errorf("Search(6) = %v, want [b]", got)
	}
	if got := a.Search(6, func(s *Shape) bool { return s != b }); len(got) != 0 {
		t.Errorf("filtered Search(6) = %v, want empty", got)
	}
}

func TestShapeSearchExcludesSelf(t *testing.T) {
	vis := newTestVis(t)
	a := indexedShape(vis, Vec{}, 1)
	for _, s := range a.Search(100, nil) {
		if s == a {
			t.Fatal("Search returned the querying shape")
		}
	}
}

func TestLooseBoxStability(t *testing.T) {
	vis := newTestVis(t)
	inserts := vis.Metrics().IndexOperations.WithLabelValues(opInsert)

	s := indexedShape(vis, Vec{}, 2) // box is loc ± 3
	base := testutil.ToFloat64(inserts)
	box := s.AABB()

	s.SetLoc(0.5, 0, 0)
	s.SetLoc(-0.9, 0.5, 0.3)
	if got := testutil.ToFloat64(inserts); got != base {
		t.Errorf("inserts after small moves = %v, want %v", got, base)
	}
	if s.AABB() != box {
		t.Errorf("AABB changed on small move: %v, want %v", s.AABB(), box)
	}

	s.SetLoc(1.5, 0, 0)
	if got := testutil.ToFloat64(inserts); got != base+1 {
		t.Errorf("inserts after large move = %v, want %v", got, base+1)
	}
	want := Cube(V(1.5, 0, 0), 3)
	if s.AABB() != want {
		t.Errorf("AABB = %v, want %v", s.AABB(), want)
	}
}

func TestLooseBoxGrowsWithScale(t *testing.T) {
	vis := newTestVis(t)
	s := indexedShape(vis, Vec{}, 2)
	s.SetScale(0.5)
	if s.AABB() != Cube(Vec{}, 3) {
		t.Errorf("shrinking should keep the box, got %v", s.AABB())
	}
	s.SetScale(4)
	if want := Cube(Vec{}, 12); s.AABB() != want {
		t.Errorf("AABB = %v, want %v", s.AABB(), want)
	}
	if s.Radius() != 8 {
		t.Errorf("Radius = %v, want 8", s.Radius())
	}
}

func TestSetIndexedWhileRendered(t *testing.T) {
	vis := newTestVis(t)
	s := NewShape(vis, "").Add()
	if vis.SpatialTree().Contains(s) {
		t.Fatal("unindexed shape in index")
	}
	s.SetIndexed(true)
	if !vis.SpatialTree().Contains(s) {
		t.Error("SetIndexed(true) did not insert")
	}
	s.SetIndexed(false)
	if vis.SpatialTree().Contains(s) {
		t.Error("SetIndexed(false) did not remove")
	}
}

func TestUpdateListenersDriveActivation(t *testing.T) {
	vis := newTestVis(t)
	s := NewShape(vis, "")
	ticks := 0
	h := s.OnUpdate(func(float64) { ticks++ })
	if vis.IsActive(s) {
		t.Fatal("unrendered shape should not be active")
	}

	s.Add()
	if !vis.IsActive(s) {
		t.Fatal("rendered shape with listener should be active")
	}
	vis.Tick(testDT)
	if ticks != 1 {
		t.Errorf("ticks = %d, want 1", ticks)
	}

	s.DisableUpdates()
	vis.Tick(testDT)
	if ticks != 1 {
		t.Errorf("ticks while disabled = %d, want 1", ticks)
	}
	s.EnableUpdates()

	h.Remove()
	if vis.IsActive(s) {
		t.Error("shape without listeners should be inactive")
	}
	vis.Tick(testDT)
	if ticks != 1 {
		t.Errorf("ticks after removal = %d, want 1", ticks)
	}
	h.Remove()
}

func TestAnimatorSubscribesWhileMoving(t *testing.T) {
	vis := newTestVis(t)
	s := NewShape(vis, "").Add()
	if vis.IsActive(s) {
		t.Fatal("resting shape should be inactive")
	}

	arrived := 0
	s.SetTargetLoc(Fixed(V(3, 0, 0)), OnArrival(func() { arrived++ }))
	if !vis.IsActive(s) {
		t.Fatal("seeking shape should be active")
	}
	for i := 0; i < 2000 && arrived == 0; i++ {
		vis.Tick(testDT)
	}
	if arrived != 1 {
		t.Fatalf("arrived = %d, want 1", arrived)
	}
	if vis.IsActive(s) {
		t.Error("shape at rest should be inactive")
	}
	if s.WorldLoc() != V(3, 0, 0) {
		t.Errorf("WorldLoc = %v, want (3, 0, 0)", s.WorldLoc())
	}
}

func TestRemovedShapeStopsTicking(t *testing.T) {
	vis := newTestVis(t)
	s := NewShape(vis, "").Add()
	s.SetVelocity(V(60, 0, 0))
	vis.Tick(testDT)
	s.Remove()
	x := s.WorldLoc().X
	vis.Tick(testDT)
	if s.WorldLoc().X != x {
		t.Error("removed shape moved")
	}
	if vis.ActiveCount() != 0 {
		t.Errorf("ActiveCount = %d, want 0", vis.ActiveCount())
	}
}

func TestInteractionDerivedFromListeners(t *testing.T) {
	vis := newTestVis(t)
	s := NewShape(vis, "")
	h1 := s.OnClick(func(PointerEvent) bool { return true })
	h2 := s.OnHover(func(PointerEvent) bool { return false })
	if !s.Interactive() {
		t.Fatal("shape with listeners should be interactive")
	}
	s.DisableInteraction()
	if s.Interactive() {
		t.Error("DisableInteraction should override listeners")
	}
	s.EnableInteraction()
	h1.Remove()
	if !s.Interactive() {
		t.Error("one listener left, should still be interactive")
	}
	h2.Remove()
	if s.Interactive() {
		t.Error("no listeners left, should not be interactive")
	}
}

func TestTriggerReportsConsumption(t *testing.T) {
	vis := newTestVis(t)
	s := NewShape(vis, "")
	s.SetLoc(1, 1, 0)

	var got PointerEvent
	s.OnPointer(func(ev PointerEvent) bool {
		got = ev
		return false
	})
	if s.TriggerPointer(PointerEvent{Type: PointerDown, World: V(2, 3, 0)}) {
		t.Error("no listener consumed, want false")
	}
	if got.Shape != s {
		t.Error("event Shape not set")
	}
	if got.Local != V(1, 2, 0) {
		t.Errorf("Local = %v, want (1, 2, 0)", got.Local)
	}

	s.OnPointer(func(PointerEvent) bool { return true })
	if !s.TriggerPointer(PointerEvent{Type: PointerDown}) {
		t.Error("consumed event, want true")
	}
	if s.TriggerClick(PointerEvent{}) {
		t.Error("no click listeners, want false")
	}
}

func TestVecTo(t *testing.T) {
	vis := newTestVis(t)
	a := NewShape(vis, "")
	b := NewShape(vis, "")
	b.SetLoc(1, 2, 3)
	if got := a.VecTo(b); got != V(1, 2, 3) {
		t.Errorf("VecTo = %v, want (1, 2, 3)", got)
	}
}
