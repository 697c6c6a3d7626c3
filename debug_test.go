package sapling

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedVis(t *testing.T, cfg Config) (*Visualisation, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewVisualisation(cfg, WithLogger(zap.New(core))), logs
}

func TestVerifyCleanTree(t *testing.T) {
	vis := newTestVis(t)
	root := vis.Materialize(GenerateTree(3, 3))
	root.CreateDescendants(2)
	root.Children()[1].DestroyChildren()
	require.NoError(t, vis.Verify())
}

func TestVerifyReportsEveryViolation(t *testing.T) {
	vis := newTestVis(t)
	root := vis.Materialize(GenerateTree(2, 2))
	kids := root.CreateChildren()

	vis.leaves.remove(kids[0])
	vis.tree.Remove(kids[1].Shape)

	err := vis.Verify()
	require.Error(t, err)
	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), err)
	}
	require.Contains(t, err.Error(), "leaf registration")
	require.Contains(t, err.Error(), "index membership")
}

func TestVerifyDetectsBrokenLink(t *testing.T) {
	vis := newTestVis(t)
	root := vis.Materialize(GenerateTree(2, 1))
	c := root.CreateChild()
	c.parent = nil

	err := vis.Verify()
	require.Error(t, err)
	require.Contains(t, err.Error(), "points elsewhere")
	require.Contains(t, err.Error(), "not linked to rendered parent")
}

func TestDebugModeVerifiesEachTick(t *testing.T) {
	vis, logs := observedVis(t, DefaultConfig())
	root := vis.Materialize(GenerateTree(2, 1))
	root.CreateChildren()

	vis.Tick(testDT)
	if n := logs.FilterMessage("consistency check failed").Len(); n != 0 {
		t.Fatalf("check ran outside debug mode: %d entries", n)
	}

	vis.SetDebugMode(true)
	vis.collapsed.add(root)
	vis.Tick(testDT)
	entries := logs.FilterMessage("consistency check failed").All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", entries[0].Level)
	}
	if got := entries[0].ContextMap()["tick"]; got != uint64(2) {
		t.Errorf("tick field = %v, want 2", got)
	}
}

func TestSetDebugModeTogglesLevel(t *testing.T) {
	vis := newTestVis(t)
	if vis.level.Enabled(zapcore.DebugLevel) {
		t.Fatal("debug level enabled by default")
	}
	vis.SetDebugMode(true)
	if !vis.level.Enabled(zapcore.DebugLevel) {
		t.Error("debug mode should enable debug logging")
	}
	vis.SetDebugMode(false)
	if vis.level.Enabled(zapcore.InfoLevel) {
		t.Error("leaving debug mode should restore the warn level")
	}
}

func TestInvalidConfigFallsBack(t *testing.T) {
	bad := DefaultConfig()
	bad.TreeMaxChildren = 1
	vis, logs := observedVis(t, bad)

	if vis.Config() != DefaultConfig() {
		t.Errorf("Config = %+v, want defaults", vis.Config())
	}
	entries := logs.FilterMessage("invalid config, using defaults").All()
	if len(entries) != 1 {
		t.Fatalf("got %d warnings, want 1", len(entries))
	}
	if !strings.Contains(entries[0].ContextMap()["error"].(string), "treeMaxChildren") {
		t.Errorf("error field = %v", entries[0].ContextMap()["error"])
	}
}

func TestLoggerCarriesUID(t *testing.T) {
	vis, logs := observedVis(t, DefaultConfig())
	vis.Materialize(NewTreeNode("solo"))
	entries := logs.FilterMessage("node shape created").All()
	require.Len(t, entries, 1)
	if got := entries[0].ContextMap()["uid"]; got != vis.UID().String() {
		t.Errorf("uid field = %v, want %v", got, vis.UID())
	}
}

func TestSharedRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewVisualisation(DefaultConfig(), WithRegisterer(reg))
	b := NewVisualisation(DefaultConfig(), WithRegisterer(reg))
	if a.Metrics().Gatherer() != nil {
		t.Error("Gatherer should be nil with a caller registerer")
	}
	if newTestVis(t).Metrics().Gatherer() == nil {
		t.Error("private registry should be gatherable")
	}

	a.Tick(testDT)
	b.Tick(testDT)
	b.Tick(testDT)
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "sapling_ticks_total" {
			continue
		}
		if len(f.GetMetric()) != 2 {
			t.Errorf("ticks series = %d, want 2", len(f.GetMetric()))
		}
		return
	}
	t.Error("sapling_ticks_total not gathered")
}
