package sapling

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newDefaultLogger writes console-encoded entries to stderr at the given
// level.
func newDefaultLogger(level zap.AtomicLevel) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), level)
	return zap.New(core).Named("sapling")
}

// debugMaxTreeDepth is the rendered depth above which Verify warns.
const debugMaxTreeDepth = 64

// Verify walks every registered shape and returns all consistency violations
// found, or nil. It is a full scan and meant for tests and debug mode.
func (v *Visualisation) Verify() error {
	var err error
	for _, sh := range v.shapes.snapshot() {
		if !sh.rendered {
			err = multierr.Append(err, errors.Errorf("shape %d registered but not rendered", sh.ID))
		}
		if sh.indexed != v.tree.Contains(sh) {
			err = multierr.Append(err, errors.Errorf("shape %d indexed=%v but index membership is %v",
				sh.ID, sh.indexed, v.tree.Contains(sh)))
		}
		if s := sh.owner; s != nil {
			err = multierr.Append(err, v.verifyNodeShape(s))
		}
	}
	for _, set := range []*shapeSet[*NodeShape]{&v.roots, &v.leaves, &v.collapsed} {
		for _, s := range set.items {
			if !s.rendered {
				err = multierr.Append(err, errors.Errorf("node shape %d in a registry but not rendered", s.ID))
			}
		}
	}
	for _, sh := range v.active.items {
		if !sh.rendered {
			err = multierr.Append(err, errors.Errorf("shape %d active but not rendered", sh.ID))
		}
	}
	return err
}

func (v *Visualisation) verifyNodeShape(s *NodeShape) error {
	var err error
	if s.node.Shape(v.uid) != s {
		err = multierr.Append(err, errors.Errorf("node shape %d not bound to its data node", s.ID))
	}
	if v.roots.has(s) != (s.parent == nil) {
		err = multierr.Append(err, errors.Errorf("node shape %d: root registration %v, parent %v",
			s.ID, v.roots.has(s), s.parent != nil))
	}
	if v.leaves.has(s) != (len(s.children) == 0) {
		err = multierr.Append(err, errors.Errorf("node shape %d: leaf registration %v, %d children",
			s.ID, v.leaves.has(s), len(s.children)))
	}
	if v.collapsed.has(s) != s.IsCollapsed() {
		err = multierr.Append(err, errors.Errorf("node shape %d: collapsed registration %v, %d of %d children",
			s.ID, v.collapsed.has(s), len(s.children), len(s.node.Children())))
	}
	if s.state.Expanded == s.IsCollapsed() {
		err = multierr.Append(err, errors.Errorf("node shape %d: expanded=%v with %d of %d children",
			s.ID, s.state.Expanded, len(s.children), len(s.node.Children())))
	}
	if p := s.parent; p != nil {
		if !p.rendered {
			err = multierr.Append(err, errors.Errorf("node shape %d has unrendered parent %d", s.ID, p.ID))
		}
		if s.node.Parent() != p.node {
			err = multierr.Append(err, errors.Errorf("node shape %d linked to a parent of another node", s.ID))
		}
	} else if p := s.renderedParent(); p != nil {
		err = multierr.Append(err, errors.Errorf("node shape %d not linked to rendered parent %d", s.ID, p.ID))
	}
	for _, c := range s.children {
		if c.parent != s {
			err = multierr.Append(err, errors.Errorf("node shape %d: child %d points elsewhere", s.ID, c.ID))
		}
		if !c.rendered {
			err = multierr.Append(err, errors.Errorf("node shape %d: child %d not rendered", s.ID, c.ID))
		}
	}
	if len(s.children) != len(s.renderedChildren()) {
		err = multierr.Append(err, errors.Errorf("node shape %d: %d linked children, %d rendered",
			s.ID, len(s.children), len(s.renderedChildren())))
	}
	if depth := len(s.Ancestors(AllLayers)); depth > debugMaxTreeDepth {
		v.logger.Warn("rendered tree depth exceeds threshold",
			zap.Uint32("shape", s.ID), zap.Int("depth", depth), zap.Int("threshold", debugMaxTreeDepth))
	}
	return err
}
