package sapling

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Visualisation is one view of a data tree. It owns the spatial index, the
// shape registries, the single selection and focus, and the clock that
// ticks active shapes. Several visualisations may mirror the same data tree;
// each is told apart by its UID.
type Visualisation struct {
	uid     UID
	cfg     Config
	logger  *zap.Logger
	level   zap.AtomicLevel
	metrics *Metrics
	reg     prometheus.Registerer
	debug   bool

	tree     *SpatialIndex
	factory  NodeShapeFactory
	resolver Resolver

	shapes    shapeSet[*Shape]
	active    shapeSet[*Shape]
	roots     shapeSet[*NodeShape]
	leaves    shapeSet[*NodeShape]
	collapsed shapeSet[*NodeShape]

	selected *NodeShape
	focused  *NodeShape

	selectListeners subscriptions[func(*NodeShape)]
	focusListeners  subscriptions[func(*NodeShape)]
	updateListeners subscriptions[func(dt float64)]

	ticks uint64
}

// Option configures a Visualisation.
type Option func(*Visualisation)

// WithUID sets the visualisation's identifier. Defaults to a random UID.
func WithUID(uid UID) Option {
	return func(v *Visualisation) { v.uid = uid }
}

// WithLogger replaces the default stderr logger.
func WithLogger(l *zap.Logger) Option {
	return func(v *Visualisation) { v.logger = l }
}

// WithFactory sets the factory used when neither the resolver nor the
// requesting shape supplies one.
func WithFactory(f NodeShapeFactory) Option {
	return func(v *Visualisation) { v.factory = f }
}

// WithResolver sets a per-node factory resolver that takes precedence over
// every other factory.
func WithResolver(r Resolver) Option {
	return func(v *Visualisation) { v.resolver = r }
}

// WithRegisterer registers the visualisation's metrics on reg instead of a
// private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(v *Visualisation) { v.reg = reg }
}

// NewVisualisation creates an empty visualisation. An invalid cfg is
// reported and replaced by DefaultConfig.
func NewVisualisation(cfg Config, opts ...Option) *Visualisation {
	v := &Visualisation{
		uid:   NewUID(),
		cfg:   cfg,
		level: zap.NewAtomicLevelAt(zapcore.WarnLevel),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = newDefaultLogger(v.level)
	}
	v.logger = v.logger.With(zap.Stringer("uid", v.uid))
	if err := v.cfg.Validate(); err != nil {
		v.logger.Warn("invalid config, using defaults", zap.Error(err))
		v.cfg = DefaultConfig()
	}
	if v.factory == nil {
		v.factory = NodeShapeFactoryFunc(func(vis *Visualisation, node DataNode) *NodeShape {
			return NewNodeShape(vis, node, nil)
		})
	}
	v.metrics = NewMetrics(v.reg, v.uid)
	v.tree = NewSpatialIndex(v.cfg.TreeMinChildren, v.cfg.TreeMaxChildren, v.metrics)
	return v
}

// UID returns the visualisation's identifier.
func (v *Visualisation) UID() UID { return v.uid }

// Config returns the configuration in effect.
func (v *Visualisation) Config() Config { return v.cfg }

// Logger returns the visualisation's logger.
func (v *Visualisation) Logger() *zap.Logger { return v.logger }

// Metrics returns the visualisation's instrumentation.
func (v *Visualisation) Metrics() *Metrics { return v.metrics }

// SpatialTree returns the spatial index shared by the visualisation's
// shapes.
func (v *Visualisation) SpatialTree() *SpatialIndex { return v.tree }

// SetDebugMode enables debug logging on the default logger and a full
// consistency check after every tick.
func (v *Visualisation) SetDebugMode(enabled bool) {
	v.debug = enabled
	if enabled {
		v.level.SetLevel(zapcore.DebugLevel)
	} else {
		v.level.SetLevel(zapcore.WarnLevel)
	}
}

// --- Factories ---

// factoryFor resolves the factory for node: the resolver first, then the
// requesting shape's factory, then the visualisation default.
func (v *Visualisation) factoryFor(node DataNode, requester *NodeShape) NodeShapeFactory {
	if v.resolver != nil {
		if f := v.resolver(node); f != nil {
			return f
		}
	}
	if requester != nil && requester.factory != nil {
		return requester.factory
	}
	return v.factory
}

func (v *Visualisation) createNodeShape(node DataNode, requester *NodeShape) *NodeShape {
	f := v.factoryFor(node, requester)
	s := f.NewNodeShape(v, node)
	if s.factory == nil {
		s.factory = f
	}
	v.logger.Debug("node shape created",
		zap.Uint32("shape", s.ID),
		zap.Int("depth", node.Depth()),
	)
	return s
}

// Materialize returns the rendered shape of node, creating and adding one
// if needed.
func (v *Visualisation) Materialize(node DataNode) *NodeShape {
	if s := node.Shape(v.uid); s != nil && !s.deleted {
		if !s.rendered {
			s.Add()
		}
		return s
	}
	return v.createNodeShape(node, nil).Add()
}

// Synchronize materializes node and applies field to its shape. Only
// StateSelected and StateFocused are meaningful; other fields just
// materialize.
func (v *Visualisation) Synchronize(field StateField, node DataNode) *NodeShape {
	s := v.Materialize(node)
	switch field {
	case StateSelected:
		s.Select()
	case StateFocused:
		s.Focus()
	}
	return s
}

// --- Selection and focus ---

// Selected returns the selected shape, or nil.
func (v *Visualisation) Selected() *NodeShape { return v.selected }

// Focused returns the focused shape, or nil.
func (v *Visualisation) Focused() *NodeShape { return v.focused }

// SelectShape moves the selection to s, clearing the previous holder. nil
// clears the selection. Listeners run after the state hooks.
func (v *Visualisation) SelectShape(s *NodeShape) {
	prev := v.selected
	if prev == s {
		return
	}
	v.selected = s
	if prev != nil {
		prev.changeState(StateSelected, false)
	}
	if s != nil {
		s.changeState(StateSelected, true)
	}
	v.logger.Debug("selection changed", shapeField("shape", s), shapeField("previous", prev))
	for _, fn := range v.selectListeners.snapshot() {
		fn(s)
	}
}

// FocusShape moves the focus to s, clearing the previous holder. nil clears
// the focus.
func (v *Visualisation) FocusShape(s *NodeShape) {
	prev := v.focused
	if prev == s {
		return
	}
	v.focused = s
	if prev != nil {
		prev.changeState(StateFocused, false)
	}
	if s != nil {
		s.changeState(StateFocused, true)
	}
	v.logger.Debug("focus changed", shapeField("shape", s), shapeField("previous", prev))
	for _, fn := range v.focusListeners.snapshot() {
		fn(s)
	}
}

// OnSelect registers fn to run whenever the selection changes.
func (v *Visualisation) OnSelect(fn func(*NodeShape)) ListenerHandle {
	id := v.selectListeners.add(fn)
	return ListenerHandle{remove: func() bool { return v.selectListeners.remove(id) }}
}

// OnFocus registers fn to run whenever the focus changes.
func (v *Visualisation) OnFocus(fn func(*NodeShape)) ListenerHandle {
	id := v.focusListeners.add(fn)
	return ListenerHandle{remove: func() bool { return v.focusListeners.remove(id) }}
}

// --- Clock ---

// OnUpdate registers fn to run at the start of every tick.
func (v *Visualisation) OnUpdate(fn func(dt float64)) ListenerHandle {
	id := v.updateListeners.add(fn)
	return ListenerHandle{remove: func() bool { return v.updateListeners.remove(id) }}
}

// Tick advances the visualisation by dt seconds: visualisation listeners
// run first, then every active shape. Shapes activated during the tick wait
// for the next one; shapes deactivated during the tick are skipped.
func (v *Visualisation) Tick(dt float64) {
	for _, fn := range v.updateListeners.snapshot() {
		fn(dt)
	}
	for _, s := range v.active.snapshot() {
		if !v.active.has(s) {
			continue
		}
		s.tick(dt)
	}
	v.ticks++
	v.metrics.Ticks.Inc()
	if v.debug {
		if err := v.Verify(); err != nil {
			v.logger.Warn("consistency check failed", zap.Uint64("tick", v.ticks), zap.Error(err))
		}
	}
}

// TickCount returns the number of ticks advanced.
func (v *Visualisation) TickCount() uint64 { return v.ticks }

// Pick returns the nearest interactive shape whose radius covers point, or
// nil.
func (v *Visualisation) Pick(point Vec) *Shape {
	var best *Shape
	bestDist := 0.0
	for _, s := range v.tree.Search(Cube(point, 0)) {
		if !s.Interactive() {
			continue
		}
		d := point.Distance(s.WorldLoc())
		if d > s.Radius() {
			continue
		}
		if best == nil || d < bestDist {
			best, bestDist = s, d
		}
	}
	return best
}

func shapeField(key string, s *NodeShape) zap.Field {
	if s == nil {
		return zap.Skip()
	}
	return zap.Uint32(key, s.ID)
}
