package sapling

import (
	"math"
)

// Phase is the seeking state of one transform channel.
type Phase uint8

const (
	PhaseIdle    Phase = iota // no target
	PhaseSeeking              // target set, not reached yet
	PhaseArrived              // target reached; only observable from the arrival callback
)

// String returns the lower-case phase name.
func (p Phase) String() string {
	switch p {
	case PhaseSeeking:
		return "seeking"
	case PhaseArrived:
		return "arrived"
	default:
		return "idle"
	}
}

// Target is either a fixed value or a function evaluated once per tick.
type Target[V any] struct {
	value V
	fn    func() V
	// hold blocks arrival while it reports true.
	hold func() bool
}

// Fixed returns a target that always resolves to v.
func Fixed[V any](v V) Target[V] {
	return Target[V]{value: v}
}

// Dynamic returns a target re-evaluated every tick, e.g. to chase another
// shape. A function that never converges keeps its channel seeking forever.
func Dynamic[V any](fn func() V) Target[V] {
	return Target[V]{fn: fn}
}

// Resolve returns the target's current value.
func (t Target[V]) Resolve() V {
	if t.fn != nil {
		return t.fn()
	}
	return t.value
}

// IsDynamic reports whether the target is re-evaluated each tick.
func (t Target[V]) IsDynamic() bool {
	return t.fn != nil
}

func (t Target[V]) held() bool {
	return t.hold != nil && t.hold()
}

// TargetOption adjusts a target setter.
type TargetOption func(*targetOptions)

type targetOptions struct {
	friction    float64
	hasFriction bool
	speed       float64
	hasSpeed    bool
	onArrival   func()
}

// WithFriction sets the channel's velocity retention per tick. Retained for
// later targets on the same channel.
func WithFriction(f float64) TargetOption {
	return func(o *targetOptions) {
		o.friction = f
		o.hasFriction = true
	}
}

// WithSpeed sets the channel's delta-to-velocity gain. Retained for later
// targets on the same channel.
func WithSpeed(s float64) TargetOption {
	return func(o *targetOptions) {
		o.speed = s
		o.hasSpeed = true
	}
}

// OnArrival registers fn to run once when the target is reached.
func OnArrival(fn func()) TargetOption {
	return func(o *targetOptions) {
		o.onArrival = fn
	}
}

// channel is the target-seeking state of one transform component.
type channel[V any] struct {
	target    *Target[V]
	friction  float64
	speed     float64
	onArrival func()
	phase     Phase
}

func (c *channel[V]) set(t Target[V], opts []TargetOption) {
	var o targetOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.hasFriction {
		c.friction = o.friction
	}
	if o.hasSpeed {
		c.speed = o.speed
	}
	c.target = &t
	c.onArrival = o.onArrival
	c.phase = PhaseSeeking
}

func (c *channel[V]) clear() {
	c.target = nil
	c.onArrival = nil
	c.phase = PhaseIdle
}

// arrive clears the target before running the callback so the callback can
// chain a new target on the same channel.
func (c *channel[V]) arrive() {
	cb := c.onArrival
	c.target = nil
	c.onArrival = nil
	c.phase = PhaseArrived
	if cb != nil {
		cb()
	}
	if c.phase == PhaseArrived {
		c.phase = PhaseIdle
	}
}

// TransformAnimator owns a location, rotation and scale, their velocities,
// and an optional target per channel. Update advances it by one tick.
type TransformAnimator struct {
	loc   *XYZ
	rot   *XYZ
	scale float64

	veloLoc   Vec
	veloRot   Vec
	veloScale float64

	// SpeedFactor multiplies every velocity when it is applied.
	SpeedFactor float64

	locCh   channel[Vec]
	rotCh   channel[Vec]
	scaleCh channel[float64]

	cfg      *Config
	onScale  func(float64)
	onMotion func()
}

// NewTransformAnimator returns an animator at the origin with scale 1 and
// the channel defaults from cfg.
func NewTransformAnimator(cfg Config) *TransformAnimator {
	a := &TransformAnimator{}
	a.init(&cfg)
	return a
}

func (a *TransformAnimator) init(cfg *Config) {
	a.cfg = cfg
	a.loc = NewXYZ(0, 0, 0)
	a.rot = NewXYZ(0, 0, 0)
	a.scale = 1
	a.SpeedFactor = 1
	a.locCh = channel[Vec]{friction: cfg.Friction.Loc, speed: cfg.Speed.Loc}
	a.rotCh = channel[Vec]{friction: cfg.Friction.Rot, speed: cfg.Speed.Rot}
	a.scaleCh = channel[float64]{friction: cfg.Friction.Scale, speed: cfg.Speed.Scale}
}

// --- Transform ---

// Loc returns the observable location.
func (a *TransformAnimator) Loc() *XYZ { return a.loc }

// Rot returns the observable rotation.
func (a *TransformAnimator) Rot() *XYZ { return a.rot }

// Scale returns the uniform scale.
func (a *TransformAnimator) Scale() float64 { return a.scale }

// SetLoc moves the location to (x, y, z).
func (a *TransformAnimator) SetLoc(x, y, z float64) *TransformAnimator {
	a.loc.Set(x, y, z)
	return a
}

// SetRot sets the rotation to (x, y, z).
func (a *TransformAnimator) SetRot(x, y, z float64) *TransformAnimator {
	a.rot.Set(x, y, z)
	return a
}

// SetScale sets the uniform scale.
func (a *TransformAnimator) SetScale(s float64) *TransformAnimator {
	if s == a.scale {
		return a
	}
	a.scale = s
	if a.onScale != nil {
		a.onScale(s)
	}
	return a
}

// --- Velocity ---

// Velocity returns the location velocity in units per second.
func (a *TransformAnimator) Velocity() Vec { return a.veloLoc }

// SetVelocity replaces the location velocity.
func (a *TransformAnimator) SetVelocity(v Vec) *TransformAnimator {
	a.veloLoc = v
	a.motionChanged()
	return a
}

// RotVelocity returns the rotation velocity in radians per second.
func (a *TransformAnimator) RotVelocity() Vec { return a.veloRot }

// SetRotVelocity replaces the rotation velocity.
func (a *TransformAnimator) SetRotVelocity(v Vec) *TransformAnimator {
	a.veloRot = v
	a.motionChanged()
	return a
}

// ScaleVelocity returns the scale velocity per second.
func (a *TransformAnimator) ScaleVelocity() float64 { return a.veloScale }

// SetScaleVelocity replaces the scale velocity.
func (a *TransformAnimator) SetScaleVelocity(v float64) *TransformAnimator {
	a.veloScale = v
	a.motionChanged()
	return a
}

// --- Targets ---

// SetTargetLoc starts seeking t. Any previous location target and its
// callback are discarded and the location velocity is reset.
func (a *TransformAnimator) SetTargetLoc(t Target[Vec], opts ...TargetOption) *TransformAnimator {
	a.veloLoc = Vec{}
	a.locCh.set(t, opts)
	a.motionChanged()
	return a
}

// SetTargetRot starts seeking rotation t. Any previous rotation target and
// its callback are discarded.
func (a *TransformAnimator) SetTargetRot(t Target[Vec], opts ...TargetOption) *TransformAnimator {
	a.rotCh.set(t, opts)
	a.motionChanged()
	return a
}

// SetTargetScale starts seeking scale t. Any previous scale target and its
// callback are discarded.
func (a *TransformAnimator) SetTargetScale(t Target[float64], opts ...TargetOption) *TransformAnimator {
	a.scaleCh.set(t, opts)
	a.motionChanged()
	return a
}

// ClearTargetLoc stops seeking without running the arrival callback.
func (a *TransformAnimator) ClearTargetLoc() *TransformAnimator {
	a.locCh.clear()
	a.motionChanged()
	return a
}

// ClearTargetRot stops seeking without running the arrival callback.
func (a *TransformAnimator) ClearTargetRot() *TransformAnimator {
	a.rotCh.clear()
	a.motionChanged()
	return a
}

// ClearTargetScale stops seeking without running the arrival callback.
func (a *TransformAnimator) ClearTargetScale() *TransformAnimator {
	a.scaleCh.clear()
	a.motionChanged()
	return a
}

// LocPhase returns the location channel phase.
func (a *TransformAnimator) LocPhase() Phase { return a.locCh.phase }

// RotPhase returns the rotation channel phase.
func (a *TransformAnimator) RotPhase() Phase { return a.rotCh.phase }

// ScalePhase returns the scale channel phase.
func (a *TransformAnimator) ScalePhase() Phase { return a.scaleCh.phase }

// Seeking reports whether any channel has a target.
func (a *TransformAnimator) Seeking() bool {
	return a.locCh.target != nil || a.rotCh.target != nil || a.scaleCh.target != nil
}

// AtRest reports whether an Update would change nothing: no targets and
// every velocity below its epsilon.
func (a *TransformAnimator) AtRest() bool {
	if a.Seeking() {
		return false
	}
	eps := a.cfg.VelocityEpsilon
	s := math.Abs(a.scale)
	return a.veloLoc.Norm() <= eps*s &&
		a.veloRot.Norm() <= eps &&
		math.Abs(a.veloScale) <= eps*s
}

func (a *TransformAnimator) motionChanged() {
	if a.onMotion != nil {
		a.onMotion()
	}
}

// --- Integration ---

// Update advances the animator by dt seconds: velocities are applied, then
// each seeking channel updates its velocity toward the target and fires its
// arrival callback once both the remaining distance and the velocity are
// below the channel thresholds.
func (a *TransformAnimator) Update(dt float64) {
	step := dt * a.SpeedFactor
	eps := a.cfg.VelocityEpsilon

	if a.veloLoc.Norm() > eps*math.Abs(a.scale) {
		a.loc.Add(a.veloLoc.Mul(step))
	}
	if a.veloRot.Norm() > eps {
		a.rot.Add(a.veloRot.Mul(step))
	}
	if math.Abs(a.veloScale) > eps*math.Abs(a.scale) {
		a.SetScale(a.scale + a.veloScale*step)
	}

	if t := a.locCh.target; t != nil {
		goal := t.Resolve()
		delta := a.loc.VecTo(goal)
		a.veloLoc = a.veloLoc.Mul(a.locCh.friction).Add(delta.Mul(a.locCh.speed))
		s := math.Abs(a.scale)
		th := a.cfg.LocArrival
		if !t.held() && delta.Norm() < th.Delta*s && a.veloLoc.Norm() < th.Speed*s {
			a.veloLoc = Vec{}
			a.loc.SetVector(goal)
			a.locCh.arrive()
		}
	}

	if t := a.rotCh.target; t != nil {
		goal := t.Resolve()
		delta := a.rot.VecTo(goal)
		a.veloRot = a.veloRot.Mul(a.rotCh.friction).Add(delta.Mul(a.rotCh.speed))
		th := a.cfg.RotArrival
		if !t.held() && delta.Norm() < th.Delta && a.veloRot.Norm() < th.Speed {
			a.veloRot = Vec{}
			a.rot.SetVector(goal)
			a.rotCh.arrive()
		}
	}

	if t := a.scaleCh.target; t != nil {
		goal := t.Resolve()
		delta := goal - a.scale
		a.veloScale = a.veloScale*a.scaleCh.friction + delta*a.scaleCh.speed
		s := math.Abs(a.scale)
		th := a.cfg.ScaleArrival
		if !t.held() && math.Abs(delta) < th.Delta*s && math.Abs(a.veloScale) < th.Speed*s {
			a.veloScale = 0
			a.SetScale(goal)
			a.scaleCh.arrive()
		}
	}

	a.motionChanged()
}
