package sapling

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup eases up to 3 components from a start value to an end value.
// Its current value is used as a dynamic animator target, so the shape
// chases the eased curve with its usual friction instead of being written
// directly. The group advances from the shape's own update listeners and
// detaches itself once every component is finished; the animator then keeps
// seeking the final value until it arrives.
//
// If the shape is removed the group stops advancing until it is added again.
type TweenGroup struct {
	tweens [3]*gween.Tween
	count  int
	values [3]float64
	handle ListenerHandle
	Done   bool
}

// Update advances all tweens by dt seconds. Update is called by the shape's
// tick; calling it directly advances the curve faster.
func (g *TweenGroup) Update(dt float64) {
	if g.Done {
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(float32(dt))
		g.values[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	if allDone {
		g.Done = true
		g.handle.Remove()
	}
}

// Stop detaches the group. The shape keeps seeking the final value.
func (g *TweenGroup) Stop() {
	g.Done = true
	g.handle.Remove()
}

// running blocks arrival until the curve is finished.
func (g *TweenGroup) running() bool { return !g.Done }

func (g *TweenGroup) vec() Vec {
	return V(g.values[0], g.values[1], g.values[2])
}

func (g *TweenGroup) attach(s *Shape) {
	g.handle = s.OnUpdate(g.Update)
}

// TweenLoc makes s chase an eased path from its current location to `to`
// over duration seconds. opts are passed to SetTargetLoc.
func TweenLoc(s *Shape, to Vec, duration float32, fn ease.TweenFunc, opts ...TargetOption) *TweenGroup {
	from := s.WorldLoc()
	g := &TweenGroup{count: 3}
	g.tweens[0] = gween.New(float32(from.X), float32(to.X), duration, fn)
	g.tweens[1] = gween.New(float32(from.Y), float32(to.Y), duration, fn)
	g.tweens[2] = gween.New(float32(from.Z), float32(to.Z), duration, fn)
	g.values = [3]float64{from.X, from.Y, from.Z}
	g.attach(s)
	s.SetTargetLoc(Target[Vec]{
		fn: func() Vec {
			if g.Done {
				return to
			}
			return g.vec()
		},
		hold: g.running,
	}, opts...)
	return g
}

// TweenScale makes s chase an eased curve from its current scale to `to`
// over duration seconds. opts are passed to SetTargetScale.
func TweenScale(s *Shape, to float64, duration float32, fn ease.TweenFunc, opts ...TargetOption) *TweenGroup {
	g := &TweenGroup{count: 1}
	g.tweens[0] = gween.New(float32(s.Scale()), float32(to), duration, fn)
	g.values[0] = s.Scale()
	g.attach(s)
	s.SetTargetScale(Target[float64]{
		fn: func() float64 {
			if g.Done {
				return to
			}
			return g.values[0]
		},
		hold: g.running,
	}, opts...)
	return g
}

// Toward returns a dynamic target following other's location.
func Toward(other *Shape) Target[Vec] {
	return Dynamic(other.WorldLoc)
}

// Offset returns a dynamic target following other's location shifted by d.
func Offset(other *Shape, d Vec) Target[Vec] {
	return Dynamic(func() Vec { return other.WorldLoc().Add(d) })
}

// ScaleOf returns a dynamic target following other's scale.
func ScaleOf(other *Shape) Target[float64] {
	return Dynamic(other.Scale)
}
