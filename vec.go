package sapling

import (
	"github.com/golang/geo/r3"
)

// Vec is a 3-component value used for locations, rotations and velocities.
type Vec = r3.Vector

// V is shorthand for Vec{X: x, Y: y, Z: z}.
func V(x, y, z float64) Vec {
	return Vec{X: x, Y: y, Z: z}
}

// XYZ is an observable 3-vector. Listeners registered with OnChange run
// synchronously after every mutation that alters the value.
type XYZ struct {
	v         Vec
	listeners subscriptions[func(Vec)]
}

// NewXYZ returns an XYZ holding (x, y, z).
func NewXYZ(x, y, z float64) *XYZ {
	return &XYZ{v: V(x, y, z)}
}

// Vector returns the current value.
func (p *XYZ) Vector() Vec { return p.v }

// X returns the X component.
func (p *XYZ) X() float64 { return p.v.X }

// Y returns the Y component.
func (p *XYZ) Y() float64 { return p.v.Y }

// Z returns the Z component.
func (p *XYZ) Z() float64 { return p.v.Z }

// Set assigns all three components.
func (p *XYZ) Set(x, y, z float64) *XYZ {
	return p.SetVector(V(x, y, z))
}

// SetX assigns the X component.
func (p *XYZ) SetX(x float64) *XYZ {
	v := p.v
	v.X = x
	return p.SetVector(v)
}

// SetY assigns the Y component.
func (p *XYZ) SetY(y float64) *XYZ {
	v := p.v
	v.Y = y
	return p.SetVector(v)
}

// SetZ assigns the Z component.
func (p *XYZ) SetZ(z float64) *XYZ {
	v := p.v
	v.Z = z
	return p.SetVector(v)
}

// SetVector assigns v and notifies listeners if the value changed.
func (p *XYZ) SetVector(v Vec) *XYZ {
	if v == p.v {
		return p
	}
	p.v = v
	p.fire()
	return p
}

// Add offsets the value by d.
func (p *XYZ) Add(d Vec) *XYZ {
	return p.SetVector(p.v.Add(d))
}

// VecTo returns the vector from p to target.
func (p *XYZ) VecTo(target Vec) Vec {
	return target.Sub(p.v)
}

// OnChange registers fn to run with the new value after each change.
func (p *XYZ) OnChange(fn func(Vec)) ListenerHandle {
	id := p.listeners.add(fn)
	return ListenerHandle{remove: func() bool { return p.listeners.remove(id) }}
}

func (p *XYZ) fire() {
	for _, fn := range p.listeners.snapshot() {
		fn(p.v)
	}
}
