package ebitenhost

import (
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/sapling"
)

// Camera maps between screen pixels and the visualisation's XY plane. Its
// position and zoom are a free sapling shape, so it moves with the same
// target-seeking animator as everything else: zoom is the shape's scale.
type Camera struct {
	*sapling.Shape

	viewportW, viewportH float64
	follow               *sapling.Shape
}

func newCamera(vis *sapling.Visualisation, w, h float64) *Camera {
	c := &Camera{
		Shape:     sapling.NewShape(vis, "camera"),
		viewportW: w,
		viewportH: h,
	}
	c.Shape.Add()
	return c
}

func (c *Camera) setViewport(w, h float64) {
	c.viewportW, c.viewportH = w, h
}

func (c *Camera) zoom() float64 {
	z := c.Scale()
	if z == 0 {
		return 1
	}
	return z
}

// ScreenToWorld converts screen coordinates to a point on the z=0 plane.
func (c *Camera) ScreenToWorld(sx, sy float64) sapling.Vec {
	loc := c.WorldLoc()
	z := c.zoom()
	return sapling.V(loc.X+(sx-c.viewportW/2)/z, loc.Y+(sy-c.viewportH/2)/z, 0)
}

// WorldToScreen projects a world point onto the screen, ignoring Z.
func (c *Camera) WorldToScreen(p sapling.Vec) (sx, sy float64) {
	loc := c.WorldLoc()
	z := c.zoom()
	return (p.X-loc.X)*z + c.viewportW/2, (p.Y-loc.Y)*z + c.viewportH/2
}

// Follow makes the camera chase target until Unfollow. The location target
// is re-armed on every arrival, so the camera keeps ticking while it
// follows.
func (c *Camera) Follow(target *sapling.Shape) {
	c.follow = target
	c.chase()
}

func (c *Camera) chase() {
	target := c.follow
	if target == nil {
		return
	}
	c.SetTargetLoc(sapling.Toward(target), sapling.OnArrival(func() {
		if c.follow == target {
			c.chase()
		}
	}))
}

// Unfollow stops following and clears the location target.
func (c *Camera) Unfollow() {
	c.follow = nil
	c.ClearTargetLoc()
}

// Following returns the followed shape, or nil.
func (c *Camera) Following() *sapling.Shape { return c.follow }

// ScrollTo moves the camera to world point p along an eased path over
// duration seconds.
func (c *Camera) ScrollTo(p sapling.Vec, duration float32, fn ease.TweenFunc) *sapling.TweenGroup {
	c.follow = nil
	return sapling.TweenLoc(c.Shape, p, duration, fn)
}

// ZoomTo eases the zoom to z over duration seconds.
func (c *Camera) ZoomTo(z float64, duration float32, fn ease.TweenFunc) *sapling.TweenGroup {
	return sapling.TweenScale(c.Shape, z, duration, fn)
}
