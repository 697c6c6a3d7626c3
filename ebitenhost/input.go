package ebitenhost

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/sapling"
)

const defaultDragDeadZone = 4.0 // world units

// --- Pointer state ---

type pointerState struct {
	down     bool
	start    sapling.Vec
	last     sapling.Vec
	hit      *sapling.Shape // shape under the pointer at press time
	hover    *sapling.Shape // last shape the pointer was over (for enter/leave)
	dragging bool
	button   sapling.PointerButton // button captured at press time
}

// Hovered returns the shape under the pointer, or nil.
func (h *Host) Hovered() *sapling.Shape { return h.pointer.hover }

// Dragging returns the shape being dragged, or nil.
func (h *Host) Dragging() *sapling.Shape {
	if !h.pointer.dragging {
		return nil
	}
	return h.pointer.hit
}

// --- Input processing ---

// processMousePointer reads the mouse and feeds the pointer state machine.
func (h *Host) processMousePointer() {
	mx, my := ebiten.CursorPosition()
	world := h.camera.ScreenToWorld(float64(mx), float64(my))

	var pressed bool
	var button sapling.PointerButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		switch {
		case left:
			button = sapling.ButtonLeft
		case right:
			button = sapling.ButtonRight
		default:
			button = sapling.ButtonMiddle
		}
	}
	h.processPointer(world, pressed, button)
}

// processPointer runs the pointer state machine for one sample: hover
// enter/leave, press, click on release over the pressed shape, and drag once
// the pointer leaves the dead zone while pressed.
func (h *Host) processPointer(world sapling.Vec, pressed bool, button sapling.PointerButton) {
	ps := &h.pointer

	target := h.vis.Pick(world)
	if ps.dragging {
		// The dragged shape follows the pointer and would otherwise flicker
		// in and out of the hit test.
		target = ps.hit
	}

	if target != ps.hover {
		if ps.hover != nil {
			h.fireHover(ps.hover, sapling.PointerLeave, world, button)
		}
		if target != nil {
			h.fireHover(target, sapling.PointerEnter, world, button)
		}
		ps.hover = target
	}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.start = world
		ps.last = world
		ps.hit = target
		ps.dragging = false
		h.firePointer(target, sapling.PointerDown, world, button)

	case !pressed && ps.down:
		if ps.dragging {
			h.endDrag(ps.hit, world)
		} else if ps.hit != nil && ps.hit == target {
			h.fireClick(target, world, ps.button)
		}
		h.firePointer(target, sapling.PointerUp, world, ps.button)
		ps.down = false
		ps.hit = nil
		ps.dragging = false

	case pressed && ps.down:
		if world != ps.last {
			if !ps.dragging && ps.hit != nil && world.Distance(ps.start) > h.dragDeadZone {
				ps.dragging = true
				h.startDrag(ps.hit)
			}
			if ps.dragging {
				h.drag(ps.hit, world)
			} else {
				h.firePointer(target, sapling.PointerMove, world, ps.button)
			}
		}
		ps.last = world

	default:
		if world != ps.last {
			h.firePointer(target, sapling.PointerMove, world, button)
			ps.last = world
		}
	}
}

// --- Dispatch ---

func (h *Host) fireHover(s *sapling.Shape, typ sapling.PointerEventType, world sapling.Vec, button sapling.PointerButton) {
	if ns := s.NodeShape(); ns != nil {
		ns.SetHovered(typ == sapling.PointerEnter)
	}
	s.TriggerHover(sapling.PointerEvent{Type: typ, World: world, Button: button})
}

func (h *Host) firePointer(s *sapling.Shape, typ sapling.PointerEventType, world sapling.Vec, button sapling.PointerButton) {
	if s == nil {
		return
	}
	s.TriggerPointer(sapling.PointerEvent{Type: typ, World: world, Button: button})
}

func (h *Host) fireClick(s *sapling.Shape, world sapling.Vec, button sapling.PointerButton) {
	consumed := s.TriggerClick(sapling.PointerEvent{Type: sapling.PointerUp, World: world, Button: button})
	if consumed || !h.SelectOnClick {
		return
	}
	if ns := s.NodeShape(); ns != nil {
		ns.Select()
	}
}

func (h *Host) startDrag(s *sapling.Shape) {
	if ns := s.NodeShape(); ns != nil {
		ns.SetDragged(true)
	}
}

// drag steers the shape toward the pointer through its location target so
// the usual friction applies.
func (h *Host) drag(s *sapling.Shape, world sapling.Vec) {
	z := s.WorldLoc().Z
	s.SetTargetLoc(sapling.Fixed(sapling.V(world.X, world.Y, z)))
}

func (h *Host) endDrag(s *sapling.Shape, world sapling.Vec) {
	h.drag(s, world)
	if ns := s.NodeShape(); ns != nil {
		ns.SetDragged(false)
	}
}
