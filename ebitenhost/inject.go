package ebitenhost

import (
	"github.com/phanxgames/sapling"
)

// pointerSample is one queued synthetic pointer reading in screen space.
// It goes through the camera like a real mouse sample.
type pointerSample struct {
	x, y float64
	down bool
}

func (h *Host) queue(x, y float64, down bool) {
	h.injectQueue = append(h.injectQueue, pointerSample{x: x, y: y, down: down})
}

// InjectPress queues a left-button press at screen (x, y). Each queued
// sample is consumed by one Update.
func (h *Host) InjectPress(x, y float64) { h.queue(x, y, true) }

// InjectMove queues a move with the button still down.
func (h *Host) InjectMove(x, y float64) { h.queue(x, y, true) }

// InjectHover queues a move with the button up.
func (h *Host) InjectHover(x, y float64) { h.queue(x, y, false) }

// InjectRelease queues a release. Outside a press it is a plain hover.
func (h *Host) InjectRelease(x, y float64) { h.queue(x, y, false) }

// InjectClick queues a press and a release at the same point.
func (h *Host) InjectClick(x, y float64) {
	h.queue(x, y, true)
	h.queue(x, y, false)
}

// InjectDrag spreads a drag from (fromX, fromY) to (toX, toY) over frames
// samples: a press, evenly spaced moves and a release. frames is at least 2.
func (h *Host) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	n := max(frames, 2) - 1
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		h.queue(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t, true)
	}
	h.queue(toX, toY, false)
}

// Pending returns the number of queued samples.
func (h *Host) Pending() int { return len(h.injectQueue) }

// processInjectedInput feeds the oldest queued sample to the pointer state
// machine. It reports false when the queue is empty, so Update falls back to
// the real mouse.
func (h *Host) processInjectedInput() bool {
	if len(h.injectQueue) == 0 {
		return false
	}
	p := h.injectQueue[0]
	h.injectQueue = h.injectQueue[1:]
	h.processPointer(h.camera.ScreenToWorld(p.x, p.y), p.down, sapling.ButtonLeft)
	return true
}
