// Package ebitenhost drives a sapling visualisation from an ebiten game
// loop: it owns the clock, turns mouse input into shape pointer events and
// provides a camera shape for screen/world conversion. Drawing is left to
// the caller through Host.DrawFunc.
package ebitenhost

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"

	"github.com/phanxgames/sapling"
)

// RunConfig holds window settings for Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
}

// Host implements ebiten.Game around a Visualisation.
type Host struct {
	vis    *sapling.Visualisation
	camera *Camera

	// DrawFunc renders the visualisation. Nil draws nothing but the
	// optional stats line.
	DrawFunc func(screen *ebiten.Image, h *Host)
	// UpdateFunc runs after every tick. A non-nil error stops the game.
	UpdateFunc func() error
	// ShowFPS prints TPS and shape counts in the top-left corner.
	ShowFPS bool
	// SelectOnClick selects node shapes when they are clicked.
	SelectOnClick bool

	width, height int
	dragDeadZone  float64

	pointer     pointerState
	injectQueue []pointerSample
}

// New creates a host for vis with a screen of width×height pixels.
func New(vis *sapling.Visualisation, width, height int) *Host {
	h := &Host{
		vis:           vis,
		width:         width,
		height:        height,
		dragDeadZone:  defaultDragDeadZone,
		SelectOnClick: true,
	}
	h.camera = newCamera(vis, float64(width), float64(height))
	return h
}

// Visualisation returns the driven visualisation.
func (h *Host) Visualisation() *sapling.Visualisation { return h.vis }

// Camera returns the host's camera.
func (h *Host) Camera() *Camera { return h.camera }

// SetDragDeadZone sets the minimum movement, in world units, before a press
// becomes a drag.
func (h *Host) SetDragDeadZone(d float64) { h.dragDeadZone = d }

// dt is the fixed simulation step: ebiten calls Update at the configured
// TPS regardless of frame rate.
func (h *Host) dt() float64 {
	tps := h.vis.Config().TPS
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	return 1 / float64(tps)
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	if !h.processInjectedInput() {
		h.processMousePointer()
	}
	h.vis.Tick(h.dt())
	if h.UpdateFunc != nil {
		return h.UpdateFunc()
	}
	return nil
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	if h.DrawFunc != nil {
		h.DrawFunc(screen, h)
	}
	if h.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("TPS: %.1f  shapes: %d  active: %d",
			ebiten.ActualTPS(), len(h.vis.Shapes()), h.vis.ActiveCount()))
	}
}

// Layout implements ebiten.Game. The screen keeps the size given to New.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	return h.width, h.height
}

// Run opens a window and runs h until the window is closed or UpdateFunc
// returns an error.
func Run(h *Host, cfg RunConfig) error {
	if cfg.Width > 0 && cfg.Height > 0 {
		h.width, h.height = cfg.Width, cfg.Height
		h.camera.setViewport(float64(cfg.Width), float64(cfg.Height))
	}
	h.ShowFPS = h.ShowFPS || cfg.ShowFPS
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(h.width, h.height)
	if tps := h.vis.Config().TPS; tps > 0 {
		ebiten.SetTPS(tps)
	}
	h.vis.Logger().Debug("starting game loop",
		zap.String("title", cfg.Title),
		zap.Int("width", h.width),
		zap.Int("height", h.height),
	)
	return ebiten.RunGame(h)
}
