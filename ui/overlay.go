package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/bubbles/host"
)

// Overlay draws the HUD, perf panel and tuning panel over the scene once
// per frame. Keys: Tab tuning, H HUD, P perf.
type Overlay struct {
	hud    *HUD
	perf   *PerfPanel
	tuning *Tuning

	hudData  func() HUDData
	perfData func() PerfPanelData

	showHUD  bool
	showPerf bool
}

// NewOverlay creates an overlay. hudData and perfData are sampled each
// frame they are visible.
func NewOverlay(tuning *Tuning, hudData func() HUDData, perfData func() PerfPanelData) *Overlay {
	return &Overlay{
		hud:      NewHUD(),
		perf:     NewPerfPanel(10, 100),
		tuning:   tuning,
		hudData:  hudData,
		perfData: perfData,
		showHUD:  true,
	}
}

// Attach registers the overlay for the overlay phase of frames.
func (o *Overlay) Attach(loop *host.Loop) (detach func()) {
	return loop.OnFrame(host.PhaseOverlay, o.draw)
}

func (o *Overlay) draw(float64) {
	if rl.IsKeyPressed(rl.KeyTab) {
		o.tuning.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		o.showHUD = !o.showHUD
	}
	if rl.IsKeyPressed(rl.KeyP) {
		o.showPerf = !o.showPerf
	}

	screenW := int32(rl.GetScreenWidth())
	screenH := int32(rl.GetScreenHeight())

	if o.showHUD {
		o.hud.Draw(o.hudData())
		o.hud.DrawControls(screenH, "Wheel/Arrows: scroll | Tab: tuning | H: HUD | P: perf | F11: fullscreen")
	}
	if o.showPerf {
		o.perf.Draw(o.perfData())
	}

	o.tuning.x = screenW - o.tuning.width - 10
	o.tuning.Draw()
}
