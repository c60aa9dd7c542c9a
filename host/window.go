package host

import (
	"context"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/bubbles/components"
	"github.com/pthm-cable/bubbles/config"
)

// Window is a raylib backend. The mouse wheel and arrow/page keys scroll
// an emulated page; resizing the window dispatches resize events.
type Window struct {
	*Loop
	page  Page
	clear color.RGBA
}

// OpenWindow creates the raylib window and a loop sized to it.
func OpenWindow(screen config.ScreenConfig, hostCfg config.HostConfig, clear color.RGBA) *Window {
	flags := uint32(rl.FlagMsaa4xHint)
	if screen.Resizable {
		flags |= rl.FlagWindowResizable
	}
	rl.SetConfigFlags(flags)
	rl.InitWindow(int32(screen.Width), int32(screen.Height), screen.Title)
	rl.SetTargetFPS(int32(screen.TargetFPS))

	return &Window{
		Loop:  NewLoop(NewSystemClock(), windowViewport()),
		page:  NewPage(hostCfg),
		clear: clear,
	}
}

func windowViewport() components.Viewport {
	return components.Viewport{
		Width:  float64(rl.GetScreenWidth()),
		Height: float64(rl.GetScreenHeight()),
	}
}

// Run polls input and ticks the loop once per frame until the window is
// closed or ctx is cancelled.
func (w *Window) Run(ctx context.Context) error {
	for !rl.WindowShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		w.pollInput()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Color(w.clear))
		w.Tick(float64(rl.GetFrameTime()))
		rl.EndDrawing()
	}
	return nil
}

// pollInput translates raylib input into loop events.
func (w *Window) pollInput() {
	if rl.IsWindowResized() {
		w.SetViewport(windowViewport())
	}

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	vh := w.Viewport().Height
	offset := w.ScrollOffset()

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		offset = w.page.Wheel(offset, float64(wheel), vh)
	}

	// Smooth keyboard scrolling
	keyStep := w.page.Step / 4
	if rl.IsKeyDown(rl.KeyDown) {
		offset += keyStep
	}
	if rl.IsKeyDown(rl.KeyUp) {
		offset -= keyStep
	}
	if rl.IsKeyPressed(rl.KeyPageDown) || rl.IsKeyPressed(rl.KeySpace) {
		offset += vh
	}
	if rl.IsKeyPressed(rl.KeyPageUp) {
		offset -= vh
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		offset = 0
	}
	if rl.IsKeyPressed(rl.KeyEnd) {
		offset = w.page.Height
	}

	w.ScrollTo(w.page.Clamp(offset, vh))
}

// Close closes the raylib window.
func (w *Window) Close() error {
	rl.CloseWindow()
	return nil
}
