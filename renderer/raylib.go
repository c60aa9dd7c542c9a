// Package renderer provides the canvases a render surface draws bubbles on.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// RaylibCanvas draws into the current raylib frame. The window backend
// owns BeginDrawing/EndDrawing and the clear color.
type RaylibCanvas struct {
	width, height int32
}

// NewRaylibCanvas creates a canvas covering width x height pixels.
func NewRaylibCanvas(width, height float64) *RaylibCanvas {
	return &RaylibCanvas{width: int32(width), height: int32(height)}
}

// Clear paints an opaque background. A transparent background leaves the
// window clear color showing.
func (c *RaylibCanvas) Clear(background color.RGBA) {
	if background.A == 0 {
		return
	}
	rl.DrawRectangle(0, 0, c.width, c.height, rl.Color(background))
}

// Circle draws a filled circle faded to opacity.
func (c *RaylibCanvas) Circle(x, y, r float64, fill color.RGBA, opacity float64) {
	rl.DrawCircleV(rl.NewVector2(float32(x), float32(y)), float32(r), rl.Fade(rl.Color(fill), float32(opacity)))
}

// Close is a no-op; the window owns the GL context.
func (c *RaylibCanvas) Close() error {
	return nil
}
