package engine

import (
	"image/color"

	"github.com/pthm-cable/bubbles/host"
)

// Canvas is a drawing target. Coordinates are viewport pixels.
type Canvas interface {
	Clear(background color.RGBA)
	Circle(x, y, r float64, fill color.RGBA, opacity float64)
	Close() error
}

// Surface draws a World onto a Canvas once per frame while started.
type Surface struct {
	world      *World
	canvas     Canvas
	frames     FrameSource
	width      float64
	height     float64
	background color.RGBA

	remove    func()
	destroyed bool
	drawn     int64
}

// Start begins drawing. Starting a started or destroyed surface is a no-op.
func (s *Surface) Start() {
	if s.remove != nil || s.destroyed {
		return
	}
	s.remove = s.frames.OnFrame(host.PhaseRender, s.draw)
}

// Stop halts drawing.
func (s *Surface) Stop() {
	if s.remove == nil {
		return
	}
	s.remove()
	s.remove = nil
}

// Destroy stops drawing and releases the canvas.
func (s *Surface) Destroy() error {
	s.Stop()
	if s.destroyed {
		return nil
	}
	s.destroyed = true
	return s.canvas.Close()
}

// Running reports whether the surface draws on each frame.
func (s *Surface) Running() bool {
	return s.remove != nil
}

// Destroyed reports whether Destroy has been called.
func (s *Surface) Destroyed() bool {
	return s.destroyed
}

// Size returns the drawing area the surface was created with.
func (s *Surface) Size() (width, height float64) {
	return s.width, s.height
}

// Frames returns how many frames have been drawn.
func (s *Surface) Frames() int64 {
	return s.drawn
}

func (s *Surface) draw(float64) {
	s.drawn++
	s.canvas.Clear(s.background)
	s.world.Each(func(b BodyView) {
		s.canvas.Circle(b.Position.X, b.Position.Y, b.Body.Radius, b.Appearance.Fill, b.Appearance.Opacity)
	})
}
