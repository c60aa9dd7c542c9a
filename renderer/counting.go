package renderer

import "image/color"

// CountingCanvas draws nothing and counts what it was asked to draw. The
// headless backend renders through it.
type CountingCanvas struct {
	Frames  int64
	Circles int64
	// LastFrame is the number of circles in the most recent frame.
	LastFrame int
	Closed    bool
}

func (c *CountingCanvas) Clear(color.RGBA) {
	c.Frames++
	c.LastFrame = 0
}

func (c *CountingCanvas) Circle(float64, float64, float64, color.RGBA, float64) {
	c.Circles++
	c.LastFrame++
}

func (c *CountingCanvas) Close() error {
	c.Closed = true
	return nil
}
