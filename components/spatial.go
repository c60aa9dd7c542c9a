// Package components defines ECS components and value types shared by the
// scene and the engine.
package components

// Vec2 is a 2D vector in viewport pixels.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Position represents a body's center in viewport pixels.
type Position struct {
	X, Y float64
}

// Velocity represents a body's velocity in pixels per step.
type Velocity struct {
	X, Y float64
}

// Viewport holds the measured size of the host viewport.
type Viewport struct {
	Width, Height float64
}

// Area returns width * height.
func (v Viewport) Area() float64 {
	return v.Width * v.Height
}

// Bounds is an axis-aligned rectangle.
type Bounds struct {
	Min, Max Vec2
}

// Bounds returns the rectangle (0,0)-(width,height).
func (v Viewport) Bounds() Bounds {
	return Bounds{Max: Vec2{X: v.Width, Y: v.Height}}
}
