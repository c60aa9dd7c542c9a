package components

import "image/color"

// Collision groups. Bodies sharing a positive group always collide; bodies
// sharing a negative group never collide with each other.
const (
	GroupCollide     = 1
	GroupPassThrough = -1
)

// Body holds physical properties of a bubble.
type Body struct {
	ID          int
	Radius      float64
	FrictionAir float64
}

// Appearance holds how a body is drawn.
type Appearance struct {
	Fill    color.RGBA
	Opacity float64
}

// Collision holds the body's collision filter.
type Collision struct {
	Group int
}

// Wrap holds the bounds a body's position wraps around.
type Wrap struct {
	Bounds Bounds
}

// BodyDescriptor fully specifies a body before it is added to a world.
type BodyDescriptor struct {
	ID          int
	Position    Vec2
	Radius      float64
	Fill        color.RGBA
	Opacity     float64
	FrictionAir float64
	Group       int
	Wrap        Bounds
}

// CanCollide reports whether two collision groups interact.
func CanCollide(a, b int) bool {
	if a == b && a != 0 {
		return a > 0
	}
	return true
}
