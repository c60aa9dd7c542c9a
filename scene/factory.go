package scene

import (
	"image/color"

	"github.com/pthm-cable/bubbles/components"
	"github.com/pthm-cable/bubbles/config"
	"github.com/pthm-cable/bubbles/random"
)

// NewBody describes the body created at position index in a session.
// Colors cycle through palette by index; everything else positional or
// size related is sampled from src.
func NewBody(index int, v components.Viewport, cfg *config.BubbleConfig, palette []color.RGBA, src random.Source) components.BodyDescriptor {
	x := src.Sample(0, v.Width)
	y := src.Sample(0, v.Height)
	r := src.Sample(cfg.RadiusRange.Min, cfg.RadiusRange.Max)

	group := components.GroupPassThrough
	if cfg.Collisions {
		group = components.GroupCollide
	}

	var fill color.RGBA
	if len(palette) > 0 {
		fill = palette[index%len(palette)]
	}

	return components.BodyDescriptor{
		ID:          index,
		Position:    components.Vec2{X: x, Y: y},
		Radius:      r,
		Fill:        fill,
		Opacity:     cfg.Opacity,
		FrictionAir: cfg.AirFriction,
		Group:       group,
		Wrap:        v.Bounds(),
	}
}
