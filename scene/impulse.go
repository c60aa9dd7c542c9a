package scene

import (
	"github.com/pthm-cable/bubbles/components"
	"github.com/pthm-cable/bubbles/config"
	"github.com/pthm-cable/bubbles/engine"
	"github.com/pthm-cable/bubbles/random"
)

// Velocities reads and writes body velocities. *engine.World implements it.
type Velocities interface {
	Velocity(b engine.Body) components.Vec2
	SetVelocity(b engine.Body, v components.Vec2)
}

// ApplyScroll turns a scroll from last to current into a velocity impulse
// on every body and returns the scaled delta. Scrolling down (current >
// last) yields a negative delta. Each body draws its own x and y factors,
// and the impulse adds to the existing velocity.
func ApplyScroll(w Velocities, bodies []engine.Body, last, current float64, cfg *config.BubbleConfig, src random.Source) float64 {
	delta := (last - current) * cfg.ScrollVelocityScale
	if delta == 0 {
		return 0
	}
	for _, b := range bodies {
		v := w.Velocity(b)
		w.SetVelocity(b, components.Vec2{
			X: v.X + delta*src.Sample(cfg.XImpulseRange.Min, cfg.XImpulseRange.Max),
			Y: v.Y + delta*src.Sample(cfg.YImpulseRange.Min, cfg.YImpulseRange.Max),
		})
	}
	return delta
}
