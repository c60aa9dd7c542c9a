package engine

import "github.com/pthm-cable/bubbles/host"

// FrameSource delivers per-frame callbacks. *host.Loop implements it.
type FrameSource interface {
	OnFrame(phase host.Phase, fn func(dt float64)) (remove func())
}

const maxSubsteps = 4

// Stepper advances a World at a fixed rate from frame ticks.
type Stepper struct {
	world  *World
	frames FrameSource
	dt     float64
	acc    float64
	remove func()
}

// NewStepper creates a stopped stepper. dt is the fixed step in seconds.
func NewStepper(world *World, frames FrameSource, dt float64) *Stepper {
	return &Stepper{world: world, frames: frames, dt: dt}
}

// Start begins stepping on every frame. Starting twice is a no-op.
func (s *Stepper) Start() {
	if s.remove != nil {
		return
	}
	s.acc = 0
	s.remove = s.frames.OnFrame(host.PhaseStep, s.advance)
}

// Stop halts stepping. Stopping a stopped stepper is a no-op.
func (s *Stepper) Stop() {
	if s.remove == nil {
		return
	}
	s.remove()
	s.remove = nil
}

// Running reports whether the stepper is registered for frames.
func (s *Stepper) Running() bool {
	return s.remove != nil
}

func (s *Stepper) advance(frameDT float64) {
	if s.dt <= 0 {
		s.world.Step()
		return
	}
	s.acc += frameDT
	// Tolerate float drift so a frame of exactly dt always steps once
	const eps = 1e-9
	n := 0
	for s.acc+eps >= s.dt && n < maxSubsteps {
		s.world.Step()
		s.acc -= s.dt
		n++
	}
	if n == maxSubsteps {
		s.acc = 0
	}
}
