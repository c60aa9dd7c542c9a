package host

import (
	"context"
	"math"
	"time"

	"github.com/pthm-cable/bubbles/components"
	"github.com/pthm-cable/bubbles/config"
)

// Headless runs the loop on a manual clock as fast as possible, feeding a
// scripted scroll gesture and optional periodic resizes.
type Headless struct {
	*Loop
	clock  *ManualClock
	cfg    config.HeadlessConfig
	page   Page
	dt     float64
	base   components.Viewport
	shrunk bool

	nextResize time.Duration
}

// NewHeadless creates a headless backend with the given base viewport.
func NewHeadless(cfg config.HeadlessConfig, hostCfg config.HostConfig, viewport components.Viewport, dt float64) *Headless {
	clock := NewManualClock()
	h := &Headless{
		Loop:  NewLoop(clock, viewport),
		clock: clock,
		cfg:   cfg,
		page:  NewPage(hostCfg),
		dt:    dt,
		base:  viewport,
	}
	if cfg.ResizeInterval > 0 {
		h.nextResize = seconds(cfg.ResizeInterval)
	}
	return h
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ScriptedOffset returns the autoscroll offset at elapsed time t: a
// smooth back-and-forth sweep between 0 and ScrollAmplitude.
func (h *Headless) ScriptedOffset(t time.Duration) float64 {
	if h.cfg.ScrollPeriod <= 0 || h.cfg.ScrollAmplitude == 0 {
		return 0
	}
	phase := 2 * math.Pi * t.Seconds() / h.cfg.ScrollPeriod
	return h.cfg.ScrollAmplitude * (1 - math.Cos(phase)) / 2
}

// Step advances one frame: clock, scripted input, timers and frame
// listeners.
func (h *Headless) Step() {
	h.clock.Advance(seconds(h.dt))
	now := h.clock.Now()

	if h.nextResize > 0 && now >= h.nextResize {
		h.shrunk = !h.shrunk
		v := h.base
		if h.shrunk {
			v.Width *= h.cfg.ResizeScale
			v.Height *= h.cfg.ResizeScale
		}
		h.SetViewport(v)
		h.nextResize += seconds(h.cfg.ResizeInterval)
	}

	h.ScrollTo(h.page.Clamp(h.ScriptedOffset(now), h.Viewport().Height))
	h.Tick(h.dt)
}

// Run steps until ctx is cancelled.
func (h *Headless) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		h.Step()
	}
}

// Close is a no-op.
func (h *Headless) Close() error {
	return nil
}
