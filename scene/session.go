package scene

import (
	"log/slog"

	"github.com/pthm-cable/bubbles/components"
	"github.com/pthm-cable/bubbles/config"
	"github.com/pthm-cable/bubbles/engine"
)

// session is the state of one Start..Shutdown span. Its handlers are only
// reachable while its listeners are registered.
type session struct {
	id    int
	scene *Scene
	cfg   config.BubbleConfig

	viewport components.Viewport
	world    *engine.World
	surface  *engine.Surface
	stepper  *engine.Stepper
	bodies   []engine.Body

	lastScroll float64
	scroll     *Throttle
	resize     *Throttle
	removers   []func()
}

func (ss *session) info() SessionInfo {
	return SessionInfo{ID: ss.id, Viewport: ss.viewport, Bodies: len(ss.bodies)}
}

func (ss *session) handleScroll() {
	if obs := ss.scene.opts.Observer; obs != nil {
		obs.OnScrollEvent()
	}
	ss.scroll.Arm(ss.cfg.ScrollThrottle(), ss.onScroll)
}

func (ss *session) handleResize() {
	if obs := ss.scene.opts.Observer; obs != nil {
		obs.OnResizeEvent()
	}
	ss.resize.Arm(ss.cfg.ResizeThrottle(), ss.onResize)
}

// onScroll applies the impulse for the scroll since the last firing.
func (ss *session) onScroll() {
	current := ss.scene.host.ScrollOffset()
	delta := ApplyScroll(ss.world, ss.bodies, ss.lastScroll, current, &ss.cfg, ss.scene.src)
	ss.lastScroll = current

	slog.Debug("scroll_impulse", "session", ss.id, "offset", current, "delta", delta)
	if obs := ss.scene.opts.Observer; obs != nil {
		obs.OnScrollImpulse(delta, len(ss.bodies))
	}
}

// onResize restarts the scene. A failed restart is logged and leaves the
// scene stopped.
func (ss *session) onResize() {
	if ss.scene.session != ss {
		return
	}
	if err := ss.scene.Restart(); err != nil {
		slog.Error("restart_failed", "session", ss.id, "error", err)
	}
}

// close cancels timers, detaches listeners, stops the engine and releases
// every body.
func (ss *session) close() error {
	ss.scroll.Cancel()
	ss.resize.Cancel()
	for _, remove := range ss.removers {
		remove()
	}
	ss.removers = nil

	ss.stepper.Stop()
	ss.surface.Stop()
	err := ss.surface.Destroy()
	ss.world.Clear()
	ss.bodies = nil
	return err
}
