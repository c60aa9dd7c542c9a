// Package scene runs the bubble population: it sizes and creates bodies for
// the current viewport, feeds throttled scroll input into velocity
// impulses, and rebuilds everything when the viewport is resized.
package scene

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/pthm-cable/bubbles/components"
	"github.com/pthm-cable/bubbles/config"
	"github.com/pthm-cable/bubbles/engine"
	"github.com/pthm-cable/bubbles/random"
)

// Engine creates the world, surface and stepper for a session.
// *engine.Engine implements it.
type Engine interface {
	CreateWorld(gravity components.Vec2) *engine.World
	CreateRenderSurface(world *engine.World, width, height float64, background color.RGBA) (*engine.Surface, error)
	CreateStepper(world *engine.World) *engine.Stepper
}

// Host is the environment a scene runs in. *host.Loop implements it.
type Host interface {
	Scheduler
	Viewport() components.Viewport
	ScrollOffset() float64
	OnScroll(fn func()) (remove func())
	OnResize(fn func()) (remove func())
}

// SessionInfo describes one session.
type SessionInfo struct {
	ID       int
	Viewport components.Viewport
	Bodies   int
}

// Stop reasons reported to observers.
const (
	StopShutdown = "shutdown"
	StopRestart  = "restart"
)

// Observer receives scene events. Callbacks run on the loop goroutine.
type Observer interface {
	OnSessionStart(info SessionInfo)
	OnSessionStop(info SessionInfo, reason string)
	OnScrollEvent()
	OnScrollImpulse(delta float64, bodies int)
	OnResizeEvent()
}

// Options holds scene settings that are not part of the bubble config.
type Options struct {
	Gravity    components.Vec2
	Background color.RGBA
	Observer   Observer
}

// Scene owns at most one live session.
type Scene struct {
	host     Host
	engine   Engine
	src      random.Source
	cfg      config.BubbleConfig
	opts     Options
	session  *session
	sessions int
}

// New creates a stopped scene. cfg is copied.
func New(h Host, e Engine, src random.Source, cfg config.BubbleConfig, opts Options) *Scene {
	return &Scene{
		host:   h,
		engine: e,
		src:    src,
		cfg:    cfg.Clone(),
		opts:   opts,
	}
}

// Start creates a session for the current viewport and begins stepping
// and rendering. It fails with ErrAlreadyRunning if a session is live and
// with config.ErrInvalidConfig before touching the engine if the config is
// invalid. On any engine failure nothing is left running.
func (s *Scene) Start(ctx context.Context) error {
	if s.session != nil {
		return ErrAlreadyRunning
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	palette, err := s.cfg.Palette()
	if err != nil {
		return err
	}

	s.sessions++
	ss, err := s.open(s.sessions, palette)
	if err != nil {
		slog.ErrorContext(ctx, "session_start_failed", "session", s.sessions, "error", err)
		return err
	}
	s.session = ss

	info := ss.info()
	slog.InfoContext(ctx, "session_started",
		"session", info.ID,
		"width", info.Viewport.Width,
		"height", info.Viewport.Height,
		"bodies", info.Bodies,
	)
	if s.opts.Observer != nil {
		s.opts.Observer.OnSessionStart(info)
	}
	return nil
}

// open builds a session. A partially built session is torn down before an
// error is returned.
func (s *Scene) open(id int, palette []color.RGBA) (*session, error) {
	cfg := s.cfg.Clone()
	viewport := s.host.Viewport()

	world := s.engine.CreateWorld(s.opts.Gravity)
	surface, err := s.engine.CreateRenderSurface(world, viewport.Width, viewport.Height, s.opts.Background)
	if err != nil {
		world.Clear()
		return nil, fmt.Errorf("scene: create surface: %w", err)
	}
	stepper := s.engine.CreateStepper(world)

	count := PopulationSize(viewport, cfg.PixelsPerBody)
	descs := make([]components.BodyDescriptor, 0, count)
	for i := range count {
		descs = append(descs, NewBody(i, viewport, &cfg, palette, s.src))
	}

	ss := &session{
		id:         id,
		scene:      s,
		cfg:        cfg,
		viewport:   viewport,
		world:      world,
		surface:    surface,
		stepper:    stepper,
		bodies:     world.AddBodies(descs),
		lastScroll: s.host.ScrollOffset(),
		scroll:     NewThrottle(s.host),
		resize:     NewThrottle(s.host),
	}
	ss.removers = []func(){
		s.host.OnScroll(ss.handleScroll),
		s.host.OnResize(ss.handleResize),
	}

	stepper.Start()
	surface.Start()
	return ss, nil
}

// Shutdown tears down the live session. It is a no-op without one.
func (s *Scene) Shutdown() {
	s.stop(StopShutdown)
}

func (s *Scene) stop(reason string) {
	ss := s.session
	if ss == nil {
		return
	}
	s.session = nil
	info := ss.info()

	if err := ss.close(); err != nil {
		slog.Warn("surface_destroy_failed", "session", info.ID, "error", err)
	}

	slog.Info("session_stopped", "session", info.ID, "reason", reason)
	if s.opts.Observer != nil {
		s.opts.Observer.OnSessionStop(info, reason)
	}
}

// Restart replaces the live session with a new one sized to the current
// viewport. It is a no-op without a session. If the new session fails to
// start, the scene is left stopped with no listeners attached and the error
// is returned; nothing retries it, so a resize-triggered failure stays
// stopped until the caller calls Start.
func (s *Scene) Restart() error {
	if s.session == nil {
		return nil
	}
	s.stop(StopRestart)
	return s.Start(context.Background())
}

// Reconfigure validates cfg and makes it the config for future sessions,
// restarting the live one. An invalid cfg leaves the scene untouched.
func (s *Scene) Reconfigure(cfg config.BubbleConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg.Clone()
	slog.Info("scene_reconfigured",
		"pixels_per_body", cfg.PixelsPerBody,
		"scroll_velocity_scale", cfg.ScrollVelocityScale,
		"air_friction", cfg.AirFriction,
	)
	return s.Restart()
}

// Running reports whether a session is live.
func (s *Scene) Running() bool {
	return s.session != nil
}

// Config returns a copy of the config used for new sessions.
func (s *Scene) Config() config.BubbleConfig {
	return s.cfg.Clone()
}

// Session returns the live session's info.
func (s *Scene) Session() (SessionInfo, bool) {
	if s.session == nil {
		return SessionInfo{}, false
	}
	return s.session.info(), true
}

// Bodies returns the live session's body handles in creation order.
func (s *Scene) Bodies() []engine.Body {
	if s.session == nil {
		return nil
	}
	return append([]engine.Body(nil), s.session.bodies...)
}

// World returns the live session's world, or nil.
func (s *Scene) World() *engine.World {
	if s.session == nil {
		return nil
	}
	return s.session.world
}

// Viewport returns the viewport the live session was sized for.
func (s *Scene) Viewport() components.Viewport {
	if s.session == nil {
		return components.Viewport{}
	}
	return s.session.viewport
}

// PendingInput reports whether the live session has a scroll or resize
// callback scheduled.
func (s *Scene) PendingInput() (scroll, resize bool) {
	if s.session == nil {
		return false, false
	}
	return s.session.scroll.Pending(), s.session.resize.Pending()
}
