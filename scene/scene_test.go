package scene

import (
	"context"
	"errors"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/bubbles/components"
	"github.com/pthm-cable/bubbles/config"
	"github.com/pthm-cable/bubbles/engine"
	"github.com/pthm-cable/bubbles/host"
	"github.com/pthm-cable/bubbles/random"
	"github.com/pthm-cable/bubbles/renderer"
)

type recordingObserver struct {
	starts   []SessionInfo
	stops    []string
	events   int
	impulses []float64
	resizes  int
}

func (o *recordingObserver) OnSessionStart(info SessionInfo)         { o.starts = append(o.starts, info) }
func (o *recordingObserver) OnSessionStop(_ SessionInfo, why string) { o.stops = append(o.stops, why) }
func (o *recordingObserver) OnScrollEvent()                          { o.events++ }
func (o *recordingObserver) OnScrollImpulse(delta float64, _ int)    { o.impulses = append(o.impulses, delta) }
func (o *recordingObserver) OnResizeEvent()                          { o.resizes++ }

type harness struct {
	loop     *host.Loop
	eng      *engine.Engine
	canvases []*renderer.CountingCanvas
	canvasErr error // returned by the canvas factory when set
	observer *recordingObserver
	scene    *Scene
}

func newHarness(t *testing.T, viewport components.Viewport, cfg config.BubbleConfig) *harness {
	t.Helper()
	h := &harness{
		loop:     host.NewLoop(host.NewManualClock(), viewport),
		observer: &recordingObserver{},
	}
	factory := func(float64, float64, color.RGBA) (engine.Canvas, error) {
		if h.canvasErr != nil {
			return nil, h.canvasErr
		}
		c := &renderer.CountingCanvas{}
		h.canvases = append(h.canvases, c)
		return c, nil
	}
	h.eng = engine.New(h.loop, factory, config.PhysicsConfig{DT: 1.0 / 60, GridCellSize: 200})
	h.scene = New(h.loop, h.eng, random.NewUniform(42), cfg, Options{Observer: h.observer})
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	if err := h.scene.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func (h *harness) velocities() []components.Vec2 {
	w := h.scene.World()
	var vs []components.Vec2
	for _, b := range h.scene.Bodies() {
		vs = append(vs, w.Velocity(b))
	}
	return vs
}

var defaultViewport = components.Viewport{Width: 1000, Height: 500}

func TestStartCreatesPopulation(t *testing.T) {
	h := newHarness(t, defaultViewport, config.DefaultBubbles())
	h.start(t)

	if !h.scene.Running() {
		t.Fatal("scene not running after Start")
	}
	if got := len(h.scene.Bodies()); got != 10 {
		t.Errorf("bodies = %d, want 10", got)
	}
	if got := h.scene.World().Len(); got != 10 {
		t.Errorf("world bodies = %d, want 10", got)
	}
	if h.scene.Viewport() != defaultViewport {
		t.Errorf("viewport = %+v", h.scene.Viewport())
	}

	scroll, resize, frames := h.loop.Listeners()
	if scroll != 1 || resize != 1 || frames != 2 {
		t.Errorf("listeners scroll=%d resize=%d frames=%d, want 1/1/2", scroll, resize, frames)
	}

	h.loop.Tick(1.0 / 60)
	if got := h.canvases[0].LastFrame; got != 10 {
		t.Errorf("drew %d circles, want 10", got)
	}
	if got := h.scene.World().Steps(); got != 1 {
		t.Errorf("steps = %d, want 1", got)
	}

	if len(h.observer.starts) != 1 || h.observer.starts[0].Bodies != 10 {
		t.Errorf("observer starts = %+v", h.observer.starts)
	}
}

func TestStartWhileRunningRejected(t *testing.T) {
	h := newHarness(t, defaultViewport, config.DefaultBubbles())
	h.start(t)

	err := h.scene.Start(context.Background())
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
	if len(h.canvases) != 1 {
		t.Errorf("second Start created %d canvases", len(h.canvases)-1)
	}
	if scroll, _, _ := h.loop.Listeners(); scroll != 1 {
		t.Errorf("scroll listeners = %d, want 1", scroll)
	}
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.BubbleConfig)
	}{
		{"empty colors", func(c *config.BubbleConfig) { c.Colors = nil }},
		{"zero pixels per body", func(c *config.BubbleConfig) { c.PixelsPerBody = 0 }},
		{"inverted radius", func(c *config.BubbleConfig) { c.RadiusRange = config.Range{Min: 100, Max: 50} }},
		{"inverted impulse", func(c *config.BubbleConfig) { c.YImpulseRange = config.Range{Min: 2, Max: 1} }},
		{"bad color", func(c *config.BubbleConfig) { c.Colors = []string{"#zzz"} }},
		{"nan radius", func(c *config.BubbleConfig) { c.RadiusRange = config.Range{Min: math.NaN(), Max: math.NaN()} }},
		{"nan opacity", func(c *config.BubbleConfig) { c.Opacity = math.NaN() }},
		{"nan pixels per body", func(c *config.BubbleConfig) { c.PixelsPerBody = math.NaN() }},
		{"vanishing pixels per body", func(c *config.BubbleConfig) { c.PixelsPerBody = 1e-300 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultBubbles()
			tc.mutate(&cfg)
			h := newHarness(t, defaultViewport, cfg)

			err := h.scene.Start(context.Background())
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if h.scene.Running() {
				t.Error("scene running after rejected config")
			}
			if len(h.canvases) != 0 {
				t.Error("engine touched before config validated")
			}
			if scroll, resize, frames := h.loop.Listeners(); scroll+resize+frames != 0 {
				t.Errorf("listeners left registered: %d/%d/%d", scroll, resize, frames)
			}
		})
	}
}

func TestStartPropagatesSurfaceFailure(t *testing.T) {
	loop := host.NewLoop(host.NewManualClock(), defaultViewport)
	boom := errors.New("no display")
	eng := engine.New(loop, func(float64, float64, color.RGBA) (engine.Canvas, error) {
		return nil, boom
	}, config.PhysicsConfig{DT: 1.0 / 60, GridCellSize: 200})
	s := New(loop, eng, random.NewUniform(1), config.DefaultBubbles(), Options{})

	err := s.Start(context.Background())
	if !errors.Is(err, engine.ErrSurface) || !errors.Is(err, boom) {
		t.Fatalf("expected surface error, got %v", err)
	}
	if s.Running() {
		t.Error("scene running after failed Start")
	}
	if scroll, resize, frames := loop.Listeners(); scroll+resize+frames != 0 {
		t.Errorf("listeners left registered: %d/%d/%d", scroll, resize, frames)
	}
	if loop.PendingTimers() != 0 {
		t.Errorf("timers left pending: %d", loop.PendingTimers())
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	h := newHarness(t, defaultViewport, config.DefaultBubbles())
	h.start(t)
	world := h.scene.World()

	h.loop.ScrollTo(50)
	h.scene.Shutdown()

	if h.scene.Running() || h.scene.Bodies() != nil || h.scene.World() != nil {
		t.Error("session state survived Shutdown")
	}
	if world.Len() != 0 {
		t.Errorf("world still holds %d bodies", world.Len())
	}
	if !h.canvases[0].Closed {
		t.Error("surface not destroyed")
	}
	if scroll, resize, frames := h.loop.Listeners(); scroll+resize+frames != 0 {
		t.Errorf("listeners left registered: %d/%d/%d", scroll, resize, frames)
	}
	if h.loop.PendingTimers() != 0 {
		t.Errorf("pending scroll timer survived Shutdown")
	}

	h.scene.Shutdown()
	if err := h.scene.Restart(); err != nil {
		t.Errorf("Restart without session: %v", err)
	}
	if h.scene.Running() {
		t.Error("Restart without session started one")
	}
	if len(h.observer.stops) != 1 || h.observer.stops[0] != StopShutdown {
		t.Errorf("observer stops = %v", h.observer.stops)
	}

	// A stopped scene can start again
	h.start(t)
	if got := len(h.scene.Bodies()); got != 10 {
		t.Errorf("bodies after second Start = %d", got)
	}
}

func TestSingleColorPalette(t *testing.T) {
	cfg := config.DefaultBubbles()
	cfg.Colors = []string{"#fff"}
	h := newHarness(t, components.Viewport{Width: 1280, Height: 720}, cfg)
	h.start(t)

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	n := 0
	h.scene.World().Each(func(b engine.BodyView) {
		n++
		if b.Appearance.Fill != white {
			t.Errorf("body %d fill = %v, want white", b.Body.ID, b.Appearance.Fill)
		}
	})
	if n != 18 {
		t.Errorf("bodies = %d, want 18", n)
	}
}

func TestScrollImpulseThroughHost(t *testing.T) {
	h := newHarness(t, defaultViewport, config.DefaultBubbles())
	h.loop.ScrollTo(100)
	h.start(t)

	h.loop.ScrollTo(40)
	h.loop.Advance(50 * time.Millisecond)
	for _, v := range h.velocities() {
		if v != (components.Vec2{}) {
			t.Fatalf("impulse applied before throttle delay: %+v", v)
		}
	}

	h.loop.Advance(50 * time.Millisecond)
	for i, v := range h.velocities() {
		if v.X < -0.75 || v.X > 0.75 {
			t.Errorf("body %d vx = %f, want within [-0.75, 0.75]", i, v.X)
		}
		if v.Y < 0.75 || v.Y > 2.25 {
			t.Errorf("body %d vy = %f, want within [0.75, 2.25]", i, v.Y)
		}
	}
	if len(h.observer.impulses) != 1 || h.observer.impulses[0] != 1.5 {
		t.Errorf("impulses = %v, want [1.5]", h.observer.impulses)
	}
}

func TestScrollEventsAreThrottled(t *testing.T) {
	h := newHarness(t, defaultViewport, config.DefaultBubbles())
	h.start(t)

	for i := 1; i <= 5; i++ {
		h.loop.ScrollTo(float64(i * 10))
		h.loop.Advance(10 * time.Millisecond)
	}
	h.loop.Advance(100 * time.Millisecond)

	if h.observer.events != 5 {
		t.Errorf("raw scroll events = %d, want 5", h.observer.events)
	}
	if len(h.observer.impulses) != 1 {
		t.Fatalf("impulses = %d, want 1", len(h.observer.impulses))
	}
	// The firing sees the offset at fire time, not at arm time
	if got, want := h.observer.impulses[0], -50*0.025; got != want {
		t.Errorf("delta = %f, want %f", got, want)
	}
}

func TestRestartCancelsStaleScrollTimer(t *testing.T) {
	h := newHarness(t, defaultViewport, config.DefaultBubbles())
	h.start(t)

	h.loop.ScrollTo(200)
	if scroll, _ := h.scene.PendingInput(); !scroll {
		t.Fatal("scroll throttle not armed")
	}

	if err := h.scene.Restart(); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if h.loop.PendingTimers() != 0 {
		t.Fatalf("stale timer survived Restart")
	}

	h.loop.Advance(time.Second)
	for i, v := range h.velocities() {
		if v != (components.Vec2{}) {
			t.Errorf("body %d mutated by stale timer: %+v", i, v)
		}
	}
	if len(h.observer.impulses) != 0 {
		t.Errorf("stale impulse fired: %v", h.observer.impulses)
	}

	// The new session starts from the offset at restart time
	h.loop.ScrollTo(260)
	h.loop.Advance(100 * time.Millisecond)
	if len(h.observer.impulses) != 1 || h.observer.impulses[0] != -1.5 {
		t.Errorf("impulses = %v, want [-1.5]", h.observer.impulses)
	}
	if got := h.observer.stops; len(got) != 1 || got[0] != StopRestart {
		t.Errorf("stops = %v", got)
	}
}

func TestResizeRestartsWithNewViewport(t *testing.T) {
	h := newHarness(t, defaultViewport, config.DefaultBubbles())
	h.start(t)
	oldWorld := h.scene.World()

	h.loop.SetViewport(components.Viewport{Width: 2000, Height: 500})
	h.loop.Advance(100 * time.Millisecond)
	h.loop.SetViewport(components.Viewport{Width: 2000, Height: 1000})
	h.loop.Advance(299 * time.Millisecond)
	if info, _ := h.scene.Session(); info.ID != 1 {
		t.Fatalf("restarted before resize delay: session %d", info.ID)
	}

	h.loop.Advance(time.Millisecond)
	info, ok := h.scene.Session()
	if !ok || info.ID != 2 {
		t.Fatalf("expected session 2 after resize, got %+v ok=%v", info, ok)
	}
	if info.Viewport != (components.Viewport{Width: 2000, Height: 1000}) {
		t.Errorf("viewport = %+v", info.Viewport)
	}
	if info.Bodies != 40 {
		t.Errorf("bodies = %d, want 40", info.Bodies)
	}
	if oldWorld.Len() != 0 {
		t.Error("old world not cleared")
	}
	if h.observer.resizes != 2 {
		t.Errorf("resize events = %d, want 2", h.observer.resizes)
	}
	if scroll, resize, frames := h.loop.Listeners(); scroll != 1 || resize != 1 || frames != 2 {
		t.Errorf("listeners after restart %d/%d/%d, want 1/1/2", scroll, resize, frames)
	}

	var outside int
	h.scene.World().Each(func(b engine.BodyView) {
		if b.Position.X > 2000 || b.Position.Y > 1000 {
			outside++
		}
	})
	if outside != 0 {
		t.Errorf("%d bodies placed outside the new viewport", outside)
	}
}

func TestResizeRestartFailureLeavesSceneStopped(t *testing.T) {
	h := newHarness(t, defaultViewport, config.DefaultBubbles())
	h.start(t)

	h.canvasErr = errors.New("display lost")
	h.loop.SetViewport(components.Viewport{Width: 2000, Height: 1000})
	h.loop.Advance(400 * time.Millisecond)

	if h.scene.Running() {
		t.Fatal("scene running after failed restart")
	}
	if len(h.observer.starts) != 1 || len(h.observer.stops) != 1 || h.observer.stops[0] != StopRestart {
		t.Errorf("observer starts=%d stops=%v, want 1 start and one restart stop", len(h.observer.starts), h.observer.stops)
	}
	if scroll, resize, frames := h.loop.Listeners(); scroll+resize+frames != 0 {
		t.Errorf("listeners left registered: %d/%d/%d", scroll, resize, frames)
	}
	if h.loop.PendingTimers() != 0 {
		t.Error("timers left pending")
	}

	// No automatic retry: later resizes are not observed
	h.canvasErr = nil
	h.loop.SetViewport(defaultViewport)
	h.loop.Advance(time.Second)
	if h.scene.Running() {
		t.Fatal("scene restarted itself after a failed restart")
	}

	h.start(t)
	if info, _ := h.scene.Session(); info.Bodies != 10 {
		t.Errorf("bodies after manual Start = %d, want 10", info.Bodies)
	}
}

func TestReconfigure(t *testing.T) {
	h := newHarness(t, defaultViewport, config.DefaultBubbles())
	h.start(t)

	bad := config.DefaultBubbles()
	bad.PixelsPerBody = -1
	if err := h.scene.Reconfigure(bad); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if info, _ := h.scene.Session(); info.ID != 1 {
		t.Error("invalid Reconfigure restarted the session")
	}

	good := config.DefaultBubbles()
	good.PixelsPerBody = 25000
	if err := h.scene.Reconfigure(good); err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	if got := len(h.scene.Bodies()); got != 20 {
		t.Errorf("bodies = %d, want 20", got)
	}
	if h.scene.Config().PixelsPerBody != 25000 {
		t.Error("config not updated")
	}
}

func TestConfigIsCopied(t *testing.T) {
	cfg := config.DefaultBubbles()
	h := newHarness(t, defaultViewport, cfg)
	cfg.Colors[0] = "#000000"
	cfg.PixelsPerBody = 1

	h.start(t)
	if got := len(h.scene.Bodies()); got != 10 {
		t.Errorf("caller mutation leaked into scene: %d bodies", got)
	}
	got := h.scene.Config()
	got.Colors[0] = "#123456"
	if h.scene.Config().Colors[0] == "#123456" {
		t.Error("Config returned an aliased slice")
	}
}
