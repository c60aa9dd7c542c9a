// Package app wires a host backend, the engine, the scene, telemetry and
// the overlay into one runnable program.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/bubbles/components"
	"github.com/pthm-cable/bubbles/config"
	"github.com/pthm-cable/bubbles/engine"
	"github.com/pthm-cable/bubbles/host"
	"github.com/pthm-cable/bubbles/random"
	"github.com/pthm-cable/bubbles/scene"
	"github.com/pthm-cable/bubbles/telemetry"
	"github.com/pthm-cable/bubbles/ui"
)

// Options holds run settings from the command line.
type Options struct {
	Backend        string
	Seed           uint64 // 0 = time based
	MaxTicks       int64  // 0 = unlimited
	OutputDir      string
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
}

// App owns every long-lived component of a run.
type App struct {
	cfg     *config.Config
	opts    Options
	backend *backend
	scene   *scene.Scene

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager

	detach []func()
	cancel context.CancelFunc
}

// New opens the backend and builds the scene. Call Close when done.
func New(cfg *config.Config, opts Options) (*App, error) {
	b, err := openBackend(opts.Backend, cfg)
	if err != nil {
		return nil, err
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		b.close()
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	a := &App{
		cfg:       cfg,
		opts:      opts,
		backend:   b,
		collector: telemetry.NewCollector(statsWindow, cfg.Physics.DT),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output:    output,
	}

	eng := engine.New(b.loop, b.canvas, cfg.Physics)
	a.scene = scene.New(b.loop, eng, random.NewUniform(opts.Seed), cfg.Bubbles, scene.Options{
		Gravity:    components.Vec2{X: cfg.Physics.Gravity.X, Y: cfg.Physics.Gravity.Y},
		Background: cfg.Derived.Background,
		Observer:   a.collector,
	})

	// Perf marks go first so they lead every phase
	a.detach = append(a.detach, a.perf.Attach(b.loop))
	a.detach = append(a.detach, b.loop.OnFrame(host.PhaseTelemetry, a.onFrame))
	if b.overlay {
		tuning := ui.NewTuning(0, 10, 300, a.scene.Config(), a.scene.Reconfigure)
		overlay := ui.NewOverlay(tuning, a.hudData, a.perfData)
		a.detach = append(a.detach, overlay.Attach(b.loop))
	}
	a.detach = append(a.detach, a.perf.Finish(b.loop))

	return a, nil
}

// Scene returns the scene driven by the app.
func (a *App) Scene() *scene.Scene {
	return a.scene
}

// Collector returns the telemetry collector.
func (a *App) Collector() *telemetry.Collector {
	return a.collector
}

// Run starts the scene and drives the backend until it exits, ctx is
// cancelled or MaxTicks frames have run. The scene is shut down on return.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	defer cancel()

	if err := a.scene.Start(ctx); err != nil {
		return fmt.Errorf("starting scene: %w", err)
	}
	defer a.scene.Shutdown()

	slog.Info("running",
		"backend", a.backend.name,
		"seed", a.opts.Seed,
		"max_ticks", a.opts.MaxTicks,
		"output_dir", a.output.Dir(),
	)
	return a.backend.run(ctx)
}

// onFrame runs last in each frame: telemetry windows and the tick limit.
func (a *App) onFrame(float64) {
	tick := a.collector.Advance()
	if a.collector.ShouldFlush() {
		a.flushTelemetry()
	}
	if a.opts.MaxTicks > 0 && tick >= a.opts.MaxTicks {
		slog.Info("max ticks reached", "tick", tick)
		a.cancel()
	}
}

// flushTelemetry closes the current stats window and writes it out.
func (a *App) flushTelemetry() {
	var speeds []float64
	if w := a.scene.World(); w != nil {
		speeds = w.Speeds()
	}
	stats := a.collector.Flush(speeds)
	perfStats := a.perf.Stats()

	if a.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := a.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := a.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
	if err := a.output.WriteSessions(a.collector.DrainSessions()); err != nil {
		slog.Error("failed to write sessions", "error", err)
	}
}

func (a *App) hudData() ui.HUDData {
	data := ui.HUDData{
		Title:        a.cfg.Screen.Title,
		ScrollOffset: a.backend.loop.ScrollOffset(),
		FPS:          rl.GetFPS(),
		Tick:         a.collector.Tick(),
	}
	if info, ok := a.scene.Session(); ok {
		data.Session = info.ID
		data.Bodies = info.Bodies
		data.Width = info.Viewport.Width
		data.Height = info.Viewport.Height
	}
	if w := a.scene.World(); w != nil {
		data.SpeedMean = telemetry.ComputeSpeedStats(w.Speeds()).Mean
	}
	data.ScrollArmed, data.ResizeArmed = a.scene.PendingInput()
	return data
}

func (a *App) perfData() ui.PerfPanelData {
	stats := a.perf.Stats()
	return ui.PerfPanelData{
		PhaseAvg: stats.PhaseAvg,
		Total:    stats.AvgTickDuration,
		Phases:   []string{telemetry.PhaseStep, telemetry.PhaseRender, telemetry.PhaseOverlay, telemetry.PhaseTelemetry},
	}
}

// Close detaches listeners, writes outstanding session records and
// releases the backend.
func (a *App) Close() error {
	a.scene.Shutdown()
	for _, detach := range a.detach {
		detach()
	}
	a.detach = nil

	if err := a.output.WriteSessions(a.collector.DrainSessions()); err != nil {
		slog.Error("failed to write sessions", "error", err)
	}
	if err := a.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}

	start := time.Now()
	err := a.backend.close()
	slog.Info("closed", "backend", a.backend.name, "took", time.Since(start))
	return err
}
