package main

import (
	"context"
	"image/color"
	"math"
	"sync"

	"github.com/pthm-cable/bubbles/components"
	"github.com/pthm-cable/bubbles/config"
	"github.com/pthm-cable/bubbles/engine"
	"github.com/pthm-cable/bubbles/host"
	"github.com/pthm-cable/bubbles/random"
	"github.com/pthm-cable/bubbles/renderer"
	"github.com/pthm-cable/bubbles/scene"
	"github.com/pthm-cable/bubbles/telemetry"
)

// Target describes the motion the tuner aims for.
type Target struct {
	SpeedMean float64 // desired mean body speed, px/step
	SpeedCeil float64 // p90 speed above this is penalized
}

// FitnessEvaluator runs headless scenes and scores their motion.
type FitnessEvaluator struct {
	params     *ParamVector
	ticks      int
	seeds      []uint64
	baseConfig *config.Config
	target     Target
	windowSec  float64

	mu        sync.Mutex
	lastSpeed float64 // mean speed from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int, seeds []uint64, baseCfg *config.Config, target Target) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		ticks:      ticks,
		seeds:      seeds,
		baseConfig: baseCfg,
		target:     target,
		windowSec:  1.0,
	}
}

// LastSpeed returns the mean speed observed in the most recent evaluation.
func (fe *FitnessEvaluator) LastSpeed() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSpeed
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	fitness := make([]float64, len(fe.seeds))
	speeds := make([]float64, len(fe.seeds))

	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			windows := fe.runScene(x, s)
			fitness[idx], speeds[idx] = fe.score(windows)
		}(i, seed)
	}
	wg.Wait()

	var total, speed float64
	for i := range fitness {
		total += fitness[i]
		speed += speeds[i]
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastSpeed = speed / n
	fe.mu.Unlock()

	return total / n
}

// runScene drives one headless session and returns per-window speed stats.
func (fe *FitnessEvaluator) runScene(x []float64, seed uint64) []telemetry.SpeedStats {
	cfg := *fe.baseConfig
	bubbles := cfg.Bubbles.Clone()
	fe.params.ApplyToConfig(&bubbles, x)

	viewport := components.Viewport{Width: float64(cfg.Screen.Width), Height: float64(cfg.Screen.Height)}
	h := host.NewHeadless(cfg.Headless, cfg.Host, viewport, cfg.Physics.DT)
	eng := engine.New(h.Loop, func(float64, float64, color.RGBA) (engine.Canvas, error) {
		return &renderer.CountingCanvas{}, nil
	}, cfg.Physics)
	sc := scene.New(h.Loop, eng, random.NewUniform(seed), bubbles, scene.Options{
		Gravity:    components.Vec2{X: cfg.Physics.Gravity.X, Y: cfg.Physics.Gravity.Y},
		Background: cfg.Derived.Background,
	})
	if err := sc.Start(context.Background()); err != nil {
		return nil
	}
	defer sc.Shutdown()

	windowTicks := max(int(fe.windowSec/cfg.Physics.DT), 1)
	var windows []telemetry.SpeedStats
	for tick := 1; tick <= fe.ticks; tick++ {
		h.Step()
		if tick%windowTicks == 0 {
			if w := sc.World(); w != nil {
				windows = append(windows, telemetry.ComputeSpeedStats(w.Speeds()))
			}
		}
	}
	return windows
}

// score is the squared error of each window's mean speed from the target,
// plus a quadratic penalty for p90 speed above the ceiling.
func (fe *FitnessEvaluator) score(windows []telemetry.SpeedStats) (fitness, speed float64) {
	if len(windows) == 0 {
		return math.Inf(1), 0
	}
	for _, w := range windows {
		d := w.Mean - fe.target.SpeedMean
		fitness += d * d
		if over := w.P90 - fe.target.SpeedCeil; over > 0 {
			fitness += over * over
		}
		speed += w.Mean
	}
	n := float64(len(windows))
	return fitness / n, speed / n
}
