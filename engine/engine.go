package engine

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/pthm-cable/bubbles/components"
	"github.com/pthm-cable/bubbles/config"
)

// ErrSurface is returned when a render surface cannot be created.
var ErrSurface = errors.New("engine: render surface unavailable")

// CanvasFactory opens a canvas for a surface of the given size.
type CanvasFactory func(width, height float64, background color.RGBA) (Canvas, error)

// Engine creates worlds, surfaces and steppers bound to one frame source.
type Engine struct {
	frames    FrameSource
	newCanvas CanvasFactory
	dt        float64
	cellSize  float64
}

// New creates an engine. newCanvas is called once per render surface.
func New(frames FrameSource, newCanvas CanvasFactory, cfg config.PhysicsConfig) *Engine {
	return &Engine{
		frames:    frames,
		newCanvas: newCanvas,
		dt:        cfg.DT,
		cellSize:  cfg.GridCellSize,
	}
}

// CreateWorld returns an empty world with the given gravity.
func (e *Engine) CreateWorld(gravity components.Vec2) *World {
	return NewWorld(gravity, e.cellSize)
}

// CreateRenderSurface binds a new canvas to world. The surface is stopped
// until Start is called.
func (e *Engine) CreateRenderSurface(world *World, width, height float64, background color.RGBA) (*Surface, error) {
	if e.newCanvas == nil {
		return nil, fmt.Errorf("%w: no canvas backend", ErrSurface)
	}
	canvas, err := e.newCanvas(width, height, background)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurface, err)
	}
	return &Surface{
		world:      world,
		canvas:     canvas,
		frames:     e.frames,
		width:      width,
		height:     height,
		background: background,
	}, nil
}

// CreateStepper returns a stopped stepper for world.
func (e *Engine) CreateStepper(world *World) *Stepper {
	return NewStepper(world, e.frames, e.dt)
}
