package app

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"github.com/pthm-cable/bubbles/components"
	"github.com/pthm-cable/bubbles/config"
	"github.com/pthm-cable/bubbles/engine"
	"github.com/pthm-cable/bubbles/host"
	"github.com/pthm-cable/bubbles/renderer"
)

// Backend names accepted by Options.Backend.
const (
	BackendWindow   = "window"
	BackendTerminal = "terminal"
	BackendHeadless = "headless"
)

// ErrUnknownBackend is returned for an unrecognized backend name.
var ErrUnknownBackend = errors.New("app: unknown backend")

// backend bundles a host loop with the canvas type that draws on it.
type backend struct {
	name    string
	loop    *host.Loop
	run     func(context.Context) error
	close   func() error
	canvas  engine.CanvasFactory
	overlay bool
}

func openBackend(name string, cfg *config.Config) (*backend, error) {
	switch name {
	case BackendWindow, "":
		w := host.OpenWindow(cfg.Screen, cfg.Host, cfg.Derived.ClearColor)
		return &backend{
			name:  BackendWindow,
			loop:  w.Loop,
			run:   w.Run,
			close: w.Close,
			canvas: func(width, height float64, _ color.RGBA) (engine.Canvas, error) {
				return renderer.NewRaylibCanvas(width, height), nil
			},
			overlay: true,
		}, nil

	case BackendTerminal:
		t, err := host.OpenTerminal(cfg.Terminal, cfg.Host, cfg.Screen.TargetFPS)
		if err != nil {
			return nil, fmt.Errorf("opening terminal: %w", err)
		}
		cellW, cellH := t.CellSize()
		return &backend{
			name:  BackendTerminal,
			loop:  t.Loop,
			run:   t.Run,
			close: t.Close,
			canvas: func(float64, float64, color.RGBA) (engine.Canvas, error) {
				return renderer.NewTerminalCanvas(t.Screen(), cellW, cellH, cfg.Derived.ClearColor), nil
			},
		}, nil

	case BackendHeadless:
		viewport := components.Viewport{Width: float64(cfg.Screen.Width), Height: float64(cfg.Screen.Height)}
		h := host.NewHeadless(cfg.Headless, cfg.Host, viewport, cfg.Physics.DT)
		return &backend{
			name:  BackendHeadless,
			loop:  h.Loop,
			run:   h.Run,
			close: h.Close,
			canvas: func(float64, float64, color.RGBA) (engine.Canvas, error) {
				return &renderer.CountingCanvas{}, nil
			},
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}
