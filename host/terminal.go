package host

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/bubbles/components"
	"github.com/pthm-cable/bubbles/config"
)

// Terminal is a tcell backend. Each cell stands for CellWidth x CellHeight
// viewport pixels so the scene sizes its population as it would in a
// window of the same apparent size.
type Terminal struct {
	*Loop
	screen tcell.Screen
	page   Page
	cellW  float64
	cellH  float64
	period time.Duration

	events chan tcell.Event
	done   chan struct{}
	quit   bool
}

// OpenTerminal initializes the terminal screen with mouse support.
func OpenTerminal(cfg config.TerminalConfig, hostCfg config.HostConfig, fps int) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing screen: %w", err)
	}
	screen.EnableMouse()
	screen.HideCursor()
	screen.Clear()

	if fps <= 0 {
		fps = 30
	}

	t := &Terminal{
		screen: screen,
		page:   NewPage(hostCfg),
		cellW:  cfg.CellWidth,
		cellH:  cfg.CellHeight,
		period: time.Second / time.Duration(fps),
		events: make(chan tcell.Event, 64),
		done:   make(chan struct{}),
	}
	t.Loop = NewLoop(NewSystemClock(), t.measure())

	go t.pump()

	return t, nil
}

// Screen returns the tcell screen for canvases to draw on.
func (t *Terminal) Screen() tcell.Screen {
	return t.screen
}

// CellSize returns the viewport pixels covered by one terminal cell.
func (t *Terminal) CellSize() (w, h float64) {
	return t.cellW, t.cellH
}

func (t *Terminal) measure() components.Viewport {
	cols, rows := t.screen.Size()
	return components.Viewport{
		Width:  float64(cols) * t.cellW,
		Height: float64(rows) * t.cellH,
	}
}

// pump moves blocking PollEvent results onto the events channel so the
// loop goroutine can drain them between frames.
func (t *Terminal) pump() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case t.events <- ev:
		case <-t.done:
			return
		}
	}
}

// Run ticks the loop at the configured rate until q/Esc/Ctrl-C or ctx is
// cancelled.
func (t *Terminal) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		t.drain()
		if t.quit {
			return nil
		}

		now := time.Now()
		t.Tick(now.Sub(last).Seconds())
		last = now
		t.screen.Show()
	}
}

// drain handles every queued event without blocking.
func (t *Terminal) drain() {
	for {
		select {
		case ev := <-t.events:
			t.handle(ev)
		default:
			return
		}
	}
}

func (t *Terminal) handle(ev tcell.Event) {
	vh := t.Viewport().Height
	offset := t.ScrollOffset()

	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
		t.SetViewport(t.measure())
		return
	case *tcell.EventMouse:
		switch {
		case ev.Buttons()&tcell.WheelUp != 0:
			offset = t.page.Wheel(offset, 1, vh)
		case ev.Buttons()&tcell.WheelDown != 0:
			offset = t.page.Wheel(offset, -1, vh)
		}
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			t.quit = true
			return
		case tcell.KeyUp:
			offset -= t.page.Step
		case tcell.KeyDown:
			offset += t.page.Step
		case tcell.KeyPgUp:
			offset -= vh
		case tcell.KeyPgDn:
			offset += vh
		case tcell.KeyHome:
			offset = 0
		case tcell.KeyEnd:
			offset = t.page.Height
		case tcell.KeyRune:
			if ev.Rune() == 'q' {
				t.quit = true
				return
			}
		}
	}

	t.ScrollTo(t.page.Clamp(offset, vh))
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	close(t.done)
	t.screen.Fini()
	return nil
}
