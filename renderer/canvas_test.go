package renderer

import (
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func newSimScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	screen.SetSize(cols, rows)
	t.Cleanup(screen.Fini)
	return screen
}

func TestTerminalCanvasFillsCellsInsideCircle(t *testing.T) {
	screen := newSimScreen(t, 10, 5)
	black := color.RGBA{A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	c := NewTerminalCanvas(screen, 10, 10, black)

	c.Clear(color.RGBA{})
	c.Circle(50, 25, 12, white, 1)

	tests := []struct {
		name     string
		col, row int
		want     color.RGBA
	}{
		{"center cell", 4, 2, white},
		{"neighbor cell", 5, 2, white},
		{"corner untouched", 0, 0, black},
		{"far cell untouched", 9, 4, black},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Cell(tc.col, tc.row); got != tc.want {
				t.Errorf("cell (%d,%d) = %v, want %v", tc.col, tc.row, got, tc.want)
			}
		})
	}

	if got := c.Cell(-1, 0); got != (color.RGBA{}) {
		t.Errorf("out of range cell = %v, want zero", got)
	}
}

func TestTerminalCanvasBlendsOpacity(t *testing.T) {
	screen := newSimScreen(t, 4, 4)
	c := NewTerminalCanvas(screen, 10, 10, color.RGBA{A: 255})

	c.Clear(color.RGBA{})
	c.Circle(15, 15, 30, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 0.5)

	got := c.Cell(1, 1)
	if got.R < 127 || got.R > 128 || got.R != got.G || got.G != got.B {
		t.Errorf("half-opacity white over black = %v, want mid gray", got)
	}

	// Opaque background overrides the clear color
	c.Clear(color.RGBA{R: 255, A: 255})
	if got := c.Cell(0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("opaque background cell = %v", got)
	}
}

func TestTerminalCanvasTracksResize(t *testing.T) {
	screen := newSimScreen(t, 4, 4)
	c := NewTerminalCanvas(screen, 10, 10, color.RGBA{A: 255})
	c.Clear(color.RGBA{})

	screen.SetSize(8, 2)
	c.Clear(color.RGBA{})
	c.Circle(75, 5, 4, color.RGBA{G: 255, A: 255}, 1)

	if got := c.Cell(7, 1); got != (color.RGBA{A: 255}) {
		t.Errorf("cell below circle = %v, want clear", got)
	}
	if got := c.Cell(7, 0); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("cell under circle = %v, want green", got)
	}
}

func TestCountingCanvas(t *testing.T) {
	var c CountingCanvas
	for range 3 {
		c.Clear(color.RGBA{})
		c.Circle(0, 0, 1, color.RGBA{}, 1)
		c.Circle(0, 0, 1, color.RGBA{}, 1)
	}
	if c.Frames != 3 || c.Circles != 6 || c.LastFrame != 2 {
		t.Errorf("got frames=%d circles=%d last=%d", c.Frames, c.Circles, c.LastFrame)
	}
	if err := c.Close(); err != nil || !c.Closed {
		t.Errorf("Close: err=%v closed=%v", err, c.Closed)
	}
}
