package renderer

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// TerminalCanvas rasterizes circles onto tcell cells. Each cell covers
// cellW x cellH viewport pixels and is filled when its center lies inside
// a circle; overlapping translucent circles blend in RGB space.
type TerminalCanvas struct {
	screen tcell.Screen
	cellW  float64
	cellH  float64
	clear  colorful.Color

	cols, rows int
	buf        []colorful.Color
}

// NewTerminalCanvas creates a canvas on screen. clear is used wherever the
// surface background is transparent.
func NewTerminalCanvas(screen tcell.Screen, cellW, cellH float64, clear color.RGBA) *TerminalCanvas {
	return &TerminalCanvas{
		screen: screen,
		cellW:  cellW,
		cellH:  cellH,
		clear:  toColorful(clear),
	}
}

func toColorful(c color.RGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Clear fills every cell with the background.
func (c *TerminalCanvas) Clear(background color.RGBA) {
	c.cols, c.rows = c.screen.Size()
	if n := c.cols * c.rows; cap(c.buf) < n {
		c.buf = make([]colorful.Color, n)
	} else {
		c.buf = c.buf[:n]
	}

	bg := c.clear
	if background.A != 0 {
		bg = toColorful(background)
	}
	for i := range c.buf {
		c.buf[i] = bg
	}
	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			c.put(col, row)
		}
	}
}

// Circle fills the cells whose centers fall inside the circle.
func (c *TerminalCanvas) Circle(x, y, r float64, fill color.RGBA, opacity float64) {
	if c.cellW <= 0 || c.cellH <= 0 || len(c.buf) == 0 {
		return
	}
	fc := toColorful(fill)
	opacity = math.Max(0, math.Min(1, opacity))

	minCol := max(0, int((x-r)/c.cellW))
	maxCol := min(c.cols-1, int((x+r)/c.cellW))
	minRow := max(0, int((y-r)/c.cellH))
	maxRow := min(c.rows-1, int((y+r)/c.cellH))

	for row := minRow; row <= maxRow; row++ {
		cy := (float64(row) + 0.5) * c.cellH
		for col := minCol; col <= maxCol; col++ {
			cx := (float64(col) + 0.5) * c.cellW
			dx, dy := cx-x, cy-y
			if dx*dx+dy*dy > r*r {
				continue
			}
			i := row*c.cols + col
			c.buf[i] = c.buf[i].BlendRgb(fc, opacity)
			c.put(col, row)
		}
	}
}

func (c *TerminalCanvas) put(col, row int) {
	r, g, b := c.buf[row*c.cols+col].RGB255()
	style := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	c.screen.SetContent(col, row, ' ', nil, style)
}

// Cell returns the blended color of one cell in the current frame.
func (c *TerminalCanvas) Cell(col, row int) color.RGBA {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return color.RGBA{}
	}
	r, g, b := c.buf[row*c.cols+col].RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Close clears the screen; the terminal backend owns its lifetime.
func (c *TerminalCanvas) Close() error {
	c.screen.Clear()
	return nil
}
