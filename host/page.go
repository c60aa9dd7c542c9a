package host

import "github.com/pthm-cable/bubbles/config"

// Page emulates a document taller than the viewport so that backends
// without native scrolling can report a scroll offset.
type Page struct {
	Height float64 // total document height
	Step   float64 // offset change per wheel notch
}

// NewPage builds a page from host configuration.
func NewPage(cfg config.HostConfig) Page {
	return Page{Height: cfg.PageHeight, Step: cfg.ScrollStep}
}

// Clamp limits offset to [0, Height-viewportHeight].
func (p Page) Clamp(offset, viewportHeight float64) float64 {
	maxOffset := p.Height - viewportHeight
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset < 0 {
		return 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	return offset
}

// Wheel returns the offset after moving the wheel by notches. Positive
// notches scroll toward the top, matching raylib and tcell wheel-up.
func (p Page) Wheel(offset, notches, viewportHeight float64) float64 {
	return p.Clamp(offset-notches*p.Step, viewportHeight)
}
