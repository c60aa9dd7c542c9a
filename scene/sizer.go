package scene

import (
	"math"

	"github.com/pthm-cable/bubbles/components"
)

// MaxPopulation caps a single session's body count.
const MaxPopulation = 100_000

// PopulationSize returns how many bodies fill the viewport at the given
// density: round(width*height/pixelsPerBody), within [0, MaxPopulation].
func PopulationSize(v components.Viewport, pixelsPerBody float64) int {
	if !(pixelsPerBody > 0) {
		return 0
	}
	n := math.Round(v.Area() / pixelsPerBody)
	if !(n > 0) {
		return 0
	}
	if n >= MaxPopulation {
		return MaxPopulation
	}
	return int(n)
}
