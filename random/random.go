// Package random provides uniform sampling within closed ranges.
package random

import (
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source samples uniform scalars.
type Source interface {
	// Sample returns a value drawn uniformly from [min, max). min == max returns min.
	Sample(min, max float64) float64
}

// Uniform samples with a gonum uniform distribution over a seeded PCG source.
// Not safe for concurrent use.
type Uniform struct {
	src rand.Source
}

// NewUniform creates a seeded source. Seed 0 picks a time-based seed.
func NewUniform(seed uint64) *Uniform {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Uniform{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
}

// Sample returns a value in [min, max).
func (u *Uniform) Sample(min, max float64) float64 {
	if min == max {
		return min
	}
	d := distuv.Uniform{Min: min, Max: max, Src: u.src}
	return d.Rand()
}
