package engine

import (
	"math"

	"github.com/pthm-cable/bubbles/components"
)

// bodyRef caches component pointers for one step. Pointers stay valid
// until the world's entity set changes, which never happens mid-step.
type bodyRef struct {
	pos   *components.Position
	vel   *components.Velocity
	r     float64
	group int
}

// Step advances every body by one fixed step: gravity, integration, air
// friction, wrapping, then collision resolution.
func (w *World) Step() {
	w.steps++
	w.scratch = w.scratch[:0]

	query := w.bodyFilter.Query()
	for query.Next() {
		pos, vel, body, _, col, wrap := query.Get()

		vel.X += w.gravity.X
		vel.Y += w.gravity.Y

		pos.X += vel.X
		pos.Y += vel.Y

		damp := 1 - body.FrictionAir
		vel.X *= damp
		vel.Y *= damp

		wrapPosition(pos, body.Radius, wrap.Bounds)

		w.scratch = append(w.scratch, bodyRef{pos: pos, vel: vel, r: body.Radius, group: col.Group})
	}

	w.resolveCollisions()
}

// wrapPosition moves a body that has fully left bounds on one side so its
// trailing edge sits on the opposite bound.
func wrapPosition(pos *components.Position, r float64, b components.Bounds) {
	if b.Max.X > b.Min.X {
		switch {
		case pos.X-r > b.Max.X:
			pos.X = b.Min.X - r
		case pos.X+r < b.Min.X:
			pos.X = b.Max.X + r
		}
	}
	if b.Max.Y > b.Min.Y {
		switch {
		case pos.Y-r > b.Max.Y:
			pos.Y = b.Min.Y - r
		case pos.Y+r < b.Min.Y:
			pos.Y = b.Max.Y + r
		}
	}
}

// resolveCollisions separates overlapping pairs and removes their
// approaching normal velocity. Heavier (larger) bodies move less.
func (w *World) resolveCollisions() {
	refs := w.scratch
	if len(refs) < 2 || w.cellSize <= 0 {
		return
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range refs {
		minX = math.Min(minX, b.pos.X)
		minY = math.Min(minY, b.pos.Y)
		maxX = math.Max(maxX, b.pos.X)
		maxY = math.Max(maxY, b.pos.Y)
	}
	width, height := maxX-minX, maxY-minY

	if w.grid == nil || !w.grid.Covers(width, height) {
		w.grid = NewSpatialGrid(width, height, w.cellSize)
	} else {
		w.grid.Clear()
	}
	for i, b := range refs {
		w.grid.Insert(i, b.pos.X-minX, b.pos.Y-minY)
	}

	var candidates []int
	for i := range refs {
		a := &refs[i]
		candidates = w.grid.QueryInto(candidates[:0], a.pos.X-minX, a.pos.Y-minY, a.r+w.maxRadius)
		for _, j := range candidates {
			if j <= i {
				continue
			}
			b := &refs[j]
			if !components.CanCollide(a.group, b.group) {
				continue
			}
			separate(a, b)
		}
	}
}

func separate(a, b *bodyRef) {
	dx := b.pos.X - a.pos.X
	dy := b.pos.Y - a.pos.Y
	minDist := a.r + b.r
	distSq := dx*dx + dy*dy
	if distSq >= minDist*minDist {
		return
	}

	dist := math.Sqrt(distSq)
	nx, ny := 1.0, 0.0
	if dist > 1e-9 {
		nx, ny = dx/dist, dy/dist
	}
	overlap := minDist - dist

	ma, mb := a.r*a.r, b.r*b.r
	if ma == 0 || mb == 0 {
		return
	}
	total := ma + mb

	a.pos.X -= nx * overlap * (mb / total)
	a.pos.Y -= ny * overlap * (mb / total)
	b.pos.X += nx * overlap * (ma / total)
	b.pos.Y += ny * overlap * (ma / total)

	rv := (b.vel.X-a.vel.X)*nx + (b.vel.Y-a.vel.Y)*ny
	if rv >= 0 {
		return
	}
	j := -rv / (1/ma + 1/mb)
	a.vel.X -= nx * j / ma
	a.vel.Y -= ny * j / ma
	b.vel.X += nx * j / mb
	b.vel.Y += ny * j / mb
}
