// Package engine is the 2D rigid-body collaborator the scene drives: an ark
// ECS world of circle bodies, a fixed-step stepper and a render surface.
package engine

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/bubbles/components"
)

// Body is a handle to a body in a World.
type Body struct {
	entity ecs.Entity
}

// World holds circle bodies.
type World struct {
	world   *ecs.World
	gravity components.Vec2

	bodyMapper *ecs.Map6[
		components.Position,
		components.Velocity,
		components.Body,
		components.Appearance,
		components.Collision,
		components.Wrap,
	]
	bodyFilter *ecs.Filter6[
		components.Position,
		components.Velocity,
		components.Body,
		components.Appearance,
		components.Collision,
		components.Wrap,
	]
	velMap *ecs.Map1[components.Velocity]

	grid      *SpatialGrid
	cellSize  float64
	scratch   []bodyRef
	maxRadius float64
	steps     int64
}

// NewWorld creates an empty world. cellSize sizes the collision grid.
func NewWorld(gravity components.Vec2, cellSize float64) *World {
	world := ecs.NewWorld()
	return &World{
		world:   world,
		gravity: gravity,
		bodyMapper: ecs.NewMap6[
			components.Position,
			components.Velocity,
			components.Body,
			components.Appearance,
			components.Collision,
			components.Wrap,
		](world),
		bodyFilter: ecs.NewFilter6[
			components.Position,
			components.Velocity,
			components.Body,
			components.Appearance,
			components.Collision,
			components.Wrap,
		](world),
		velMap:   ecs.NewMap1[components.Velocity](world),
		cellSize: cellSize,
	}
}

// AddBodies creates one body per descriptor and returns handles in the
// same order.
func (w *World) AddBodies(descs []components.BodyDescriptor) []Body {
	bodies := make([]Body, 0, len(descs))
	for i := range descs {
		d := &descs[i]
		pos := components.Position{X: d.Position.X, Y: d.Position.Y}
		vel := components.Velocity{}
		body := components.Body{ID: d.ID, Radius: d.Radius, FrictionAir: d.FrictionAir}
		app := components.Appearance{Fill: d.Fill, Opacity: d.Opacity}
		col := components.Collision{Group: d.Group}
		wrap := components.Wrap{Bounds: d.Wrap}

		e := w.bodyMapper.NewEntity(&pos, &vel, &body, &app, &col, &wrap)
		bodies = append(bodies, Body{entity: e})

		w.maxRadius = math.Max(w.maxRadius, d.Radius)
	}
	return bodies
}

// Alive reports whether b still exists in the world.
func (w *World) Alive(b Body) bool {
	return w.world.Alive(b.entity)
}

// Velocity returns the body's velocity, or zero for a removed body.
func (w *World) Velocity(b Body) components.Vec2 {
	if !w.world.Alive(b.entity) {
		return components.Vec2{}
	}
	v := w.velMap.Get(b.entity)
	return components.Vec2{X: v.X, Y: v.Y}
}

// SetVelocity overwrites the body's velocity. Removed bodies are ignored.
func (w *World) SetVelocity(b Body, v components.Vec2) {
	if !w.world.Alive(b.entity) {
		return
	}
	vel := w.velMap.Get(b.entity)
	vel.X, vel.Y = v.X, v.Y
}

// Len returns the number of bodies.
func (w *World) Len() int {
	n := 0
	query := w.bodyFilter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Steps returns how many physics steps have run.
func (w *World) Steps() int64 {
	return w.steps
}

// BodyView is a read-only snapshot of one body for drawing and telemetry.
type BodyView struct {
	Position   components.Position
	Velocity   components.Velocity
	Body       components.Body
	Appearance components.Appearance
}

// Each calls fn for every body.
func (w *World) Each(fn func(BodyView)) {
	query := w.bodyFilter.Query()
	for query.Next() {
		pos, vel, body, app, _, _ := query.Get()
		fn(BodyView{Position: *pos, Velocity: *vel, Body: *body, Appearance: *app})
	}
}

// Speeds returns every body's speed in pixels per step.
func (w *World) Speeds() []float64 {
	var speeds []float64
	w.Each(func(b BodyView) {
		speeds = append(speeds, math.Hypot(b.Velocity.X, b.Velocity.Y))
	})
	return speeds
}

// Clear removes every body.
func (w *World) Clear() {
	// Collect first: the world is locked while a query is open
	var entities []ecs.Entity
	query := w.bodyFilter.Query()
	for query.Next() {
		entities = append(entities, query.Entity())
	}
	for _, e := range entities {
		w.world.RemoveEntity(e)
	}
	w.maxRadius = 0
	w.scratch = w.scratch[:0]
}
