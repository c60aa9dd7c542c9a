// Package host provides the environment the scene runs in: viewport size,
// scroll offset, input events, one-shot timers and frame ticks, all
// dispatched from a single cooperative loop.
package host

import (
	"container/heap"
	"iter"
	"slices"
	"time"

	"github.com/pthm-cable/bubbles/components"
)

// Phase orders frame listeners within one tick.
type Phase int

const (
	PhaseStep Phase = iota
	PhaseRender
	PhaseOverlay
	PhaseTelemetry
	numPhases
)

// Loop owns every listener and timer. All callbacks run on the goroutine
// calling Tick, Advance, SetViewport or ScrollTo; it is not safe for
// concurrent use.
type Loop struct {
	clock    Clock
	viewport components.Viewport
	offset   float64
	tick     int64

	scroll listenerSet[func()]
	resize listenerSet[func()]
	frames [numPhases]listenerSet[func(dt float64)]

	timers timerQueue
	seq    uint64
}

// NewLoop creates a loop driven by the given clock.
func NewLoop(clock Clock, viewport components.Viewport) *Loop {
	return &Loop{clock: clock, viewport: viewport}
}

// Viewport returns the current viewport size.
func (l *Loop) Viewport() components.Viewport {
	return l.viewport
}

// ScrollOffset returns the current vertical scroll offset.
func (l *Loop) ScrollOffset() float64 {
	return l.offset
}

// Now returns the loop clock reading.
func (l *Loop) Now() time.Duration {
	return l.clock.Now()
}

// Ticks returns the number of frames dispatched so far.
func (l *Loop) Ticks() int64 {
	return l.tick
}

// OnScroll registers fn for scroll events. The returned func removes
// exactly this registration.
func (l *Loop) OnScroll(fn func()) (remove func()) {
	return l.scroll.add(fn)
}

// OnResize registers fn for resize events.
func (l *Loop) OnResize(fn func()) (remove func()) {
	return l.resize.add(fn)
}

// OnFrame registers fn to run every tick in the given phase.
func (l *Loop) OnFrame(phase Phase, fn func(dt float64)) (remove func()) {
	return l.frames[phase].add(fn)
}

// SetViewport records a new viewport size and dispatches a resize event if
// it changed.
func (l *Loop) SetViewport(v components.Viewport) {
	if v == l.viewport {
		return
	}
	l.viewport = v
	for fn := range l.resize.live() {
		fn()
	}
}

// ScrollTo records a new scroll offset and dispatches a scroll event if it
// changed.
func (l *Loop) ScrollTo(offset float64) {
	if offset == l.offset {
		return
	}
	l.offset = offset
	for fn := range l.scroll.live() {
		fn()
	}
}

// AfterFunc schedules fn to run once, d after now. stop cancels it and
// reports whether it was still pending.
func (l *Loop) AfterFunc(d time.Duration, fn func()) (stop func() bool) {
	t := &timer{at: l.clock.Now() + d, seq: l.seq, fn: fn}
	l.seq++
	heap.Push(&l.timers, t)
	return func() bool {
		if t.done {
			return false
		}
		t.done = true
		if t.index >= 0 {
			heap.Remove(&l.timers, t.index)
		}
		return true
	}
}

// PendingTimers returns the number of scheduled timers.
func (l *Loop) PendingTimers() int {
	return l.timers.Len()
}

// RunTimers fires every timer that is due. Timers scheduled while running
// wait for the next call.
func (l *Loop) RunTimers() {
	now := l.clock.Now()
	limit := l.seq
	for l.timers.Len() > 0 {
		next := l.timers[0]
		if next.at > now || next.seq >= limit {
			return
		}
		heap.Pop(&l.timers)
		if next.done {
			continue
		}
		next.done = true
		next.fn()
	}
}

// Tick runs due timers and then every frame listener, phase by phase.
func (l *Loop) Tick(dt float64) {
	l.tick++
	l.RunTimers()
	for p := range l.frames {
		for fn := range l.frames[p].live() {
			fn(dt)
		}
	}
}

// Advance moves a manual clock forward and runs due timers. It is meant
// for tests and the headless backend.
func (l *Loop) Advance(d time.Duration) {
	if mc, ok := l.clock.(*ManualClock); ok {
		mc.Advance(d)
	}
	l.RunTimers()
}

type listener[F any] struct {
	fn      F
	removed bool
}

// listenerSet keeps registration order. Removal during dispatch takes
// effect immediately.
type listenerSet[F any] struct {
	items []*listener[F]
}

func (s *listenerSet[F]) add(fn F) func() {
	l := &listener[F]{fn: fn}
	s.items = append(s.items, l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		s.items = slices.DeleteFunc(s.items, func(x *listener[F]) bool { return x == l })
	}
}

// live yields the callbacks registered at call time that are still
// registered when reached.
func (s *listenerSet[F]) live() iter.Seq[F] {
	snapshot := slices.Clone(s.items)
	return func(yield func(F) bool) {
		for _, l := range snapshot {
			if l.removed {
				continue
			}
			if !yield(l.fn) {
				return
			}
		}
	}
}

// Listeners returns how many scroll, resize and frame listeners are
// registered.
func (l *Loop) Listeners() (scroll, resize, frame int) {
	for p := range l.frames {
		frame += len(l.frames[p].items)
	}
	return len(l.scroll.items), len(l.resize.items), frame
}

type timer struct {
	at    time.Duration
	seq   uint64
	fn    func()
	done  bool
	index int
}

// timerQueue is a min-heap on (at, seq).
type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
