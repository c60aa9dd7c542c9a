package host

import (
	"testing"
	"time"

	"github.com/pthm-cable/bubbles/components"
)

func newTestLoop() *Loop {
	return NewLoop(NewManualClock(), components.Viewport{Width: 800, Height: 600})
}

func TestTimersFireInDeadlineOrder(t *testing.T) {
	l := newTestLoop()
	var order []int
	l.AfterFunc(30*time.Millisecond, func() { order = append(order, 3) })
	l.AfterFunc(10*time.Millisecond, func() { order = append(order, 1) })
	l.AfterFunc(20*time.Millisecond, func() { order = append(order, 2) })

	l.Advance(15 * time.Millisecond)
	if len(order) != 1 || order[0] != 1 {
		t.Fatalf("expected [1] after 15ms, got %v", order)
	}

	l.Advance(20 * time.Millisecond)
	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %d, want %d", i, order[i], want[i])
		}
	}
	if l.PendingTimers() != 0 {
		t.Errorf("expected no pending timers, got %d", l.PendingTimers())
	}
}

func TestStoppedTimerNeverFires(t *testing.T) {
	l := newTestLoop()
	fired := false
	stop := l.AfterFunc(10*time.Millisecond, func() { fired = true })

	if !stop() {
		t.Error("stop should report a pending timer")
	}
	if stop() {
		t.Error("second stop should report false")
	}

	l.Advance(time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
}

func TestStopAfterFireReportsFalse(t *testing.T) {
	l := newTestLoop()
	stop := l.AfterFunc(time.Millisecond, func() {})
	l.Advance(time.Millisecond)
	if stop() {
		t.Error("stop after firing should report false")
	}
}

func TestTimerStoppedByEarlierTimerInSameTurn(t *testing.T) {
	l := newTestLoop()
	fired := false
	var stopSecond func() bool
	l.AfterFunc(10*time.Millisecond, func() { stopSecond() })
	stopSecond = l.AfterFunc(10*time.Millisecond, func() { fired = true })

	l.Advance(10 * time.Millisecond)
	if fired {
		t.Error("timer cancelled within the same turn still fired")
	}
}

func TestTimerScheduledWhileRunningWaits(t *testing.T) {
	l := newTestLoop()
	count := 0
	l.AfterFunc(0, func() {
		count++
		l.AfterFunc(0, func() { count++ })
	})

	l.RunTimers()
	if count != 1 {
		t.Fatalf("expected nested zero-delay timer to wait, count=%d", count)
	}
	l.RunTimers()
	if count != 2 {
		t.Errorf("expected nested timer on next turn, count=%d", count)
	}
}

func TestRemovedListenerNeverFires(t *testing.T) {
	l := newTestLoop()
	var a, b int
	removeA := l.OnScroll(func() { a++ })
	l.OnScroll(func() { b++ })

	l.ScrollTo(10)
	removeA()
	removeA() // idempotent
	l.ScrollTo(20)

	if a != 1 {
		t.Errorf("removed listener fired %d times, want 1", a)
	}
	if b != 2 {
		t.Errorf("remaining listener fired %d times, want 2", b)
	}
}

func TestListenerRemovedDuringDispatch(t *testing.T) {
	l := newTestLoop()
	fired := false
	var removeSecond func()
	l.OnResize(func() { removeSecond() })
	removeSecond = l.OnResize(func() { fired = true })

	l.SetViewport(components.Viewport{Width: 100, Height: 100})
	if fired {
		t.Error("listener removed earlier in the same dispatch still fired")
	}
}

func TestUnchangedInputDoesNotDispatch(t *testing.T) {
	l := newTestLoop()
	var scrolls, resizes int
	l.OnScroll(func() { scrolls++ })
	l.OnResize(func() { resizes++ })

	l.ScrollTo(0)
	l.SetViewport(components.Viewport{Width: 800, Height: 600})
	if scrolls != 0 || resizes != 0 {
		t.Errorf("expected no dispatch, got %d scrolls %d resizes", scrolls, resizes)
	}
}

func TestTickRunsPhasesInOrder(t *testing.T) {
	l := newTestLoop()
	var order []Phase
	l.OnFrame(PhaseTelemetry, func(float64) { order = append(order, PhaseTelemetry) })
	l.OnFrame(PhaseRender, func(float64) { order = append(order, PhaseRender) })
	l.OnFrame(PhaseStep, func(float64) { order = append(order, PhaseStep) })

	l.Tick(1.0 / 60)

	want := []Phase{PhaseStep, PhaseRender, PhaseTelemetry}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("phase[%d] = %d, want %d", i, order[i], want[i])
		}
	}
	if l.Ticks() != 1 {
		t.Errorf("expected 1 tick, got %d", l.Ticks())
	}
}

func TestListenersCount(t *testing.T) {
	l := newTestLoop()
	rs := l.OnScroll(func() {})
	l.OnResize(func() {})
	rf := l.OnFrame(PhaseStep, func(float64) {})

	s, r, f := l.Listeners()
	if s != 1 || r != 1 || f != 1 {
		t.Fatalf("expected 1/1/1 listeners, got %d/%d/%d", s, r, f)
	}
	rs()
	rf()
	s, r, f = l.Listeners()
	if s != 0 || r != 1 || f != 0 {
		t.Errorf("expected 0/1/0 listeners, got %d/%d/%d", s, r, f)
	}
}
