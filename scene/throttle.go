package scene

import "time"

// Scheduler runs one-shot callbacks.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// Throttle runs at most one callback per delay. While a callback is
// pending further Arm calls are dropped; the timer is never reset.
type Throttle struct {
	sched Scheduler
	stop  func() bool
}

// NewThrottle creates an idle throttle.
func NewThrottle(sched Scheduler) *Throttle {
	return &Throttle{sched: sched}
}

// Arm schedules fn to run after delay unless a callback is already
// pending. It reports whether fn was scheduled.
func (t *Throttle) Arm(delay time.Duration, fn func()) bool {
	if t.stop != nil {
		return false
	}
	t.stop = t.sched.AfterFunc(delay, func() {
		t.stop = nil
		fn()
	})
	return true
}

// Cancel drops the pending callback, if any.
func (t *Throttle) Cancel() {
	if t.stop == nil {
		return
	}
	t.stop()
	t.stop = nil
}

// Pending reports whether a callback is scheduled.
func (t *Throttle) Pending() bool {
	return t.stop != nil
}
