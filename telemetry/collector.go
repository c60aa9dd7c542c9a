package telemetry

import (
	"math"

	"github.com/pthm-cable/bubbles/scene"
)

// Session events recorded in sessions.csv.
const (
	SessionStart = "start"
	SessionStop  = "stop"
)

// SessionRecord is one session start or stop.
type SessionRecord struct {
	Tick    int64   `csv:"tick"`
	Session int     `csv:"session"`
	Event   string  `csv:"event"`
	Reason  string  `csv:"reason"`
	Width   float64 `csv:"width"`
	Height  float64 `csv:"height"`
	Bodies  int     `csv:"bodies"`
}

// Collector accumulates scene events within time windows and produces
// WindowStats. It implements scene.Observer.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float64

	tick            int64
	windowStartTick int64
	session         scene.SessionInfo

	// Event counters for current window
	scrollEvents   int
	scrollImpulses int
	impulseAbsSum  float64
	resizeEvents   int
	restarts       int

	sessions []SessionRecord
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in seconds
// dt: seconds per tick
func NewCollector(windowDurationSec float64, dt float64) *Collector {
	ticksPerWindow := int64(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Advance counts one frame and returns the current tick.
func (c *Collector) Advance() int64 {
	c.tick++
	return c.tick
}

// Tick returns the number of frames counted.
func (c *Collector) Tick() int64 {
	return c.tick
}

// OnSessionStart records a session start row.
func (c *Collector) OnSessionStart(info scene.SessionInfo) {
	c.session = info
	c.sessions = append(c.sessions, c.record(info, SessionStart, ""))
}

// OnSessionStop records a session stop row and counts restarts.
func (c *Collector) OnSessionStop(info scene.SessionInfo, reason string) {
	if reason == scene.StopRestart {
		c.restarts++
	}
	c.session = scene.SessionInfo{}
	c.sessions = append(c.sessions, c.record(info, SessionStop, reason))
}

// OnScrollEvent counts a raw host scroll event.
func (c *Collector) OnScrollEvent() {
	c.scrollEvents++
}

// OnScrollImpulse counts a throttled scroll firing and its |delta|.
func (c *Collector) OnScrollImpulse(delta float64, _ int) {
	c.scrollImpulses++
	c.impulseAbsSum += math.Abs(delta)
}

// OnResizeEvent counts a raw host resize event.
func (c *Collector) OnResizeEvent() {
	c.resizeEvents++
}

func (c *Collector) record(info scene.SessionInfo, event, reason string) SessionRecord {
	return SessionRecord{
		Tick:    c.tick,
		Session: info.ID,
		Event:   event,
		Reason:  reason,
		Width:   info.Viewport.Width,
		Height:  info.Viewport.Height,
		Bodies:  info.Bodies,
	}
}

// DrainSessions returns session records since the last call.
func (c *Collector) DrainSessions() []SessionRecord {
	out := c.sessions
	c.sessions = nil
	return out
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush() bool {
	return c.tick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// speeds are the current body speeds.
func (c *Collector) Flush(speeds []float64) WindowStats {
	speed := ComputeSpeedStats(speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   c.tick,
		SimTimeSec:      float64(c.tick) * c.dt,

		Session: c.session.ID,
		Bodies:  c.session.Bodies,

		ScrollEvents:   c.scrollEvents,
		ScrollImpulses: c.scrollImpulses,
		ImpulseAbsSum:  c.impulseAbsSum,
		ResizeEvents:   c.resizeEvents,
		Restarts:       c.restarts,

		SpeedMean: speed.Mean,
		SpeedStd:  speed.Std,
		SpeedP50:  speed.P50,
		SpeedP90:  speed.P90,
		SpeedMax:  speed.Max,
	}

	// Reset for next window
	c.windowStartTick = c.tick
	c.scrollEvents = 0
	c.scrollImpulses = 0
	c.impulseAbsSum = 0
	c.resizeEvents = 0
	c.restarts = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
