package ui

import (
	"errors"
	"testing"

	"github.com/pthm-cable/bubbles/config"
)

func tunableIndex(t *testing.T, label string) int {
	t.Helper()
	for i, tn := range Tunables {
		if tn.Label == label {
			return i
		}
	}
	t.Fatalf("no tunable %q", label)
	return -1
}

func TestTuningModelEdits(t *testing.T) {
	m := NewTuningModel(config.DefaultBubbles())
	ppb := tunableIndex(t, "Px per body")

	if m.Dirty() {
		t.Fatal("fresh model dirty")
	}
	m.Set(ppb, m.Value(ppb))
	if m.Dirty() {
		t.Error("setting the same value marked dirty")
	}

	m.Set(ppb, 25000)
	if !m.Dirty() || m.Draft().PixelsPerBody != 25000 {
		t.Errorf("draft = %v dirty=%v", m.Draft().PixelsPerBody, m.Dirty())
	}

	// Clamped to the slider range
	m.Set(ppb, 1e9)
	if got := m.Value(ppb); got != Tunables[ppb].Max {
		t.Errorf("value = %v, want clamp to %v", got, Tunables[ppb].Max)
	}

	m.Revert()
	if m.Dirty() || m.Draft().PixelsPerBody != 50000 {
		t.Errorf("revert left draft %v dirty=%v", m.Draft().PixelsPerBody, m.Dirty())
	}
}

func TestTuningModelCommit(t *testing.T) {
	m := NewTuningModel(config.DefaultBubbles())
	m.SetCollisions(false)
	m.Set(tunableIndex(t, "Air friction"), 0.1)

	var applied config.BubbleConfig
	err := m.Commit(func(cfg config.BubbleConfig) error {
		applied = cfg
		return nil
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if applied.Collisions || applied.AirFriction != 0.1 {
		t.Errorf("applied = %+v", applied)
	}
	if m.Dirty() {
		t.Error("dirty after successful commit")
	}

	// Failed commit keeps the draft and the old base
	m.Set(tunableIndex(t, "Radius min"), 150)
	m.Set(tunableIndex(t, "Radius max"), 60)
	reject := func(cfg config.BubbleConfig) error { return cfg.Validate() }
	if err := m.Commit(reject); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if !m.Dirty() {
		t.Error("failed commit cleared dirty")
	}
	m.Revert()
	if d := m.Draft(); d.RadiusRange.Min != 50 || d.AirFriction != 0.1 {
		t.Errorf("revert did not return to last applied config: %+v", d)
	}
}
