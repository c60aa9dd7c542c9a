package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/bubbles/config"
)

// Tunable is a numeric bubble option exposed as a slider.
type Tunable struct {
	Label    string
	Min, Max float64
	Format   string
	get      func(*config.BubbleConfig) float64
	set      func(*config.BubbleConfig, float64)
}

// Tunables lists the sliders in display order.
var Tunables = []Tunable{
	{
		Label: "Scroll scale", Min: 0, Max: 0.1, Format: "%.3f",
		get: func(c *config.BubbleConfig) float64 { return c.ScrollVelocityScale },
		set: func(c *config.BubbleConfig, v float64) { c.ScrollVelocityScale = v },
	},
	{
		Label: "Px per body", Min: 5000, Max: 200000, Format: "%.0f",
		get: func(c *config.BubbleConfig) float64 { return c.PixelsPerBody },
		set: func(c *config.BubbleConfig, v float64) { c.PixelsPerBody = v },
	},
	{
		Label: "Air friction", Min: 0, Max: 0.2, Format: "%.3f",
		get: func(c *config.BubbleConfig) float64 { return c.AirFriction },
		set: func(c *config.BubbleConfig, v float64) { c.AirFriction = v },
	},
	{
		Label: "Opacity", Min: 0, Max: 1, Format: "%.2f",
		get: func(c *config.BubbleConfig) float64 { return c.Opacity },
		set: func(c *config.BubbleConfig, v float64) { c.Opacity = v },
	},
	{
		Label: "Radius min", Min: 5, Max: 200, Format: "%.0f",
		get: func(c *config.BubbleConfig) float64 { return c.RadiusRange.Min },
		set: func(c *config.BubbleConfig, v float64) { c.RadiusRange.Min = v },
	},
	{
		Label: "Radius max", Min: 5, Max: 200, Format: "%.0f",
		get: func(c *config.BubbleConfig) float64 { return c.RadiusRange.Max },
		set: func(c *config.BubbleConfig, v float64) { c.RadiusRange.Max = v },
	},
}

// TuningModel holds a draft bubble config edited through Tunables.
type TuningModel struct {
	base  config.BubbleConfig
	draft config.BubbleConfig
	dirty bool
}

// NewTuningModel starts a draft from cfg.
func NewTuningModel(cfg config.BubbleConfig) *TuningModel {
	m := &TuningModel{}
	m.Reset(cfg)
	return m
}

// Reset discards the draft and starts again from cfg.
func (m *TuningModel) Reset(cfg config.BubbleConfig) {
	m.base = cfg.Clone()
	m.draft = cfg.Clone()
	m.dirty = false
}

// Value returns the draft value of Tunables[i].
func (m *TuningModel) Value(i int) float64 {
	return Tunables[i].get(&m.draft)
}

// Set stores v, clamped to the slider range, as the draft value of
// Tunables[i].
func (m *TuningModel) Set(i int, v float64) {
	t := Tunables[i]
	v = min(max(v, t.Min), t.Max)
	if t.get(&m.draft) == v {
		return
	}
	t.set(&m.draft, v)
	m.dirty = true
}

// Collisions returns the draft collision flag.
func (m *TuningModel) Collisions() bool {
	return m.draft.Collisions
}

// SetCollisions sets the draft collision flag.
func (m *TuningModel) SetCollisions(on bool) {
	if m.draft.Collisions == on {
		return
	}
	m.draft.Collisions = on
	m.dirty = true
}

// Dirty reports whether the draft differs from the last applied config.
func (m *TuningModel) Dirty() bool {
	return m.dirty
}

// Draft returns a copy of the draft.
func (m *TuningModel) Draft() config.BubbleConfig {
	return m.draft.Clone()
}

// Commit hands the draft to apply. On success the draft becomes the base.
func (m *TuningModel) Commit(apply func(config.BubbleConfig) error) error {
	if err := apply(m.draft.Clone()); err != nil {
		return err
	}
	m.base = m.draft.Clone()
	m.dirty = false
	return nil
}

// Revert drops unapplied edits.
func (m *TuningModel) Revert() {
	m.Reset(m.base)
}

// Tuning is the slider panel toggled with Tab.
type Tuning struct {
	renderer *Renderer
	model    *TuningModel
	apply    func(config.BubbleConfig) error
	x, y     int32
	width    int32
	visible  bool
	lastErr  string
}

// NewTuning creates a hidden panel editing cfg. apply is called with the
// draft when the user presses Apply.
func NewTuning(x, y, width int32, cfg config.BubbleConfig, apply func(config.BubbleConfig) error) *Tuning {
	return &Tuning{
		renderer: NewRenderer(),
		model:    NewTuningModel(cfg),
		apply:    apply,
		x:        x,
		y:        y,
		width:    width,
	}
}

// Toggle switches panel visibility.
func (t *Tuning) Toggle() bool {
	t.visible = !t.visible
	return t.visible
}

// IsVisible returns whether the panel is shown.
func (t *Tuning) IsVisible() bool {
	return t.visible
}

// Model returns the panel's draft model.
func (t *Tuning) Model() *TuningModel {
	return t.model
}

// Draw renders the panel and handles its widgets.
func (t *Tuning) Draw() {
	if !t.visible {
		return
	}

	r := t.renderer
	pad := r.Theme.Padding
	rowH := int32(34)
	height := pad*3 + r.Theme.LineHeight + int32(len(Tunables))*rowH + 30 + 30 + r.Theme.LineHeight
	r.DrawPanel(t.x, t.y, t.width, height)

	x := float32(t.x + pad)
	y := t.y + pad
	y = r.DrawSectionHeader(t.x+pad, y, "Bubble Tuning")

	sliderW := float32(t.width - pad*2 - 70)
	for i, tn := range Tunables {
		rl.DrawText(tn.Label, t.x+pad, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += 14
		v := gui.SliderBar(
			rl.Rectangle{X: x, Y: float32(y), Width: sliderW, Height: 14},
			"", "",
			float32(t.model.Value(i)), float32(tn.Min), float32(tn.Max),
		)
		if v != float32(t.model.Value(i)) {
			t.model.Set(i, float64(v))
		}
		rl.DrawText(fmt.Sprintf(tn.Format, t.model.Value(i)), int32(x+sliderW)+8, y, r.Theme.FontSize, r.Theme.ValueColor)
		y += rowH - 14
	}

	t.model.SetCollisions(gui.CheckBox(rl.Rectangle{X: x, Y: float32(y), Width: 16, Height: 16}, "Collisions", t.model.Collisions()))
	y += 30

	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: 90, Height: 24}, "Apply") && t.model.Dirty() {
		t.lastErr = ""
		if err := t.model.Commit(t.apply); err != nil {
			t.lastErr = err.Error()
		}
	}
	if gui.Button(rl.Rectangle{X: x + 100, Y: float32(y), Width: 90, Height: 24}, "Revert") {
		t.model.Revert()
		t.lastErr = ""
	}
	y += 30

	if t.lastErr != "" {
		rl.DrawText(t.lastErr, t.x+pad, y, r.Theme.FontSize, rl.Red)
	} else if t.model.Dirty() {
		rl.DrawText("Unapplied changes", t.x+pad, y, r.Theme.FontSize, r.Theme.SectionHeader)
	}
}
