package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"slices"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Range is a closed interval written in YAML as [min, max].
type Range struct {
	Min, Max float64
}

// UnmarshalYAML decodes a two-element sequence.
func (r *Range) UnmarshalYAML(value *yaml.Node) error {
	var pair []float64
	if err := value.Decode(&pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("line %d: range needs exactly 2 values, got %d", value.Line, len(pair))
	}
	r.Min, r.Max = pair[0], pair[1]
	return nil
}

// MarshalYAML encodes the range as [min, max].
func (r Range) MarshalYAML() (any, error) {
	return []float64{r.Min, r.Max}, nil
}

// BubbleConfig holds the per-session bubble options.
type BubbleConfig struct {
	RadiusRange         Range    `yaml:"radius_range"`
	XImpulseRange       Range    `yaml:"x_impulse_range"`
	YImpulseRange       Range    `yaml:"y_impulse_range"`
	AirFriction         float64  `yaml:"air_friction"`
	Opacity             float64  `yaml:"opacity"`
	Collisions          bool     `yaml:"collisions"`
	ScrollVelocityScale float64  `yaml:"scroll_velocity_scale"`
	PixelsPerBody       float64  `yaml:"pixels_per_body"`
	Colors              []string `yaml:"colors"`
	ScrollThrottleMs    int      `yaml:"scroll_throttle_ms"`
	ResizeThrottleMs    int      `yaml:"resize_throttle_ms"`
}

// DefaultBubbles returns the bubble options from the embedded defaults.
func DefaultBubbles() BubbleConfig {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg.Bubbles
}

// Clone returns a copy that shares no memory with b.
func (b BubbleConfig) Clone() BubbleConfig {
	b.Colors = slices.Clone(b.Colors)
	return b
}

// ScrollThrottle returns the scroll throttle interval.
func (b BubbleConfig) ScrollThrottle() time.Duration {
	return time.Duration(b.ScrollThrottleMs) * time.Millisecond
}

// ResizeThrottle returns the resize throttle interval.
func (b BubbleConfig) ResizeThrottle() time.Duration {
	return time.Duration(b.ResizeThrottleMs) * time.Millisecond
}

// MinPixelsPerBody is the densest allowed population: one body per pixel.
const MinPixelsPerBody = 1.0

// Validate reports every invalid field, joined. Non-finite numbers are
// rejected along with out-of-range ones.
func (b BubbleConfig) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	finite := func(name string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			fail("%s must be finite, got %g", name, v)
		}
	}
	for _, r := range []struct {
		name string
		r    Range
	}{
		{"radius_range", b.RadiusRange},
		{"x_impulse_range", b.XImpulseRange},
		{"y_impulse_range", b.YImpulseRange},
	} {
		finite(r.name+" min", r.r.Min)
		finite(r.name+" max", r.r.Max)
	}
	finite("air_friction", b.AirFriction)
	finite("opacity", b.Opacity)
	finite("scroll_velocity_scale", b.ScrollVelocityScale)
	finite("pixels_per_body", b.PixelsPerBody)

	if b.RadiusRange.Min <= 0 {
		fail("radius_range min must be > 0, got %g", b.RadiusRange.Min)
	}
	checkRange := func(name string, r Range) {
		if r.Min > r.Max {
			fail("%s is inverted [%g, %g]", name, r.Min, r.Max)
		}
	}
	checkRange("radius_range", b.RadiusRange)
	checkRange("x_impulse_range", b.XImpulseRange)
	checkRange("y_impulse_range", b.YImpulseRange)

	if b.AirFriction < 0 {
		fail("air_friction must be >= 0, got %g", b.AirFriction)
	}
	if b.Opacity < 0 || b.Opacity > 1 {
		fail("opacity must be within [0, 1], got %g", b.Opacity)
	}
	if b.PixelsPerBody < MinPixelsPerBody {
		fail("pixels_per_body must be >= %g, got %g", MinPixelsPerBody, b.PixelsPerBody)
	}
	if b.ScrollThrottleMs < 0 {
		fail("scroll_throttle_ms must be >= 0, got %d", b.ScrollThrottleMs)
	}
	if b.ResizeThrottleMs < 0 {
		fail("resize_throttle_ms must be >= 0, got %d", b.ResizeThrottleMs)
	}
	if len(b.Colors) == 0 {
		fail("colors must not be empty")
	}
	for i, c := range b.Colors {
		if _, err := ParseColor(c); err != nil {
			fail("colors[%d]: %v", i, err)
		}
	}

	return errors.Join(errs...)
}

// Palette parses Colors in order.
func (b BubbleConfig) Palette() ([]color.RGBA, error) {
	palette := make([]color.RGBA, 0, len(b.Colors))
	for i, c := range b.Colors {
		rgba, err := ParseColor(c)
		if err != nil {
			return nil, fmt.Errorf("%w: colors[%d]: %v", ErrInvalidConfig, i, err)
		}
		palette = append(palette, rgba)
	}
	return palette, nil
}

// ParseColor parses "#rrggbb", "#rgb" or "transparent".
func ParseColor(s string) (color.RGBA, error) {
	if s == "transparent" {
		return color.RGBA{}, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, bl := c.RGB255()
	return color.RGBA{R: r, G: g, B: bl, A: 255}, nil
}
