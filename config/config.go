// Package config provides configuration loading and access for the scene.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Bubbles   BubbleConfig    `yaml:"bubbles"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Render    RenderConfig    `yaml:"render"`
	Host      HostConfig      `yaml:"host"`
	Terminal  TerminalConfig  `yaml:"terminal"`
	Headless  HeadlessConfig  `yaml:"headless"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds window settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
	Resizable bool   `yaml:"resizable"`
}

// PhysicsConfig holds engine parameters.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"`
	Gravity      Gravity `yaml:"gravity"`
	GridCellSize float64 `yaml:"grid_cell_size"`
}

// Gravity is the world gravity in px/step².
type Gravity struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// RenderConfig holds surface parameters.
type RenderConfig struct {
	Background string `yaml:"background"`  // surface fill, "transparent" draws nothing
	ClearColor string `yaml:"clear_color"` // window clear behind a transparent surface
}

// HostConfig holds the emulated page used to derive a scroll offset.
type HostConfig struct {
	ScrollStep float64 `yaml:"scroll_step"`
	PageHeight float64 `yaml:"page_height"`
}

// TerminalConfig holds terminal backend parameters.
type TerminalConfig struct {
	CellWidth  float64 `yaml:"cell_width"`
	CellHeight float64 `yaml:"cell_height"`
	LogFile    string  `yaml:"log_file"`
}

// HeadlessConfig holds the scripted input of the headless backend.
type HeadlessConfig struct {
	ScrollAmplitude float64 `yaml:"scroll_amplitude"`
	ScrollPeriod    float64 `yaml:"scroll_period"`   // seconds
	ResizeInterval  float64 `yaml:"resize_interval"` // seconds, 0 = never
	ResizeScale     float64 `yaml:"resize_scale"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Background color.RGBA
	ClearColor color.RGBA
	StepPeriod time.Duration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	errs := []error{c.Bubbles.Validate()}
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: screen size must be positive, got %dx%d",
			ErrInvalidConfig, c.Screen.Width, c.Screen.Height))
	}
	for name, v := range map[string]float64{
		"physics.dt":             c.Physics.DT,
		"physics.gravity.x":      c.Physics.Gravity.X,
		"physics.gravity.y":      c.Physics.Gravity.Y,
		"physics.grid_cell_size": c.Physics.GridCellSize,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%w: %s must be finite, got %g", ErrInvalidConfig, name, v))
		}
	}
	if c.Physics.DT <= 0 {
		errs = append(errs, fmt.Errorf("%w: physics.dt must be > 0, got %g", ErrInvalidConfig, c.Physics.DT))
	}
	if c.Physics.GridCellSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: physics.grid_cell_size must be > 0, got %g",
			ErrInvalidConfig, c.Physics.GridCellSize))
	}
	if _, err := ParseColor(c.Render.Background); err != nil {
		errs = append(errs, fmt.Errorf("%w: render.background: %v", ErrInvalidConfig, err))
	}
	if _, err := ParseColor(c.Render.ClearColor); err != nil {
		errs = append(errs, fmt.Errorf("%w: render.clear_color: %v", ErrInvalidConfig, err))
	}
	if c.Terminal.CellWidth <= 0 || c.Terminal.CellHeight <= 0 {
		errs = append(errs, fmt.Errorf("%w: terminal cell size must be positive", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Background, _ = ParseColor(c.Render.Background)
	c.Derived.ClearColor, _ = ParseColor(c.Render.ClearColor)
	c.Derived.StepPeriod = time.Duration(c.Physics.DT * float64(time.Second))

	if c.Telemetry.PerfCollectorWindow < 1 {
		c.Telemetry.PerfCollectorWindow = 60
	}
	if c.Host.ScrollStep <= 0 {
		c.Host.ScrollStep = 60
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
