// Package config provides configuration loading and access for the viewer.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/fluidtrail/flowmap"
	"github.com/pthm-cable/fluidtrail/scene"
	"github.com/pthm-cable/fluidtrail/velocity"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Config holds all viewer configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Flowmap   FlowmapConfig   `yaml:"flowmap"`
	Velocity  VelocityConfig  `yaml:"velocity"`
	Inspector InspectorConfig `yaml:"inspector"`
	Scene     SceneConfig     `yaml:"scene"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Headless  HeadlessConfig  `yaml:"headless"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// FlowmapConfig holds the flowmap engine construction parameters.
type FlowmapConfig struct {
	Resolution  int     `yaml:"resolution"`  // square buffer side, fixed for the engine's lifetime
	Dissipation float64 `yaml:"dissipation"` // per-step decay, [0,1]
	Falloff     float64 `yaml:"falloff"`     // stamp radius in uv units, > 0
	Alpha       float64 `yaml:"alpha"`       // stamp strength, [0,1]
	Preset      string  `yaml:"preset"`      // classic, inverted or soft
}

// VelocityConfig holds pointer velocity tracking parameters.
type VelocityConfig struct {
	Scale float64 `yaml:"scale"`  // stamp units per normalized displacement per second
	MinDT float64 `yaml:"min_dt"` // elapsed time floor in seconds
	FlipY bool    `yaml:"flip_y"` // screen Y down to texture V up
	Clamp bool    `yaml:"clamp"`  // clamp normalized position to [0,1]
}

// InspectorConfig holds compositor settings.
type InspectorConfig struct {
	MinPanelWidth int  `yaml:"min_panel_width"`
	Visible       bool `yaml:"visible"`        // panels shown at startup
	Clear         bool `yaml:"clear"`          // clear the framebuffer before drawing panels
	ProbeInterval int  `yaml:"probe_interval"` // frames between live pixel readouts
}

// SceneConfig holds consumer stage settings.
type SceneConfig struct {
	ReadbackInterval int            `yaml:"readback_interval"` // ticks between flowmap readbacks
	Seed             int64          `yaml:"seed"`
	Particles        ParticleConfig `yaml:"particles"`
	Surface          SurfaceConfig  `yaml:"surface"`
}

// ParticleConfig holds particle field parameters.
type ParticleConfig struct {
	Count        int     `yaml:"count"`
	FlowStrength float64 `yaml:"flow_strength"`
	Spring       float64 `yaml:"spring"`
	Damping      float64 `yaml:"damping"`
	GlowDecay    float64 `yaml:"glow_decay"`
	Size         float64 `yaml:"size"`
}

// SurfaceConfig holds displacement grid parameters.
type SurfaceConfig struct {
	Cols      int     `yaml:"cols"`
	Rows      int     `yaml:"rows"`
	Amplitude float64 `yaml:"amplitude"` // pixels per unit flow
}

// TelemetryConfig holds telemetry and logging parameters.
type TelemetryConfig struct {
	StatsWindow     float64 `yaml:"stats_window"` // seconds per stats window
	PerfWindow      int     `yaml:"perf_window"`  // ticks in the perf rolling window
	ActiveThreshold float64 `yaml:"active_threshold"`
}

// HeadlessConfig holds settings for runs without a window.
type HeadlessConfig struct {
	DT       float64 `yaml:"dt"`        // seconds per tick
	PathFreq float64 `yaml:"path_freq"` // Lissajous base frequency in Hz
	PathSize float64 `yaml:"path_size"` // path extent as a fraction of the viewport
}

// DerivedConfig holds values computed from other config values.
type DerivedConfig struct {
	ScreenW32 float32
	ScreenH32 float32
	DT32      float32
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

// Validate checks every value against the ranges the components enforce.
func (c *Config) Validate() error {
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("screen %dx%d: %w", c.Screen.Width, c.Screen.Height, ErrInvalid)
	}
	if c.Flowmap.Resolution <= 0 {
		return fmt.Errorf("flowmap.resolution %d: %w", c.Flowmap.Resolution, ErrInvalid)
	}
	if err := c.FlowmapParams().Validate(); err != nil {
		return fmt.Errorf("flowmap: %w: %w", ErrInvalid, err)
	}
	if _, err := flowmap.LookupPreset(c.Flowmap.Preset); err != nil {
		return fmt.Errorf("flowmap: %w: %w", ErrInvalid, err)
	}
	if c.Inspector.MinPanelWidth <= 0 {
		return fmt.Errorf("inspector.min_panel_width %d: %w", c.Inspector.MinPanelWidth, ErrInvalid)
	}
	if c.Inspector.ProbeInterval <= 0 {
		return fmt.Errorf("inspector.probe_interval %d: %w", c.Inspector.ProbeInterval, ErrInvalid)
	}
	if c.Velocity.MinDT <= 0 {
		return fmt.Errorf("velocity.min_dt %v: %w", c.Velocity.MinDT, ErrInvalid)
	}
	if c.Scene.Particles.Count < 0 {
		return fmt.Errorf("scene.particles.count %d: %w", c.Scene.Particles.Count, ErrInvalid)
	}
	if c.Headless.DT <= 0 {
		return fmt.Errorf("headless.dt %v: %w", c.Headless.DT, ErrInvalid)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.DT32 = float32(c.Headless.DT)
}

// FlowmapParams returns the runtime-tunable stamp parameters.
func (c *Config) FlowmapParams() flowmap.Params {
	return flowmap.Params{
		Dissipation: float32(c.Flowmap.Dissipation),
		Falloff:     float32(c.Flowmap.Falloff),
		Alpha:       float32(c.Flowmap.Alpha),
	}
}

// EngineConfig returns the flowmap engine construction config for the screen viewport.
func (c *Config) EngineConfig() flowmap.Config {
	return flowmap.Config{
		Resolution: c.Flowmap.Resolution,
		Params:     c.FlowmapParams(),
		Preset:     c.Flowmap.Preset,
		ViewportW:  c.Screen.Width,
		ViewportH:  c.Screen.Height,
	}
}

// TrackerConfig returns the velocity tracker config.
func (c *Config) TrackerConfig() velocity.Config {
	return velocity.Config{
		Scale: c.Velocity.Scale,
		MinDT: c.Velocity.MinDT,
		FlipY: c.Velocity.FlipY,
		Clamp: c.Velocity.Clamp,
	}
}

// ParticleConfig returns the particle field config.
func (c *Config) ParticleConfig() scene.ParticleConfig {
	p := c.Scene.Particles
	return scene.ParticleConfig{
		Count:        p.Count,
		FlowStrength: float32(p.FlowStrength),
		Spring:       float32(p.Spring),
		Damping:      float32(p.Damping),
		GlowDecay:    float32(p.GlowDecay),
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
