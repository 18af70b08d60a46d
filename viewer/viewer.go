// Package viewer wires the velocity tracker, the flowmap engine, the scene
// consumers and the inspector into one frame loop, windowed or headless.
package viewer

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/fluidtrail/config"
	"github.com/pthm-cable/fluidtrail/flowmap"
	"github.com/pthm-cable/fluidtrail/gfx"
	"github.com/pthm-cable/fluidtrail/inspector"
	"github.com/pthm-cable/fluidtrail/renderer"
	"github.com/pthm-cable/fluidtrail/scene"
	"github.com/pthm-cable/fluidtrail/telemetry"
	"github.com/pthm-cable/fluidtrail/ui"
	"github.com/pthm-cable/fluidtrail/velocity"
)

// Options holds per-run settings that are not part of the config file.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	OutputDir      string
	Headless       bool
}

// Viewer holds the complete frame state.
type Viewer struct {
	cfg      *config.Config
	dev      gfx.Device
	rng      *rand.Rand
	headless bool

	tracker   *velocity.Tracker
	engine    *flowmap.Engine
	comp      *inspector.Compositor
	field     *scene.FieldCache
	particles *scene.ParticleField
	surface   *scene.Surface

	// Windowed mode only
	overlay          *inspector.Overlay
	overlays         *ui.OverlayRegistry
	hud              *ui.HUD
	controls         *ui.ControlsPanel
	perfPanel        *ui.PerfPanel
	particleRenderer *renderer.ParticleRenderer
	surfaceRenderer  *renderer.SurfaceRenderer

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool

	// State
	tick          int32
	simTime       float64
	paused        bool
	pointerPrimed bool
	sample        velocity.Sample
	output        gfx.Texture // engine output the panel currently shows
	width, height int
}

// New builds a viewer drawing through dev. Construction failures of the
// engine or the output directory are returned; the viewer is unusable then.
func New(cfg *config.Config, dev gfx.Device, opts Options) (*Viewer, error) {
	w, h := cfg.Screen.Width, cfg.Screen.Height

	engine, err := flowmap.New(dev, cfg.EngineConfig())
	if err != nil {
		return nil, fmt.Errorf("creating flowmap engine: %w", err)
	}

	v := &Viewer{
		cfg:      cfg,
		dev:      dev,
		rng:      rand.New(rand.NewSource(opts.Seed)),
		headless: opts.Headless,
		engine:   engine,
		tracker:  velocity.New(cfg.TrackerConfig(), float64(w), float64(h)),
		comp:     inspector.New(dev, cfg.Inspector.MinPanelWidth, w, h),
		field:    scene.NewFieldCache(dev, cfg.Scene.ReadbackInterval),
		logStats: opts.LogStats,
		width:    w,
		height:   h,
	}
	v.particles = scene.NewParticleField(cfg.ParticleConfig(), float32(w), float32(h), v.rng)
	v.surface = scene.NewSurface(cfg.Scene.Surface.Cols, cfg.Scene.Surface.Rows, float32(w), float32(h), float32(cfg.Scene.Surface.Amplitude))

	v.output = engine.Texture()
	res := engine.Resolution()
	v.comp.Attach(v.output, res, res, "flowmap", formatFlow)
	if !cfg.Inspector.Visible {
		v.comp.HideAll()
	}

	// Ticks are counted per flowmap step; windowed runs assume the target frame rate.
	dt := cfg.Derived.DT32
	if !opts.Headless && cfg.Screen.TargetFPS > 0 {
		dt = 1 / float32(cfg.Screen.TargetFPS)
	}
	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	v.collector = telemetry.NewCollector(statsWindow, dt)
	v.collector.SetActiveThreshold(cfg.Telemetry.ActiveThreshold)
	v.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)

	v.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		engine.Close()
		return nil, err
	}
	if err := v.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	if opts.Headless {
		x, y := v.pathPoint(0)
		v.tracker.Reset(x, y)
		v.pointerPrimed = true
	} else {
		v.overlay = inspector.NewOverlay(v.comp)
		v.overlay.SetInterval(cfg.Inspector.ProbeInterval)
		v.overlays = ui.NewOverlayRegistry()
		v.overlays.SetEnabled(ui.OverlayPanels, cfg.Inspector.Visible)
		v.hud = ui.NewHUD()
		v.controls = ui.NewControlsPanel(int32(w)-controlsWidth-10, 10, controlsWidth)
		v.perfPanel = ui.NewPerfPanel(10, int32(h)-130)
		v.particleRenderer = renderer.NewParticleRenderer(float32(cfg.Scene.Particles.Size))
		v.surfaceRenderer = renderer.NewSurfaceRenderer()
	}

	slog.Info("viewer ready",
		"resolution", res,
		"preset", engine.Preset().Name,
		"particles", v.particles.Count(),
		"headless", opts.Headless,
	)
	return v, nil
}

const controlsWidth = 230

// formatFlow labels the flowmap channels for probe readouts.
func formatFlow(px inspector.Pixel) string {
	return fmt.Sprintf("vel: (%+.4f, %+.4f) intensity: %.4f", px.Color.R, px.Color.G, px.Color.B)
}

// step runs one tick in the fixed order: velocity, flowmap, consumers.
func (v *Viewer) step(dt float64) {
	v.perfCollector.StartPhase(telemetry.PhaseVelocity)
	v.sample = v.tracker.Update(dt)
	vel, pos := v.sample.Vec2()

	v.perfCollector.StartPhase(telemetry.PhaseFlowmap)
	v.engine.Step(vel, pos)
	next := v.engine.Texture()
	v.comp.Rebind(v.output, next)
	v.output = next

	v.perfCollector.StartPhase(telemetry.PhaseScene)
	if _, err := v.field.Update(int(v.tick), next); err != nil {
		slog.Error("flowmap readback failed", "tick", v.tick, "error", err)
	}
	v.particles.Update(v.field, float32(dt))
	v.surface.Update(v.field)

	v.collector.RecordTick(vel, v.particles.Energy())
	v.tick++
	v.simTime += dt
}

// resize propagates new viewport dimensions to every component.
func (v *Viewer) resize(w, h int) {
	if w == v.width && h == v.height {
		return
	}
	v.width, v.height = w, h
	v.engine.SetViewport(w, h)
	v.tracker.SetViewport(float64(w), float64(h))
	v.comp.SetViewport(w, h)
	v.particles.Resize(float32(w), float32(h))
	v.surface.Resize(float32(w), float32(h))
	if v.controls != nil {
		v.controls.SetPosition(int32(w)-controlsWidth-10, 10)
	}
	if v.perfPanel != nil {
		v.perfPanel.SetPosition(10, int32(h)-130)
	}
}

// setPreset switches the stamp preset, logging rejected names.
func (v *Viewer) setPreset(name string) {
	if err := v.engine.SetParameters(flowmap.Update{Preset: flowmap.String(name)}); err != nil {
		slog.Warn("preset rejected", "preset", name, "error", err)
		return
	}
	slog.Info("preset changed", "preset", name, "tick", v.tick)
}

// Tick returns the number of completed ticks.
func (v *Viewer) Tick() int32 {
	return v.tick
}

// Engine returns the flowmap engine.
func (v *Viewer) Engine() *flowmap.Engine {
	return v.engine
}

// Compositor returns the inspection compositor.
func (v *Viewer) Compositor() *inspector.Compositor {
	return v.comp
}

// Unload flushes output and releases the engine's buffers.
func (v *Viewer) Unload() {
	if err := v.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	v.comp.Detach(v.output)
	v.engine.Close()
}
