// Package flowmap maintains a decaying 2D velocity field driven by pointer motion.
//
// The field lives in two equally sized float render targets. Each Step renders
// the stamp pass into the write target while sampling the read target, then the
// two swap roles, so a pass never samples the surface it writes.
package flowmap

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/fluidtrail/gfx"
)

// ErrResolution is returned when the requested buffer size is unusable on the device.
var ErrResolution = errors.New("flowmap: unsupported resolution")

// Config holds construction-time settings.
type Config struct {
	Resolution int // square buffer side in texels
	Params
	Preset string

	// Viewport used for the X aspect correction of the stamp.
	ViewportW, ViewportH int
}

// DefaultConfig returns a 256² engine with the default parameters.
func DefaultConfig() Config {
	return Config{
		Resolution: 256,
		Params:     DefaultParams(),
		Preset:     DefaultPreset,
		ViewportW:  1,
		ViewportH:  1,
	}
}

// Engine owns the ping-pong pair. External code only sees the read buffer's Texture.
type Engine struct {
	dev        gfx.Device
	resolution int
	targets    [2]gfx.Target
	read       int // index of the current read buffer; the other is the write target

	pass  stampPass
	steps uint64
}

// New validates cfg and allocates both buffers. Any failure is fatal for the engine.
func New(dev gfx.Device, cfg Config) (*Engine, error) {
	if cfg.Resolution <= 0 || cfg.Resolution > dev.MaxTextureSize() {
		return nil, fmt.Errorf("resolution %d (device max %d): %w", cfg.Resolution, dev.MaxTextureSize(), ErrResolution)
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	preset, err := LookupPreset(cfg.Preset)
	if err != nil {
		return nil, err
	}
	if err := preset.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		dev:        dev,
		resolution: cfg.Resolution,
		pass: stampPass{
			params: cfg.Params,
			preset: preset,
			aspect: aspect(cfg.ViewportW, cfg.ViewportH),
		},
	}

	if err := dev.Compile(&e.pass); err != nil {
		return nil, fmt.Errorf("compiling stamp pass: %w", err)
	}

	for i := range e.targets {
		t, err := dev.NewTarget(cfg.Resolution, cfg.Resolution)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("allocating flowmap buffer %d: %w", i, err)
		}
		e.targets[i] = t
	}
	e.Reset()

	return e, nil
}

// Step runs one simulation tick: render the stamp pass into the write buffer,
// restore the default framebuffer, then swap roles.
func (e *Engine) Step(velocity, position gfx.Vec2) {
	write := e.targets[1-e.read]

	e.pass.velocity = velocity
	e.pass.position = position

	e.dev.BindTarget(write)
	e.dev.RunPass(&e.pass, e.targets[e.read].Texture())
	e.dev.BindTarget(nil)

	e.read = 1 - e.read
	e.steps++
}

// Texture returns the current output. The handle changes after every Step.
func (e *Engine) Texture() gfx.Texture {
	return e.targets[e.read].Texture()
}

// Resolution returns the buffer side length.
func (e *Engine) Resolution() int {
	return e.resolution
}

// Steps returns the number of completed ticks.
func (e *Engine) Steps() uint64 {
	return e.steps
}

// Params returns the active parameters.
func (e *Engine) Params() Params {
	return e.pass.params
}

// Preset returns the active stamp preset.
func (e *Engine) Preset() Preset {
	return e.pass.preset
}

// SetParameters applies a partial update. An invalid update changes nothing.
func (e *Engine) SetParameters(u Update) error {
	params, preset, err := u.apply(e.pass.params, e.pass.preset)
	if err != nil {
		return err
	}
	e.pass.params = params
	e.pass.preset = preset
	return nil
}

// SetViewport updates the aspect ratio applied to the stamp's X offset.
func (e *Engine) SetViewport(width, height int) {
	e.pass.aspect = aspect(width, height)
}

// Aspect returns the current stamp aspect ratio.
func (e *Engine) Aspect() float32 {
	return e.pass.aspect
}

// Reset clears both buffers to transparent black.
func (e *Engine) Reset() {
	for _, t := range e.targets {
		if t == nil {
			continue
		}
		e.dev.BindTarget(t)
		e.dev.Clear()
	}
	e.dev.BindTarget(nil)
}

// Close releases both buffers. The engine must not be used afterwards.
func (e *Engine) Close() {
	for i, t := range e.targets {
		if t != nil {
			e.dev.ReleaseTarget(t)
			e.targets[i] = nil
		}
	}
}

func aspect(w, h int) float32 {
	if w <= 0 || h <= 0 {
		return 1
	}
	return float32(w) / float32(h)
}
