// Package velocity derives a normalized pointer velocity from pointer events.
package velocity

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluidtrail/gfx"
)

// Config holds tracker settings.
type Config struct {
	// Scale converts normalized displacement per second into stamp units.
	Scale float64
	// MinDT floors the elapsed time so collapsed frames do not spike velocity.
	MinDT float64
	// FlipY maps screen Y (down) to texture V (up).
	FlipY bool
	// Clamp restricts the normalized position to [0,1].
	Clamp bool
}

// DefaultConfig returns the settings used by the viewer.
func DefaultConfig() Config {
	return Config{
		Scale: 1,
		MinDT: 1.0 / 120.0,
		FlipY: true,
	}
}

// Sample is the tracker output for one tick.
type Sample struct {
	Position r2.Vec // normalized pointer location
	Velocity r2.Vec // scaled normalized displacement per second
}

// Vec2 returns the sample as stamp inputs.
func (s Sample) Vec2() (velocity, position gfx.Vec2) {
	return toVec2(s.Velocity), toVec2(s.Position)
}

// Tracker keeps the current and previous pointer location.
type Tracker struct {
	cfg               Config
	viewW, viewH      float64
	current, previous r2.Vec
	sample            Sample
}

// New creates a tracker for a viewport of the given size.
func New(cfg Config, viewportW, viewportH float64) *Tracker {
	if cfg.MinDT <= 0 {
		cfg.MinDT = DefaultConfig().MinDT
	}
	t := &Tracker{cfg: cfg}
	t.SetViewport(viewportW, viewportH)
	t.Reset(viewportW/2, viewportH/2)
	return t
}

// SetViewport updates the dimensions used to normalize pointer coordinates.
func (t *Tracker) SetViewport(width, height float64) {
	t.viewW = width
	t.viewH = height
}

// Reset places both current and previous pointer at (x, y) device pixels.
func (t *Tracker) Reset(x, y float64) {
	p := t.normalize(x, y)
	t.current = p
	t.previous = p
	t.sample = Sample{Position: t.position(p)}
}

// Move records a pointer event in device pixels.
func (t *Tracker) Move(x, y float64) {
	t.current = t.normalize(x, y)
}

// Update computes the velocity since the previous update, dt seconds ago.
// Without a Move in between the velocity is zero.
func (t *Tracker) Update(dt float64) Sample {
	d := r2.Sub(t.current, t.previous)
	v := r2.Scale(t.cfg.Scale/math.Max(dt, t.cfg.MinDT), d)
	if t.cfg.FlipY {
		v.Y = -v.Y
	}
	t.previous = t.current
	t.sample = Sample{
		Position: t.position(t.current),
		Velocity: v,
	}
	return t.sample
}

// Track records a pointer event and updates in one call.
func (t *Tracker) Track(x, y, dt float64) Sample {
	t.Move(x, y)
	return t.Update(dt)
}

// Sample returns the most recent output.
func (t *Tracker) Sample() Sample {
	return t.sample
}

// normalize remaps device pixels to [0,1] by division, Y still pointing down.
func (t *Tracker) normalize(x, y float64) r2.Vec {
	var p r2.Vec
	if t.viewW > 0 {
		p.X = x / t.viewW
	}
	if t.viewH > 0 {
		p.Y = y / t.viewH
	}
	if t.cfg.Clamp {
		p.X = clamp01(p.X)
		p.Y = clamp01(p.Y)
	}
	return p
}

// position converts a normalized screen point to the output convention.
func (t *Tracker) position(p r2.Vec) r2.Vec {
	if t.cfg.FlipY {
		p.Y = 1 - p.Y
	}
	return p
}

func toVec2(v r2.Vec) gfx.Vec2 {
	return gfx.Vec2{X: float32(v.X), Y: float32(v.Y)}
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
