// Package scene holds the consumers of the flowmap: a CPU-side field cache,
// a particle field and a displaced surface grid.
package scene

import (
	"fmt"

	"github.com/pthm-cable/fluidtrail/gfx"
)

// FieldCache keeps a CPU copy of a texture for fast sampling. The copy is
// refreshed every Interval ticks; reading back every frame would stall the GPU.
type FieldCache struct {
	dev      gfx.Device
	interval int

	data          []gfx.RGBA // bottom row first
	width, height int

	lastUpdate int
	primed     bool
}

// NewFieldCache creates a cache that reads back at most once every interval ticks.
func NewFieldCache(dev gfx.Device, interval int) *FieldCache {
	if interval < 1 {
		interval = 1
	}
	return &FieldCache{dev: dev, interval: interval}
}

// Update reads tex back if the interval has elapsed. It reports whether a
// readback happened.
func (fc *FieldCache) Update(tick int, tex gfx.Texture) (bool, error) {
	if fc.primed && tick-fc.lastUpdate < fc.interval {
		return false, nil
	}
	if err := fc.Refresh(tex); err != nil {
		return false, err
	}
	fc.lastUpdate = tick
	return true, nil
}

// Refresh reads tex back unconditionally.
func (fc *FieldCache) Refresh(tex gfx.Texture) error {
	w, h := tex.Size()
	if w != fc.width || h != fc.height {
		fc.data = make([]gfx.RGBA, w*h)
		fc.width, fc.height = w, h
	}
	if err := fc.dev.ReadTexture(tex, fc.data); err != nil {
		return fmt.Errorf("field readback: %w", err)
	}
	fc.primed = true
	return nil
}

// Texels returns the cached copy, bottom row first. It is nil before the
// first readback and is overwritten by the next one.
func (fc *FieldCache) Texels() []gfx.RGBA {
	return fc.data
}

// Size returns the cached texture size.
func (fc *FieldCache) Size() (int, int) {
	return fc.width, fc.height
}

// Sample returns the nearest texel at (u, v), V up. Edges clamp.
// Before the first readback it returns zero.
func (fc *FieldCache) Sample(u, v float32) gfx.RGBA {
	if len(fc.data) == 0 {
		return gfx.RGBA{}
	}
	x := clampInt(int(u*float32(fc.width)), 0, fc.width-1)
	y := clampInt(int(v*float32(fc.height)), 0, fc.height-1)
	return fc.data[y*fc.width+x]
}

// SampleBilinear returns the bilinearly interpolated value at (u, v) between
// texel centers. Edges clamp.
func (fc *FieldCache) SampleBilinear(u, v float32) gfx.RGBA {
	if len(fc.data) == 0 {
		return gfx.RGBA{}
	}
	fx := u*float32(fc.width) - 0.5
	fy := v*float32(fc.height) - 0.5

	x0 := floor(fx)
	y0 := floor(fy)
	fracX := fx - float32(x0)
	fracY := fy - float32(y0)

	x1 := clampInt(x0+1, 0, fc.width-1)
	y1 := clampInt(y0+1, 0, fc.height-1)
	x0 = clampInt(x0, 0, fc.width-1)
	y0 = clampInt(y0, 0, fc.height-1)

	c00 := fc.data[y0*fc.width+x0]
	c10 := fc.data[y0*fc.width+x1]
	c01 := fc.data[y1*fc.width+x0]
	c11 := fc.data[y1*fc.width+x1]

	return lerpRGBA(lerpRGBA(c00, c10, fracX), lerpRGBA(c01, c11, fracX), fracY)
}

func lerpRGBA(a, b gfx.RGBA, t float32) gfx.RGBA {
	return gfx.RGBA{
		R: gfx.Mix(a.R, b.R, t),
		G: gfx.Mix(a.G, b.G, t),
		B: gfx.Mix(a.B, b.B, t),
		A: gfx.Mix(a.A, b.A, t),
	}
}

func floor(x float32) int {
	i := int(x)
	if x < 0 && float32(i) != x {
		i--
	}
	return i
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
