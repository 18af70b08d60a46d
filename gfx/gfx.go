// Package gfx defines the graphics device contract shared by the flowmap engine,
// the inspector compositor and the scene consumers.
//
// A Device owns every render target it creates. Callers only ever hold the
// read-only Texture side of a target.
package gfx

import (
	"errors"
	"math"

	"github.com/pthm-cable/fluidtrail/camera"
)

var (
	// ErrTargetAlloc is returned when the device cannot allocate a render target.
	ErrTargetAlloc = errors.New("gfx: render target allocation failed")
	// ErrCompile is returned when a pass fails to compile on the device.
	ErrCompile = errors.New("gfx: pass compilation failed")
	// ErrUnknownTexture is returned for textures the device did not create.
	ErrUnknownTexture = errors.New("gfx: texture not owned by device")
	// ErrOutOfBounds is returned for pixel reads outside the texture.
	ErrOutOfBounds = errors.New("gfx: pixel out of bounds")
)

// Vec2 is a 2D vector in normalized or view space.
type Vec2 struct {
	X, Y float32
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// RGBA is a floating-point texel.
type RGBA struct {
	R, G, B, A float32
}

// Scale multiplies every channel by s.
func (c RGBA) Scale(s float32) RGBA {
	return RGBA{R: c.R * s, G: c.G * s, B: c.B * s, A: c.A * s}
}

// Texture is a read-only handle to a device texture.
type Texture interface {
	ID() uint32
	Size() (width, height int)
}

// Target is an offscreen render target.
type Target interface {
	Texture() Texture
}

// Sampler reads a texture at normalized coordinates (nearest filtering).
type Sampler interface {
	Sample(uv Vec2) RGBA
}

// Uniforms receives shader parameter values from a Pass.
type Uniforms interface {
	SetFloat(name string, v float32)
	SetVec2(name string, v Vec2)
}

// Pass is a full-target fragment program. GPU devices compile Source and
// receive parameters through Bind; the software device evaluates Shade per texel.
// Both paths must compute the same result.
type Pass interface {
	Name() string
	Source() string
	Bind(u Uniforms)
	Shade(src Sampler, uv Vec2) RGBA
}

// Quad is a textured rectangle in view coordinates, drawn opaque.
type Quad struct {
	Texture Texture
	X, Y    float32 // center
	W, H    float32
	FlipY   bool
}

// Device is the graphics context consumed by this module.
type Device interface {
	// MaxTextureSize is the largest supported render target side.
	MaxTextureSize() int

	// NewTarget allocates a float RGBA, nearest-filtered, zeroed render
	// target without depth or stencil.
	NewTarget(width, height int) (Target, error)
	ReleaseTarget(t Target)

	// BindTarget makes t the active render target; nil restores the default framebuffer.
	BindTarget(t Target)

	Compile(p Pass) error
	// RunPass shades every texel of the bound target, sampling src.
	RunPass(p Pass, src Texture)

	SetAutoClear(on bool)
	Clear()
	DrawQuads(view camera.Ortho, quads []Quad)

	// ReadPixel reads one texel; y counts from the bottom row.
	ReadPixel(tex Texture, x, y int) (RGBA, error)
	// ReadTexture copies all texels bottom row first; dst must hold width*height texels.
	ReadTexture(tex Texture, dst []RGBA) error
}

// Smoothstep is the GLSL smoothstep, including reversed edges.
func Smoothstep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// Mix is the GLSL mix.
func Mix(a, b, t float32) float32 {
	return a + (b-a)*t
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
