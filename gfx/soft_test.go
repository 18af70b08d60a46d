package gfx

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/fluidtrail/camera"
)

// copyPass writes the sampled source scaled by gain.
type copyPass struct {
	gain float32
}

func (p *copyPass) Name() string   { return "test.copy" }
func (p *copyPass) Source() string { return "#version 330\nvoid main() {}\n" }

func (p *copyPass) Bind(u Uniforms) { u.SetFloat("uGain", p.gain) }

func (p *copyPass) Shade(src Sampler, uv Vec2) RGBA {
	return src.Sample(uv).Scale(p.gain)
}

func fill(w, h int, c RGBA) []RGBA {
	pix := make([]RGBA, w*h)
	for i := range pix {
		pix[i] = c
	}
	return pix
}

func TestSmoothstep(t *testing.T) {
	testCases := []struct {
		e0, e1, x, want float32
	}{
		{0, 1, -1, 0},
		{0, 1, 0.5, 0.5},
		{0, 1, 2, 1},
		{0.15, 0, 0, 1},    // reversed edges: full weight at the cursor
		{0.15, 0, 0.15, 0}, // and zero at the falloff radius
		{0.15, 0, 1, 0},
	}
	for _, tc := range testCases {
		got := Smoothstep(tc.e0, tc.e1, tc.x)
		if math.Abs(float64(got-tc.want)) > 1e-6 {
			t.Errorf("Smoothstep(%v, %v, %v) = %v, want %v", tc.e0, tc.e1, tc.x, got, tc.want)
		}
	}
}

func TestNewTargetLimits(t *testing.T) {
	d := NewSoftDevice(4, 4)
	d.SetMaxTextureSize(16)

	if _, err := d.NewTarget(32, 32); !errors.Is(err, ErrTargetAlloc) {
		t.Errorf("expected ErrTargetAlloc for oversized target, got %v", err)
	}

	d.SetTargetLimit(1)
	if _, err := d.NewTarget(8, 8); err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	if _, err := d.NewTarget(8, 8); !errors.Is(err, ErrTargetAlloc) {
		t.Errorf("expected ErrTargetAlloc past the target limit, got %v", err)
	}
}

func TestNewTargetIsZeroed(t *testing.T) {
	d := NewSoftDevice(4, 4)
	tgt, _ := d.NewTarget(4, 4)

	buf := make([]RGBA, 16)
	if err := d.ReadTexture(tgt.Texture(), buf); err != nil {
		t.Fatalf("ReadTexture: %v", err)
	}
	for i, c := range buf {
		if c != (RGBA{}) {
			t.Fatalf("texel %d not zero: %+v", i, c)
		}
	}
}

func TestRunPassCopies(t *testing.T) {
	d := NewSoftDevice(4, 4)
	src, _ := d.NewTarget(4, 4)
	dst, _ := d.NewTarget(4, 4)
	if err := d.Upload(src.Texture(), fill(4, 4, RGBA{R: 0.5, A: 1})); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	p := &copyPass{gain: 0.5}
	if err := d.Compile(p); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	d.BindTarget(dst)
	d.RunPass(p, src.Texture())
	d.BindTarget(nil)

	c, err := d.ReadPixel(dst.Texture(), 3, 0)
	if err != nil {
		t.Fatalf("ReadPixel: %v", err)
	}
	if c.R != 0.25 || c.A != 0.5 {
		t.Errorf("expected (0.25, 0.5), got %+v", c)
	}
	if d.Passes() != 1 {
		t.Errorf("expected 1 pass, got %d", d.Passes())
	}
}

func TestRunPassFeedbackPanics(t *testing.T) {
	d := NewSoftDevice(4, 4)
	tgt, _ := d.NewTarget(4, 4)
	p := &copyPass{gain: 1}
	d.Compile(p)

	defer func() {
		if recover() == nil {
			t.Error("expected panic when a pass samples its own target")
		}
	}()
	d.BindTarget(tgt)
	d.RunPass(p, tgt.Texture())
}

func TestRunPassRequiresCompile(t *testing.T) {
	d := NewSoftDevice(4, 4)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for an uncompiled pass")
		}
	}()
	d.RunPass(&copyPass{}, nil)
}

func TestCompileRejectsEmptySource(t *testing.T) {
	d := NewSoftDevice(4, 4)
	err := d.Compile(emptyPass{})
	if !errors.Is(err, ErrCompile) {
		t.Errorf("expected ErrCompile, got %v", err)
	}
}

type emptyPass struct{}

func (emptyPass) Name() string                    { return "test.empty" }
func (emptyPass) Source() string                  { return "" }
func (emptyPass) Bind(Uniforms)                   {}
func (emptyPass) Shade(src Sampler, uv Vec2) RGBA { return RGBA{} }

func TestReadPixelBounds(t *testing.T) {
	d := NewSoftDevice(4, 4)
	tgt, _ := d.NewTarget(4, 4)

	if _, err := d.ReadPixel(tgt.Texture(), 4, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}

	d.ReleaseTarget(tgt)
	if _, err := d.ReadPixel(tgt.Texture(), 0, 0); !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("expected ErrUnknownTexture after release, got %v", err)
	}
	if d.Live() != 0 {
		t.Errorf("expected 0 live targets, got %d", d.Live())
	}
}

func TestDrawQuadsOpaque(t *testing.T) {
	d := NewSoftDevice(100, 80)
	tgt, _ := d.NewTarget(2, 2)
	// Bottom row red, top row green.
	d.Upload(tgt.Texture(), []RGBA{{R: 1}, {R: 1}, {G: 1}, {G: 1}})

	view := camera.NewOrtho(100, 80)
	d.DrawQuads(view, []Quad{{Texture: tgt.Texture(), X: 0, Y: 0, W: 20, H: 20}})

	// Screen (50, 35) is the upper half of the quad; storage row = 80-1-35.
	top, _ := d.ReadPixel(d.Screen(), 50, 44)
	if top.G != 1 || top.A != 1 {
		t.Errorf("expected opaque green in upper half, got %+v", top)
	}
	bottom, _ := d.ReadPixel(d.Screen(), 50, 35)
	if bottom.R != 1 || bottom.A != 1 {
		t.Errorf("expected opaque red in lower half, got %+v", bottom)
	}
	outside, _ := d.ReadPixel(d.Screen(), 5, 5)
	if outside != (RGBA{}) {
		t.Errorf("expected untouched pixel outside quad, got %+v", outside)
	}
}

func TestClearTargetsBoundSurface(t *testing.T) {
	d := NewSoftDevice(2, 2)
	tgt, _ := d.NewTarget(2, 2)
	d.Upload(tgt.Texture(), fill(2, 2, RGBA{B: 1}))
	d.Upload(d.Screen(), fill(2, 2, RGBA{R: 1}))

	d.BindTarget(tgt)
	d.Clear()
	d.BindTarget(nil)

	c, _ := d.ReadPixel(tgt.Texture(), 0, 0)
	if c != (RGBA{}) {
		t.Errorf("expected bound target cleared, got %+v", c)
	}
	s, _ := d.ReadPixel(d.Screen(), 0, 0)
	if s.R != 1 {
		t.Errorf("expected screen untouched, got %+v", s)
	}
}
