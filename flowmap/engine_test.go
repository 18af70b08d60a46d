package flowmap

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/fluidtrail/gfx"
)

func newTestEngine(t *testing.T, cfg Config) (*Engine, *gfx.SoftDevice) {
	t.Helper()
	dev := gfx.NewSoftDevice(64, 64)
	e, err := New(dev, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, dev
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Resolution = 32
	return cfg
}

func readAll(t *testing.T, dev *gfx.SoftDevice, e *Engine) []gfx.RGBA {
	t.Helper()
	n := e.Resolution()
	buf := make([]gfx.RGBA, n*n)
	if err := dev.ReadTexture(e.Texture(), buf); err != nil {
		t.Fatalf("ReadTexture: %v", err)
	}
	return buf
}

func TestNewRejectsResolution(t *testing.T) {
	dev := gfx.NewSoftDevice(8, 8)
	dev.SetMaxTextureSize(512)

	for _, res := range []int{0, -1, 513} {
		cfg := DefaultConfig()
		cfg.Resolution = res
		_, err := New(dev, cfg)
		if !errors.Is(err, ErrResolution) {
			t.Errorf("resolution %d: expected ErrResolution, got %v", res, err)
		}
	}
	if dev.Live() != 0 {
		t.Errorf("expected no live targets after failed construction, got %d", dev.Live())
	}
}

func TestNewRejectsParameters(t *testing.T) {
	testCases := []struct {
		name   string
		params Params
	}{
		{"dissipation above 1", Params{Dissipation: 1.01, Falloff: 0.1, Alpha: 1}},
		{"negative dissipation", Params{Dissipation: -0.1, Falloff: 0.1, Alpha: 1}},
		{"zero falloff", Params{Dissipation: 0.9, Falloff: 0, Alpha: 1}},
		{"alpha above 1", Params{Dissipation: 0.9, Falloff: 0.1, Alpha: 2}},
		{"NaN alpha", Params{Dissipation: 0.9, Falloff: 0.1, Alpha: float32(math.NaN())}},
	}

	for _, tc := range testCases {
		cfg := smallConfig()
		cfg.Params = tc.params
		_, err := New(gfx.NewSoftDevice(8, 8), cfg)
		if !errors.Is(err, ErrParameter) {
			t.Errorf("%s: expected ErrParameter, got %v", tc.name, err)
		}
	}
}

func TestNewRejectsUnknownPreset(t *testing.T) {
	cfg := smallConfig()
	cfg.Preset = "nope"
	if _, err := New(gfx.NewSoftDevice(8, 8), cfg); !errors.Is(err, ErrParameter) {
		t.Errorf("expected ErrParameter, got %v", err)
	}
}

func TestNewAllocationFailure(t *testing.T) {
	dev := gfx.NewSoftDevice(8, 8)
	dev.SetTargetLimit(1)

	_, err := New(dev, smallConfig())
	if !errors.Is(err, gfx.ErrTargetAlloc) {
		t.Fatalf("expected ErrTargetAlloc, got %v", err)
	}
	// The first buffer must be released when the second fails.
	if dev.Live() != 0 {
		t.Errorf("expected partial allocation to be released, got %d live", dev.Live())
	}
}

func TestSwapAlternates(t *testing.T) {
	e, _ := newTestEngine(t, smallConfig())

	a := e.Texture()
	e.Step(gfx.Vec2{}, gfx.Vec2{X: 0.5, Y: 0.5})
	b := e.Texture()
	if a == b {
		t.Fatal("expected output texture to change after Step")
	}

	for i := 0; i < 6; i++ {
		e.Step(gfx.Vec2{X: 0.1}, gfx.Vec2{X: 0.5, Y: 0.5})
		want := a
		if i%2 == 1 {
			want = b
		}
		if e.Texture() != want {
			t.Fatalf("step %d: output did not alternate A,B,A,B", i+2)
		}
	}
	if e.Steps() != 7 {
		t.Errorf("expected 7 steps, got %d", e.Steps())
	}
}

func TestStepRestoresDefaultFramebuffer(t *testing.T) {
	e, dev := newTestEngine(t, smallConfig())
	e.Step(gfx.Vec2{X: 0.2}, gfx.Vec2{X: 0.5, Y: 0.5})

	// A clear now must hit the screen, not a flowmap buffer.
	dev.Clear()
	buf := readAll(t, dev, e)
	var sum float32
	for _, c := range buf {
		sum += c.R
	}
	if sum == 0 {
		t.Error("expected flowmap contents to survive a clear of the default framebuffer")
	}
}

func TestDecayBound(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, dissipation := range []float32{0, 0.5, 0.98, 1} {
		cfg := smallConfig()
		cfg.Dissipation = dissipation
		cfg.Falloff = 0.3
		e, dev := newTestEngine(t, cfg)

		for step := 0; step < 60; step++ {
			vel := gfx.Vec2{X: rng.Float32(), Y: rng.Float32()}
			pos := gfx.Vec2{X: rng.Float32(), Y: rng.Float32()}
			e.Step(vel, pos)
		}

		for i, c := range readAll(t, dev, e) {
			for _, v := range []float32{c.R, c.G, c.B, c.A} {
				if v < 0 || v > 1+1e-6 {
					t.Fatalf("dissipation %v: texel %d channel %v outside [0,1]", dissipation, i, v)
				}
			}
		}
	}
}

func TestSignedVelocityBound(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const maxSpeed = 4

	for _, preset := range PresetNames() {
		cfg := smallConfig()
		cfg.Dissipation = 1
		cfg.Falloff = 0.3
		cfg.Preset = preset
		e, dev := newTestEngine(t, cfg)

		for step := 0; step < 80; step++ {
			vel := gfx.Vec2{X: (rng.Float32()*2 - 1) * maxSpeed, Y: (rng.Float32()*2 - 1) * maxSpeed}
			pos := gfx.Vec2{X: rng.Float32(), Y: rng.Float32()}
			e.Step(vel, pos)
		}

		// R and G carry signed velocity and stay within the largest injected
		// magnitude; B and A stay in [0,1].
		for i, c := range readAll(t, dev, e) {
			if c.R < -maxSpeed-1e-4 || c.R > maxSpeed+1e-4 || c.G < -maxSpeed-1e-4 || c.G > maxSpeed+1e-4 {
				t.Fatalf("%s: texel %d velocity outside [-%d, %d]: %+v", preset, i, maxSpeed, maxSpeed, c)
			}
			if c.B < 0 || c.B > 1+1e-6 || c.A < 0 || c.A > 1+1e-6 {
				t.Fatalf("%s: texel %d intensity outside [0,1]: %+v", preset, i, c)
			}
		}
	}
}

func TestSingleStrokeKeepsSign(t *testing.T) {
	e, dev := newTestEngine(t, smallConfig())
	e.Step(gfx.Vec2{X: -4}, gfx.Vec2{X: 0.5, Y: 0.5})

	n := e.Resolution()
	c := readAll(t, dev, e)[(n/2)*n+n/2]
	if c.R >= 0 || c.R < -4 {
		t.Errorf("expected centre R in [-4, 0), got %v", c.R)
	}
	if c.B < 0.9 || c.B > 1 {
		t.Errorf("expected near-full intensity at the centre, got %v", c.B)
	}
}

func TestDecayBoundSoftPreset(t *testing.T) {
	cfg := smallConfig()
	cfg.Dissipation = 1
	cfg.Preset = "soft"
	e, dev := newTestEngine(t, cfg)

	for step := 0; step < 200; step++ {
		e.Step(gfx.Vec2{X: 1, Y: 1}, gfx.Vec2{X: 0.5, Y: 0.5})
	}
	for i, c := range readAll(t, dev, e) {
		if c.R > 1+1e-6 || c.G > 1+1e-6 || c.B > 1+1e-6 || c.A > 1+1e-6 {
			t.Fatalf("texel %d overshot: %+v", i, c)
		}
	}
}

func TestZeroInputStable(t *testing.T) {
	e, dev := newTestEngine(t, smallConfig())
	e.Step(gfx.Vec2{X: 0.4, Y: 0.2}, gfx.Vec2{X: 0.5, Y: 0.5})

	err := e.SetParameters(Update{Dissipation: Float32(1), Alpha: Float32(0)})
	if err != nil {
		t.Fatalf("SetParameters: %v", err)
	}

	before := readAll(t, dev, e)
	for i := 0; i < 5; i++ {
		e.Step(gfx.Vec2{}, gfx.Vec2{X: 0.5, Y: 0.5})
	}
	after := readAll(t, dev, e)

	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("texel %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestEndToEndStamp(t *testing.T) {
	cfg := DefaultConfig() // 256, 0.98, 0.15, 1.0
	e, dev := newTestEngine(t, cfg)

	e.Step(gfx.Vec2{X: 0.1, Y: 0}, gfx.Vec2{X: 0.5, Y: 0.5})

	center, err := dev.ReadPixel(e.Texture(), 128, 128)
	if err != nil {
		t.Fatalf("ReadPixel: %v", err)
	}
	if math.Abs(float64(center.R-0.1)) >= math.Abs(float64(center.R)) {
		t.Errorf("expected center red closer to 0.1 than 0, got %f", center.R)
	}
	if want := StampIntensity(gfx.Vec2{X: 0.1}); math.Abs(float64(center.B-want)) > 0.01 {
		t.Errorf("expected center blue near %f, got %f", want, center.B)
	}

	far, err := dev.ReadPixel(e.Texture(), 2, 2) // uv ≈ (0.01, 0.01)
	if err != nil {
		t.Fatalf("ReadPixel: %v", err)
	}
	if far != (gfx.RGBA{}) {
		t.Errorf("expected texel outside falloff to keep its decayed zero value, got %+v", far)
	}
}

func TestDissipationDecays(t *testing.T) {
	cfg := smallConfig()
	cfg.Dissipation = 0.5
	e, dev := newTestEngine(t, cfg)

	e.Step(gfx.Vec2{X: 0.8}, gfx.Vec2{X: 0.5, Y: 0.5})
	c0, _ := dev.ReadPixel(e.Texture(), 16, 16)

	// Move the stamp far away; the old texel should halve.
	e.Step(gfx.Vec2{}, gfx.Vec2{X: 5, Y: 5})
	c1, _ := dev.ReadPixel(e.Texture(), 16, 16)

	if math.Abs(float64(c1.R-c0.R*0.5)) > 1e-6 {
		t.Errorf("expected red %f after decay, got %f", c0.R*0.5, c1.R)
	}
}

func TestAspectCorrection(t *testing.T) {
	cfg := smallConfig()
	cfg.Falloff = 0.2
	cfg.ViewportW, cfg.ViewportH = 4, 1
	e, dev := newTestEngine(t, cfg)

	e.Step(gfx.Vec2{X: 0.5}, gfx.Vec2{X: 0.5, Y: 0.5})

	// ~0.17 uv away horizontally is ~0.69 after correction: outside the falloff.
	side, _ := dev.ReadPixel(e.Texture(), 21, 16)
	if side.R != 0 {
		t.Errorf("expected horizontal neighbour outside corrected falloff, got %f", side.R)
	}
	// A similar distance vertically stays inside.
	up, _ := dev.ReadPixel(e.Texture(), 16, 20)
	if up.R == 0 {
		t.Error("expected vertical neighbour inside falloff")
	}
}

func TestInvertedPreset(t *testing.T) {
	cfg := smallConfig()
	cfg.Preset = "inverted"
	e, dev := newTestEngine(t, cfg)

	e.Step(gfx.Vec2{X: 0, Y: 0.5}, gfx.Vec2{X: 0.5, Y: 0.5})
	c, _ := dev.ReadPixel(e.Texture(), 16, 16)
	if c.G >= 0 {
		t.Errorf("expected inverted green channel, got %f", c.G)
	}
}

func TestSetParametersIsAtomic(t *testing.T) {
	e, _ := newTestEngine(t, smallConfig())
	before := e.Params()

	err := e.SetParameters(Update{Dissipation: Float32(0.5), Falloff: Float32(-1)})
	if !errors.Is(err, ErrParameter) {
		t.Fatalf("expected ErrParameter, got %v", err)
	}
	if e.Params() != before {
		t.Errorf("invalid update changed params: %+v -> %+v", before, e.Params())
	}

	err = e.SetParameters(Update{Preset: String("missing")})
	if !errors.Is(err, ErrParameter) {
		t.Fatalf("expected ErrParameter for unknown preset, got %v", err)
	}

	if err := e.SetParameters(Update{Falloff: Float32(0.3), Preset: String("soft")}); err != nil {
		t.Fatalf("SetParameters: %v", err)
	}
	if e.Params().Falloff != 0.3 || e.Preset().Name != "soft" {
		t.Errorf("update not applied: %+v %s", e.Params(), e.Preset().Name)
	}
}

func TestResetClears(t *testing.T) {
	e, dev := newTestEngine(t, smallConfig())
	e.Step(gfx.Vec2{X: 0.7}, gfx.Vec2{X: 0.5, Y: 0.5})
	e.Reset()

	for i, c := range readAll(t, dev, e) {
		if c != (gfx.RGBA{}) {
			t.Fatalf("texel %d not cleared: %+v", i, c)
		}
	}
}

func TestCloseReleasesBuffers(t *testing.T) {
	e, dev := newTestEngine(t, smallConfig())
	if dev.Live() != 2 {
		t.Fatalf("expected 2 live targets, got %d", dev.Live())
	}
	e.Close()
	if dev.Live() != 0 {
		t.Errorf("expected 0 live targets after Close, got %d", dev.Live())
	}
}

func TestPresetNames(t *testing.T) {
	names := PresetNames()
	if len(names) != 3 || names[0] != "classic" || names[1] != "inverted" || names[2] != "soft" {
		t.Errorf("unexpected presets: %v", names)
	}
	for _, name := range names {
		p, _ := LookupPreset(name)
		if err := p.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}
