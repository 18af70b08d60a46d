package gfx

import (
	"fmt"

	"github.com/pthm-cable/fluidtrail/camera"
)

// DefaultSoftMaxTextureSize matches the common GL minimum for desktop drivers.
const DefaultSoftMaxTextureSize = 4096

// softTarget is a CPU-resident float RGBA surface. Row 0 is the bottom row.
type softTarget struct {
	id       uint32
	w, h     int
	pix      []RGBA
	released bool
}

func (t *softTarget) ID() uint32 { return t.id }

func (t *softTarget) Size() (int, int) { return t.w, t.h }

func (t *softTarget) Texture() Texture { return t }

func (t *softTarget) at(x, y int) RGBA { return t.pix[y*t.w+x] }

func (t *softTarget) set(x, y int, c RGBA) { t.pix[y*t.w+x] = c }

// Sample implements Sampler with nearest filtering and clamped edges.
func (t *softTarget) Sample(uv Vec2) RGBA {
	x := int(uv.X * float32(t.w))
	y := int(uv.Y * float32(t.h))
	x = clampInt(x, 0, t.w-1)
	y = clampInt(y, 0, t.h-1)
	return t.at(x, y)
}

// zeroSampler stands in for a nil source texture.
type zeroSampler struct{}

func (zeroSampler) Sample(Vec2) RGBA { return RGBA{} }

// SoftDevice is a software Device. It backs headless runs and tests, and
// panics when a pass samples the texture it is rendering into.
type SoftDevice struct {
	maxSize     int
	targetLimit int
	nextID      uint32
	live        map[uint32]*softTarget
	compiled    map[string]bool

	bound     *softTarget
	screen    *softTarget
	autoClear bool

	passes int
}

// NewSoftDevice creates a software device with a default framebuffer of the given size.
func NewSoftDevice(screenW, screenH int) *SoftDevice {
	d := &SoftDevice{
		maxSize:     DefaultSoftMaxTextureSize,
		targetLimit: -1,
		nextID:      1,
		live:        make(map[uint32]*softTarget),
		compiled:    make(map[string]bool),
		autoClear:   true,
	}
	d.screen = &softTarget{w: screenW, h: screenH, pix: make([]RGBA, screenW*screenH)}
	return d
}

// SetMaxTextureSize overrides the reported texture size limit.
func (d *SoftDevice) SetMaxTextureSize(n int) {
	d.maxSize = n
}

// SetTargetLimit caps the number of live targets; further allocations fail.
// A negative limit removes the cap.
func (d *SoftDevice) SetTargetLimit(n int) {
	d.targetLimit = n
}

// Resize reallocates the default framebuffer.
func (d *SoftDevice) Resize(w, h int) {
	d.screen = &softTarget{w: w, h: h, pix: make([]RGBA, w*h)}
}

// Screen returns the default framebuffer.
func (d *SoftDevice) Screen() Texture {
	return d.screen
}

// AutoClear reports the last SetAutoClear value.
func (d *SoftDevice) AutoClear() bool {
	return d.autoClear
}

// Live returns the number of unreleased targets.
func (d *SoftDevice) Live() int {
	return len(d.live)
}

// Passes returns how many passes have run.
func (d *SoftDevice) Passes() int {
	return d.passes
}

// Upload overwrites a texture's contents; pix is bottom row first.
func (d *SoftDevice) Upload(tex Texture, pix []RGBA) error {
	t, err := d.lookup(tex)
	if err != nil {
		return err
	}
	if len(pix) != len(t.pix) {
		return fmt.Errorf("upload %d texels into %dx%d texture: %w", len(pix), t.w, t.h, ErrOutOfBounds)
	}
	copy(t.pix, pix)
	return nil
}

func (d *SoftDevice) MaxTextureSize() int {
	return d.maxSize
}

func (d *SoftDevice) NewTarget(width, height int) (Target, error) {
	if width <= 0 || height <= 0 || width > d.maxSize || height > d.maxSize {
		return nil, fmt.Errorf("%dx%d exceeds device limit %d: %w", width, height, d.maxSize, ErrTargetAlloc)
	}
	if d.targetLimit >= 0 && len(d.live) >= d.targetLimit {
		return nil, fmt.Errorf("target limit %d reached: %w", d.targetLimit, ErrTargetAlloc)
	}
	t := &softTarget{
		id:  d.nextID,
		w:   width,
		h:   height,
		pix: make([]RGBA, width*height),
	}
	d.nextID++
	d.live[t.id] = t
	return t, nil
}

func (d *SoftDevice) ReleaseTarget(t Target) {
	st, ok := t.(*softTarget)
	if !ok || st.released {
		return
	}
	st.released = true
	delete(d.live, st.id)
	if d.bound == st {
		d.bound = nil
	}
}

func (d *SoftDevice) BindTarget(t Target) {
	if t == nil {
		d.bound = nil
		return
	}
	st, ok := t.(*softTarget)
	if !ok || st.released {
		panic("gfx: binding a target not owned by this device")
	}
	d.bound = st
}

func (d *SoftDevice) Compile(p Pass) error {
	if p.Source() == "" {
		return fmt.Errorf("pass %q has no source: %w", p.Name(), ErrCompile)
	}
	d.compiled[p.Name()] = true
	return nil
}

func (d *SoftDevice) RunPass(p Pass, src Texture) {
	if !d.compiled[p.Name()] {
		panic(fmt.Sprintf("gfx: pass %q run before Compile", p.Name()))
	}
	dst := d.current()

	var sampler Sampler = zeroSampler{}
	if src != nil {
		st, err := d.lookup(src)
		if err != nil {
			panic(err)
		}
		if st == dst {
			panic(fmt.Sprintf("gfx: pass %q samples its own render target", p.Name()))
		}
		sampler = st
	}

	p.Bind(noUniforms{})
	for y := 0; y < dst.h; y++ {
		v := (float32(y) + 0.5) / float32(dst.h)
		for x := 0; x < dst.w; x++ {
			u := (float32(x) + 0.5) / float32(dst.w)
			dst.set(x, y, p.Shade(sampler, Vec2{X: u, Y: v}))
		}
	}
	d.passes++
}

func (d *SoftDevice) SetAutoClear(on bool) {
	d.autoClear = on
}

func (d *SoftDevice) Clear() {
	dst := d.current()
	for i := range dst.pix {
		dst.pix[i] = RGBA{}
	}
}

// DrawQuads rasterizes quads into the bound target with nearest sampling.
// Output alpha is forced to 1.
func (d *SoftDevice) DrawQuads(view camera.Ortho, quads []Quad) {
	dst := d.current()
	for _, q := range quads {
		src, err := d.lookup(q.Texture)
		if err != nil {
			continue
		}
		if src == dst {
			panic("gfx: quad samples its own render target")
		}
		sx, sy, sw, sh := view.RectToScreen(q.X, q.Y, q.W, q.H)
		if sw <= 0 || sh <= 0 {
			continue
		}
		x0 := clampInt(int(sx+0.5), 0, dst.w)
		x1 := clampInt(int(sx+sw+0.5), 0, dst.w)
		y0 := clampInt(int(sy+0.5), 0, dst.h)
		y1 := clampInt(int(sy+sh+0.5), 0, dst.h)
		for py := y0; py < y1; py++ {
			v := 1 - (float32(py)+0.5-sy)/sh
			if q.FlipY {
				v = 1 - v
			}
			for px := x0; px < x1; px++ {
				u := (float32(px) + 0.5 - sx) / sw
				c := src.Sample(Vec2{X: u, Y: v})
				c.A = 1
				// Screen rows grow downward, storage rows grow upward.
				dst.set(px, dst.h-1-py, c)
			}
		}
	}
}

func (d *SoftDevice) ReadPixel(tex Texture, x, y int) (RGBA, error) {
	t, err := d.lookup(tex)
	if err != nil {
		return RGBA{}, err
	}
	if x < 0 || y < 0 || x >= t.w || y >= t.h {
		return RGBA{}, fmt.Errorf("read (%d, %d) of %dx%d: %w", x, y, t.w, t.h, ErrOutOfBounds)
	}
	return t.at(x, y), nil
}

func (d *SoftDevice) ReadTexture(tex Texture, dst []RGBA) error {
	t, err := d.lookup(tex)
	if err != nil {
		return err
	}
	if len(dst) < len(t.pix) {
		return fmt.Errorf("destination holds %d of %d texels: %w", len(dst), len(t.pix), ErrOutOfBounds)
	}
	copy(dst, t.pix)
	return nil
}

// current returns the bound target or the default framebuffer.
func (d *SoftDevice) current() *softTarget {
	if d.bound != nil {
		return d.bound
	}
	return d.screen
}

func (d *SoftDevice) lookup(tex Texture) (*softTarget, error) {
	st, ok := tex.(*softTarget)
	if !ok || st == nil {
		return nil, ErrUnknownTexture
	}
	if st == d.screen {
		return st, nil
	}
	if live, ok := d.live[st.id]; !ok || live != st {
		return nil, ErrUnknownTexture
	}
	return st, nil
}

type noUniforms struct{}

func (noUniforms) SetFloat(string, float32) {}

func (noUniforms) SetVec2(string, Vec2) {}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
