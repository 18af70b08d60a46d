// Package renderer draws through raylib: the GPU implementation of gfx.Device
// and the consumer stages that read the flowmap.
package renderer

import (
	"fmt"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidtrail/camera"
	"github.com/pthm-cable/fluidtrail/gfx"
)

// DefaultMaxTextureSize is the side limit assumed for GL 3.3 class hardware.
const DefaultMaxTextureSize = 8192

// rlgl framebuffer attachment enums.
const (
	attachColor0    = 0
	attachTexture2D = 100
)

// displayFragment shows a texture opaque, keeping signed channels as they are.
const displayFragment = `#version 330
in vec2 fragTexCoord;
uniform sampler2D texture0;
out vec4 finalColor;

void main() {
    finalColor = vec4(texture(texture0, fragTexCoord).rgb, 1.0);
}
`

type gpuTarget struct {
	rt       rl.RenderTexture2D
	w, h     int
	released bool
}

func (t *gpuTarget) ID() uint32 { return t.rt.Texture.ID }

func (t *gpuTarget) Size() (int, int) { return t.w, t.h }

func (t *gpuTarget) Texture() gfx.Texture { return t }

type program struct {
	shader rl.Shader
	locs   map[string]int32
}

func (p *program) loc(name string) int32 {
	if l, ok := p.locs[name]; ok {
		return l
	}
	l := rl.GetShaderLocation(p.shader, name)
	p.locs[name] = l
	return l
}

func (p *program) SetFloat(name string, v float32) {
	if l := p.loc(name); l >= 0 {
		rl.SetShaderValue(p.shader, l, []float32{v}, rl.ShaderUniformFloat)
	}
}

func (p *program) SetVec2(name string, v gfx.Vec2) {
	if l := p.loc(name); l >= 0 {
		rl.SetShaderValue(p.shader, l, []float32{v.X, v.Y}, rl.ShaderUniformVec2)
	}
}

// Device renders into float RGBA framebuffers through raylib.
// It must be created after the window and used from the window's thread.
type Device struct {
	maxSize   int
	live      map[uint32]*gpuTarget
	bound     *gpuTarget
	programs  map[string]*program
	display   *program
	blank     rl.Texture2D
	autoClear bool
	scratch   []float32
}

// NewDevice creates a device on the current raylib context.
func NewDevice() (*Device, error) {
	d := &Device{
		maxSize:   DefaultMaxTextureSize,
		live:      make(map[uint32]*gpuTarget),
		programs:  make(map[string]*program),
		autoClear: true,
	}
	sh := rl.LoadShaderFromMemory("", displayFragment)
	if !rl.IsShaderValid(sh) {
		return nil, fmt.Errorf("display shader: %w", gfx.ErrCompile)
	}
	d.display = &program{shader: sh, locs: make(map[string]int32)}

	img := rl.GenImageColor(1, 1, rl.Blank)
	d.blank = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	return d, nil
}

// SetMaxTextureSize overrides the target side limit.
func (d *Device) SetMaxTextureSize(n int) {
	d.maxSize = n
}

func (d *Device) MaxTextureSize() int {
	return d.maxSize
}

func (d *Device) NewTarget(width, height int) (gfx.Target, error) {
	if width <= 0 || height <= 0 || width > d.maxSize || height > d.maxSize {
		return nil, fmt.Errorf("target %dx%d (max %d): %w", width, height, d.maxSize, gfx.ErrTargetAlloc)
	}

	img := rl.GenImageColor(width, height, rl.Blank)
	rl.ImageFormat(img, rl.UncompressedR32g32b32a32)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	if tex.ID == 0 {
		return nil, fmt.Errorf("float texture %dx%d: %w", width, height, gfx.ErrTargetAlloc)
	}
	rl.SetTextureFilter(tex, rl.FilterPoint)
	rl.SetTextureWrap(tex, rl.WrapClamp)

	fbo := rl.LoadFramebuffer()
	if fbo == 0 {
		rl.UnloadTexture(tex)
		return nil, fmt.Errorf("framebuffer %dx%d: %w", width, height, gfx.ErrTargetAlloc)
	}
	rl.FramebufferAttach(fbo, tex.ID, attachColor0, attachTexture2D, 0)
	if !rl.FramebufferComplete(fbo) {
		rl.UnloadFramebuffer(fbo)
		rl.UnloadTexture(tex)
		return nil, fmt.Errorf("framebuffer %dx%d incomplete: %w", width, height, gfx.ErrTargetAlloc)
	}

	t := &gpuTarget{
		rt: rl.RenderTexture2D{ID: fbo, Texture: tex},
		w:  width,
		h:  height,
	}
	d.live[tex.ID] = t
	return t, nil
}

func (d *Device) ReleaseTarget(t gfx.Target) {
	gt, ok := t.(*gpuTarget)
	if !ok || gt.released {
		return
	}
	if d.bound == gt {
		d.BindTarget(nil)
	}
	delete(d.live, gt.ID())
	rl.UnloadRenderTexture(gt.rt)
	gt.released = true
}

func (d *Device) BindTarget(t gfx.Target) {
	if d.bound != nil {
		rl.EndTextureMode()
		d.bound = nil
	}
	if t == nil {
		return
	}
	gt, ok := t.(*gpuTarget)
	if !ok || gt.released {
		panic("renderer: binding a target not owned by this device")
	}
	rl.BeginTextureMode(gt.rt)
	d.bound = gt
}

func (d *Device) Compile(p gfx.Pass) error {
	if _, ok := d.programs[p.Name()]; ok {
		return nil
	}
	sh := rl.LoadShaderFromMemory("", p.Source())
	if !rl.IsShaderValid(sh) {
		return fmt.Errorf("pass %q: %w", p.Name(), gfx.ErrCompile)
	}
	d.programs[p.Name()] = &program{shader: sh, locs: make(map[string]int32)}
	return nil
}

// RunPass draws one full-target quad with blending disabled, so the pass
// output replaces every texel.
func (d *Device) RunPass(p gfx.Pass, src gfx.Texture) {
	prog, ok := d.programs[p.Name()]
	if !ok {
		panic(fmt.Sprintf("renderer: pass %q run before Compile", p.Name()))
	}
	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	if d.bound != nil {
		w, h = float32(d.bound.w), float32(d.bound.h)
	}

	tex := d.blank
	if src != nil {
		st, err := d.lookup(src)
		if err != nil {
			panic(err)
		}
		if st == d.bound {
			panic(fmt.Sprintf("renderer: pass %q samples its own render target", p.Name()))
		}
		tex = st.rt.Texture
	}

	p.Bind(prog)
	rl.BeginShaderMode(prog.shader)
	rl.DisableColorBlend()
	// Texture mode projects Y down; a negative source height keeps rows in GL order.
	srcRect := rl.NewRectangle(0, float32(tex.Height), float32(tex.Width), -float32(tex.Height))
	rl.DrawTexturePro(tex, srcRect, rl.NewRectangle(0, 0, w, h), rl.Vector2{}, 0, rl.White)
	rl.EndShaderMode()
	rl.EnableColorBlend()
}

// SetAutoClear records the flag; raylib never clears implicitly, so it only
// documents the caller's intent.
func (d *Device) SetAutoClear(on bool) {
	d.autoClear = on
}

// AutoClear reports the last value passed to SetAutoClear.
func (d *Device) AutoClear() bool {
	return d.autoClear
}

func (d *Device) Clear() {
	rl.ClearBackground(rl.Blank)
}

func (d *Device) DrawQuads(view camera.Ortho, quads []gfx.Quad) {
	rl.BeginShaderMode(d.display.shader)
	for _, q := range quads {
		st, err := d.lookup(q.Texture)
		if err != nil {
			continue
		}
		if st == d.bound {
			panic("renderer: quad samples its own render target")
		}
		x, y, w, h := view.RectToScreen(q.X, q.Y, q.W, q.H)
		if w <= 0 || h <= 0 {
			continue
		}
		tw, th := float32(st.w), float32(st.h)
		srcRect := rl.NewRectangle(0, th, tw, -th)
		if q.FlipY {
			srcRect = rl.NewRectangle(0, 0, tw, th)
		}
		rl.DrawTexturePro(st.rt.Texture, srcRect, rl.NewRectangle(x, y, w, h), rl.Vector2{}, 0, rl.White)
	}
	rl.EndShaderMode()
}

func (d *Device) ReadPixel(tex gfx.Texture, x, y int) (gfx.RGBA, error) {
	st, err := d.lookup(tex)
	if err != nil {
		return gfx.RGBA{}, err
	}
	if x < 0 || y < 0 || x >= st.w || y >= st.h {
		return gfx.RGBA{}, fmt.Errorf("read (%d, %d) of %dx%d: %w", x, y, st.w, st.h, gfx.ErrOutOfBounds)
	}
	if err := d.readback(st); err != nil {
		return gfx.RGBA{}, err
	}
	i := (y*st.w + x) * 4
	return gfx.RGBA{R: d.scratch[i], G: d.scratch[i+1], B: d.scratch[i+2], A: d.scratch[i+3]}, nil
}

func (d *Device) ReadTexture(tex gfx.Texture, dst []gfx.RGBA) error {
	st, err := d.lookup(tex)
	if err != nil {
		return err
	}
	n := st.w * st.h
	if len(dst) < n {
		return fmt.Errorf("destination holds %d of %d texels: %w", len(dst), n, gfx.ErrOutOfBounds)
	}
	if err := d.readback(st); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		j := i * 4
		dst[i] = gfx.RGBA{R: d.scratch[j], G: d.scratch[j+1], B: d.scratch[j+2], A: d.scratch[j+3]}
	}
	return nil
}

// Close releases every live target and compiled program.
func (d *Device) Close() {
	d.BindTarget(nil)
	for _, t := range d.live {
		rl.UnloadRenderTexture(t.rt)
		t.released = true
	}
	clear(d.live)
	for _, p := range d.programs {
		rl.UnloadShader(p.shader)
	}
	clear(d.programs)
	rl.UnloadShader(d.display.shader)
	rl.UnloadTexture(d.blank)
}

// readback copies the texture into scratch, bottom row first.
func (d *Device) readback(st *gpuTarget) error {
	img := rl.LoadImageFromTexture(st.rt.Texture)
	defer rl.UnloadImage(img)
	if img.Data == nil || img.Format != rl.UncompressedR32g32b32a32 {
		return fmt.Errorf("readback of texture %d: %w", st.ID(), gfx.ErrUnknownTexture)
	}
	n := st.w * st.h * 4
	if cap(d.scratch) < n {
		d.scratch = make([]float32, n)
	}
	d.scratch = d.scratch[:n]
	copy(d.scratch, unsafe.Slice((*float32)(img.Data), n))
	return nil
}

func (d *Device) lookup(tex gfx.Texture) (*gpuTarget, error) {
	gt, ok := tex.(*gpuTarget)
	if !ok || gt == nil {
		return nil, gfx.ErrUnknownTexture
	}
	if live, ok := d.live[gt.ID()]; !ok || live != gt {
		return nil, gfx.ErrUnknownTexture
	}
	return gt, nil
}
