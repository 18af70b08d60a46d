// Package inspector stacks offscreen textures as panels along the left edge
// of the default framebuffer, drawn through a dedicated orthographic view.
package inspector

import (
	"fmt"
	"reflect"

	"github.com/pthm-cable/fluidtrail/camera"
	"github.com/pthm-cable/fluidtrail/gfx"
)

// DefaultMinWidth is the panel width used when none is configured.
const DefaultMinWidth = 256

// Pixel is one probed texel.
type Pixel struct {
	X, Y  int
	U, V  float32
	Color gfx.RGBA
}

// Formatter turns a probed texel into display text.
type Formatter func(p Pixel) string

// Panel is one stacked source. It never owns Source.
type Panel struct {
	Source    gfx.Texture
	Label     string
	Formatter Formatter

	NativeW, NativeH int
	Width, Height    float32
	// CenterY is relative to the stack's top edge.
	CenterY float32
	Visible bool
	FlipY   bool
}

// AttachOption adjusts a panel as it is attached.
type AttachOption func(p *Panel)

// FlipRows marks the source as stored top row first.
func FlipRows() AttachOption {
	return func(p *Panel) { p.FlipY = true }
}

type probe struct {
	src  gfx.Texture
	u, v float32
	done func(string)
}

// Compositor lays out and renders inspection panels.
type Compositor struct {
	dev      gfx.Device
	view     camera.Ortho
	minWidth float32

	panels           []*Panel
	offsetX, offsetY float32

	quads  []gfx.Quad
	probes []probe
}

// New creates a compositor for a viewport of the given size.
func New(dev gfx.Device, minWidth int, viewportW, viewportH int) *Compositor {
	if minWidth <= 0 {
		minWidth = DefaultMinWidth
	}
	c := &Compositor{
		dev:      dev,
		minWidth: float32(minWidth),
	}
	c.SetViewport(viewportW, viewportH)
	return c
}

// Attach appends a panel for src. Non-positive native sizes fall back to the
// texture's own size. A nil src is ignored.
func (c *Compositor) Attach(src gfx.Texture, nativeW, nativeH int, label string, formatter Formatter, opts ...AttachOption) {
	if isNil(src) {
		return
	}
	if nativeW <= 0 || nativeH <= 0 {
		nativeW, nativeH = src.Size()
	}
	p := &Panel{
		Source:    src,
		Label:     label,
		Formatter: formatter,
		Visible:   true,
	}
	for _, opt := range opts {
		opt(p)
	}
	c.resize(p, nativeW, nativeH)
	c.panels = append(c.panels, p)
	c.Layout()
}

// Detach removes every panel whose source is src.
func (c *Compositor) Detach(src gfx.Texture) {
	kept := c.panels[:0]
	removed := false
	for _, p := range c.panels {
		if p.Source == src {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(c.panels); i++ {
		c.panels[i] = nil
	}
	c.panels = kept
	if removed {
		c.Layout()
	}
}

// Refresh recomputes the height of src's panels from the texture's current size.
func (c *Compositor) Refresh(src gfx.Texture) {
	if isNil(src) {
		return
	}
	w, h := src.Size()
	c.RefreshSize(src, w, h)
}

// RefreshSize recomputes the height of src's panels from explicit native dimensions.
func (c *Compositor) RefreshSize(src gfx.Texture, nativeW, nativeH int) {
	changed := false
	for _, p := range c.panels {
		if p.Source == src {
			c.resize(p, nativeW, nativeH)
			changed = true
		}
	}
	if changed {
		c.Layout()
	}
}

// Rebind points old's panels at next, keeping their size and stack position.
// Ping-pong outputs change identity every step; rebinding follows them
// without a relayout.
func (c *Compositor) Rebind(old, next gfx.Texture) {
	if isNil(next) || old == next {
		return
	}
	for _, p := range c.panels {
		if p.Source == old {
			p.Source = next
		}
	}
}

// SetViewport resizes the view and re-lays out the stack.
func (c *Compositor) SetViewport(width, height int) {
	c.view.Resize(float32(width), float32(height))
	c.Layout()
}

// Layout places panels top to bottom in insertion order with no gaps. The
// stack hugs the left edge and starts at the top of the view.
func (c *Compositor) Layout() {
	var top float32
	for _, p := range c.panels {
		p.CenterY = top - p.Height/2
		top -= p.Height
	}
	c.offsetX = (-c.view.ViewportW + c.minWidth) / 2
	c.offsetY = c.view.ViewportH / 2
}

// Render draws visible panels onto the default framebuffer without touching
// any other target's state, then services pending probes.
func (c *Compositor) Render(clear bool) {
	c.dev.SetAutoClear(false)
	c.dev.BindTarget(nil)
	if clear {
		c.dev.Clear()
	}

	c.quads = c.quads[:0]
	for _, p := range c.panels {
		if !p.Visible {
			continue
		}
		c.quads = append(c.quads, gfx.Quad{
			Texture: p.Source,
			X:       c.offsetX,
			Y:       c.offsetY + p.CenterY,
			W:       p.Width,
			H:       p.Height,
			FlipY:   p.FlipY,
		})
	}
	if len(c.quads) > 0 {
		c.dev.DrawQuads(c.view, c.quads)
	}

	c.serviceProbes()
}

// HideAll turns every panel off without detaching it.
func (c *Compositor) HideAll() {
	for _, p := range c.panels {
		p.Visible = false
	}
}

// Hide is HideAll.
func (c *Compositor) Hide() {
	c.HideAll()
}

// ShowAll turns every panel on.
func (c *Compositor) ShowAll() {
	for _, p := range c.panels {
		p.Visible = true
	}
}

// Visible reports whether any panel is shown.
func (c *Compositor) Visible() bool {
	for _, p := range c.panels {
		if p.Visible {
			return true
		}
	}
	return false
}

// Panels returns the panels in stacking order. The slice must not be modified.
func (c *Compositor) Panels() []*Panel {
	return c.panels
}

// Offset returns the stack's translation in view coordinates.
func (c *Compositor) Offset() (x, y float32) {
	return c.offsetX, c.offsetY
}

// View returns the compositor's orthographic view.
func (c *Compositor) View() camera.Ortho {
	return c.view
}

// PanelAt hit-tests a screen position against visible panels and returns the
// panel with texture coordinates (V up) of the point.
func (c *Compositor) PanelAt(sx, sy float32) (*Panel, float32, float32, bool) {
	wx, wy := c.view.ScreenToWorld(sx, sy)
	for _, p := range c.panels {
		if !p.Visible || p.Width <= 0 || p.Height <= 0 {
			continue
		}
		left := c.offsetX - p.Width/2
		bottom := c.offsetY + p.CenterY - p.Height/2
		u := (wx - left) / p.Width
		v := (wy - bottom) / p.Height
		if u < 0 || u >= 1 || v < 0 || v >= 1 {
			continue
		}
		if p.FlipY {
			v = 1 - v
		}
		return p, u, v, true
	}
	return nil, 0, 0, false
}

// Probe requests the texel of src at (u, v). The read happens after the next
// Render and done receives the formatted text. Probes of detached sources
// are dropped.
func (c *Compositor) Probe(src gfx.Texture, u, v float32, done func(string)) {
	if isNil(src) || done == nil {
		return
	}
	c.probes = append(c.probes, probe{src: src, u: u, v: v, done: done})
}

// Pending returns the number of queued probes.
func (c *Compositor) Pending() int {
	return len(c.probes)
}

func (c *Compositor) serviceProbes() {
	if len(c.probes) == 0 {
		return
	}
	for _, pr := range c.probes {
		p := c.find(pr.src)
		if p == nil {
			continue
		}
		w, h := pr.src.Size()
		x := clampInt(int(pr.u*float32(w)), 0, w-1)
		y := clampInt(int(pr.v*float32(h)), 0, h-1)
		col, err := c.dev.ReadPixel(pr.src, x, y)
		if err != nil {
			continue
		}
		pr.done(FormatPixel(Pixel{X: x, Y: y, U: pr.u, V: pr.v, Color: col}, p.Formatter))
	}
	c.probes = c.probes[:0]
}

// FormatPixel renders the probe text: a position line followed by either the
// formatter's output or the raw channels.
func FormatPixel(px Pixel, f Formatter) string {
	pos := fmt.Sprintf("X : %d Y: %d u: %.3f v: %.3f", px.X, px.Y, px.U, px.V)
	var data string
	if f != nil {
		data = f(px)
	} else {
		data = fmt.Sprintf("R: %.4f G: %.4f B: %.4f A: %.4f", px.Color.R, px.Color.G, px.Color.B, px.Color.A)
	}
	return pos + "\n" + data
}

func (c *Compositor) find(src gfx.Texture) *Panel {
	for _, p := range c.panels {
		if p.Source == src {
			return p
		}
	}
	return nil
}

func (c *Compositor) resize(p *Panel, nativeW, nativeH int) {
	p.NativeW = nativeW
	p.NativeH = nativeH
	p.Width = c.minWidth
	if nativeW > 0 && nativeH > 0 {
		p.Height = c.minWidth * float32(nativeH) / float32(nativeW)
	} else {
		p.Height = c.minWidth
	}
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

// isNil also catches a nil pointer stored in a non-nil interface.
func isNil(tex gfx.Texture) bool {
	if tex == nil {
		return true
	}
	v := reflect.ValueOf(tex)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
