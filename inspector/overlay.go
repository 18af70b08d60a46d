package inspector

import (
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Overlay colors
var (
	ColorLabelBg   = rl.Color{R: 30, G: 30, B: 35, A: 200}
	ColorLabelText = rl.Color{R: 220, G: 220, B: 220, A: 255}
	ColorTipBg     = rl.Color{R: 45, G: 45, B: 55, A: 235}
	ColorTipBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHotspot   = rl.Color{R: 255, G: 200, B: 100, A: 255}
)

const (
	labelFontSize = 14
	tipFontSize   = 14
	tipPadding    = 6
)

// Overlay draws panel labels and the last probe readout on top of the
// compositor. Right click probes the panel under the cursor; Escape clears.
type Overlay struct {
	comp *Compositor

	panel *Panel
	u, v  float32
	text  string
	// follow re-probes the same texel every interval frames, like a live readout.
	follow   bool
	interval int
	wait     int
}

// NewOverlay creates an overlay for c.
func NewOverlay(c *Compositor) *Overlay {
	return &Overlay{comp: c, interval: 1}
}

// SetInterval sets how many frames pass between live readouts. Each readout
// is a device read, so it is kept off most frames.
func (o *Overlay) SetInterval(frames int) {
	o.interval = max(frames, 1)
}

// HandleInput processes probe clicks. It returns true when the click landed on a panel.
func (o *Overlay) HandleInput(mouseX, mouseY float32) bool {
	if rl.IsKeyPressed(rl.KeyEscape) {
		o.Clear()
		return false
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		return false
	}
	p, u, v, ok := o.comp.PanelAt(mouseX, mouseY)
	if !ok {
		o.Clear()
		return false
	}
	o.panel, o.u, o.v = p, u, v
	o.follow = true
	o.wait = 0
	return true
}

// Clear drops the current readout.
func (o *Overlay) Clear() {
	o.panel = nil
	o.text = ""
	o.follow = false
}

// Text returns the last probe readout.
func (o *Overlay) Text() string {
	return o.text
}

// Queue requests a fresh readout for the followed texel. Call before Render.
func (o *Overlay) Queue() {
	if !o.follow || o.panel == nil {
		return
	}
	if !o.panel.Visible {
		o.Clear()
		return
	}
	if o.wait > 0 {
		o.wait--
		return
	}
	o.wait = o.interval - 1
	o.comp.Probe(o.panel.Source, o.u, o.v, func(s string) { o.text = s })
}

// Draw renders labels and the readout. Call after Render, outside any texture mode.
func (o *Overlay) Draw() {
	offX, offY := o.comp.Offset()
	view := o.comp.View()
	for _, p := range o.comp.Panels() {
		if !p.Visible || p.Label == "" {
			continue
		}
		x, y, _, _ := view.RectToScreen(offX, offY+p.CenterY, p.Width, p.Height)
		w := rl.MeasureText(p.Label, labelFontSize)
		rl.DrawRectangle(int32(x), int32(y), w+8, labelFontSize+4, ColorLabelBg)
		rl.DrawText(p.Label, int32(x)+4, int32(y)+2, labelFontSize, ColorLabelText)
	}

	if o.panel == nil || o.text == "" {
		return
	}
	o.drawHotspot(offX, offY)
	o.drawTip(offX, offY)
}

func (o *Overlay) drawHotspot(offX, offY float32) {
	p := o.panel
	tw, th := p.Source.Size()
	if tw <= 0 || th <= 0 {
		return
	}
	x, y, sw, sh := o.comp.View().RectToScreen(offX, offY+p.CenterY, p.Width, p.Height)
	cellW := sw / float32(tw)
	cellH := sh / float32(th)
	v := o.v
	if !p.FlipY {
		v = 1 - v
	}
	cx := x + float32(int(o.u*float32(tw)))*cellW
	cy := y + float32(int(v*float32(th)))*cellH
	rl.DrawRectangleLinesEx(rl.Rectangle{X: cx, Y: cy, Width: max(cellW, 2), Height: max(cellH, 2)}, 1, ColorHotspot)
}

func (o *Overlay) drawTip(offX, offY float32) {
	p := o.panel
	lines := strings.Split(o.text, "\n")
	var w int32
	for _, l := range lines {
		w = max(w, rl.MeasureText(l, tipFontSize))
	}
	h := int32(len(lines)) * (tipFontSize + 2)

	x, y, sw, _ := o.comp.View().RectToScreen(offX, offY+p.CenterY, p.Width, p.Height)
	tx := int32(x+sw) + 8
	ty := int32(y)
	rl.DrawRectangle(tx, ty, w+2*tipPadding, h+2*tipPadding, ColorTipBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(tx), Y: float32(ty), Width: float32(w + 2*tipPadding), Height: float32(h + 2*tipPadding)},
		1,
		ColorTipBorder,
	)
	for i, l := range lines {
		rl.DrawText(l, tx+tipPadding, ty+tipPadding+int32(i)*(tipFontSize+2), tipFontSize, ColorLabelText)
	}
}
