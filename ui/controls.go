package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidtrail/flowmap"
)

// Tunable is the runtime parameter surface the panel edits.
type Tunable interface {
	Params() flowmap.Params
	Preset() flowmap.Preset
	SetParameters(u flowmap.Update) error
}

// slider describes one parameter row. min and max match the engine's
// accepted range where it is closed; open ends widen to the current value.
type slider struct {
	label    string
	min, max float32
	get      func(flowmap.Params) float32
	update   func(v float32) flowmap.Update
}

var sliders = []slider{
	{
		label: "Dissipation", min: 0, max: 1,
		get:    func(p flowmap.Params) float32 { return p.Dissipation },
		update: func(v float32) flowmap.Update { return flowmap.Update{Dissipation: flowmap.Float32(v)} },
	},
	{
		label: "Falloff", min: 0.01, max: 0.5,
		get:    func(p flowmap.Params) float32 { return p.Falloff },
		update: func(v float32) flowmap.Update { return flowmap.Update{Falloff: flowmap.Float32(v)} },
	},
	{
		label: "Alpha", min: 0, max: 1,
		get:    func(p flowmap.Params) float32 { return p.Alpha },
		update: func(v float32) flowmap.Update { return flowmap.Update{Alpha: flowmap.Float32(v)} },
	},
}

// bounds returns the slider range for cur. raygui clamps to the range on
// every draw, so it must always contain cur.
func (s slider) bounds(cur float32) (lo, hi float32) {
	return min(s.min, cur), max(s.max, cur)
}

// ControlsPanel renders the parameter sliders, preset buttons and layer toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Height returns the panel height for the given registry.
func (c *ControlsPanel) Height(overlays *OverlayRegistry) int32 {
	th := c.renderer.Theme
	rows := int32(0)
	for _, cat := range overlays.Categories() {
		rows += int32(len(overlays.ByCategory(cat))) + 1
	}
	return th.Padding*2 + th.LineHeight + int32(len(sliders))*34 + 34 + 30 + rows*th.LineHeight
}

// Draw renders the panel and applies any slider or preset change to t.
// reset reports a click on the clear button.
func (c *ControlsPanel) Draw(t Tunable, overlays *OverlayRegistry) (reset bool, err error) {
	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	r.DrawPanel(c.x, c.y, c.width, c.Height(overlays))

	x := float32(c.x + padding)
	y := c.y + padding
	inner := float32(c.width - padding*2)

	rl.DrawText("Flowmap", int32(x), y, 16, rl.White)
	y += lineHeight + 4

	params := t.Params()
	for _, s := range sliders {
		cur := s.get(params)
		lo, hi := s.bounds(cur)
		rl.DrawText(fmt.Sprintf("%s  %.3f", s.label, cur), int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
		y += 14
		next := gui.SliderBar(
			rl.Rectangle{X: x, Y: float32(y), Width: inner, Height: 14},
			"", "",
			cur, lo, hi,
		)
		if next != cur && err == nil {
			err = t.SetParameters(s.update(next))
		}
		y += 20
	}

	// Preset buttons share one row.
	names := flowmap.PresetNames()
	active := t.Preset().Name
	bw := (inner - float32(len(names)-1)*4) / float32(len(names))
	for i, name := range names {
		label := name
		if name == active {
			label = "[" + name + "]"
		}
		bounds := rl.Rectangle{X: x + float32(i)*(bw+4), Y: float32(y), Width: bw, Height: 24}
		if gui.Button(bounds, label) && name != active && err == nil {
			err = t.SetParameters(flowmap.Update{Preset: flowmap.String(name)})
		}
	}
	y += 34

	reset = gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: inner, Height: 24}, "Clear Trails [R]")
	y += 30

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), int32(x), y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(int32(x), y, desc, overlays.IsEnabled(desc.ID), int32(inner))
			y += lineHeight
		}
	}
	return reset, err
}

// drawToggle draws a single layer toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

func categoryLabel(cat string) string {
	switch cat {
	case "scene":
		return "Scene"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
