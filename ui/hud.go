package ui

import (
	"fmt"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidtrail/gfx"
	"github.com/pthm-cable/fluidtrail/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Preset     string
	Resolution int
	Steps      uint64
	FPS        int32
	Position   gfx.Vec2
	Velocity   gfx.Vec2
	Intensity  float32 // stamp intensity derived from Velocity
	Probe      string
}

var hudSections = []SectionDescriptor{
	{
		Title: "Pointer",
		Fields: []FieldDescriptor{
			{Label: "u", Widget: WidgetBar, Range: DefaultRange(), Getter: func(d any) float32 { return d.(HUDData).Position.X }},
			{Label: "v", Widget: WidgetBar, Range: DefaultRange(), Getter: func(d any) float32 { return d.(HUDData).Position.Y }},
			{Label: "vel x", Widget: WidgetCenteredBar, Range: CenteredRange(), Getter: func(d any) float32 { return d.(HUDData).Velocity.X }},
			{Label: "vel y", Widget: WidgetCenteredBar, Range: CenteredRange(), Getter: func(d any) float32 { return d.(HUDData).Velocity.Y }},
			{Label: "intensity", Widget: WidgetBar, Range: DefaultRange(), Getter: func(d any) float32 { return d.(HUDData).Intensity }},
		},
	},
	{
		Title: "Probe",
		Fields: []FieldDescriptor{
			{Label: "texel", Widget: WidgetText, TextGetter: func(d any) string { return firstLine(d.(HUDData).Probe) }},
		},
		Visible: func(d any) bool { return d.(HUDData).Probe != "" },
	},
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD with its left edge at x.
func (h *HUD) Draw(data HUDData, x, width int32) {
	rl.DrawText(data.Title, x, 10, 20, rl.White)
	rl.DrawText(
		fmt.Sprintf("Preset: %s | Buffer: %dx%d | Steps: %d | FPS: %d",
			data.Preset, data.Resolution, data.Resolution, data.Steps, data.FPS),
		x, 35, 16, rl.LightGray,
	)

	r := h.renderer
	y := int32(60)
	height := int32(0)
	for _, sd := range hudSections {
		height += r.SectionHeight(sd, data)
	}
	r.DrawPanel(x, y, width, height+r.Theme.Padding)
	y += r.Theme.Padding / 2
	for _, sd := range hudSections {
		y = r.DrawSection(x+r.Theme.Padding, y, sd, data, width-r.Theme.Padding*2)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the frame phase timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Phases", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s (sd %.0fus)", stats.AvgTickDuration.Round(time.Microsecond), stats.StdTickUS), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range telemetry.Phases {
		pct := stats.PhasePct[name]
		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-12s %8s %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
