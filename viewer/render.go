package viewer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidtrail/flowmap"
	"github.com/pthm-cable/fluidtrail/ui"
)

const controlsLegend = "Mouse: stir | Right click: probe | R: clear | 1-3: preset | Space: pause | G K I P H: layers | F11: fullscreen"

// drawUI renders the HUD, the parameter panel and the perf readout.
func (v *Viewer) drawUI() {
	if v.overlays.IsEnabled(ui.OverlayHUD) {
		vel, pos := v.sample.Vec2()
		title := "fluidtrail"
		if v.paused {
			title += " (paused)"
		}
		v.hud.Draw(ui.HUDData{
			Title:      title,
			Preset:     v.engine.Preset().Name,
			Resolution: v.engine.Resolution(),
			Steps:      v.engine.Steps(),
			FPS:        rl.GetFPS(),
			Position:   pos,
			Velocity:   vel,
			Intensity:  flowmap.StampIntensity(vel),
			Probe:      v.overlay.Text(),
		}, int32(v.cfg.Inspector.MinPanelWidth)+10, 260)
		v.perfPanel.Draw(v.perfCollector.Stats())
		v.hud.DrawControls(int32(v.height), controlsLegend)
	}

	if v.overlays.IsEnabled(ui.OverlayParams) {
		reset, err := v.controls.Draw(v.engine, v.overlays)
		if err != nil {
			slog.Warn("parameter rejected", "error", err)
		}
		if reset {
			v.engine.Reset()
		}
	}
}
