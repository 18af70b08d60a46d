package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidtrail/flowmap"
	"github.com/pthm-cable/fluidtrail/telemetry"
	"github.com/pthm-cable/fluidtrail/ui"
)

// Update handles input and runs one tick at the measured frame time.
func (v *Viewer) Update() {
	v.perfCollector.StartTick()
	v.handleInput()

	if v.paused {
		return
	}
	v.step(float64(rl.GetFrameTime()))
}

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	mouse := rl.GetMousePosition()
	if !v.pointerPrimed {
		// No velocity spike from the window origin on the first frame.
		v.tracker.Reset(float64(mouse.X), float64(mouse.Y))
		v.pointerPrimed = true
	}
	v.tracker.Move(float64(mouse.X), float64(mouse.Y))

	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
		if !v.paused {
			v.tracker.Reset(float64(mouse.X), float64(mouse.Y))
		}
	}

	if rl.IsKeyPressed(rl.KeyR) {
		v.engine.Reset()
	}

	for i, name := range flowmap.PresetNames() {
		if i < 9 && rl.IsKeyPressed(rl.KeyOne+int32(i)) {
			v.setPreset(name)
		}
	}

	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		id, on, ok := v.overlays.HandleKeyPress(key)
		if !ok || id != ui.OverlayPanels {
			continue
		}
		if on {
			v.comp.ShowAll()
		} else {
			v.comp.HideAll()
			v.overlay.Clear()
		}
	}

	v.overlay.HandleInput(mouse.X, mouse.Y)
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	v.resize(int(rl.GetScreenWidth()), int(rl.GetScreenHeight()))
}

// Draw renders the scene, the panel stack and the UI, then closes the tick.
func (v *Viewer) Draw() {
	v.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(v.surfaceRenderer.Background())

	v.perfCollector.StartPhase(telemetry.PhaseScene)
	if v.overlays.IsEnabled(ui.OverlaySurface) {
		v.surfaceRenderer.Draw(v.surface)
	}
	if v.overlays.IsEnabled(ui.OverlayParticles) {
		v.particleRenderer.Draw(v.particles)
	}

	v.perfCollector.StartPhase(telemetry.PhaseCompositor)
	v.overlay.Queue()
	v.comp.Render(v.cfg.Inspector.Clear)
	if v.comp.Visible() {
		v.overlay.Draw()
	}

	v.perfCollector.StartPhase(telemetry.PhaseHUD)
	v.drawUI()

	rl.EndDrawing()
	v.perfCollector.EndTick()
	v.flushTelemetry()
}
