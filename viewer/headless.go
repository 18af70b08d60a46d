package viewer

import (
	"math"

	"github.com/pthm-cable/fluidtrail/telemetry"
)

// UpdateHeadless runs one tick with a synthetic pointer and composites into
// the device's default framebuffer.
func (v *Viewer) UpdateHeadless() {
	v.perfCollector.StartTick()

	x, y := v.pathPoint(v.simTime)
	v.tracker.Move(x, y)
	v.step(v.cfg.Headless.DT)

	v.perfCollector.StartPhase(telemetry.PhaseCompositor)
	v.comp.Render(true)

	v.perfCollector.EndTick()
	v.flushTelemetry()
}

// pathPoint returns the synthetic pointer position at time t: a 3:2
// Lissajous figure centered on the viewport.
func (v *Viewer) pathPoint(t float64) (x, y float64) {
	w, h := float64(v.width), float64(v.height)
	size := v.cfg.Headless.PathSize
	phase := 2 * math.Pi * v.cfg.Headless.PathFreq * t
	x = w/2 + size*w*math.Sin(3*phase)
	y = h/2 + size*h*math.Sin(2*phase+math.Pi/4)
	return x, y
}
