package telemetry

import (
	"math"

	"github.com/pthm-cable/fluidtrail/gfx"
)

// DefaultActiveThreshold is the intensity above which a texel counts as part of a trail.
const DefaultActiveThreshold = 0.01

// Collector accumulates per-tick samples within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32
	threshold           float64

	windowStartTick int32

	steps     int
	speedSum  float64
	speedMax  float64
	energySum float64
	samples   int
	intensity []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		threshold:           DefaultActiveThreshold,
	}
}

// SetActiveThreshold overrides the trail intensity threshold.
func (c *Collector) SetActiveThreshold(v float64) {
	c.threshold = v
}

// RecordTick records one flowmap step with the pointer velocity that drove
// it and the particle energy after it.
func (c *Collector) RecordTick(velocity gfx.Vec2, particleEnergy float64) {
	speed := float64(velocity.Len())
	c.steps++
	c.samples++
	c.speedSum += speed
	c.speedMax = math.Max(c.speedMax, speed)
	c.energySum += particleEnergy
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats from the accumulated samples and the flowmap
// texels read back at window end (bottom row first), then resets for the
// next window.
func (c *Collector) Flush(currentTick int32, preset string, texels []gfx.RGBA) WindowStats {
	c.intensity = c.intensity[:0]
	for _, t := range texels {
		c.intensity = append(c.intensity, float64(t.B))
	}
	mean, p50, p90, active := ComputeIntensityStats(c.intensity, c.threshold)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),
		Steps:           c.steps,
		Preset:          preset,
		PointerSpeedMax: c.speedMax,
		IntensityMean:   mean,
		IntensityP50:    p50,
		IntensityP90:    p90,
		ActiveFraction:  active,
	}
	if c.samples > 0 {
		stats.PointerSpeedMean = c.speedSum / float64(c.samples)
		stats.ParticleEnergyMean = c.energySum / float64(c.samples)
	}

	c.windowStartTick = currentTick
	c.steps = 0
	c.samples = 0
	c.speedSum = 0
	c.speedMax = 0
	c.energySum = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
