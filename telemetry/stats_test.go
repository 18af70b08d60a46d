package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/fluidtrail/gfx"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeIntensityStats(t *testing.T) {
	values := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1}
	mean, p50, p90, active := ComputeIntensityStats(values, 0.45)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
	if math.Abs(active-0.6) > 1e-9 {
		t.Errorf("active = %v, want 0.6", active)
	}
}

func TestComputeIntensityStatsThresholdIsExclusive(t *testing.T) {
	_, _, _, active := ComputeIntensityStats([]float64{0, 0.01, 0.01, 0.5}, 0.01)
	if math.Abs(active-0.25) > 1e-9 {
		t.Errorf("active = %v, want 0.25", active)
	}
}

func TestComputeIntensityStatsEmpty(t *testing.T) {
	mean, p50, p90, active := ComputeIntensityStats(nil, DefaultActiveThreshold)

	if mean != 0 || p50 != 0 || p90 != 0 || active != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(0.5, 0.125)
	if c.WindowDurationTicks() != 4 {
		t.Fatalf("expected 4 ticks per window, got %d", c.WindowDurationTicks())
	}

	c.RecordTick(gfx.Vec2{X: 3, Y: 4}, 2)
	c.RecordTick(gfx.Vec2{}, 4)
	if c.ShouldFlush(3) {
		t.Error("expected no flush before the window closes")
	}
	if !c.ShouldFlush(4) {
		t.Fatal("expected flush at window end")
	}

	texels := []gfx.RGBA{{B: 0}, {B: 0.5}, {B: 1}, {B: 0.005}}
	stats := c.Flush(4, "classic", texels)

	if stats.Steps != 2 || stats.Preset != "classic" {
		t.Errorf("expected 2 steps with classic, got %d with %q", stats.Steps, stats.Preset)
	}
	if stats.PointerSpeedMean != 2.5 || stats.PointerSpeedMax != 5 {
		t.Errorf("expected speed mean 2.5 max 5, got %v and %v", stats.PointerSpeedMean, stats.PointerSpeedMax)
	}
	if stats.ParticleEnergyMean != 3 {
		t.Errorf("expected energy mean 3, got %v", stats.ParticleEnergyMean)
	}
	if stats.ActiveFraction != 0.5 {
		t.Errorf("expected half the texels active, got %v", stats.ActiveFraction)
	}
	if math.Abs(stats.SimTimeSec-0.5) > 1e-6 {
		t.Errorf("expected sim time 0.5, got %v", stats.SimTimeSec)
	}

	// The next window starts empty at the flush tick.
	if c.ShouldFlush(7) {
		t.Error("expected the window to restart at tick 4")
	}
	next := c.Flush(8, "soft", nil)
	if next.WindowStartTick != 4 || next.Steps != 0 || next.PointerSpeedMax != 0 {
		t.Errorf("expected reset counters, got %+v", next)
	}
}
