package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated flow statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Flowmap steps taken during the window
	Steps int `csv:"steps"`
	// Preset active at window end
	Preset string `csv:"preset"`

	// Pointer speed in stamp units, sampled every tick
	PointerSpeedMean float64 `csv:"pointer_speed_mean"`
	PointerSpeedMax  float64 `csv:"pointer_speed_max"`

	// Flowmap intensity (blue channel) over all texels at window end
	IntensityMean float64 `csv:"intensity_mean"`
	IntensityP50  float64 `csv:"intensity_p50"`
	IntensityP90  float64 `csv:"intensity_p90"`
	// Fraction of texels with intensity above the active threshold
	ActiveFraction float64 `csv:"active_fraction"`

	// Mean squared particle speed, sampled every tick
	ParticleEnergyMean float64 `csv:"particle_energy_mean"`
}

// Percentile returns the p-th percentile of a sorted slice, p in [0, 1],
// by linear interpolation between closest ranks. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeIntensityStats calculates mean, median, p90 and the fraction of
// values above threshold. values is sorted in place.
func ComputeIntensityStats(values []float64, threshold float64) (mean, p50, p90, active float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)

	sort.Float64s(values)
	p50 = Percentile(values, 0.50)
	p90 = Percentile(values, 0.90)

	// First index above threshold; everything after it is active.
	i := sort.Search(n, func(i int) bool { return values[i] > threshold })
	active = float64(n-i) / float64(n)

	return mean, p50, p90, active
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("steps", s.Steps),
		slog.String("preset", s.Preset),
		slog.Float64("pointer_speed_mean", s.PointerSpeedMean),
		slog.Float64("pointer_speed_max", s.PointerSpeedMax),
		slog.Float64("intensity_mean", s.IntensityMean),
		slog.Float64("intensity_p50", s.IntensityP50),
		slog.Float64("intensity_p90", s.IntensityP90),
		slog.Float64("active_fraction", s.ActiveFraction),
		slog.Float64("particle_energy_mean", s.ParticleEnergyMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
