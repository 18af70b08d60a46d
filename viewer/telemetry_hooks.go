package viewer

import (
	"log/slog"
)

// flushTelemetry checks if the stats window should be flushed and writes it out.
func (v *Viewer) flushTelemetry() {
	if !v.collector.ShouldFlush(v.tick) {
		return
	}

	// The cache may be a few ticks stale; the window closes on the current output.
	if err := v.field.Refresh(v.engine.Texture()); err != nil {
		slog.Error("flowmap readback failed", "tick", v.tick, "error", err)
	}

	stats := v.collector.Flush(v.tick, v.engine.Preset().Name, v.field.Texels())
	perfStats := v.perfCollector.Stats()

	if v.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := v.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := v.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
