package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidtrail/config"
	"github.com/pthm-cable/fluidtrail/gfx"
	"github.com/pthm-cable/fluidtrail/renderer"
	"github.com/pthm-cable/fluidtrail/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics on the software device")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	preset := flag.String("preset", "", "Stamp preset override (classic, inverted, soft)")
	seed := flag.Int64("seed", 0, "RNG seed for particle placement (0 = config seed)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *preset != "" {
		cfg.Flowmap.Preset = *preset
		if err := cfg.Validate(); err != nil {
			slog.Error("invalid preset", "preset", *preset, "error", err)
			os.Exit(1)
		}
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Scene.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := viewer.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		Headless:       *headless,
	}

	if *headless {
		// Headless mode: the software device needs no window or GL context.
		dev := gfx.NewSoftDevice(cfg.Screen.Width, cfg.Screen.Height)
		v, err := viewer.New(cfg, dev, opts)
		if err != nil {
			slog.Error("failed to start viewer", "error", err)
			os.Exit(1)
		}
		defer v.Unload()

		slog.Info("starting headless run",
			"seed", rngSeed,
			"max_ticks", *maxTicks,
			"output_dir", *outputDir,
		)

		for *maxTicks <= 0 || int(v.Tick()) < *maxTicks {
			v.UpdateHeadless()
		}
		slog.Info("max ticks reached", "tick", v.Tick())
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagVsyncHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	// Escape clears the probe readout instead of quitting.
	rl.SetExitKey(rl.KeyQ)

	dev, err := renderer.NewDevice()
	if err != nil {
		slog.Error("failed to create render device", "error", err)
		os.Exit(1)
	}
	defer dev.Close()

	v, err := viewer.New(cfg, dev, opts)
	if err != nil {
		slog.Error("failed to start viewer", "error", err)
		os.Exit(1)
	}
	defer v.Unload()

	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()

		if *maxTicks > 0 && int(v.Tick()) >= *maxTicks {
			break
		}
	}
}
