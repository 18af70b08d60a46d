// Shader debug tool - runs the flowmap stamp along a straight stroke and
// writes the result to a PNG file for inspection.
//
// Usage: go run ./cmd/shaderdebug -steps 30 -preset soft -out debug.png
package main

import (
	"flag"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidtrail/flowmap"
	"github.com/pthm-cable/fluidtrail/gfx"
	"github.com/pthm-cable/fluidtrail/renderer"
)

func main() {
	outPath := flag.String("out", "debug.png", "Output PNG path")
	resolution := flag.Int("resolution", 256, "Flowmap resolution")
	steps := flag.Int("steps", 30, "Stamp steps along the stroke")
	preset := flag.String("preset", flowmap.DefaultPreset, "Stamp preset")
	speed := flag.Float64("speed", 0.6, "Stroke velocity in normalized units")
	gain := flag.Float64("gain", 0.5, "Display gain applied to signed channels before encoding")
	flag.Parse()

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*resolution), int32(*resolution), "Shader Debug")
	defer rl.CloseWindow()

	dev, err := renderer.NewDevice()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create device: %v\n", err)
		os.Exit(1)
	}
	defer dev.Close()

	cfg := flowmap.DefaultConfig()
	cfg.Resolution = *resolution
	cfg.Preset = *preset
	cfg.ViewportW, cfg.ViewportH = *resolution, *resolution
	engine, err := flowmap.New(dev, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	// Diagonal stroke from the lower left to the upper right.
	vel := gfx.Vec2{X: float32(*speed), Y: float32(*speed)}
	for i := 0; i < *steps; i++ {
		t := float32(i) / float32(max(*steps-1, 1))
		engine.Step(vel, gfx.Vec2{X: 0.2 + 0.6*t, Y: 0.2 + 0.6*t})
	}

	n := *resolution * *resolution
	texels := make([]gfx.RGBA, n)
	if err := dev.ReadTexture(engine.Texture(), texels); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read flowmap: %v\n", err)
		os.Exit(1)
	}

	// Encode signed R/G around mid grey and B as is.
	img := rl.GenImageColor(*resolution, *resolution, rl.Black)
	for i, c := range texels {
		x, y := int32(i%*resolution), int32(i / *resolution)
		rl.ImageDrawPixel(img, x, y, rl.Color{
			R: encode(0.5 + c.R*float32(*gain)),
			G: encode(0.5 + c.G*float32(*gain)),
			B: encode(c.B),
			A: 255,
		})
	}
	// Rows were read bottom first.
	rl.ImageFlipVertical(img)

	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Flowmap rendered to: %s (%dx%d, %d steps, preset %s)\n", *outPath, *resolution, *resolution, *steps, *preset)
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}

func encode(v float32) uint8 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(v*255 + 0.5)
}
