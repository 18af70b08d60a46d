package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidtrail/scene"
)

var (
	surfaceCalm    = rl.Color{R: 30, G: 60, B: 90, A: 255}
	surfaceStirred = rl.Color{R: 120, G: 220, B: 255, A: 255}
)

// SurfaceRenderer draws the displaced grid as line segments, tinting each
// segment by the intensity at its start vertex.
type SurfaceRenderer struct {
	background rl.Color
}

// NewSurfaceRenderer creates a surface renderer.
func NewSurfaceRenderer() *SurfaceRenderer {
	return &SurfaceRenderer{background: rl.Color{R: 10, G: 14, B: 22, A: 255}}
}

// Background returns the clear color the surface is drawn over.
func (r *SurfaceRenderer) Background() rl.Color {
	return r.background
}

// Draw renders the grid.
func (r *SurfaceRenderer) Draw(s *scene.Surface) {
	cols, rows := s.Grid()
	for j := 0; j <= rows; j++ {
		for i := 0; i <= cols; i++ {
			v := s.At(i, j)
			from := rl.Vector2{X: v.X, Y: v.Y}
			color := lerpColor(surfaceCalm, surfaceStirred, v.Intensity)
			if i < cols {
				n := s.At(i+1, j)
				rl.DrawLineV(from, rl.Vector2{X: n.X, Y: n.Y}, color)
			}
			if j < rows {
				n := s.At(i, j+1)
				rl.DrawLineV(from, rl.Vector2{X: n.X, Y: n.Y}, color)
			}
		}
	}
}
