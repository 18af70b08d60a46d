package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidtrail/scene"
)

var (
	particleRest = rl.Color{R: 60, G: 90, B: 140, A: 140}
	particleLit  = rl.Color{R: 255, G: 220, B: 150, A: 255}
)

// ParticleRenderer draws the particle field, brightening particles by glow.
type ParticleRenderer struct {
	size float32
}

// NewParticleRenderer creates a particle renderer with the given radius in pixels.
func NewParticleRenderer(size float32) *ParticleRenderer {
	if size < 0.5 {
		size = 0.5
	}
	return &ParticleRenderer{size: size}
}

// Draw renders all particles.
func (r *ParticleRenderer) Draw(pf *scene.ParticleField) {
	pf.Each(func(pos scene.Position, glow float32) {
		color := lerpColor(particleRest, particleLit, glow)
		rl.DrawCircleV(rl.Vector2{X: pos.X, Y: pos.Y}, r.size*(1+glow), color)
	})
}

func lerpColor(a, b rl.Color, t float32) rl.Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return rl.Color{
		R: uint8(float32(a.R) + (float32(b.R)-float32(a.R))*t),
		G: uint8(float32(a.G) + (float32(b.G)-float32(a.G))*t),
		B: uint8(float32(a.B) + (float32(b.B)-float32(a.B))*t),
		A: uint8(float32(a.A) + (float32(b.A)-float32(a.A))*t),
	}
}
