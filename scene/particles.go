package scene

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"
)

// Position is a particle's location in screen pixels (Y down).
type Position struct {
	X, Y float32
}

// Velocity is a particle's velocity in pixels per second.
type Velocity struct {
	X, Y float32
}

// Home is the rest position a particle springs back to.
type Home struct {
	X, Y float32
}

// Glow is the particle's brightness in [0,1], taken from the field intensity.
type Glow struct {
	Value float32
}

// ParticleConfig holds particle field settings.
type ParticleConfig struct {
	Count        int
	FlowStrength float32 // pixels per second per unit flow
	Spring       float32 // pull toward home, per second
	Damping      float32 // velocity retained per second
	GlowDecay    float32 // glow retained per second
}

// ParticleField scatters particles over the viewport and pushes them along
// the sampled flow.
type ParticleField struct {
	cfg           ParticleConfig
	world         *ecs.World
	mapper        *ecs.Map4[Position, Velocity, Home, Glow]
	filter        *ecs.Filter4[Position, Velocity, Home, Glow]
	width, height float32
	count         int
}

// NewParticleField spawns cfg.Count particles at random home positions.
func NewParticleField(cfg ParticleConfig, width, height float32, rng *rand.Rand) *ParticleField {
	world := ecs.NewWorld()
	pf := &ParticleField{
		cfg:    cfg,
		world:  world,
		mapper: ecs.NewMap4[Position, Velocity, Home, Glow](world),
		filter: ecs.NewFilter4[Position, Velocity, Home, Glow](world),
		width:  width,
		height: height,
	}
	for i := 0; i < cfg.Count; i++ {
		x := rng.Float32() * width
		y := rng.Float32() * height
		pos := Position{X: x, Y: y}
		vel := Velocity{}
		home := Home{X: x, Y: y}
		glow := Glow{}
		pf.mapper.NewEntity(&pos, &vel, &home, &glow)
		pf.count++
	}
	return pf
}

// Count returns the number of particles.
func (pf *ParticleField) Count() int {
	return pf.count
}

// Resize rescales home and current positions to a new viewport.
func (pf *ParticleField) Resize(width, height float32) {
	if pf.width <= 0 || pf.height <= 0 {
		pf.width, pf.height = width, height
		return
	}
	sx := width / pf.width
	sy := height / pf.height
	query := pf.filter.Query()
	for query.Next() {
		pos, _, home, _ := query.Get()
		pos.X *= sx
		pos.Y *= sy
		home.X *= sx
		home.Y *= sy
	}
	pf.width, pf.height = width, height
}

// Update advances every particle by dt seconds. Flow is sampled at the
// particle position; R and G push along X and Y, B feeds the glow.
func (pf *ParticleField) Update(field *FieldCache, dt float32) {
	if pf.width <= 0 || pf.height <= 0 {
		return
	}
	damping := pow32(pf.cfg.Damping, dt)
	glowDecay := pow32(pf.cfg.GlowDecay, dt)

	query := pf.filter.Query()
	for query.Next() {
		pos, vel, home, glow := query.Get()

		// Screen Y grows down, flowmap V grows up.
		flow := field.SampleBilinear(pos.X/pf.width, 1-pos.Y/pf.height)

		vel.X += (flow.R*pf.cfg.FlowStrength + (home.X-pos.X)*pf.cfg.Spring) * dt
		vel.Y += (-flow.G*pf.cfg.FlowStrength + (home.Y-pos.Y)*pf.cfg.Spring) * dt
		vel.X *= damping
		vel.Y *= damping

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt

		glow.Value *= glowDecay
		if flow.B > glow.Value {
			glow.Value = flow.B
		}
		if glow.Value > 1 {
			glow.Value = 1
		}
	}
}

// Each calls fn for every particle.
func (pf *ParticleField) Each(fn func(pos Position, glow float32)) {
	query := pf.filter.Query()
	for query.Next() {
		pos, _, _, glow := query.Get()
		fn(*pos, glow.Value)
	}
}

// Energy returns the mean squared speed, used as a cheap activity metric.
func (pf *ParticleField) Energy() float64 {
	if pf.count == 0 {
		return 0
	}
	var sum float64
	query := pf.filter.Query()
	for query.Next() {
		_, vel, _, _ := query.Get()
		sum += float64(vel.X*vel.X + vel.Y*vel.Y)
	}
	return sum / float64(pf.count)
}
