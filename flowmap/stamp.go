package flowmap

import (
	"math"

	"github.com/pthm-cable/fluidtrail/gfx"
)

// stampFragment is the GPU form of stampPass.Shade. raylib's default vertex
// shader supplies fragTexCoord and binds the sampled target as texture0.
const stampFragment = `#version 330

in vec2 fragTexCoord;

uniform sampler2D texture0;

uniform float uDissipation;
uniform float uFalloff;
uniform float uAlpha;
uniform float uAspect;
uniform vec2 uPosition;
uniform vec2 uVelocity;
uniform vec2 uVelocitySign;
uniform float uFalloffGain;
uniform float uStampAlpha;

out vec4 finalColor;

void main() {
    vec4 color = texture(texture0, fragTexCoord) * uDissipation;

    vec2 cursor = fragTexCoord - uPosition;
    cursor.x *= uAspect;

    vec2 vel = uVelocity * uVelocitySign;
    vec3 stamp = vec3(vel, 1.0 - pow(1.0 - min(1.0, length(vel)), 3.0));
    float weight = smoothstep(uFalloff, 0.0, length(cursor)) * uFalloffGain * uAlpha;

    color.rgb = mix(color.rgb, stamp, vec3(weight));
    color.a = mix(color.a, 1.0, weight * uStampAlpha);

    finalColor = color;
}
`

// stampPass decays the previous frame and blends a velocity stamp around the pointer.
type stampPass struct {
	params   Params
	preset   Preset
	aspect   float32
	velocity gfx.Vec2
	position gfx.Vec2
}

func (s *stampPass) Name() string   { return "flowmap.stamp" }
func (s *stampPass) Source() string { return stampFragment }

func (s *stampPass) Bind(u gfx.Uniforms) {
	u.SetFloat("uDissipation", s.params.Dissipation)
	u.SetFloat("uFalloff", s.params.Falloff)
	u.SetFloat("uAlpha", s.params.Alpha)
	u.SetFloat("uAspect", s.aspect)
	u.SetVec2("uPosition", s.position)
	u.SetVec2("uVelocity", s.velocity)
	u.SetVec2("uVelocitySign", gfx.Vec2{X: s.preset.VelocitySignX, Y: s.preset.VelocitySignY})
	u.SetFloat("uFalloffGain", s.preset.FalloffGain)
	stampAlpha := float32(0)
	if s.preset.StampAlpha {
		stampAlpha = 1
	}
	u.SetFloat("uStampAlpha", stampAlpha)
}

// Shade evaluates one texel exactly as stampFragment does.
func (s *stampPass) Shade(src gfx.Sampler, uv gfx.Vec2) gfx.RGBA {
	c := src.Sample(uv).Scale(s.params.Dissipation)

	cursor := uv.Sub(s.position)
	cursor.X *= s.aspect

	vel := gfx.Vec2{X: s.velocity.X * s.preset.VelocitySignX, Y: s.velocity.Y * s.preset.VelocitySignY}
	speed := vel.Len()
	if speed > 1 {
		speed = 1
	}
	inv := 1 - speed
	intensity := 1 - inv*inv*inv

	w := gfx.Smoothstep(s.params.Falloff, 0, cursor.Len()) * s.preset.FalloffGain * s.params.Alpha

	c.R = gfx.Mix(c.R, vel.X, w)
	c.G = gfx.Mix(c.G, vel.Y, w)
	c.B = gfx.Mix(c.B, intensity, w)
	if s.preset.StampAlpha {
		c.A = gfx.Mix(c.A, 1, w)
	}
	return c
}

// StampIntensity is the blue-channel stamp value for a velocity.
func StampIntensity(v gfx.Vec2) float32 {
	speed := math.Min(1, float64(v.Len()))
	return float32(1 - math.Pow(1-speed, 3))
}
