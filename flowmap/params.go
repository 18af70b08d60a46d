package flowmap

import (
	"errors"
	"fmt"
	"sort"
)

// ErrParameter is returned for out-of-range engine parameters.
var ErrParameter = errors.New("flowmap: parameter out of range")

// Params holds the per-frame stamp parameters.
type Params struct {
	Dissipation float32 // per-tick multiplicative decay, [0,1]
	Falloff     float32 // stamp radius in aspect-corrected uv units, > 0
	Alpha       float32 // stamp intensity, [0,1]
}

// DefaultParams returns the parameters used by the reference scene.
func DefaultParams() Params {
	return Params{
		Dissipation: 0.98,
		Falloff:     0.15,
		Alpha:       1.0,
	}
}

// Validate checks every parameter against its range.
func (p Params) Validate() error {
	if !(p.Dissipation >= 0 && p.Dissipation <= 1) {
		return fmt.Errorf("dissipation %v not in [0,1]: %w", p.Dissipation, ErrParameter)
	}
	if !(p.Falloff > 0) {
		return fmt.Errorf("falloff %v must be > 0: %w", p.Falloff, ErrParameter)
	}
	if !(p.Alpha >= 0 && p.Alpha <= 1) {
		return fmt.Errorf("alpha %v not in [0,1]: %w", p.Alpha, ErrParameter)
	}
	return nil
}

// Preset captures the stamp formula variants as data.
type Preset struct {
	Name string

	// VelocitySign multiplies the injected velocity per axis. {1,-1} suits
	// callers whose velocity is measured with Y growing downward.
	VelocitySignX, VelocitySignY float32

	// FalloffGain scales the blend weight, (0,1].
	FalloffGain float32

	// StampAlpha blends the alpha channel toward 1 with the same weight as rgb.
	// When false the alpha channel only decays.
	StampAlpha bool
}

// Validate checks the preset's weight stays a convex blend factor.
func (p Preset) Validate() error {
	if !(p.FalloffGain > 0 && p.FalloffGain <= 1) {
		return fmt.Errorf("preset %q falloff gain %v not in (0,1]: %w", p.Name, p.FalloffGain, ErrParameter)
	}
	if abs32(p.VelocitySignX) != 1 || abs32(p.VelocitySignY) != 1 {
		return fmt.Errorf("preset %q velocity signs must be ±1: %w", p.Name, ErrParameter)
	}
	return nil
}

var presets = map[string]Preset{
	"classic": {
		Name:          "classic",
		VelocitySignX: 1,
		VelocitySignY: 1,
		FalloffGain:   1,
	},
	"inverted": {
		Name:          "inverted",
		VelocitySignX: 1,
		VelocitySignY: -1,
		FalloffGain:   1,
	},
	"soft": {
		Name:          "soft",
		VelocitySignX: 1,
		VelocitySignY: 1,
		FalloffGain:   0.5,
		StampAlpha:    true,
	},
}

// DefaultPreset is used when a config names no preset.
const DefaultPreset = "classic"

// LookupPreset returns the named preset.
func LookupPreset(name string) (Preset, error) {
	if name == "" {
		name = DefaultPreset
	}
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q: %w", name, ErrParameter)
	}
	return p, nil
}

// PresetNames lists the registered presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Update is a partial parameter change; nil fields are left untouched.
type Update struct {
	Dissipation *float32
	Falloff     *float32
	Alpha       *float32
	Preset      *string
}

// apply returns p and preset with u applied, validated as a whole.
func (u Update) apply(p Params, preset Preset) (Params, Preset, error) {
	if u.Dissipation != nil {
		p.Dissipation = *u.Dissipation
	}
	if u.Falloff != nil {
		p.Falloff = *u.Falloff
	}
	if u.Alpha != nil {
		p.Alpha = *u.Alpha
	}
	if err := p.Validate(); err != nil {
		return Params{}, Preset{}, err
	}
	if u.Preset != nil {
		next, err := LookupPreset(*u.Preset)
		if err != nil {
			return Params{}, Preset{}, err
		}
		preset = next
	}
	return p, preset, nil
}

// Float32 returns a pointer to v, for building an Update.
func Float32(v float32) *float32 {
	return &v
}

// String returns a pointer to s, for building an Update.
func String(s string) *string {
	return &s
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
