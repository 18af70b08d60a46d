package ui

import (
	"testing"

	"github.com/pthm-cable/fluidtrail/flowmap"
	"github.com/pthm-cable/fluidtrail/gfx"
)

func TestSliderBoundsContainConfiguredValues(t *testing.T) {
	testCases := []struct {
		name   string
		params flowmap.Params
	}{
		{"defaults", flowmap.DefaultParams()},
		{"low dissipation", flowmap.Params{Dissipation: 0.5, Falloff: 0.15, Alpha: 1}},
		{"zero dissipation", flowmap.Params{Dissipation: 0, Falloff: 0.15, Alpha: 1}},
		{"wide falloff", flowmap.Params{Dissipation: 0.98, Falloff: 0.8, Alpha: 1}},
		{"tiny falloff", flowmap.Params{Dissipation: 0.98, Falloff: 0.001, Alpha: 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, s := range sliders {
				cur := s.get(tc.params)
				lo, hi := s.bounds(cur)
				if cur < lo || cur > hi {
					t.Errorf("%s: value %v outside slider range [%v, %v]", s.label, cur, lo, hi)
				}
			}
		})
	}
}

func TestSliderBoundsAreAccepted(t *testing.T) {
	cfg := flowmap.DefaultConfig()
	cfg.Resolution = 8
	e, err := flowmap.New(gfx.NewSoftDevice(8, 8), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	for _, s := range sliders {
		lo, hi := s.bounds(s.get(e.Params()))
		for _, v := range []float32{lo, hi} {
			if err := e.SetParameters(s.update(v)); err != nil {
				t.Errorf("%s: slider end %v rejected: %v", s.label, v, err)
			}
		}
	}

	// Every range the engine closes must be reachable end to end.
	for _, s := range sliders {
		if s.label == "Falloff" {
			continue
		}
		if s.min != 0 || s.max != 1 {
			t.Errorf("%s: expected range [0, 1], got [%v, %v]", s.label, s.min, s.max)
		}
	}
}
