package inspector

import (
	"testing"
)

func TestOverlayThrottlesLiveReadout(t *testing.T) {
	testCases := []struct {
		name     string
		interval int
		frames   int
		want     int
	}{
		{"every frame", 1, 6, 6},
		{"every third frame", 3, 6, 2},
		{"first frame always reads", 15, 1, 1},
		{"non-positive means every frame", 0, 4, 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, c, _ := renderSetup(t)
			o := NewOverlay(c)
			o.SetInterval(tc.interval)
			o.panel, o.u, o.v = c.Panels()[0], 0.5, 0.5
			o.follow = true

			reads := 0
			for i := 0; i < tc.frames; i++ {
				o.Queue()
				reads += c.Pending()
				c.Render(false)
			}
			if reads != tc.want {
				t.Errorf("expected %d reads over %d frames, got %d", tc.want, tc.frames, reads)
			}
			if o.Text() == "" {
				t.Error("expected a readout after the first frame")
			}
		})
	}
}

func TestOverlayHiddenPanelClears(t *testing.T) {
	_, c, _ := renderSetup(t)
	o := NewOverlay(c)
	o.panel, o.follow, o.text = c.Panels()[0], true, "stale"

	c.HideAll()
	o.Queue()
	if o.Text() != "" || c.Pending() != 0 {
		t.Errorf("expected readout cleared for a hidden panel, got %q with %d queued", o.Text(), c.Pending())
	}
}
