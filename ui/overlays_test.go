package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestOverlayDefaults(t *testing.T) {
	reg := NewOverlayRegistry()
	for _, id := range []OverlayID{OverlayPanels, OverlayParams, OverlaySurface, OverlayParticles, OverlayHUD} {
		if !reg.IsEnabled(id) {
			t.Errorf("expected %s enabled at startup", id)
		}
	}
}

func TestOverlayHandleKeyPress(t *testing.T) {
	testCases := []struct {
		key     int32
		id      OverlayID
		handled bool
	}{
		{rl.KeyI, OverlayPanels, true},
		{rl.KeyP, OverlayParams, true},
		{rl.KeyG, OverlaySurface, true},
		{rl.KeyZ, "", false},
	}
	for _, tc := range testCases {
		reg := NewOverlayRegistry()
		id, state, handled := reg.HandleKeyPress(tc.key)
		if handled != tc.handled || id != tc.id {
			t.Errorf("key %d: expected (%q, %v), got (%q, %v)", tc.key, tc.id, tc.handled, id, handled)
			continue
		}
		if handled && state {
			t.Errorf("key %d: expected first press to disable %s", tc.key, id)
		}
	}
}

func TestOverlayToggleRoundTrip(t *testing.T) {
	reg := NewOverlayRegistry()
	reg.Toggle(OverlayHUD)
	if reg.IsEnabled(OverlayHUD) {
		t.Fatal("expected HUD disabled after toggle")
	}
	if !reg.Toggle(OverlayHUD) {
		t.Error("expected HUD enabled after second toggle")
	}
	if reg.Toggle("missing") {
		t.Error("expected unknown overlay toggle to report false")
	}
}

func TestOverlayCategories(t *testing.T) {
	reg := NewOverlayRegistry()
	cats := reg.Categories()
	if len(cats) != 2 || cats[0] != "scene" || cats[1] != "debug" {
		t.Fatalf("expected [scene debug], got %v", cats)
	}
	if n := len(reg.ByCategory("debug")); n != 3 {
		t.Errorf("expected 3 debug overlays, got %d", n)
	}
}

func TestOverlayRegisterReplaces(t *testing.T) {
	reg := NewOverlayRegistry()
	reg.Register(OverlayDescriptor{ID: OverlayHUD, Name: "Stats", Category: "debug"})
	if reg.IsEnabled(OverlayHUD) {
		t.Error("expected replaced descriptor default to apply")
	}
	if n := len(reg.ByCategory("debug")); n != 3 {
		t.Errorf("expected replacement not to add an entry, got %d debug overlays", n)
	}
}

func TestNormalize(t *testing.T) {
	testCases := []struct {
		v    float32
		rng  FieldRange
		want float32
	}{
		{0.5, DefaultRange(), 0.5},
		{-2, DefaultRange(), 0},
		{0, CenteredRange(), 0.5},
		{3, CenteredRange(), 1},
		{1, FieldRange{Min: 1, Max: 1}, 0},
	}
	for _, tc := range testCases {
		if got := normalize(tc.v, tc.rng); got != tc.want {
			t.Errorf("normalize(%v, %+v) = %v, want %v", tc.v, tc.rng, got, tc.want)
		}
	}
}
