package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies a toggleable viewer layer.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayPanels    OverlayID = "panels"
	OverlayParams    OverlayID = "params"
	OverlaySurface   OverlayID = "surface"
	OverlayParticles OverlayID = "particles"
	OverlayHUD       OverlayID = "hud"
)

// OverlayDescriptor defines a layer that can be toggled.
type OverlayDescriptor struct {
	ID       OverlayID
	Name     string
	Key      int32  // Keyboard key to toggle (0 = no key)
	KeyLabel string // Key label for display (e.g., "I")
	Category string // Grouping (e.g., "scene", "debug")
	Default  bool   // Enabled at startup
}

// OverlayRegistry manages layer state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with the viewer's layers.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:       OverlaySurface,
		Name:     "Surface Grid",
		Key:      rl.KeyG,
		KeyLabel: "G",
		Category: "scene",
		Default:  true,
	})
	r.Register(OverlayDescriptor{
		ID:       OverlayParticles,
		Name:     "Particles",
		Key:      rl.KeyK,
		KeyLabel: "K",
		Category: "scene",
		Default:  true,
	})
	r.Register(OverlayDescriptor{
		ID:       OverlayPanels,
		Name:     "Buffer Panels",
		Key:      rl.KeyI,
		KeyLabel: "I",
		Category: "debug",
		Default:  true,
	})
	r.Register(OverlayDescriptor{
		ID:       OverlayParams,
		Name:     "Parameters",
		Key:      rl.KeyP,
		KeyLabel: "P",
		Category: "debug",
		Default:  true,
	})
	r.Register(OverlayDescriptor{
		ID:       OverlayHUD,
		Name:     "HUD",
		Key:      rl.KeyH,
		KeyLabel: "H",
		Category: "debug",
		Default:  true,
	})
}

// Register adds a layer to the registry, replacing any with the same ID.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	if _, ok := r.byID[desc.ID]; ok {
		for i := range r.descriptors {
			if r.descriptors[i].ID == desc.ID {
				r.descriptors[i] = desc
			}
		}
	} else {
		r.descriptors = append(r.descriptors, desc)
	}
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches a layer and returns its new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	r.enabled[id] = !r.enabled[id]
	return r.enabled[id]
}

// SetEnabled explicitly sets a layer's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	if _, ok := r.byID[id]; ok {
		r.enabled[id] = enabled
	}
}

// IsEnabled returns whether a layer is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// ByCategory returns layers filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in registration order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress toggles the layer bound to key.
// Returns the layer ID, its new state and whether a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}
