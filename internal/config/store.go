package config

import (
	"fmt"
	"sync"
)

// Store holds the live settings edited by hotkeys. The frame loop reads a
// Snapshot once per tick.
type Store struct {
	mu       sync.RWMutex
	tunables Tunables
	paused   bool
	time     float64
}

// NewStore returns a store seeded with t (clamped).
func NewStore(t Tunables) *Store {
	return &Store{tunables: t.Clamped()}
}

// Snapshot returns a copy of the current settings.
func (s *Store) Snapshot() Tunables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tunables
}

// Update edits the settings under the write lock and clamps the result.
func (s *Store) Update(fn func(t *Tunables)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.tunables)
	s.tunables = s.tunables.Clamped()
}

func (s *Store) ToggleDepthOfField() {
	s.Update(func(t *Tunables) { t.DepthOfField = !t.DepthOfField })
}

func (s *Store) ToggleMirror() {
	s.Update(func(t *Tunables) { t.Mirror = !t.Mirror })
}

func (s *Store) ToggleNormals() {
	s.Update(func(t *Tunables) { t.RenderNormals = !t.RenderNormals })
}

// SetFocusRange sets the depth-of-field focus distances.
func (s *Store) SetFocusRange(min, max float32) {
	s.Update(func(t *Tunables) {
		t.MinFocusDistance = min
		t.MaxFocusDistance = max
	})
}

// GetFPSLimit returns the frame cap, 0 meaning uncapped.
func (s *Store) GetFPSLimit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tunables.FPSLimit
}

// SetFPSLimit sets the frame cap.
func (s *Store) SetFPSLimit(limit int) {
	s.Update(func(t *Tunables) { t.FPSLimit = limit })
}

// ApplyPreset loads one of the stored god-ray presets.
func (s *Store) ApplyPreset(n int) error {
	var apply func(t *Tunables)
	switch n {
	case 1:
		apply = func(t *Tunables) {
			t.MaxStep = 50
			t.StepSize = 0.17
			t.ScatteringCoeff = 0.05
			t.AbsorptionCoeff = 0.04
			t.LightStrength = 50000
			t.Normalization = 0.5
			t.Frequency = 0.05
			t.SphereLight = false
		}
	case 2:
		apply = func(t *Tunables) {
			t.MaxStep = 50
			t.StepSize = 0.17
			t.ScatteringCoeff = 0.025
			t.AbsorptionCoeff = 0.045
			t.LightStrength = 400
			t.Normalization = 1
			t.Frequency = 0.05
			t.SphereLight = true
		}
	default:
		return fmt.Errorf("unknown preset %d", n)
	}
	s.Update(apply)
	return nil
}

// TogglePause flips the pause flag and returns the new state.
func (s *Store) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
	return s.paused
}

func (s *Store) Paused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

// AdvanceTime adds dt seconds to the animation clock unless paused, and
// returns the clock.
func (s *Store) AdvanceTime(dt float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		s.time += dt
	}
	return s.time
}

// Time returns the animation clock in seconds.
func (s *Store) Time() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.time
}
