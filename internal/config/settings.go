package config

import "sync"

const (
	MinViewDistance = 8
	MaxViewDistance = 512
)

// RenderSettings holds values the viewer may change while running.
type RenderSettings struct {
	mu           sync.RWMutex
	viewDistance float32
	shading      bool
}

// NewRenderSettings seeds runtime settings from a loaded config.
func NewRenderSettings(c *Config) *RenderSettings {
	s := &RenderSettings{shading: c.Shading}
	s.SetViewDistance(c.ViewDistance)
	return s
}

// ViewDistance returns the current streaming radius in world units.
func (s *RenderSettings) ViewDistance() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewDistance
}

// SetViewDistance clamps to [MinViewDistance, MaxViewDistance].
func (s *RenderSettings) SetViewDistance(d float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d < MinViewDistance {
		d = MinViewDistance
	}
	if d > MaxViewDistance {
		d = MaxViewDistance
	}
	s.viewDistance = d
}

func (s *RenderSettings) Shading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shading
}

// ToggleShading flips lighting and returns the new value.
func (s *RenderSettings) ToggleShading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shading = !s.shading
	return s.shading
}
