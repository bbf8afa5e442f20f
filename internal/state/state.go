// Package state holds the scroll animation record and its interpolation.
package state

import (
	"sync"
	"time"

	"github.com/Rorqualx/smoothie-go/internal/easing"
)

// DefaultDuration is the animation length used when none is given.
const DefaultDuration = 500 * time.Millisecond

// AnimationState describes one configured scroll animation.
type AnimationState struct {
	// ID correlates log lines for one animation.
	ID string
	// Hash is the navigation hash to push on completion; empty when the
	// target was not an anchor.
	Hash string
	// Easing names a curve in the easing registry.
	Easing string
	// Duration is the animation length; always positive.
	Duration time.Duration
	// StartOffset is the scroll offset when the animation began.
	StartOffset float64
	// EndOffset is the resolved destination. It is not clamped.
	EndOffset float64
}

// Default returns the record a cache starts with.
func Default() AnimationState {
	return AnimationState{
		Easing:   easing.Linear,
		Duration: DefaultDuration,
	}
}

// Offset returns the interpolated scroll offset at elapsed.
// Elapsed equal to Duration still goes through the curve; only a late
// tick strictly beyond Duration snaps to EndOffset.
func (s AnimationState) Offset(elapsed time.Duration, curve easing.Func) float64 {
	if elapsed > s.Duration {
		return s.EndOffset
	}
	progress := float64(elapsed) / float64(s.Duration)
	return s.StartOffset + (s.EndOffset-s.StartOffset)*curve(progress)
}

// Distance is the signed travel of the animation.
func (s AnimationState) Distance() float64 {
	return s.EndOffset - s.StartOffset
}

// Cache holds the most recently configured animation.
// It is safe for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	state AnimationState
}

// NewCache creates a cache holding Default().
func NewCache() *Cache {
	return &Cache{state: Default()}
}

// Load returns a copy of the current record.
func (c *Cache) Load() AnimationState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Store replaces the record wholesale.
func (c *Cache) Store(s AnimationState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
