// Package input captures player controls from any backend into shared state
// that the simulation reads once per frame.
package input

import (
	"sync"
	"time"

	"github.com/opd-ai/go-starstrike/pkg/physics"
)

// Key is a directional control.
type Key int

// Directional controls
const (
	Left Key = iota
	Right
	Up
	Down
	keyCount
)

// DefaultTapHold is how long a tap counts as held. Terminals report key
// presses but not releases, so a tap stands in for a short hold.
const DefaultTapHold = 150 * time.Millisecond

// Snapshot is the input for one frame.
type Snapshot struct {
	Direction physics.Direction
	Drag      physics.Vector2D
}

// State is written by event listeners and read by the frame loop. Writers
// do not queue: the latest write before a snapshot wins.
type State struct {
	mu       sync.Mutex
	held     [keyCount]bool
	tapUntil [keyCount]time.Time
	drag     physics.Vector2D
	tapHold  time.Duration
}

// NewState creates an input state using DefaultTapHold.
func NewState() *State {
	return &State{tapHold: DefaultTapHold}
}

// SetTapHold changes how long a Tap keeps a key held.
func (s *State) SetTapHold(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tapHold = d
}

// SetKey records a key as pressed or released.
func (s *State) SetKey(k Key, down bool) {
	if k < 0 || k >= keyCount {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held[k] = down
	if !down {
		s.tapUntil[k] = time.Time{}
	}
}

// Tap marks a key held from now for the tap window.
func (s *State) Tap(k Key, now time.Time) {
	if k < 0 || k >= keyCount {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tapUntil[k] = now.Add(s.tapHold)
}

// Drag adds a pointer or touch displacement in arena pixels.
func (s *State) Drag(dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag = s.drag.Add(physics.Vector2D{X: dx, Y: dy})
}

// Release clears every held key and pending drag.
func (s *State) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = [keyCount]bool{}
	s.tapUntil = [keyCount]time.Time{}
	s.drag = physics.Vector2D{}
}

// Snapshot returns the input for the frame at now and consumes the
// accumulated drag.
func (s *State) Snapshot(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	down := func(k Key) bool {
		return s.held[k] || now.Before(s.tapUntil[k])
	}
	snap := Snapshot{
		Direction: physics.Direction{
			Left:  down(Left),
			Right: down(Right),
			Up:    down(Up),
			Down:  down(Down),
		},
		Drag: s.drag,
	}
	s.drag = physics.Vector2D{}
	return snap
}
