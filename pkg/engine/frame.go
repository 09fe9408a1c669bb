package engine

import (
	"slices"
	"time"

	"github.com/opd-ai/go-starstrike/pkg/entity"
	"github.com/opd-ai/go-starstrike/pkg/physics"
)

// Frame is a read-only snapshot of one simulation frame. Renderers and
// telemetry read frames, never the engine's live state.
type Frame struct {
	Number        uint64
	Width, Height float64
	Mission       int
	MissionName   string
	Wave          int
	Score         int
	Lives         int
	Frozen        bool

	Player   PlayerState
	Bullets  []entity.Bullet
	Enemies  []entity.Enemy
	Meteors  []entity.Meteor
	PowerUps []entity.PowerUp
}

// PlayerState is the player's part of a frame.
type PlayerState struct {
	Rect     physics.Rect
	Velocity physics.Vector2D
	Sprite   string
	Effects  []EffectState
}

// Has reports whether effect is active in this frame.
func (p PlayerState) Has(effect entity.Effect) bool {
	return slices.ContainsFunc(p.Effects, func(s EffectState) bool {
		return s.Effect == effect
	})
}

// EffectState is an active effect and its remaining time.
type EffectState struct {
	Effect    entity.Effect
	Remaining time.Duration
}

// Bosses returns the boss enemies in the frame.
func (f Frame) Bosses() []entity.Enemy {
	var bosses []entity.Enemy
	for _, enemy := range f.Enemies {
		if enemy.Kind == entity.Boss {
			bosses = append(bosses, enemy)
		}
	}
	return bosses
}

// Frame returns a snapshot of the current state.
func (e *Engine) Frame() Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()

	f := Frame{
		Number:      e.session.frame,
		Width:       e.width,
		Height:      e.height,
		Mission:     e.profile.ID,
		MissionName: e.profile.Name,
		Wave:        e.session.wave,
		Frozen:      e.now.Before(e.session.frozenUntil),
		Player: PlayerState{
			Rect:     e.player.Rect,
			Velocity: e.player.Velocity,
			Sprite:   e.player.Sprite,
		},
		Bullets:  slices.Clone(e.bullets),
		Enemies:  slices.Clone(e.enemies),
		Meteors:  slices.Clone(e.meteors),
		PowerUps: slices.Clone(e.powerUps),
		Score:    e.host.Score(),
		Lives:    e.host.Lives(),
	}
	for _, effect := range e.player.ActiveEffects() {
		f.Player.Effects = append(f.Player.Effects, EffectState{
			Effect:    effect,
			Remaining: e.player.Remaining(effect, e.now),
		})
	}
	return f
}
