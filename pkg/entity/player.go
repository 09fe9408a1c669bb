// pkg/entity/player.go
package entity

import (
	"slices"
	"time"

	"github.com/opd-ai/go-starstrike/pkg/physics"
)

// Effect is a timed boolean state on the player.
type Effect int

// Player timed effects
const (
	Invincible Effect = iota
	RapidFire
	TripleLaser
)

func (e Effect) String() string {
	switch e {
	case Invincible:
		return "invincible"
	case RapidFire:
		return "rapid_fire"
	case TripleLaser:
		return "triple_laser"
	default:
		return "unknown"
	}
}

// Player is the ship under user control. Lives are tracked by the host
// application, not here.
type Player struct {
	Body
	Velocity physics.Vector2D
	Sprite   string
	Effects  map[Effect]time.Time
}

// NewPlayer creates a player with no active effects.
func NewPlayer(id ID, rect physics.Rect, sprite string) *Player {
	return &Player{
		Body:    Body{ID: id, Rect: rect},
		Sprite:  sprite,
		Effects: make(map[Effect]time.Time),
	}
}

// Activate turns effect on until now+d. An active effect is refreshed, never
// shortened and never stacked.
func (p *Player) Activate(effect Effect, now time.Time, d time.Duration) time.Time {
	until := now.Add(d)
	if current, ok := p.Effects[effect]; ok && current.After(until) {
		return current
	}
	p.Effects[effect] = until
	return until
}

// Has reports whether effect is currently held.
func (p *Player) Has(effect Effect) bool {
	_, ok := p.Effects[effect]
	return ok
}

// Remaining returns how long effect has left at now, or zero.
func (p *Player) Remaining(effect Effect, now time.Time) time.Duration {
	until, ok := p.Effects[effect]
	if !ok || !until.After(now) {
		return 0
	}
	return until.Sub(now)
}

// ExpireEffects removes every effect whose expiry is at or before now and
// returns the removed kinds in ascending order.
func (p *Player) ExpireEffects(now time.Time) []Effect {
	var expired []Effect
	for effect, until := range p.Effects {
		if !now.Before(until) {
			expired = append(expired, effect)
			delete(p.Effects, effect)
		}
	}
	slices.Sort(expired)
	return expired
}

// ActiveEffects returns the held effects in ascending order.
func (p *Player) ActiveEffects() []Effect {
	active := make([]Effect, 0, len(p.Effects))
	for effect := range p.Effects {
		active = append(active, effect)
	}
	slices.Sort(active)
	return active
}
