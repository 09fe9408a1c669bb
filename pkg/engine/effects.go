package engine

import (
	"context"
	"time"

	"github.com/opd-ai/go-starstrike/pkg/entity"
	"github.com/opd-ai/go-starstrike/pkg/event"
)

// applyPowerUp starts or refreshes the effect for kind. Refreshing never
// shortens the remaining time.
func (e *Engine) applyPowerUp(kind entity.PowerUpKind, now time.Time) {
	switch kind {
	case entity.TripleLaserPickup:
		e.player.Activate(entity.TripleLaser, now, TripleLaserDuration)
	case entity.RapidFirePickup:
		e.player.Activate(entity.RapidFire, now, RapidFireDuration)
	case entity.InvincibilityPickup:
		e.player.Activate(entity.Invincible, now, InvincibilityDuration)
	case entity.FreezePickup:
		e.freeze(now)
	case entity.ExtraLifePickup:
		e.host.AddLife()
		e.bus.Publish(&event.DamageEvent{
			BaseEvent: event.BaseEvent{EventType: event.LifeGained, Source: e},
			Cause:     kind.String(),
			LivesLeft: e.host.Lives(),
		})
	}

	e.log.Debug(context.Background(), "Power-up applied",
		"kind", kind.String(),
		"frame", e.session.frame,
	)
}

// freeze halts enemy movement until now+FreezeDuration.
func (e *Engine) freeze(now time.Time) {
	if until := now.Add(FreezeDuration); until.After(e.session.frozenUntil) {
		e.session.frozenUntil = until
	}
	for i := range e.enemies {
		e.enemies[i].Frozen = true
		e.enemies[i].FrozenUntil = e.session.frozenUntil
	}
}

func (e *Engine) expireEffects(now time.Time) {
	for _, effect := range e.player.ExpireEffects(now) {
		e.bus.Publish(&event.EffectEvent{
			BaseEvent: event.BaseEvent{EventType: event.EffectExpired, Source: e},
			Effect:    effect,
		})
	}
}
