package engine

import (
	"slices"
	"time"

	"github.com/opd-ai/go-starstrike/pkg/entity"
	"github.com/opd-ai/go-starstrike/pkg/event"
)

// resolveCollisions runs every pairwise check for the frame in a fixed order.
func (e *Engine) resolveCollisions(now time.Time) {
	e.resolvePlayerBullets()
	if !e.player.Has(entity.Invincible) {
		e.resolveEnemyBullets()
		e.resolveEnemyRams()
		e.resolveMeteorStrikes()
	}
	e.resolvePickups(now)
}

// resolvePlayerBullets lets each player bullet hit at most one enemy.
func (e *Engine) resolvePlayerBullets() {
	for bi := len(e.bullets) - 1; bi >= 0; bi-- {
		b := e.bullets[bi]
		if !b.FromPlayer {
			continue
		}
		ei := slices.IndexFunc(e.enemies, func(enemy entity.Enemy) bool {
			return b.Overlaps(enemy.Body)
		})
		if ei < 0 {
			continue
		}
		e.bullets = slices.Delete(e.bullets, bi, bi+1)

		enemy := &e.enemies[ei]
		enemy.HP -= b.Damage
		if enemy.Alive() {
			e.bus.Publish(event.NewEnemyEvent(event.EnemyHit, e, *enemy, 0))
			continue
		}
		e.destroyEnemy(ei)
	}
}

func (e *Engine) destroyEnemy(i int) {
	enemy := e.enemies[i]
	e.enemies = slices.Delete(e.enemies, i, i+1)

	points := EnemyPoints
	if enemy.Kind == entity.Boss {
		points = BossPoints
	}
	e.host.AddScore(points)
	e.tryDrop(enemy.Rect.Center())
	e.bus.Publish(event.NewEnemyEvent(event.EnemyDestroyed, e, enemy, points))
}

func (e *Engine) resolveEnemyBullets() {
	i := slices.IndexFunc(e.bullets, func(b entity.Bullet) bool {
		return !b.FromPlayer && b.Overlaps(e.player.Body)
	})
	if i < 0 {
		return
	}
	e.bullets = slices.Delete(e.bullets, i, i+1)
	e.damagePlayer("enemy_bullet")
}

func (e *Engine) resolveEnemyRams() {
	i := slices.IndexFunc(e.enemies, func(enemy entity.Enemy) bool {
		return enemy.Overlaps(e.player.Body)
	})
	if i < 0 {
		return
	}
	e.enemies = slices.Delete(e.enemies, i, i+1)
	e.damagePlayer("enemy")
}

func (e *Engine) resolveMeteorStrikes() {
	i := slices.IndexFunc(e.meteors, func(m entity.Meteor) bool {
		return m.Overlaps(e.player.Body)
	})
	if i < 0 {
		return
	}
	e.meteors = slices.Delete(e.meteors, i, i+1)
	e.damagePlayer("meteor")
}

func (e *Engine) damagePlayer(cause string) {
	e.host.TakeDamage()
	e.bus.Publish(&event.DamageEvent{
		BaseEvent: event.BaseEvent{EventType: event.PlayerDamaged, Source: e},
		Cause:     cause,
		LivesLeft: e.host.Lives(),
	})
}

// resolvePickups collects every overlapping power-up. Invincibility does not
// block pickups.
func (e *Engine) resolvePickups(now time.Time) {
	for i := len(e.powerUps) - 1; i >= 0; i-- {
		p := e.powerUps[i]
		if !p.Overlaps(e.player.Body) {
			continue
		}
		e.powerUps = slices.Delete(e.powerUps, i, i+1)
		e.applyPowerUp(p.Kind, now)
		e.bus.Publish(event.NewPowerUpEvent(event.PowerUpCollected, e, p))
	}
}
