package engine

import (
	"slices"
	"time"

	"github.com/opd-ai/go-starstrike/pkg/entity"
	"github.com/opd-ai/go-starstrike/pkg/event"
	"github.com/opd-ai/go-starstrike/pkg/input"
	"github.com/opd-ai/go-starstrike/pkg/physics"
)

func (e *Engine) movePlayer(in input.Snapshot) {
	p := e.player
	p.Velocity = in.Direction.Axis().Scale(PlayerSpeed).Add(in.Drag)
	p.Rect = physics.MoveClamped(p.Rect, in.Direction, PlayerSpeed, in.Drag, e.width, e.height)
}

// fireInterval is the number of frames between player volleys.
func (e *Engine) fireInterval() uint64 {
	if e.player.Has(entity.RapidFire) {
		return RapidFireInterval
	}
	return FireInterval
}

func (e *Engine) autoFire() {
	if e.session.frame%e.fireInterval() != 0 {
		return
	}
	origin := e.player.Rect
	x := origin.X + origin.W/2 - BulletWidth/2

	e.bullets = append(e.bullets, e.playerBullet(x, origin.Y, 0))
	count := 1
	if e.player.Has(entity.TripleLaser) {
		e.bullets = append(e.bullets,
			e.playerBullet(x-TripleSpread, origin.Y, -TripleDrift),
			e.playerBullet(x+TripleSpread, origin.Y, TripleDrift),
		)
		count += 2
	}
	e.bus.Publish(event.NewFireEvent(e, count, true))
}

func (e *Engine) playerBullet(x, y, vx float64) entity.Bullet {
	return entity.Bullet{
		Body: entity.Body{
			ID:   e.ids.Next(),
			Rect: physics.NewRect(x, y, BulletWidth, BulletHeight),
		},
		Velocity:   physics.Vector2D{X: vx, Y: -PlayerBulletSpeed},
		FromPlayer: true,
		Damage:     1,
		Sprite:     e.profile.PlayerLaser,
	}
}

// outOfBounds reports whether r has left the vertical band [-margin, H+margin].
func (e *Engine) outOfBounds(r physics.Rect, margin float64) bool {
	return r.Y < -margin || r.Y > e.height+margin
}

func (e *Engine) advanceBullets() {
	for i := len(e.bullets) - 1; i >= 0; i-- {
		b := &e.bullets[i]
		b.Rect = b.Rect.Translate(b.Velocity)
		if e.outOfBounds(b.Rect, DespawnMargin) {
			e.bullets = slices.Delete(e.bullets, i, i+1)
		}
	}
}

// enemySpeed is the descent speed for the current wave.
func (e *Engine) enemySpeed() float64 {
	return e.profile.EnemySpeed + float64(e.session.wave)*e.profile.WaveSpeedIncrease
}

func (e *Engine) advanceEnemies(now time.Time) {
	frozen := now.Before(e.session.frozenUntil)
	speed := e.enemySpeed()
	for i := range e.enemies {
		enemy := &e.enemies[i]
		enemy.Frozen = frozen
		enemy.FrozenUntil = e.session.frozenUntil
		if !frozen {
			enemy.Rect.Y += speed
		}
	}
}

func (e *Engine) advanceMeteors() {
	for i := len(e.meteors) - 1; i >= 0; i-- {
		m := &e.meteors[i]
		m.Rect = m.Rect.Translate(m.Velocity)
		m.Rotation += m.RotationSpeed
		if m.Rect.Y > e.height+MeteorDespawnMargin {
			e.meteors = slices.Delete(e.meteors, i, i+1)
		}
	}
}

func (e *Engine) advancePowerUps() {
	for i := len(e.powerUps) - 1; i >= 0; i-- {
		p := &e.powerUps[i]
		p.Rect.Y += p.FallSpeed
		if p.Rect.Y > e.height+DespawnMargin {
			e.powerUps = slices.Delete(e.powerUps, i, i+1)
		}
	}
}

func (e *Engine) dropEscapedEnemies() {
	for i := len(e.enemies) - 1; i >= 0; i-- {
		enemy := e.enemies[i]
		if enemy.Rect.Y <= e.height+DespawnMargin {
			continue
		}
		e.enemies = slices.Delete(e.enemies, i, i+1)
		e.bus.Publish(event.NewEnemyEvent(event.EnemyEscaped, e, enemy, 0))
	}
}
